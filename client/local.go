package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ByLCY/flapboard/board"
)

const (
	LocalPort = "7000"

	localKeyHeader        = "X-Vestaboard-Local-Api-Key"
	localEnablementHeader = "X-Vestaboard-Local-Api-Enablement-Token"
	localMessagePath      = "/local-api/message"
	localEnablementPath   = "/local-api/enablement"
)

// LocalClient talks to a board on the local network.
type LocalClient struct {
	base
}

var (
	_ Writer = (*LocalClient)(nil)
	_ Reader = (*LocalClient)(nil)
)

// NewLocalClient creates a client for the board at address (an IP address,
// IPv4 preferred).
func NewLocalClient(apiKey, address string, opts ...Option) (*LocalClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: local api key (set LOCAL_API_KEY)", ErrMissingCredential)
	}
	baseURL, err := localBaseURL(address)
	if err != nil {
		return nil, err
	}
	headers := http.Header{}
	headers.Set(localKeyHeader, apiKey)
	return &LocalClient{base: newBase(baseURL, headers, opts)}, nil
}

func localBaseURL(address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("%w: device ip (set LOCAL_DEVICE_IP)", ErrMissingCredential)
	}
	ip := net.ParseIP(address)
	if ip == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIP, address)
	}
	return "http://" + net.JoinHostPort(ip.String(), LocalPort), nil
}

func (c *LocalClient) Read(ctx context.Context) (board.Grid, error) {
	status, data, err := c.send(ctx, http.MethodGet, c.baseURL+localMessagePath, nil)
	if err != nil {
		return board.Grid{}, err
	}
	if status < 200 || status > 299 {
		return board.Grid{}, &APIError{StatusCode: status, Body: strings.TrimSpace(string(data))}
	}
	return c.decodeGrid(data)
}

// Write displays grid. The local API returns no message id.
func (c *LocalClient) Write(ctx context.Context, grid board.Grid) (WriteResult, error) {
	if err := c.do(ctx, http.MethodPost, c.baseURL+localMessagePath, grid, nil); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{}, nil
}

type enablementResponse struct {
	Message string  `json:"message"`
	APIKey  *string `json:"apiKey"`
}

// EnableLocalAPI exchanges an enablement token for a local API key. The
// board hands out the key only once per token.
func EnableLocalAPI(ctx context.Context, address, token string, opts ...Option) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: local enablement token (set LOCAL_ENABLEMENT_TOKEN)", ErrMissingCredential)
	}
	baseURL, err := localBaseURL(address)
	if err != nil {
		return "", err
	}
	headers := http.Header{}
	headers.Set(localEnablementHeader, token)
	b := newBase(baseURL, headers, opts)

	status, data, err := b.send(ctx, http.MethodPost, b.baseURL+localEnablementPath, nil)
	if err != nil {
		return "", err
	}
	var res enablementResponse
	if err := json.Unmarshal(data, &res); err != nil {
		if status < 200 || status > 299 {
			return "", &APIError{StatusCode: status, Body: string(data)}
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if res.APIKey == nil || *res.APIKey == "" {
		return "", &APIError{StatusCode: status, Body: res.Message}
	}
	return *res.APIKey, nil
}
