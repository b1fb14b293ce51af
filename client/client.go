// Package client sends boards to, and reads them back from, a split-flap
// display through its cloud read/write API, its local network API or the
// subscription API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ByLCY/flapboard/board"
)

const (
	userAgent    = "flapboard"
	maxBodyBytes = 1 << 20
)

var (
	ErrMissingCredential = errors.New("client: missing credential")
	ErrInvalidIP         = errors.New("client: invalid device ip address")
)

// APIError is returned when the API answers with a non-2xx status or
// reports a failure in its body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// Writer displays a board.
type Writer interface {
	Write(ctx context.Context, grid board.Grid) (WriteResult, error)
}

// Reader returns the board currently displayed.
type Reader interface {
	Read(ctx context.Context) (board.Grid, error)
}

// WriteResult is what the API reports after accepting a message. Fields the
// API does not return stay zero.
type WriteResult struct {
	ID      string    `json:"id,omitempty"`
	Status  string    `json:"status,omitempty"`
	Created time.Time `json:"created,omitzero"`
	Muted   bool      `json:"muted,omitempty"`
}

// Option customizes a client.
type Option func(*base)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) { b.http = c }
}

// WithBaseURL points the client at another endpoint, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(b *base) { b.baseURL = strings.TrimRight(u, "/") }
}

// WithBoardSize sets the board size expected in responses. The default is
// the flagship 6×22 board.
func WithBoardSize(rows, cols int) Option {
	return func(b *base) { b.rows, b.cols = rows, cols }
}

// WithLogger receives one debug record per request.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.log = l }
}

type base struct {
	http    *http.Client
	baseURL string
	headers http.Header
	rows    int
	cols    int
	log     *slog.Logger
}

func newBase(baseURL string, headers http.Header, opts []Option) base {
	b := base{
		http:    http.DefaultClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
		rows:    board.FlagshipRows,
		cols:    board.FlagshipCols,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// send performs one request and returns the status code and body. body is
// encoded as JSON when not nil.
func (b *base) send(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	for name, values := range b.headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	res, err := b.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	b.log.Debug("api request",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", res.StatusCode))
	return res.StatusCode, data, nil
}

// do is send plus status check and JSON decoding into out (when not nil).
func (b *base) do(ctx context.Context, method, url string, body, out any) error {
	status, data, err := b.send(ctx, method, url, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &APIError{StatusCode: status, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// decodeGrid decodes a JSON grid and checks it against the expected size.
func (b *base) decodeGrid(data []byte) (board.Grid, error) {
	var g board.Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return board.Grid{}, fmt.Errorf("failed to parse board: %w", err)
	}
	if err := g.CheckSize(b.rows, b.cols); err != nil {
		return board.Grid{}, fmt.Errorf("failed to parse board: %w", err)
	}
	return g, nil
}
