package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ByLCY/flapboard/board"
)

const (
	RWBaseURL   = "https://rw.vestaboard.com/"
	rwKeyHeader = "X-Vestaboard-Read-Write-Key"
)

// RWClient talks to the cloud read/write API of a single board.
type RWClient struct {
	base
}

var (
	_ Writer = (*RWClient)(nil)
	_ Reader = (*RWClient)(nil)
)

// NewRWClient creates a client for the board the read/write key belongs to.
func NewRWClient(key string, opts ...Option) (*RWClient, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: read/write key (set RW_API_KEY)", ErrMissingCredential)
	}
	headers := http.Header{}
	headers.Set(rwKeyHeader, key)
	return &RWClient{base: newBase(RWBaseURL, headers, opts)}, nil
}

// ReadMessage is the message currently shown on the board.
type ReadMessage struct {
	ID string
	// Layout is the textual form of Board as sent by the API.
	Layout string
	Board  board.Grid
}

type rwReadResponse struct {
	CurrentMessage struct {
		Layout string `json:"layout"`
		ID     string `json:"id"`
	} `json:"currentMessage"`
}

type rwWriteResponse struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Created int64  `json:"created"`
}

// ReadMessage fetches the current message together with its id.
func (c *RWClient) ReadMessage(ctx context.Context) (ReadMessage, error) {
	var res rwReadResponse
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/", nil, &res); err != nil {
		return ReadMessage{}, err
	}
	g, err := board.Parse(res.CurrentMessage.Layout, c.rows, c.cols)
	if err != nil {
		return ReadMessage{}, fmt.Errorf("failed to parse message layout: %w", err)
	}
	return ReadMessage{ID: res.CurrentMessage.ID, Layout: res.CurrentMessage.Layout, Board: g}, nil
}

func (c *RWClient) Read(ctx context.Context) (board.Grid, error) {
	msg, err := c.ReadMessage(ctx)
	if err != nil {
		return board.Grid{}, err
	}
	return msg.Board, nil
}

func (c *RWClient) Write(ctx context.Context, grid board.Grid) (WriteResult, error) {
	var res rwWriteResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/", grid, &res); err != nil {
		return WriteResult{}, err
	}
	out := WriteResult{ID: res.ID, Status: res.Status}
	if res.Created != 0 {
		out.Created = time.UnixMilli(res.Created)
	}
	return out, nil
}
