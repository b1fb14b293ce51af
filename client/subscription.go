package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ByLCY/flapboard/board"
)

const (
	SubscriptionBaseURL = "https://subscriptions.vestaboard.com"

	subscriptionKeyHeader    = "X-Vestaboard-Api-Key"
	subscriptionSecretHeader = "X-Vestaboard-Api-Secret"
)

// SubscriptionClient posts to the boards an installable is subscribed to.
type SubscriptionClient struct {
	base
}

// Subscription is a board the installable has access to.
type Subscription struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
}

type subscriptionMessage struct {
	Characters board.Grid `json:"characters"`
}

type subscriptionWriteResponse struct {
	ID string `json:"id"`
	// milliseconds since the epoch, sent as a string
	Created string `json:"created"`
	Muted   bool   `json:"muted"`
}

// NewSubscriptionClient creates a client for an installable.
func NewSubscriptionClient(apiKey, apiSecret string, opts ...Option) (*SubscriptionClient, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("%w: subscription api key and secret (set SUBSCRIPTION_API_KEY, SUBSCRIPTION_API_SECRET)", ErrMissingCredential)
	}
	headers := http.Header{}
	headers.Set(subscriptionKeyHeader, apiKey)
	headers.Set(subscriptionSecretHeader, apiSecret)
	return &SubscriptionClient{base: newBase(SubscriptionBaseURL, headers, opts)}, nil
}

// Subscriptions lists the boards the installable can post to.
func (c *SubscriptionClient) Subscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/subscriptions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// WriteTo displays grid on the board behind subscription id.
func (c *SubscriptionClient) WriteTo(ctx context.Context, id string, grid board.Grid) (WriteResult, error) {
	if id == "" {
		return WriteResult{}, fmt.Errorf("%w: subscription id (set SUBSCRIPTION_ID)", ErrMissingCredential)
	}
	var res subscriptionWriteResponse
	endpoint := c.baseURL + "/subscriptions/" + url.PathEscape(id) + "/message"
	if err := c.do(ctx, http.MethodPost, endpoint, subscriptionMessage{Characters: grid}, &res); err != nil {
		return WriteResult{}, err
	}
	out := WriteResult{ID: res.ID, Muted: res.Muted}
	if ms, err := strconv.ParseInt(res.Created, 10, 64); err == nil {
		out.Created = time.UnixMilli(ms)
	}
	return out, nil
}

// Bind returns a Writer that always posts to subscription id.
func (c *SubscriptionClient) Bind(id string) Writer {
	return boundSubscription{client: c, id: id}
}

type boundSubscription struct {
	client *SubscriptionClient
	id     string
}

func (b boundSubscription) Write(ctx context.Context, grid board.Grid) (WriteResult, error) {
	return b.client.WriteTo(ctx, b.id, grid)
}
