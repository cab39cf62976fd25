// Package relay is the typed client of a router node's relay API.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cyphera/remote-accounts/internal/bridge"
	httpclient "github.com/cyphera/remote-accounts/internal/client/http"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/types"
)

// ErrRejected reports a message the router refused as a whole.
var ErrRejected = errors.New("message rejected by router")

// Relayer forwards bridge messages to a node.
type Relayer interface {
	Deliver(ctx context.Context, msg bridge.Message) (*bridge.Delivery, error)
}

type Client struct {
	http *httpclient.HTTPClient
}

func New(baseURL string, opts ...httpclient.ClientOption) *Client {
	opts = append([]httpclient.ClientOption{httpclient.WithBaseURL(baseURL)}, opts...)
	return &Client{http: httpclient.NewHTTPClient(opts...)}
}

// Deliver posts msg to the node. A duplicate yields an error wrapping
// bridge.ErrAlreadyDelivered and a rejection one wrapping ErrRejected.
func (c *Client) Deliver(ctx context.Context, msg bridge.Message) (*bridge.Delivery, error) {
	var delivery bridge.Delivery
	err := c.http.DoJSON(ctx, http.MethodPost, "/api/v1/messages", msg, &delivery)
	switch httpclient.StatusCode(err) {
	case 0:
		if err != nil {
			return nil, err
		}
		return &delivery, nil
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", bridge.ErrAlreadyDelivered, msg.ID)
	case http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %v", bridge.ErrInvalidMessage, err)
	default:
		return nil, err
	}
}

// Results lists the audit records of one message.
func (c *Client) Results(ctx context.Context, messageID string) ([]results.Record, error) {
	var resp types.ResultListResponse
	if err := c.http.DoJSON(ctx, http.MethodGet, "/api/v1/results", nil, &resp, httpclient.WithQueryParam("message", messageID)); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
