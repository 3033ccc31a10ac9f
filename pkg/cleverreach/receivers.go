package cleverreach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Subscribe creates a receiver in the subscriber's list and returns the raw
// response. Any request failure, or an empty reply, is returned as an error.
func (c *Client) Subscribe(ctx context.Context, subscriber Subscriber) (json.RawMessage, error) {
	c.logger.Info("Subscribing receiver", zap.String("list_id", subscriber.ListID))

	headers, err := c.bearerHeaders(ctx)
	if err != nil {
		c.logger.Error("Failed to get access token", zap.Error(err))
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/groups/%s/receivers", c.config.RestBaseURI, url.PathEscape(subscriber.ListID))
	raw, err := c.MakeRequest(ctx, endpoint, subscriber.formBody(), http.MethodPost, headers)
	if err != nil {
		return nil, err
	}
	if isEmptyBody(raw) {
		c.logger.Error("Empty response while subscribing receiver", zap.String("list_id", subscriber.ListID))
		return nil, &Error{Code: "error", Message: "CleverReach returned an empty response"}
	}

	c.logger.Info("Successfully subscribed receiver", zap.String("list_id", subscriber.ListID))
	return raw, nil
}
