package cleverreach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

func (c *Client) bearerHeaders(ctx context.Context) (map[string]string, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}, nil
}

// Groups retrieves all mailing lists of the account
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	headers, err := c.bearerHeaders(ctx)
	if err != nil {
		c.logger.Error("Failed to get access token", zap.Error(err))
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/groups", c.config.RestBaseURI)
	raw, err := c.MakeRequest(ctx, endpoint, nil, http.MethodGet, headers)
	if err != nil {
		return nil, err
	}
	if isEmptyBody(raw) {
		return nil, nil
	}

	var groups []Group
	if err := json.Unmarshal(raw, &groups); err != nil {
		c.logger.Error("Failed to parse groups response", zap.Error(err))
		return nil, fmt.Errorf("failed to parse groups response: %w", err)
	}

	c.logger.Info("Successfully retrieved groups", zap.Int("items_count", len(groups)))
	return groups, nil
}

// GroupAttributes retrieves the receiver attributes defined on a mailing list
func (c *Client) GroupAttributes(ctx context.Context, listID string) ([]Attribute, error) {
	headers, err := c.bearerHeaders(ctx)
	if err != nil {
		c.logger.Error("Failed to get access token", zap.Error(err))
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/groups/%s/attributes/", c.config.RestBaseURI, url.PathEscape(listID))
	raw, err := c.MakeRequest(ctx, endpoint, nil, http.MethodGet, headers)
	if err != nil {
		return nil, err
	}
	if isEmptyBody(raw) {
		return nil, nil
	}

	var attributes []Attribute
	if err := json.Unmarshal(raw, &attributes); err != nil {
		c.logger.Error("Failed to parse attributes response", zap.Error(err), zap.String("list_id", listID))
		return nil, fmt.Errorf("failed to parse attributes response: %w", err)
	}

	c.logger.Info("Successfully retrieved group attributes",
		zap.String("list_id", listID),
		zap.Int("items_count", len(attributes)))
	return attributes, nil
}
