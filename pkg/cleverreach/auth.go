package cleverreach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httpclient "github.com/natserract/ffcleverreach/pkg/http"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"go.uber.org/zap"
)

func (c *Client) tokenURL() (string, error) {
	return httpclient.BuildURL(c.config.AuthBaseURI, "/token.php", nil)
}

// AuthorizeURL returns the authorization endpoint the admin is redirected to.
func (c *Client) AuthorizeURL() (string, error) {
	return httpclient.BuildURL(c.config.AuthBaseURI, "/authorize.php", map[string]string{
		"client_id":     c.credentials.ClientID,
		"grant":         "basic",
		"response_type": "code",
		"redirect_uri":  c.config.CallbackURL(),
	})
}

// GenerateAccessToken exchanges an authorization code for tokens and returns
// s with the new tokens and expiry applied. Transport failures are returned
// unchanged; a rejected exchange is an *Error tagged invalid_client, and a
// reply without an access token is a 423 *Error.
func (c *Client) GenerateAccessToken(ctx context.Context, code string, s settings.Settings) (settings.Settings, error) {
	endpoint, err := c.tokenURL()
	if err != nil {
		return s, fmt.Errorf("failed to build URL: %w", err)
	}
	c.logger.Info("Exchanging authorization code", zap.String("url", endpoint))

	headers := map[string]string{
		"Content-Type": httpclient.ContentTypeForm,
	}
	resp, err := c.httpClient.Post(ctx, endpoint, headers, map[string]string{
		"client_id":     c.credentials.ClientID,
		"client_secret": c.credentials.ClientSecret,
		"grant_type":    "authorization_code",
		"redirect_uri":  c.config.CallbackURL(),
		"code":          code,
	})
	if err != nil {
		c.logger.Error("Token exchange request failed", zap.Error(err), zap.String("url", endpoint))
		return s, err
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
		c.logger.Error("Failed to parse token response", zap.Error(err), zap.Int("status_code", resp.StatusCode))
		return s, requestFailed(fmt.Sprintf("failed to parse token response: %v", err), err)
	}

	if tokenResp.ErrorDescription != "" || tokenResp.Error != "" {
		c.logger.Error("Token exchange rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("error", tokenResp.Error),
			zap.String("error_description", tokenResp.ErrorDescription))
		message := tokenResp.ErrorDescription
		if message == "" {
			message = tokenResp.Error
		}
		return s, invalidClient(message)
	}

	if tokenResp.AccessToken == "" {
		c.logger.Error("Token exchange returned no access token", zap.Int("status_code", resp.StatusCode))
		return s, requestFailed(fmt.Sprintf("token endpoint answered %d without an access token", resp.StatusCode), nil)
	}

	now := c.now().Unix()
	s.AccessToken = tokenResp.AccessToken
	s.RefreshToken = tokenResp.RefreshToken
	s.ExpiresIn = int64(tokenResp.ExpiresIn)
	s.CreatedAt = now
	s.ExpireAt = now + int64(tokenResp.ExpiresIn)

	c.logger.Info("Successfully exchanged authorization code",
		zap.String("token_type", tokenResp.TokenType),
		zap.Int64("expires_in", s.ExpiresIn))

	return s, nil
}

// VerifyCredentials asks the token endpoint for a client-credentials token to
// confirm the client id and secret are accepted. Any non-2xx reply counts as
// a rejection.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	endpoint, err := c.tokenURL()
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	c.logger.Info("Verifying client credentials", zap.String("url", endpoint))

	headers := map[string]string{
		"Content-Type": httpclient.ContentTypeForm,
	}
	resp, err := c.httpClient.Post(ctx, endpoint, headers, map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.credentials.ClientID,
		"client_secret": c.credentials.ClientSecret,
	})
	if err != nil {
		c.logger.Error("Credential verification request failed", zap.Error(err))
		return requestFailed(err.Error(), err)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return invalidClient(unknownErrorMessage)
		}
		return nil
	}

	if tokenResp.Error != "" || tokenResp.ErrorDescription != "" {
		message := tokenResp.ErrorDescription
		if message == "" {
			message = tokenResp.Error
		}
		c.logger.Warn("Client credentials rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", message))
		return invalidClient(message)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("Client credentials rejected", zap.Int("status_code", resp.StatusCode))
		return invalidClient(unknownErrorMessage)
	}

	c.logger.Info("Client credentials verified")
	return nil
}

// GetAccessToken returns the stored access token. An expired token is
// refreshed exactly once and the refreshed record is persisted. ErrNoToken is
// returned when nothing has been stored; a failed refresh returns its error.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	s, err := c.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load tokens: %w", err)
	}
	if !s.HasToken() {
		return "", ErrNoToken
	}

	if !s.TokenExpired(c.now(), expiryMargin) {
		c.logger.Debug("Using stored access token")
		return s.AccessToken, nil
	}

	c.logger.Info("Access token expired, refreshing")
	refreshed, err := c.refreshToken(ctx, s)
	if err != nil {
		c.logger.Error("Failed to refresh access token", zap.Error(err))
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	now := c.now().Unix()
	s.AccessToken = refreshed.AccessToken
	s.ExpiresIn = int64(refreshed.ExpiresIn)
	s.CreatedAt = now
	s.ExpireAt = now + int64(refreshed.ExpiresIn)
	if refreshed.RefreshToken != "" {
		s.RefreshToken = refreshed.RefreshToken
	}

	if err := c.store.Save(ctx, s); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	c.logger.Info("Successfully refreshed access token", zap.Int64("expires_in", s.ExpiresIn))
	return s.AccessToken, nil
}

func (c *Client) refreshToken(ctx context.Context, s settings.Settings) (*TokenResponse, error) {
	endpoint, err := c.tokenURL()
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	raw, err := c.MakeRequest(ctx, endpoint, map[string]interface{}{
		"client_id":     c.credentials.ClientID,
		"client_secret": c.credentials.ClientSecret,
		"refresh_token": s.RefreshToken,
		"grant_type":    "refresh_token",
	}, http.MethodPost, nil)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(raw, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		return nil, requestFailed("refresh response carried no access token", err)
	}
	return &tokenResp, nil
}
