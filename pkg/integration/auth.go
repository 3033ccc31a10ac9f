package integration

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"go.uber.org/zap"
)

// GlobalSettingsInput is what the admin submits on the settings screen.
type GlobalSettingsInput struct {
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
}

// SaveResult is the success reply of SaveGlobalSettings.
type SaveResult struct {
	Message     string `json:"message"`
	Status      *bool  `json:"status,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// ResponseError is a failure meant to be shown to the admin as is.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// HandleAuth drives the OAuth callback. hasCode reports whether the callback
// carried a code parameter at all. Without one it returns the authorization
// URL to send the browser to. With one, even an empty one, it exchanges it
// for tokens, marks the integration connected on success, and returns the
// settings page URL whether or not the exchange worked.
func (i *Integration) HandleAuth(ctx context.Context, code string, hasCode bool) (string, error) {
	client, s, err := i.remoteClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}

	code = sanitizeTextField(code)
	if !hasCode {
		authorizeURL, err := client.AuthorizeURL()
		if err != nil {
			return "", fmt.Errorf("failed to build authorize URL: %w", err)
		}
		i.logger.Info("Redirecting to CleverReach authorization")
		return authorizeURL, nil
	}

	updated, err := client.GenerateAccessToken(ctx, code, s)
	if err != nil {
		i.logger.Warn("Authorization code exchange failed", zap.String("message", cleverreach.Message(err)))
		return i.config.SettingsPageURL(), nil
	}

	updated.Status = true
	if err := i.settings.Save(ctx, updated); err != nil {
		return "", fmt.Errorf("failed to save tokens: %w", err)
	}

	i.logger.Info("CleverReach connected")
	return i.config.SettingsPageURL(), nil
}

// GetGlobalSettings returns the stored settings merged over defaults.
func (i *Integration) GetGlobalSettings(ctx context.Context) (settings.Settings, error) {
	return i.settings.Load(ctx)
}

// SaveGlobalSettings stores new credentials and verifies them remotely.
// Missing credentials clear the settings without any remote call. Rejected
// credentials are cleared too and reported as a 400 ResponseError.
func (i *Integration) SaveGlobalSettings(ctx context.Context, input GlobalSettingsInput) (*SaveResult, error) {
	clientID := sanitizeTextField(input.ClientID)
	clientSecret := sanitizeTextField(input.ClientSecret)

	if clientID == "" || clientSecret == "" {
		if err := i.settings.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear settings: %w", err)
		}
		status := false
		return &SaveResult{
			Message: "Your settings has been updated",
			Status:  &status,
		}, nil
	}

	s, err := i.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	s.ClientID = clientID
	s.ClientSecret = clientSecret
	s.Status = false
	if err := i.settings.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	client := i.newClient(cleverreach.CredentialsFrom(s))
	if err := client.VerifyCredentials(ctx); err != nil {
		i.logger.Warn("CleverReach credentials rejected", zap.String("message", cleverreach.Message(err)))
		if clearErr := i.settings.Clear(ctx); clearErr != nil {
			return nil, fmt.Errorf("failed to clear settings: %w", clearErr)
		}
		return nil, &ResponseError{
			StatusCode: http.StatusBadRequest,
			Message:    cleverreach.Message(err),
		}
	}

	return &SaveResult{
		Message:     "You are redirect to authenticate",
		RedirectURL: i.config.AdminBaseURL + "/?ff_cleverreach_auth",
	}, nil
}

// Disconnect discards the stored credentials and tokens.
func (i *Integration) Disconnect(ctx context.Context) error {
	if err := i.settings.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	i.logger.Info("CleverReach disconnected")
	return nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	octetPattern      = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespacePattern = regexp.MustCompile(`[\r\n\t ]+`)
)

// sanitizeTextField strips markup, percent-encoded octets and line breaks
// from a single-line admin input.
func sanitizeTextField(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = octetPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
