package cleverreach

import (
	"context"
	"encoding/json"

	"github.com/natserract/ffcleverreach/pkg/settings"
)

// API defines the CleverReach operations the integration relies on
type API interface {
	// AuthorizeURL is where the admin is sent to grant access
	AuthorizeURL() (string, error)

	// GenerateAccessToken exchanges an authorization code for tokens
	GenerateAccessToken(ctx context.Context, code string, s settings.Settings) (settings.Settings, error)

	// VerifyCredentials checks the client id and secret against the token endpoint
	VerifyCredentials(ctx context.Context) error

	// GetAccessToken returns a usable access token, refreshing it once if expired
	GetAccessToken(ctx context.Context) (string, error)

	// MakeRequest issues a form-encoded request and returns the decoded body
	MakeRequest(ctx context.Context, url string, body map[string]interface{}, method string, headers map[string]string) (json.RawMessage, error)

	// Groups lists the account's mailing lists
	Groups(ctx context.Context) ([]Group, error)

	// GroupAttributes lists the attributes of one mailing list
	GroupAttributes(ctx context.Context, listID string) ([]Attribute, error)

	// Subscribe creates a receiver in the subscriber's list
	Subscribe(ctx context.Context, subscriber Subscriber) (json.RawMessage, error)
}

var _ API = (*Client)(nil)
