// Package cleverreach provides a client for the CleverReach REST API.
//
// CleverReach is a hosted email marketing platform. Contacts ("receivers")
// live in mailing lists ("groups"), and each group carries its own set of
// attributes. Access is granted through an OAuth2 authorization-code flow:
// the admin is redirected to CleverReach, comes back with a code, and the
// code is exchanged for an access token and a refresh token.
//
// This package builds the OAuth URLs, exchanges and refreshes tokens (stored
// through a TokenStore), issues authenticated requests, and creates receivers.
package cleverreach

import (
	"context"
	"time"

	"github.com/natserract/ffcleverreach/pkg/config"
	httpclient "github.com/natserract/ffcleverreach/pkg/http"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"go.uber.org/zap"
)

// expiryMargin is how long before expiry a token is already treated as expired.
const expiryMargin = 30 * time.Second

// TokenStore persists the settings record holding the OAuth tokens.
type TokenStore interface {
	Load(ctx context.Context) (settings.Settings, error)
	Save(ctx context.Context, s settings.Settings) error
}

// Credentials identify the OAuth app registered in the CleverReach account.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Client is the main client for interacting with the CleverReach API
type Client struct {
	config      *config.Config
	credentials Credentials
	httpClient  *httpclient.Client
	store       TokenStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewClient creates a new CleverReach client with default production logger
func NewClient(cfg *config.Config, creds Credentials, store TokenStore) *Client {
	logger, _ := zap.NewProduction()
	return NewClientWithLogger(cfg, creds, store, logger)
}

// NewClientWithLogger creates a new CleverReach client with a custom logger
func NewClientWithLogger(cfg *config.Config, creds Credentials, store TokenStore, logger *zap.Logger) *Client {
	return &Client{
		config:      cfg,
		credentials: creds,
		httpClient: httpclient.NewClientWithLogger(logger).
			WithTimeout(cfg.HTTPTimeout).
			WithMaxTries(cfg.HTTPMaxTries),
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CredentialsFrom extracts the OAuth app credentials from a settings record.
func CredentialsFrom(s settings.Settings) Credentials {
	return Credentials{ClientID: s.ClientID, ClientSecret: s.ClientSecret}
}
