// Package integration connects the form builder to CleverReach.
//
// It owns the global settings screen (credentials, OAuth callback,
// disconnect), describes the per-form feed editor, looks up remote lists and
// attributes for it, and turns a processed feed into a receiver on every
// form submission.
package integration

import (
	"context"
	"time"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/natserract/ffcleverreach/pkg/config"
	"github.com/natserract/ffcleverreach/pkg/logsink"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"go.uber.org/zap"
)

const (
	Title       = "Clever Reach"
	Key         = "cleverreach"
	SettingsKey = "cleverreach_feed"
	Priority    = 36

	Description = "CleverReach is web-based email marketing software for managing email campaigns and contacts. A cloud solution that helps companies around the world create and analyze email marketing campaigns."

	logoPath = "/public/img/integrations/clever_reach.png"
)

// ClientFactory builds a CleverReach client for the stored credentials.
type ClientFactory func(creds cleverreach.Credentials) cleverreach.API

// NewClientFactory returns a factory producing real clients that keep their
// tokens in store.
func NewClientFactory(cfg *config.Config, store cleverreach.TokenStore, logger *zap.Logger) ClientFactory {
	return func(creds cleverreach.Credentials) cleverreach.API {
		return cleverreach.NewClientWithLogger(cfg, creds, store, logger.Named("cleverreach"))
	}
}

// Integration is the CleverReach adapter registered with the form builder.
type Integration struct {
	config    *config.Config
	settings  *settings.Repository
	newClient ClientFactory
	sink      logsink.Sink
	logger    *zap.Logger
	now       func() time.Time
}

func New(cfg *config.Config, repo *settings.Repository, newClient ClientFactory, sink logsink.Sink, logger *zap.Logger) *Integration {
	return &Integration{
		config:    cfg,
		settings:  repo,
		newClient: newClient,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
	}
}

// Descriptor is the identity the integration registers under.
type Descriptor struct {
	Title       string `json:"title"`
	Key         string `json:"key"`
	OptionKey   string `json:"option_key"`
	SettingsKey string `json:"settings_key"`
	Priority    int    `json:"priority"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
	// NotifyAsync is always false: submissions are pushed inline.
	NotifyAsync bool `json:"notify_async"`
}

func (i *Integration) Descriptor() Descriptor {
	return Descriptor{
		Title:       Title,
		Key:         Key,
		OptionKey:   settings.OptionKey,
		SettingsKey: SettingsKey,
		Priority:    Priority,
		Logo:        i.logo(),
		Description: Description,
		NotifyAsync: false,
	}
}

func (i *Integration) logo() string {
	return i.config.AdminBaseURL + logoPath
}

// Card is the integration's entry in a form's integration list.
type Card struct {
	Title               string `json:"title"`
	Logo                string `json:"logo"`
	IsActive            bool   `json:"is_active"`
	ConfigureTitle      string `json:"configure_title"`
	GlobalConfigureURL  string `json:"global_configure_url"`
	ConfigureMessage    string `json:"configure_message"`
	ConfigureButtonText string `json:"configure_button_text"`
}

// PushIntegration adds the CleverReach card to a form's integration list.
func (i *Integration) PushIntegration(ctx context.Context, integrations map[string]Card, formID string) map[string]Card {
	if integrations == nil {
		integrations = make(map[string]Card)
	}
	integrations[Key] = Card{
		Title:               Title + " Integration",
		Logo:                i.logo(),
		IsActive:            i.IsConfigured(ctx),
		ConfigureTitle:      "Configuration required!",
		GlobalConfigureURL:  i.config.SettingsPageURL(),
		ConfigureMessage:    "Clever Reach is not configured yet! Please configure your Clever Reach api first",
		ConfigureButtonText: "Set Clever Reach API",
	}
	return integrations
}

// IsConfigured reports whether the OAuth handshake has completed.
func (i *Integration) IsConfigured(ctx context.Context) bool {
	s, err := i.settings.Load(ctx)
	if err != nil {
		i.logger.Warn("Failed to load settings", zap.Error(err))
		return false
	}
	return s.Status
}

func (i *Integration) remoteClient(ctx context.Context) (cleverreach.API, settings.Settings, error) {
	s, err := i.settings.Load(ctx)
	if err != nil {
		return nil, s, err
	}
	return i.newClient(cleverreach.CredentialsFrom(s)), s, nil
}
