// Package settings persists the integration's global settings record in a
// key-value option store.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// OptionKey names the record holding the global CleverReach settings.
const OptionKey = "_fluentform_cleverreach_settings"

// ErrNotFound is returned by a Store when the key has never been written.
var ErrNotFound = errors.New("settings: option not found")

// Store is the host's option storage: get and update by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, value []byte) error
}

// Settings is the flat global settings record.
type Settings struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Status       bool   `json:"status"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpireAt is the absolute expiry in unix seconds, zero when unknown.
	ExpireAt int64 `json:"expire_at"`
	// CreatedAt and ExpiresIn record when the current access token was issued
	// and for how long, in unix seconds.
	CreatedAt int64 `json:"created_at"`
	ExpiresIn int64 `json:"expires_in"`
}

// Defaults returns a record with every key present and empty.
func Defaults() Settings {
	return Settings{}
}

// Cleared is what gets written when credentials are missing, rejected or
// discarded by the admin.
func Cleared() Settings {
	return Settings{
		ClientID:     "",
		ClientSecret: "",
		Status:       false,
		AccessToken:  "",
	}
}

// HasToken reports whether an access token has been stored.
func (s Settings) HasToken() bool {
	return s.AccessToken != ""
}

// TokenExpired reports whether the stored access token is within margin of
// expiring at now. Records without issue bookkeeping fall back to ExpireAt.
func (s Settings) TokenExpired(now time.Time, margin time.Duration) bool {
	m := int64(margin / time.Second)
	if s.CreatedAt > 0 {
		return s.CreatedAt+s.ExpiresIn-m < now.Unix()
	}
	return s.ExpireAt-m < now.Unix()
}

// Repository reads and writes the settings record, merging over defaults on
// every read.
type Repository struct {
	store  Store
	key    string
	logger *zap.Logger
}

// NewRepository creates a repository for the global settings option
func NewRepository(store Store, logger *zap.Logger) *Repository {
	return &Repository{
		store:  store,
		key:    OptionKey,
		logger: logger,
	}
}

// Load returns the stored settings, or defaults when nothing is stored yet.
func (r *Repository) Load(ctx context.Context) (Settings, error) {
	s := Defaults()

	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		r.logger.Error("Failed to read settings", zap.String("key", r.key), zap.Error(err))
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		r.logger.Error("Failed to decode settings", zap.String("key", r.key), zap.Error(err))
		return Defaults(), fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// Save overwrites the settings record.
func (r *Repository) Save(ctx context.Context, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := r.store.Update(ctx, r.key, raw); err != nil {
		r.logger.Error("Failed to write settings", zap.String("key", r.key), zap.Error(err))
		return fmt.Errorf("failed to write settings: %w", err)
	}
	r.logger.Debug("Settings saved", zap.String("key", r.key), zap.Bool("status", s.Status))
	return nil
}

// Clear overwrites the record with empty credentials.
func (r *Repository) Clear(ctx context.Context) error {
	return r.Save(ctx, Cleared())
}
