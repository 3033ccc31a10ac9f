package integration

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/natserract/ffcleverreach/pkg/config"
	"github.com/natserract/ffcleverreach/pkg/logsink"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeAPI records every call the adapter makes to CleverReach.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	authorizeURL string
	tokens       settings.Settings
	exchangeErr  error
	verifyErr    error
	groups       []cleverreach.Group
	groupsErr    error
	attributes   []cleverreach.Attribute
	attrsErr     error
	subscribeErr error
	subscribed   []cleverreach.Subscriber
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) AuthorizeURL() (string, error) {
	f.record("AuthorizeURL")
	return f.authorizeURL, nil
}

func (f *fakeAPI) GenerateAccessToken(ctx context.Context, code string, s settings.Settings) (settings.Settings, error) {
	f.record("GenerateAccessToken:" + code)
	if f.exchangeErr != nil {
		return s, f.exchangeErr
	}
	s.AccessToken = f.tokens.AccessToken
	s.RefreshToken = f.tokens.RefreshToken
	s.ExpireAt = f.tokens.ExpireAt
	return s, nil
}

func (f *fakeAPI) VerifyCredentials(ctx context.Context) error {
	f.record("VerifyCredentials")
	return f.verifyErr
}

func (f *fakeAPI) GetAccessToken(ctx context.Context) (string, error) {
	f.record("GetAccessToken")
	return f.tokens.AccessToken, nil
}

func (f *fakeAPI) MakeRequest(ctx context.Context, url string, body map[string]interface{}, method string, headers map[string]string) (json.RawMessage, error) {
	f.record("MakeRequest")
	return nil, nil
}

func (f *fakeAPI) Groups(ctx context.Context) ([]cleverreach.Group, error) {
	f.record("Groups")
	return f.groups, f.groupsErr
}

func (f *fakeAPI) GroupAttributes(ctx context.Context, listID string) ([]cleverreach.Attribute, error) {
	f.record("GroupAttributes:" + listID)
	return f.attributes, f.attrsErr
}

func (f *fakeAPI) Subscribe(ctx context.Context, subscriber cleverreach.Subscriber) (json.RawMessage, error) {
	f.record("Subscribe")
	f.mu.Lock()
	f.subscribed = append(f.subscribed, subscriber)
	f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	return json.RawMessage(`{"id":1}`), nil
}

// memorySink collects log sink events.
type memorySink struct {
	records []logsink.Record
	results []logsink.ActionResult
}

func (m *memorySink) LogData(ctx context.Context, record logsink.Record) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memorySink) ActionResult(ctx context.Context, result logsink.ActionResult) error {
	m.results = append(m.results, result)
	return nil
}

type harness struct {
	integration *Integration
	repo        *settings.Repository
	api         *fakeAPI
	sink        *memorySink
	creds       []cleverreach.Credentials
}

func testConfig() *config.Config {
	return &config.Config{
		AuthBaseURI:  config.DefaultAuthBaseURI,
		RestBaseURI:  config.DefaultRestBaseURI,
		AdminBaseURL: "https://example.test/wp-admin",
		HTTPTimeout:  5 * time.Second,
		HTTPMaxTries: 1,
	}
}

func newHarness(t *testing.T, stored settings.Settings) *harness {
	t.Helper()
	h := &harness{
		repo: settings.NewRepository(settings.NewMemoryStore(), zap.NewNop()),
		api:  &fakeAPI{authorizeURL: "https://rest.cleverreach.com/oauth/authorize.php?client_id=client-1"},
		sink: &memorySink{},
	}
	require.NoError(t, h.repo.Save(context.Background(), stored))

	factory := func(creds cleverreach.Credentials) cleverreach.API {
		h.creds = append(h.creds, creds)
		return h.api
	}
	h.integration = New(testConfig(), h.repo, factory, h.sink, zap.NewNop())
	h.integration.now = func() time.Time { return testNow }
	return h
}

func connectedSettings() settings.Settings {
	return settings.Settings{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Status:       true,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		CreatedAt:    testNow.Unix(),
		ExpiresIn:    3600,
		ExpireAt:     testNow.Unix() + 3600,
	}
}

func TestDescriptor(t *testing.T) {
	h := newHarness(t, settings.Defaults())

	d := h.integration.Descriptor()
	assert.Equal(t, "Clever Reach", d.Title)
	assert.Equal(t, "cleverreach", d.Key)
	assert.Equal(t, "_fluentform_cleverreach_settings", d.OptionKey)
	assert.Equal(t, "cleverreach_feed", d.SettingsKey)
	assert.Equal(t, 36, d.Priority)
	assert.False(t, d.NotifyAsync)
	assert.Equal(t, "https://example.test/wp-admin/public/img/integrations/clever_reach.png", d.Logo)
}

func TestPushIntegration(t *testing.T) {
	h := newHarness(t, settings.Defaults())
	ctx := context.Background()

	cards := h.integration.PushIntegration(ctx, map[string]Card{"other": {Title: "Other"}}, "3")
	require.Contains(t, cards, "other")
	card := cards[Key]
	assert.Equal(t, "Clever Reach Integration", card.Title)
	assert.False(t, card.IsActive)
	assert.Equal(t, "https://example.test/wp-admin/admin.php?page=fluent_forms_settings#general-cleverreach-settings", card.GlobalConfigureURL)

	require.NoError(t, h.repo.Save(ctx, connectedSettings()))
	cards = h.integration.PushIntegration(ctx, nil, "3")
	assert.True(t, cards[Key].IsActive)
	assert.Empty(t, h.api.Calls())
}
