package cleverreach

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/natserract/ffcleverreach/pkg/config"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Unix(1_700_000_000, 0)

// recordedRequest captures what the fake CleverReach server received
type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Form   url.Values
}

// fakeCleverReach is an httptest server answering with canned bodies per path
type fakeCleverReach struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	replies  map[string]fakeReply
}

type fakeReply struct {
	status int
	body   string
}

func newFakeCleverReach(t *testing.T) *fakeCleverReach {
	f := &fakeCleverReach{t: t, replies: make(map[string]fakeReply)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCleverReach) reply(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[path] = fakeReply{status: status, body: body}
}

func (f *fakeCleverReach) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Form:   form,
	})
	rep, ok := f.replies[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	w.Write([]byte(rep.body))
}

func (f *fakeCleverReach) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		AuthBaseURI:  baseURL + "/oauth",
		RestBaseURI:  baseURL,
		AdminBaseURL: "https://example.test/wp-admin",
		HTTPTimeout:  5 * time.Second,
		HTTPMaxTries: 1,
	}
}

func newTestClient(t *testing.T, f *fakeCleverReach, stored settings.Settings) (*Client, *settings.Repository) {
	t.Helper()
	repo := settings.NewRepository(settings.NewMemoryStore(), zap.NewNop())
	require.NoError(t, repo.Save(context.Background(), stored))

	c := NewClientWithLogger(testConfig(f.server.URL), CredentialsFrom(stored), repo, zap.NewNop())
	c.now = func() time.Time { return testNow }
	return c, repo
}

func validSettings() settings.Settings {
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

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
