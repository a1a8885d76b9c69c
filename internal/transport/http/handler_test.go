package httptransport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/metrics"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/services"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/session"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	server *httptest.Server
	clock  *testClock
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	mgr := session.NewManager(session.Options{
		Timeout: 10 * time.Minute,
		Now:     clock.Now,
	})
	t.Cleanup(mgr.Shutdown)

	reg := prometheus.NewRegistry()
	svc := services.NewAccountService(mgr, nil, metrics.New(reg, mgr.Count))
	srv := httptest.NewServer(NewRouter(NewHandler(svc, reg)))
	t.Cleanup(srv.Close)
	return testAPI{server: srv, clock: clock}
}

func (a testAPI) do(t *testing.T, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]interface{}
	if resp.StatusCode != http.StatusNoContent && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (a testAPI) openSession(t *testing.T) string {
	t.Helper()
	resp, body := a.do(t, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := body["id"].(string)
	require.True(t, ok)
	return id
}

func TestAPI_OpenSessionReturnsDefaults(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/sessions", "")

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/sessions/"+body["id"].(string), resp.Header.Get("Location"))
	assert.Equal(t, false, body["ready"])
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "2500", fields["limit"])
	assert.Equal(t, false, fields["isStudent"])
	errs := body["errors"].(map[string]interface{})
	assert.Len(t, errs, 3)
}

func TestAPI_HappyPath(t *testing.T) {
	api := newTestAPI(t)
	id := api.openSession(t)

	resp, body := api.do(t, http.MethodPatch, "/sessions/"+id,
		`{"name":"Maria","ageText":"25","sex":"female","limit":3000,"isStudent":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ready"])
	assert.Empty(t, body["errors"])

	resp, body = api.do(t, http.MethodPost, "/sessions/"+id+"/submit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, "Maria", summary["name"])
	assert.Equal(t, 25.0, summary["age"])
	assert.Equal(t, "female", summary["sex"])
	assert.Equal(t, "Account opened", body["title"])
	assert.Contains(t, body["text"], "Limit: R$ 3,000.00")

	resp, body = api.do(t, http.MethodGet, "/sessions/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["summary"])
}

func TestAPI_RejectedSubmission(t *testing.T) {
	api := newTestAPI(t)
	id := api.openSession(t)

	resp, _ := api.do(t, http.MethodPatch, "/sessions/"+id, `{"ageText":"15","limit":"400"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := api.do(t, http.MethodPost, "/sessions/"+id+"/submit", "")

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Form errors", body["title"])
	assert.Equal(t, []interface{}{
		"Name is required.",
		"Minimum age to open an account is 18.",
		"Select a sex.",
		"Limit must be between 500 and 10000.",
	}, body["messages"])
	assert.Equal(t, "Name is required.\nMinimum age to open an account is 18.\nSelect a sex.\nLimit must be between 500 and 10000.", body["text"])
}

func TestAPI_ErrorStatuses(t *testing.T) {
	api := newTestAPI(t)
	id := api.openSession(t)

	resp, body := api.do(t, http.MethodGet, "/sessions/nao-existe", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["error"])

	resp, _ = api.do(t, http.MethodPatch, "/sessions/"+id, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPatch, "/sessions/"+id, `{"sex":"robot"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPatch, "/sessions/"+id, `{"nickname":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	api.clock.Advance(11 * time.Minute)
	resp, body = api.do(t, http.MethodGet, "/sessions/"+id, "")
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "session_expired", body["error"])
}

func TestAPI_CloseSession(t *testing.T) {
	api := newTestAPI(t)
	id := api.openSession(t)

	resp, _ := api.do(t, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = api.do(t, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)
	api.openSession(t)

	resp, body := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, err := api.server.Client().Get(api.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw := new(strings.Builder)
	_, err = io.Copy(raw, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "abertura_conta_sessions_opened_total 1")
}
