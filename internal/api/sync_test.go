//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/domain"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/gateway"
	"github.com/go-chi/chi/v5"
)

type fakeBackend struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string]string)}
}

func (f *fakeBackend) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeBackend) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeBackend) Ping(_ context.Context) error { return f.getErr }

type fakePublisher struct {
	mu        sync.Mutex
	published []domain.StudentProfile
}

func (f *fakePublisher) Publish(p domain.StudentProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, p)
}

func newRouter(backend gateway.Backend, pub Publisher) http.Handler {
	r := chi.NewRouter()
	NewSyncHandler(gateway.New(backend, nil), pub, nil).RegisterRoutes(r)
	return r
}

func doRequest(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/sync", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var got map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return got
}

func TestSyncGet_Unconfigured(t *testing.T) {
	rr := doRequest(newRouter(nil, nil), http.MethodGet, "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}
	got := decodeError(t, rr)
	if got["error"] != CodeDatabaseNotConfigured {
		t.Errorf("Expected %s, got %v", CodeDatabaseNotConfigured, got)
	}
	if got["message"] == "" {
		t.Error("Expected a message explaining the missing configuration")
	}
}

func TestSyncGet_EmptyRecord(t *testing.T) {
	rr := doRequest(newRouter(newFakeBackend(), nil), http.MethodGet, "")

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("Expected [], got %s", body)
	}
}

func TestSyncGet_ReadFailureIsEmptyList(t *testing.T) {
	b := newFakeBackend()
	b.getErr = errors.New("network down")

	rr := doRequest(newRouter(b, nil), http.MethodGet, "")

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("Expected [], got %s", body)
	}
}

func TestSyncPost_Unconfigured(t *testing.T) {
	rr := doRequest(newRouter(nil, nil), http.MethodPost, `{"profile":{"id":"Alice #123","name":"Alice","scores":[]}}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got["error"] != CodeDBDisabled {
		t.Errorf("Expected %s, got %v", CodeDBDisabled, got)
	}
}

func TestSyncPost_UpsertAndFetch(t *testing.T) {
	pub := &fakePublisher{}
	h := newRouter(newFakeBackend(), pub)

	rr := doRequest(h, http.MethodPost, `{"profile":{"id":"Alice #123","name":"Alice"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var ok map[string]bool
	if err := json.NewDecoder(rr.Body).Decode(&ok); err != nil || !ok["success"] {
		t.Fatalf("Expected success=true, got %v (err %v)", ok, err)
	}

	rr = doRequest(h, http.MethodPost, `{"profile":{"id":"Alice #123","name":"Alice","scores":[{"topic":"Actes administratifs","score":7,"total":10}]}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	rr = doRequest(h, http.MethodGet, "")
	var profiles []domain.StudentProfile
	if err := json.NewDecoder(rr.Body).Decode(&profiles); err != nil {
		t.Fatalf("Failed to decode profiles: %v", err)
	}
	if len(profiles) != 1 || len(profiles[0].Scores) != 1 {
		t.Fatalf("Expected one profile with one score, got %+v", profiles)
	}
	if len(pub.published) != 2 {
		t.Errorf("Expected 2 published updates, got %d", len(pub.published))
	}
}

func TestSyncPost_MalformedBody(t *testing.T) {
	for _, body := range []string{"not json", "{}"} {
		rr := doRequest(newRouter(newFakeBackend(), nil), http.MethodPost, body)
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("body %q: expected status 500, got %d", body, rr.Code)
		}
		if got := decodeError(t, rr); got["error"] != CodeSyncError {
			t.Errorf("body %q: expected %s, got %v", body, CodeSyncError, got)
		}
	}
}

func TestSyncPost_BackendFailure(t *testing.T) {
	b := newFakeBackend()
	b.setErr = errors.New("write refused")
	pub := &fakePublisher{}

	rr := doRequest(newRouter(b, pub), http.MethodPost, `{"profile":{"id":"x","name":"x"}}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got["error"] != CodeSyncError {
		t.Errorf("Expected %s, got %v", CodeSyncError, got)
	}
	if len(pub.published) != 0 {
		t.Error("Failed upserts must not be published")
	}
}

func TestSync_OtherMethods(t *testing.T) {
	h := newRouter(newFakeBackend(), nil)
	for _, m := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		if rr := doRequest(h, m, ""); rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", m, rr.Code)
		}
	}
}

func TestGetConfig(t *testing.T) {
	for _, tt := range []struct {
		name    string
		backend gateway.Backend
		want    bool
	}{
		{"configured", newFakeBackend(), true},
		{"offline", nil, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
			rr := httptest.NewRecorder()
			newRouter(tt.backend, nil).ServeHTTP(rr, req)

			var got map[string]bool
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if got["sync_enabled"] != tt.want {
				t.Errorf("Expected sync_enabled=%v, got %v", tt.want, got["sync_enabled"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	down := newFakeBackend()
	down.getErr = errors.New("unreachable")

	for _, tt := range []struct {
		name    string
		backend Pinger
		code    int
	}{
		{"not configured", nil, http.StatusOK},
		{"reachable", newFakeBackend(), http.StatusOK},
		{"unreachable", down, http.StatusServiceUnavailable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHealthHandler(tt.backend, 0).RegisterHealth(r)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
			if rr.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rr.Code)
			}
		})
	}
}

func TestSyncPost_ScoresPassThroughUnchanged(t *testing.T) {
	backend := newFakeBackend()
	backend.data[gateway.ProfilesKey] = `[{"id":"Bob #456","name":"Bob","scores":[{"topic":"T","score":7.5,"total":10,"details":["a"]}]}]`
	h := newRouter(backend, nil)

	rr := doRequest(h, http.MethodPost, `{"profile":{"id":"Alice #123","name":"Alice","scores":[{"topic":"QCM","score":4.5,"total":5,"time":31}]}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(h, http.MethodGet, "")
	body := rr.Body.String()
	for _, want := range []string{`"score":7.5`, `"details":["a"]`, `"score":4.5`, `"time":31`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %s in response, got %s", want, body)
		}
	}
}
