package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveCORS(origins []string, method, origin string) *httptest.ResponseRecorder {
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(method, "/api/sync", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORS_Wildcard(t *testing.T) {
	rr := serveCORS([]string{"*"}, http.MethodGet, "https://prof.example")

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://prof.example" {
		t.Errorf("Expected origin echoed, got %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("Wildcard match must not allow credentials")
	}
	if rr.Code != http.StatusTeapot {
		t.Errorf("Expected request to reach handler, got %d", rr.Code)
	}
}

func TestCORS_ExplicitOrigin(t *testing.T) {
	rr := serveCORS([]string{"https://prof.example"}, http.MethodGet, "https://prof.example")

	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("Expected credentials for explicit origin")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	rr := serveCORS([]string{"https://prof.example"}, http.MethodGet, "https://evil.example")

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS headers, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	rr := serveCORS([]string{"*"}, http.MethodOptions, "https://prof.example")

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rr.Code)
	}
}
