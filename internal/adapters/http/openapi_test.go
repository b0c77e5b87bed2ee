package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newValidatedRouter(t *testing.T) http.Handler {
	t.Helper()
	validator, err := NewOpenAPIValidator()
	if err != nil {
		t.Fatalf("NewOpenAPIValidator() error = %v", err)
	}
	env := newRouterEnv()
	return env.router.WithValidator(validator).Handler()
}

func TestValidatorRejectsMissingCancelRequestID(t *testing.T) {
	handler := newValidatedRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/requests/cancel", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for body missing request_id, got %d", res.Code)
	}
}

func TestValidatorRejectsUnknownRespondField(t *testing.T) {
	handler := newValidatedRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/respond",
		strings.NewReader(`{"query":"hi","bogus":true}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", res.Code)
	}
}

func TestValidatorPassesWellFormedRequests(t *testing.T) {
	handler := newValidatedRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/respond",
		strings.NewReader(`{"query":"what is this about","request_id":"req-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userIDHeader, "u1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
}

func TestValidatorIgnoresUnroutedPaths(t *testing.T) {
	handler := newValidatedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	// No metrics registry wired in this router, so the mux 404s; the point is
	// the validator let the request through instead of rejecting it.
	if res.Code == http.StatusBadRequest {
		t.Fatalf("validator rejected unrouted path: %d", res.Code)
	}
}
