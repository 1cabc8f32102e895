package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
)

// TestAPIKey is the staff API key used by handler tests.
const TestAPIKey = "test-staff-key"

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewStaffRequest creates a request carrying the TestAPIKey bearer token.
func NewStaffRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+TestAPIKey)
	return req
}

// NewTextRequest creates a request with a plain text body.
func NewTextRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContentType checks the Content-Type header prefix.
func (r *ResponseRecorder) AssertContentType(t interface{ Errorf(string, ...any) }, expected string) {
	if ct := r.Header().Get("Content-Type"); !strings.HasPrefix(ct, expected) {
		t.Errorf("content type: got %q, want prefix %q", ct, expected)
	}
}
