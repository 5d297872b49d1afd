// Package testutil provides request builders and assertions shared by the
// HTTP-level tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// StrongPassword satisfies the registration password rules.
const StrongPassword = "Reel$ecret42"

// AssertStatusCode checks if the response has the expected status code.
func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// AssertJSONError checks the status and the "error" message of a JSON error body.
func AssertJSONError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatusCode(t, rr, status)
	if got := ParseJSONResponse(t, rr.Body.Bytes())["error"]; got != message {
		t.Errorf("expected error %q, got %v", message, got)
	}
}

// AssertJSONContains checks if the JSON response contains expected key-value pairs.
func AssertJSONContains(t *testing.T, body []byte, key string, expected interface{}) {
	t.Helper()
	result := ParseJSONResponse(t, body)
	if result[key] != expected {
		t.Errorf("expected %s to be %v, got %v", key, expected, result[key])
	}
}

// NewTestRequest creates a JSON request. data may be nil, a string, or any
// value to marshal.
func NewTestRequest(t *testing.T, method, path string, data interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	switch v := data.(type) {
	case nil:
	case string:
		body = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal JSON: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthedRequest is NewTestRequest with a bearer token.
func NewAuthedRequest(t *testing.T, method, path, token string, data interface{}) *http.Request {
	t.Helper()
	req := NewTestRequest(t, method, path, data)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// ParseJSONResponse parses a JSON object body into a map.
func ParseJSONResponse(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to parse JSON response %q: %v", body, err)
	}
	return result
}

// RandomUsername returns a valid, unique username.
func RandomUsername() string {
	return "reeler_" + strings.ReplaceAll(uuid.New().String()[:8], "-", "")
}

// RandomEmail generates a random email for testing.
func RandomEmail() string {
	return uuid.New().String()[:8] + "@test.com"
}
