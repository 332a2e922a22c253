//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/httperr"

	"github.com/stretchr/testify/assert"
)

// AssertSuccessResponse checks the status and, when target is non-nil, decodes the body into it.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()

	if !assert.Equal(t, expectedStatus, w.Code, "response: %s", w.Body.String()) {
		return
	}
	if target != nil && expectedStatus >= 200 && expectedStatus < 300 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "decode response: %s", w.Body.String())
	}
}

// AssertErrorResponse checks the status and the {"error":{"message"}} envelope.
// An empty expectedMsg only checks the envelope decodes.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMsg string) httperr.Response {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "response: %s", w.Body.String())

	var resp httperr.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "decode error response: %s", w.Body.String())
	if expectedMsg != "" {
		assert.Contains(t, resp.Error.Message, expectedMsg)
	}
	return resp
}

func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()
	for k, v := range expected {
		assert.Equal(t, v, w.Header().Get(k), "header %s mismatch", k)
	}
}
