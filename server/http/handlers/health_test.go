package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recSvc "movierec-service/internal/recommend/service"
)

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		st     recSvc.Status
		code   int
		status string
	}{
		{"ready", recSvc.Status{Ready: true, Entries: 3}, http.StatusOK, "ok"},
		{"building", recSvc.Status{Building: true}, http.StatusServiceUnavailable, "loading"},
		{"failed", recSvc.Status{LastError: "empty catalog"}, http.StatusServiceUnavailable, "failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Health(func() recSvc.Status { return tc.st })(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body["status"])
			assert.Equal(t, tc.st.Ready, body["ready"])
		})
	}
}
