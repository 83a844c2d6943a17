package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLog(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
	}{
		{name: "Generated request id"},
		{name: "Client request id", requestID: "abc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := AccessLog(&buf)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = w.Write([]byte("hi"))
			}))

			req := httptest.NewRequest(http.MethodGet, "/rewards", nil)
			if tt.requestID != "" {
				req.Header.Set(RequestIDHeader, tt.requestID)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			id := rr.Header().Get(RequestIDHeader)
			require.NotEmpty(t, id)
			if tt.requestID != "" {
				assert.Equal(t, tt.requestID, id)
			}

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "GET", entry["method"])
			assert.Equal(t, "/rewards", entry["path"])
			assert.Equal(t, float64(http.StatusTeapot), entry["status"])
			assert.Equal(t, float64(2), entry["size"])
			assert.Equal(t, id, entry["request_id"])
		})
	}
}
