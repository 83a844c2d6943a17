package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoUser(t *testing.T, wantID int, wantOK bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		assert.Equal(t, wantOK, ok)
		assert.Equal(t, wantID, userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	jwtService := NewJWTService(testSecret)
	m := NewMiddleware(jwtService)
	valid, err := jwtService.GenerateJWT(42, time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		required     bool
		expectedCode int
		expectedID   int
	}{
		{name: "Required with valid token", header: "Bearer " + valid, required: true, expectedCode: http.StatusOK, expectedID: 42},
		{name: "Required without header", required: true, expectedCode: http.StatusUnauthorized},
		{name: "Required with bad token", header: "Bearer nope", required: true, expectedCode: http.StatusUnauthorized},
		{name: "Required with wrong scheme", header: "Basic " + valid, required: true, expectedCode: http.StatusUnauthorized},
		{name: "Optional with valid token", header: "Bearer " + valid, expectedCode: http.StatusOK, expectedID: 42},
		{name: "Optional anonymous", expectedCode: http.StatusOK},
		{name: "Optional with bad token", header: "Bearer nope", expectedCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/rewards", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			next := echoUser(t, tt.expectedID, tt.expectedID != 0)
			if tt.required {
				m.RequireAuth(next).ServeHTTP(rec, req)
			} else {
				m.OptionalAuth(next).ServeHTTP(rec, req)
			}
			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}
