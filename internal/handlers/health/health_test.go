package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardsledger/internal/memstore"
)

func TestCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	pinger := NewMockPinger(ctrl)
	handler := New(pinger)

	tests := []struct {
		name         string
		pingErr      error
		expectedCode int
	}{
		{name: "Store reachable", expectedCode: http.StatusOK},
		{name: "Store down", pingErr: errors.New("connection refused"), expectedCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)

			rr := httptest.NewRecorder()
			handler.Check(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestCheckMemoryStore(t *testing.T) {
	handler := New(memstore.New())

	rr := httptest.NewRecorder()
	handler.Check(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body StatusDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}
