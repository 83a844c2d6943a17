package purchases

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/dto"
	"github.com/GlebRadaev/rewardsledger/pkg/auth"
)

func NewMock(t *testing.T) (*PurchaseHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func TestAddPurchase(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "New purchase accepted",
			body: "12345678903",
			prepareMock: func() {
				service.EXPECT().RegisterPurchase(gomock.Any(), 1, "12345678903").
					Return(&domain.Purchase{OrderNumber: "12345678903", Status: domain.PurchaseNew, UploadedAt: time.Now()}, nil)
			},
			expectedCode: http.StatusAccepted,
		},
		{
			name: "Already registered by this account",
			body: "12345678903",
			prepareMock: func() {
				service.EXPECT().RegisterPurchase(gomock.Any(), 1, "12345678903").Return(nil, domain.ErrPurchaseAlreadyExistsByUser)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Registered by another account",
			body: "12345678903",
			prepareMock: func() {
				service.EXPECT().RegisterPurchase(gomock.Any(), 1, "12345678903").Return(nil, domain.ErrPurchaseAlreadyExists)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Empty body",
			body:         "",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Bad check digit",
			body:         "12345678900",
			prepareMock:  func() {},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name: "Store failure",
			body: "12345678903",
			prepareMock: func() {
				service.EXPECT().RegisterPurchase(gomock.Any(), 1, "12345678903").Return(nil, domain.ErrBackingStore)
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest(http.MethodPost, "/rewards/purchases", bytes.NewReader([]byte(tt.body)))
			req = req.WithContext(auth.WithUserID(req.Context(), 1))
			rr := httptest.NewRecorder()

			handler.AddPurchase(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestGetPurchases(t *testing.T) {
	handler, service := NewMock(t)
	uploaded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedBody []dto.GetPurchasesResponseDTO
	}{
		{
			name: "Purchases listed",
			prepareMock: func() {
				service.EXPECT().GetPurchases(gomock.Any(), 1).Return([]domain.Purchase{
					{OrderNumber: "12345678903", Status: domain.PurchaseProcessed, Points: 500, UploadedAt: uploaded},
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: []dto.GetPurchasesResponseDTO{
				{Number: "12345678903", Status: "PROCESSED", Points: 500, UploadedAt: "2024-05-01T12:00:00Z"},
			},
		},
		{
			name: "No purchases",
			prepareMock: func() {
				service.EXPECT().GetPurchases(gomock.Any(), 1).Return(nil, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Store failure",
			prepareMock: func() {
				service.EXPECT().GetPurchases(gomock.Any(), 1).Return(nil, domain.ErrBackingStore)
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest(http.MethodGet, "/rewards/purchases", nil)
			req = req.WithContext(auth.WithUserID(req.Context(), 1))
			rr := httptest.NewRecorder()

			handler.GetPurchases(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedBody != nil {
				var body []dto.GetPurchasesResponseDTO
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}
