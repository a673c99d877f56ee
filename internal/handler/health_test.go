package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPinger is a mock implementation of the Pinger interface
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{
			name:           "database up",
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]interface{}{"status": "ok", "database": "up"},
		},
		{
			name:           "database down",
			pingErr:        assert.AnError,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   map[string]interface{}{"status": "unavailable", "database": "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := new(MockPinger)
			pinger.On("Ping", mock.Anything).Return(tt.pingErr)

			c, w := newTestContext(http.MethodGet, "/health", nil)
			NewHealthHandler(pinger).Health(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, decodeObject(t, w))
		})
	}
}
