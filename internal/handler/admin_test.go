package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"service-area-api/internal/models"
	"service-area-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAreaManager is a mock implementation of the AreaManager interface
type MockAreaManager struct {
	mock.Mock
}

func (m *MockAreaManager) List(ctx context.Context) ([]models.ServiceArea, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ServiceArea), args.Error(1)
}

func (m *MockAreaManager) Get(ctx context.Context, id int64) (*models.ServiceArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceArea), args.Error(1)
}

func (m *MockAreaManager) Create(ctx context.Context, area *models.ServiceArea) error {
	return m.Called(ctx, area).Error(0)
}

func (m *MockAreaManager) Update(ctx context.Context, area *models.ServiceArea) error {
	return m.Called(ctx, area).Error(0)
}

func (m *MockAreaManager) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockAreaManager) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockWaitlistManager is a mock implementation of the WaitlistManager interface
type MockWaitlistManager struct {
	mock.Mock
}

func (m *MockWaitlistManager) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistManager) CountByNearestCity(ctx context.Context) ([]models.WaitlistCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.WaitlistCount), args.Error(1)
}

func (m *MockWaitlistManager) Update(ctx context.Context, id int64, upd service.WaitlistUpdate) (*models.WaitlistEntry, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WaitlistEntry), args.Error(1)
}

func idParam(id string) gin.Param { return gin.Param{Key: "id", Value: id} }

func TestAdminAreaHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		callService    bool
		mockError      error
		expectedStatus int
		expectedError  string
	}{
		{
			name: "created with default active flag",
			body: map[string]any{
				"city_name": "Gdansk", "latitude": 54.352, "longitude": 18.6466, "radius_km": 40,
			},
			callService:    true,
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid colour rejected by the service",
			body: map[string]any{
				"city_name": "Gdansk", "latitude": 54.352, "longitude": 18.6466, "radius_km": 40, "color_hex": "blue",
			},
			callService:    true,
			mockError:      fmt.Errorf("service: %w: color \"blue\" is not #RRGGBB", models.ErrInvalidServiceArea),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  `invalid service area: color "blue" is not #RRGGBB`,
		},
		{
			name:           "non-positive radius",
			body:           map[string]any{"city_name": "Gdansk", "latitude": 54.352, "longitude": 18.6466, "radius_km": -5},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAreaManager)
			handler := NewAdminAreaHandler(mockSvc)

			if tt.callService {
				mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(a *models.ServiceArea) bool {
					return a.CityName == "Gdansk" && a.IsActive && a.RadiusKm == 40
				})).Return(tt.mockError)
			}

			c, w := newTestContext(http.MethodPost, "/admin/service-areas", tt.body)
			handler.Create(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeObject(t, w)["error"])
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAdminAreaHandler_Update(t *testing.T) {
	mockSvc := new(MockAreaManager)
	handler := NewAdminAreaHandler(mockSvc)

	mockSvc.On("Update", mock.Anything, mock.MatchedBy(func(a *models.ServiceArea) bool {
		return a.ID == 7 && !a.IsActive && a.RadiusKm == 25
	})).Return(nil)

	c, w := newTestContext(http.MethodPut, "/admin/service-areas/7", map[string]any{
		"city_name": "Lodz", "latitude": 51.7592, "longitude": 19.456, "radius_km": 25, "is_active": false,
	}, idParam("7"))
	handler.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lodz", decodeObject(t, w)["city_name"])
	mockSvc.AssertExpectations(t)
}

func TestAdminAreaHandler_SetActive(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		body           any
		callService    bool
		mockError      error
		expectedStatus int
	}{
		{name: "deactivated", id: "3", body: map[string]any{"is_active": false}, callService: true, expectedStatus: http.StatusOK},
		{name: "unknown area", id: "3", body: map[string]any{"is_active": false}, callService: true, mockError: fmt.Errorf("service: %w", models.ErrNotFound), expectedStatus: http.StatusNotFound},
		{name: "missing flag", id: "3", body: map[string]any{}, expectedStatus: http.StatusUnprocessableEntity},
		{name: "bad id", id: "abc", body: map[string]any{"is_active": true}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAreaManager)
			handler := NewAdminAreaHandler(mockSvc)
			if tt.callService {
				mockSvc.On("SetActive", mock.Anything, int64(3), false).Return(tt.mockError)
			}

			c, w := newTestContext(http.MethodPatch, "/admin/service-areas/"+tt.id+"/active", tt.body, idParam(tt.id))
			handler.SetActive(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAdminAreaHandler_Delete(t *testing.T) {
	mockSvc := new(MockAreaManager)
	handler := NewAdminAreaHandler(mockSvc)
	mockSvc.On("Delete", mock.Anything, int64(4)).Return(nil)

	c, w := newTestContext(http.MethodDelete, "/admin/service-areas/4", nil, idParam("4"))
	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestAdminAreaHandler_GetNotFound(t *testing.T) {
	mockSvc := new(MockAreaManager)
	handler := NewAdminAreaHandler(mockSvc)
	mockSvc.On("Get", mock.Anything, int64(9)).Return(nil, fmt.Errorf("service: %w", models.ErrNotFound))

	c, w := newTestContext(http.MethodGet, "/admin/service-areas/9", nil, idParam("9"))
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrNotFound.Error(), decodeObject(t, w)["error"])
}

func TestAdminWaitlistHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		callService    bool
		expectedFilter models.WaitlistFilter
		expectedStatus int
	}{
		{
			name:           "defaults",
			query:          "",
			callService:    true,
			expectedFilter: models.WaitlistFilter{Limit: defaultWaitlistPageSize},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "status filter with paging",
			query:          "?status=contacted&limit=10&offset=20",
			callService:    true,
			expectedFilter: models.WaitlistFilter{Status: models.WaitlistContacted, Limit: 10, Offset: 20},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown status",
			query:          "?status=archived",
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockWaitlistManager)
			handler := NewAdminWaitlistHandler(mockSvc)
			if tt.callService {
				mockSvc.On("List", mock.Anything, tt.expectedFilter).Return([]models.WaitlistEntry{}, nil)
			}

			c, w := newTestContext(http.MethodGet, "/admin/waitlist"+tt.query, nil)
			handler.List(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAdminWaitlistHandler_Update(t *testing.T) {
	contacted := models.WaitlistContacted
	notes := "left a voicemail"

	tests := []struct {
		name           string
		body           any
		callService    bool
		expectedUpdate service.WaitlistUpdate
		mockEntry      *models.WaitlistEntry
		mockError      error
		expectedStatus int
	}{
		{
			name:           "status and notes",
			body:           map[string]any{"status": "contacted", "admin_notes": notes},
			callService:    true,
			expectedUpdate: service.WaitlistUpdate{Status: &contacted, AdminNotes: &notes},
			mockEntry:      &models.WaitlistEntry{ID: 5, Status: models.WaitlistContacted, AdminNotes: notes},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "illegal transition",
			body:           map[string]any{"status": "contacted"},
			callService:    true,
			expectedUpdate: service.WaitlistUpdate{Status: &contacted},
			mockError:      fmt.Errorf("service: %w: declined -> contacted", models.ErrInvalidStatusTransition),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown status value",
			body:           map[string]any{"status": "archived"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockWaitlistManager)
			handler := NewAdminWaitlistHandler(mockSvc)
			if tt.callService {
				mockSvc.On("Update", mock.Anything, int64(5), tt.expectedUpdate).Return(tt.mockEntry, tt.mockError)
			}

			c, w := newTestContext(http.MethodPatch, "/admin/waitlist/5", tt.body, idParam("5"))
			handler.Update(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestAdminWaitlistHandler_Counts(t *testing.T) {
	mockSvc := new(MockWaitlistManager)
	handler := NewAdminWaitlistHandler(mockSvc)
	mockSvc.On("CountByNearestCity", mock.Anything).Return([]models.WaitlistCount{{City: "Warsaw", Count: 3}}, nil)

	c, w := newTestContext(http.MethodGet, "/admin/service-areas/waitlist-counts", nil)
	handler.Counts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"city":"Warsaw","count":3}]`, w.Body.String())
}
