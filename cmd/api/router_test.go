package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"service-area-api/internal/config"
	"service-area-api/internal/handler"
	"service-area-api/internal/models"
	"service-area-api/internal/registry"
	"service-area-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAreas []models.ServiceArea

func (s staticAreas) ListActiveServiceAreas(context.Context) ([]models.ServiceArea, error) {
	return s, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type noopAreas struct{}

func (noopAreas) List(context.Context) ([]models.ServiceArea, error) { return []models.ServiceArea{}, nil }
func (noopAreas) Get(context.Context, int64) (*models.ServiceArea, error) { return nil, models.ErrNotFound }
func (noopAreas) Create(context.Context, *models.ServiceArea) error { return nil }
func (noopAreas) Update(context.Context, *models.ServiceArea) error { return nil }
func (noopAreas) SetActive(context.Context, int64, bool) error { return nil }
func (noopAreas) Delete(context.Context, int64) error { return nil }

type noopWaitlist struct{}

func (noopWaitlist) Capture(context.Context, service.CaptureRequest) (*models.WaitlistEntry, error) {
	return &models.WaitlistEntry{ID: 1}, nil
}
func (noopWaitlist) List(context.Context, models.WaitlistFilter) ([]models.WaitlistEntry, error) {
	return []models.WaitlistEntry{}, nil
}
func (noopWaitlist) CountByNearestCity(context.Context) ([]models.WaitlistCount, error) {
	return []models.WaitlistCount{}, nil
}
func (noopWaitlist) Update(context.Context, int64, service.WaitlistUpdate) (*models.WaitlistEntry, error) {
	return &models.WaitlistEntry{}, nil
}

func testRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New(staticAreas{
		{ID: 1, CityName: "Warsaw", Latitude: 52.2297, Longitude: 21.0122, RadiusKm: 50, IsActive: true, ColorHex: "#3B82F6"},
	})
	validation := service.NewValidationService(reg)

	r, err := newRouter(cfg, handlers{
		health:        handler.NewHealthHandler(okPinger{}),
		validation:    handler.NewValidationHandler(validation),
		areas:         handler.NewAreaHandler(reg),
		waitlist:      handler.NewWaitlistHandler(noopWaitlist{}),
		adminAreas:    handler.NewAdminAreaHandler(noopAreas{}),
		adminWaitlist: handler.NewAdminWaitlistHandler(noopWaitlist{}),
	}, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func testConfig() config.Config {
	return config.Config{
		AdminUser:          "admin",
		AdminPassword:      "secret",
		RateValidatePerMin: 10,
		RateAreasPerMin:    30,
		RateWaitlistPerMin: 3,
	}
}

func serve(r http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	return serveFrom(r, method, path, body, auth, "")
}

func serveFrom(r http.Handler, method, path, body string, auth bool, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	if auth {
		req.SetBasicAuth("admin", "secret")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := testRouter(t, testConfig())

	w := serve(r, http.MethodPost, "/service-area/validate", `{"latitude":52.2297,"longitude":21.0122}`, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"area":{"city":"Warsaw","radius_km":50}}`, w.Body.String())

	w = serve(r, http.MethodPost, "/service-area/validate", `{"latitude":50.0647,"longitude":19.945}`, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nearest_city":"Warsaw"`)

	w = serve(r, http.MethodGet, "/service-area/areas", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"city":"Warsaw","center":{"lat":52.2297,"lng":21.0122},"radius_km":50,"color":"#3B82F6"}]`, w.Body.String())

	w = serve(r, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WaitlistRateLimit(t *testing.T) {
	r := testRouter(t, testConfig())
	body := `{"email":"ola@example.com","requested_address":"Krakow","requested_latitude":50.06,"requested_longitude":19.94}`

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/service-area/waitlist", body, false).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/service-area/waitlist", body, false).Code)
}

func TestRouter_WaitlistRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := testRouter(t, testConfig())
	body := `{"email":"ola@example.com","requested_address":"Krakow","requested_latitude":50.06,"requested_longitude":19.94}`

	for i := 0; i < 3; i++ {
		w := serveFrom(r, http.MethodPost, "/service-area/waitlist", body, false, fmt.Sprintf("10.0.0.%d", i))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	w := serveFrom(r, http.MethodPost, "/service-area/waitlist", body, false, "10.0.0.99")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_WaitlistRateLimitUsesForwardedForFromTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedProxies = []string{"192.0.2.0/24"}
	r := testRouter(t, cfg)
	body := `{"email":"ola@example.com","requested_address":"Krakow","requested_latitude":50.06,"requested_longitude":19.94}`

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, serveFrom(r, http.MethodPost, "/service-area/waitlist", body, false, "198.51.100.7").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(r, http.MethodPost, "/service-area/waitlist", body, false, "198.51.100.7").Code)
	assert.Equal(t, http.StatusCreated, serveFrom(r, http.MethodPost, "/service-area/waitlist", body, false, "198.51.100.8").Code)
}

func TestRouter_InvalidTrustedProxies(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedProxies = []string{"not-a-proxy"}

	_, err := newRouter(cfg, handlers{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestRouter_AdminRequiresCredentials(t *testing.T) {
	r := testRouter(t, testConfig())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin/service-areas", "", false).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin/service-areas", "", true).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin/service-areas/waitlist-counts", "", true).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/admin/service-areas/12", "", true).Code)
}

func TestRouter_AdminDisabledWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = ""
	r := testRouter(t, cfg)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/admin/service-areas", "", true).Code)
}
