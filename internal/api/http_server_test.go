package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"barberbot/internal/config"
	"barberbot/internal/database"
	"barberbot/internal/events"
	"barberbot/internal/models"
	"barberbot/internal/service"
	"barberbot/internal/timeutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	srv       *HTTPServer
	handler   http.Handler
	converter *timeutil.Converter
	serviceID int64
	date      string
}

func setupAPI(t *testing.T, cfg config.APIConfig) *apiFixture {
	t.Helper()
	logger := zerolog.New(os.Stdout)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()

	svc := &models.Service{Name: "Стрижка", DurationMin: 40, BufferMin: 5, IsActive: true}
	require.NoError(t, db.CreateService(ctx, svc))

	for wd := 0; wd < 7; wd++ {
		require.NoError(t, db.UpsertScheduleDay(ctx, &models.ScheduleDay{
			Weekday:   wd,
			StartTime: 9 * time.Hour,
			EndTime:   18 * time.Hour,
		}))
	}

	converter := timeutil.NewConverter("UTC", &logger)
	booking := service.NewBookingService(db, events.NewEventBus(), converter, 30, &logger)

	srv := NewHTTPServer(cfg, booking, db, converter, &logger)

	date := converter.Today().AddDate(0, 0, 7)

	return &apiFixture{
		srv:       srv,
		handler:   srv.server.Handler,
		converter: converter,
		serviceID: svc.ID,
		date:      date.Format("2006-01-02"),
	}
}

func TestSlotsEndpoint(t *testing.T) {
	f := setupAPI(t, config.APIConfig{Enabled: true, Port: 8080})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?service_id=1&date="+f.date, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ServiceID int64  `json:"service_id"`
		Date      string `json:"date"`
		Slots     []struct {
			Time      string `json:"time"`
			StartsAt  string `json:"starts_at"`
			Available bool   `json:"available"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, f.serviceID, body.ServiceID)
	assert.Equal(t, f.date, body.Date)
	require.NotEmpty(t, body.Slots)
	assert.Equal(t, "09:00", body.Slots[0].Time)
	assert.True(t, body.Slots[0].Available)
	assert.Equal(t, "09:45", body.Slots[1].Time)
}

func TestSlotsEndpointValidation(t *testing.T) {
	f := setupAPI(t, config.APIConfig{Enabled: true, Port: 8080})

	tests := []struct {
		name string
		url  string
		code int
	}{
		{"MissingServiceID", "/api/v1/slots?date=" + f.date, http.StatusBadRequest},
		{"MissingDate", "/api/v1/slots?service_id=1", http.StatusBadRequest},
		{"BadDate", "/api/v1/slots?service_id=1&date=02.06.2025", http.StatusBadRequest},
		{"UnknownService", "/api/v1/slots?service_id=999&date=" + f.date, http.StatusNotFound},
		{"PastDate", "/api/v1/slots?service_id=1&date=2020-01-01", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestServicesEndpoint(t *testing.T) {
	f := setupAPI(t, config.APIConfig{Enabled: true, Port: 8080})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Services []models.Service `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Services, 1)
	assert.Equal(t, "Стрижка", body.Services[0].Name)
}

func TestScheduleEndpoint(t *testing.T) {
	f := setupAPI(t, config.APIConfig{Enabled: true, Port: 8080})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Schedule []struct {
			Weekday   int    `json:"weekday"`
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
			IsDayOff  bool   `json:"is_day_off"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Schedule, 7)
	assert.Equal(t, "09:00", body.Schedule[0].StartTime)
	assert.Equal(t, "18:00", body.Schedule[0].EndTime)
}

func TestHealthEndpoint(t *testing.T) {
	// Авторизация включена, но /healthz открыт
	f := setupAPI(t, config.APIConfig{
		Enabled: true,
		Port:    8080,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys:      []config.APIClientKey{{Key: "secret", Name: "crm"}},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	f := setupAPI(t, config.APIConfig{
		Enabled: true,
		Port:    8080,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys:      []config.APIClientKey{{Key: "secret", Name: "crm"}},
		},
	})

	// Без ключа
	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// С неверным ключом
	req = httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("x-api-key", "wrong")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// С верным ключом
	req = httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("x-api-key", "secret")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := setupAPI(t, config.APIConfig{
		Enabled:   true,
		Port:      8080,
		RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 2},
	})

	var codes []int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])
}

func TestRequestIDHeader(t *testing.T) {
	f := setupAPI(t, config.APIConfig{Enabled: true, Port: 8080})

	// Сгенерированный request id
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("x-request-id"))

	// Переданный клиентом сохраняется
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("x-request-id", "trace-123")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("x-request-id"))
}

func TestMethodNotAllowed(t *testing.T) {
	f := setupAPI(t, config.APIConfig{Enabled: true, Port: 8080})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/services", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
