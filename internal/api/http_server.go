package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"barberbot/internal/config"
	"barberbot/internal/database"
	"barberbot/internal/domain"
	"barberbot/internal/metrics"
	"barberbot/internal/timeutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer read-only HTTP API для интеграций: свободные слоты, каталог
// услуг, здоровье сервиса. Запись через API не делается, только через бота.
type HTTPServer struct {
	cfg       config.APIConfig
	booking   domain.BookingService
	repo      domain.Repository
	converter *timeutil.Converter
	server    *http.Server
	auth      *HTTPAuth
	logger    *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	booking domain.BookingService,
	repo domain.Repository,
	converter *timeutil.Converter,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:       cfg,
		booking:   booking,
		repo:      repo,
		converter: converter,
		logger:    logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/services", srv.handleServices)
	mux.HandleFunc("/api/v1/schedule", srv.handleSchedule)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleSlots GET /api/v1/slots?service_id=1&date=2025-06-02
// Времена отдаются в бизнес-часовом поясе.
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	serviceID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("service_id")), 10, 64)
	if err != nil || serviceID <= 0 {
		writeError(w, http.StatusBadRequest, "service_id is required")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, s.converter.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	slots, err := s.booking.GetSlots(r.Context(), serviceID, date)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			writeError(w, http.StatusNotFound, "service not found")
		case errors.Is(err, database.ErrServiceInactive):
			writeError(w, http.StatusNotFound, "service is not active")
		case errors.Is(err, database.ErrPastDate), errors.Is(err, database.ErrDateTooFar):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	type slotResponse struct {
		Time      string `json:"time"`
		StartsAt  string `json:"starts_at"`
		Available bool   `json:"available"`
	}

	results := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		results = append(results, slotResponse{
			Time:      slot.Time.Format("15:04"),
			StartsAt:  slot.Time.Format(time.RFC3339),
			Available: slot.Available,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service_id": serviceID,
		"date":       dateStr,
		"slots":      results,
	})
}

// handleServices GET /api/v1/services — активные услуги.
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	services, err := s.repo.GetActiveServices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// handleSchedule GET /api/v1/schedule — рабочий календарь недели.
func (s *HTTPServer) handleSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("schedule")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	days, err := s.repo.GetAllScheduleDays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type dayResponse struct {
		Weekday    int    `json:"weekday"`
		StartTime  string `json:"start_time,omitempty"`
		EndTime    string `json:"end_time,omitempty"`
		BreakStart string `json:"break_start,omitempty"`
		BreakEnd   string `json:"break_end,omitempty"`
		IsDayOff   bool   `json:"is_day_off"`
	}

	results := make([]dayResponse, 0, len(days))
	for _, day := range days {
		resp := dayResponse{Weekday: day.Weekday, IsDayOff: day.IsDayOff}
		if !day.IsDayOff {
			resp.StartTime = timeutil.FormatClock(day.StartTime)
			resp.EndTime = timeutil.FormatClock(day.EndTime)
			if day.HasBreak {
				resp.BreakStart = timeutil.FormatClock(day.BreakStart)
				resp.BreakEnd = timeutil.FormatClock(day.BreakEnd)
			}
		}
		results = append(results, resp)
	}

	writeJSON(w, http.StatusOK, map[string]any{"schedule": results})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("x-request-id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("x-request-id", requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
