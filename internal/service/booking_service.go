package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/database"
	"barberbot/internal/domain"
	"barberbot/internal/events"
	"barberbot/internal/metrics"
	"barberbot/internal/models"
	"barberbot/internal/schedule"
	"barberbot/internal/timeutil"

	"github.com/rs/zerolog"
)

// BookingService сценарии записи: расчет свободных времен, создание,
// перенос и смена статусов. Интервал записи фиксируется в момент
// создания и не пересчитывается при правке услуги.
type BookingService struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	converter      *timeutil.Converter
	maxBookingDays int
	logger         *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, converter *timeutil.Converter, maxBookingDays int, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	return &BookingService{
		repo:           repo,
		eventBus:       eventBus,
		converter:      converter,
		maxBookingDays: maxBookingDays,
		logger:         logger,
	}
}

// ValidateBookingDate проверяет, что дата в пределах горизонта
// бронирования. Сравнение по календарным дням в бизнес-поясе.
func (s *BookingService) ValidateBookingDate(date time.Time) error {
	today := s.converter.Today()
	day := s.converter.StartOfDay(date)

	if day.Before(today) {
		return database.ErrPastDate
	}
	if day.After(today.AddDate(0, 0, s.maxBookingDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

// GetSlots возвращает времена начала услуги на дату с разметкой
// занятости. Закрытый день или день без расписания — пустой список.
func (s *BookingService) GetSlots(ctx context.Context, serviceID int64, date time.Time) ([]models.Slot, error) {
	svc, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, database.ErrServiceInactive
	}

	if err := s.ValidateBookingDate(date); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetScheduleDay(ctx, schedule.WeekdayIndex(date.In(s.converter.Location())))
	if err != nil {
		return nil, err
	}

	candidates := schedule.GenerateCandidates(s.converter, entry, svc.TotalDuration(), date, s.converter.Now())
	if len(candidates) == 0 {
		return nil, nil
	}

	dayStart, dayEnd := s.converter.DayWindowUTC(date)
	occupying, err := s.repo.GetOccupyingAppointments(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return schedule.MarkAvailability(candidates, svc.TotalDuration(), occupying), nil
}

// CreateBooking создает запись в статусе pending. Конфликт за слот
// разрешается на уровне хранилища: из гонки выходит одна запись.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Appointment, error) {
	svc, err := s.repo.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, database.ErrServiceInactive
	}

	if err := s.ValidateBookingDate(req.Date); err != nil {
		return nil, err
	}

	startLocal := s.converter.CombineDateClock(req.Date, req.Clock)
	if s.converter.SameLocalDate(req.Date, s.converter.Now()) && startLocal.Before(s.converter.Now()) {
		return nil, database.ErrPastDate
	}

	startUTC := s.converter.ToUTC(startLocal)
	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = models.CreatedByClient
	}

	app := &models.Appointment{
		ServiceID:     svc.ID,
		ServiceName:   svc.Name,
		UserID:        req.UserID,
		Status:        models.StatusPending,
		StartsAt:      startUTC,
		EndsAt:        startUTC.Add(svc.TotalDuration()),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CreatedBy:     createdBy,
	}

	if err := s.repo.CreateAppointmentWithLock(ctx, app); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated(createdBy)
	s.logger.Info().
		Int64("appointment_id", app.ID).
		Int64("user_id", app.UserID).
		Str("service", app.ServiceName).
		Time("starts_at", app.StartsAt).
		Msg("appointment created")

	s.publishEvent(events.EventAppointmentCreated, app, createdBy, req.UserID)
	return app, nil
}

// RescheduleBooking переносит активную запись на новое время. Конец
// интервала пересчитывается по текущей длительности услуги: перенос —
// это новое обязательство, уже существующие записи правка услуги
// задним числом не трогает.
func (s *BookingService) RescheduleBooking(ctx context.Context, appointmentID int64, date time.Time, clock time.Duration) (*models.Appointment, error) {
	current, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	svc, err := s.repo.GetServiceByID(ctx, current.ServiceID)
	if err != nil {
		return nil, err
	}

	if err := s.ValidateBookingDate(date); err != nil {
		return nil, err
	}

	startLocal := s.converter.CombineDateClock(date, clock)
	if startLocal.Before(s.converter.Now()) {
		return nil, database.ErrPastDate
	}

	newStart := s.converter.ToUTC(startLocal)
	newEnd := newStart.Add(svc.TotalDuration())

	updated, err := s.repo.RescheduleAppointmentWithLock(ctx, appointmentID, newStart, newEnd)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("appointment_id", updated.ID).
		Time("starts_at", updated.StartsAt).
		Msg("appointment rescheduled")

	s.publishEvent(events.EventAppointmentRescheduled, updated, models.CreatedByClient, updated.UserID)
	return updated, nil
}

// ConfirmBooking подтверждение мастером. Версия защищает от гонки двух
// админских действий над одной записью.
func (s *BookingService) ConfirmBooking(ctx context.Context, appointmentID int64, version int64, adminID int64) error {
	if err := s.repo.UpdateAppointmentStatusWithVersion(ctx, appointmentID, version, models.StatusConfirmed); err != nil {
		return err
	}

	if app, err := s.repo.GetAppointment(ctx, appointmentID); err == nil {
		s.publishEvent(events.EventAppointmentConfirmed, app, models.CreatedByAdmin, adminID)
	}
	return nil
}

// RejectBooking отклонение мастером: запись отменяется, слот
// освобождается сразу.
func (s *BookingService) RejectBooking(ctx context.Context, appointmentID int64, version int64, adminID int64) error {
	if err := s.repo.UpdateAppointmentStatusWithVersion(ctx, appointmentID, version, models.StatusCancelled); err != nil {
		return err
	}

	if app, err := s.repo.GetAppointment(ctx, appointmentID); err == nil {
		s.publishEvent(events.EventAppointmentCancelled, app, models.CreatedByAdmin, adminID)
	}
	return nil
}

// CompleteBooking услуга оказана. Завершенная запись продолжает занимать
// свой интервал в показе доступности.
func (s *BookingService) CompleteBooking(ctx context.Context, appointmentID int64, version int64, adminID int64) error {
	if err := s.repo.UpdateAppointmentStatusWithVersion(ctx, appointmentID, version, models.StatusCompleted); err != nil {
		return err
	}

	if app, err := s.repo.GetAppointment(ctx, appointmentID); err == nil {
		s.publishEvent(events.EventAppointmentCompleted, app, models.CreatedByAdmin, adminID)
	}
	return nil
}

// CancelBooking отмена клиентом собственной записи.
func (s *BookingService) CancelBooking(ctx context.Context, appointmentID int64, userID int64) error {
	app, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if app.UserID != userID {
		return fmt.Errorf("appointment %d does not belong to user %d: %w", appointmentID, userID, database.ErrNotFound)
	}

	if err := s.repo.UpdateAppointmentStatus(ctx, appointmentID, models.StatusCancelled); err != nil {
		return err
	}

	app.Status = models.StatusCancelled
	s.publishEvent(events.EventAppointmentCancelled, app, models.CreatedByClient, userID)
	return nil
}

func (s *BookingService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *BookingService) GetUserAppointments(ctx context.Context, userID int64) ([]*models.Appointment, error) {
	return s.repo.GetUserAppointments(ctx, userID)
}

func (s *BookingService) GetPendingAppointments(ctx context.Context) ([]*models.Appointment, error) {
	return s.repo.GetPendingAppointments(ctx)
}

func (s *BookingService) GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error) {
	return s.repo.GetAppointmentsByDateRange(ctx, start, end)
}

func (s *BookingService) publishEvent(eventType string, app *models.Appointment, changedBy string, changedByID int64) {
	payload := events.AppointmentEventPayload{
		AppointmentID: app.ID,
		UserID:        app.UserID,
		CustomerName:  app.CustomerName,
		ServiceID:     app.ServiceID,
		ServiceName:   app.ServiceName,
		Status:        app.Status,
		StartsAt:      app.StartsAt,
		EndsAt:        app.EndsAt,
		ChangedBy:     changedBy,
		ChangedByID:   changedByID,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
