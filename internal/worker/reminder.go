package worker

import (
	"context"
	"fmt"
	"time"

	"barberbot/internal/domain"
	"barberbot/internal/metrics"
	"barberbot/internal/models"
	"barberbot/internal/timeutil"

	"github.com/rs/zerolog"
)

// ReminderWorker периодически находит подтвержденные записи, начинающиеся
// в ближайший час, и шлет клиентам напоминания. Отметка reminder_sent
// защищает от повторов; при переносе записи отметка сбрасывается и
// напоминание уходит заново на новое время.
type ReminderWorker struct {
	repo         domain.Repository
	sender       domain.NotificationSender
	converter    *timeutil.Converter
	retryPolicy  RetryPolicy
	leadTime     time.Duration
	scanInterval time.Duration
	logger       *zerolog.Logger
}

func NewReminderWorker(
	repo domain.Repository,
	sender domain.NotificationSender,
	converter *timeutil.Converter,
	leadMinutes, scanMinutes int,
	logger *zerolog.Logger,
) *ReminderWorker {
	if leadMinutes <= 0 {
		leadMinutes = models.ReminderLeadMinutes
	}
	if scanMinutes <= 0 {
		scanMinutes = models.ReminderScanMinutes
	}

	return &ReminderWorker{
		repo:      repo,
		sender:    sender,
		converter: converter,
		retryPolicy: RetryPolicy{
			MaxRetries:    3,
			InitialDelay:  2 * time.Second,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2,
		},
		leadTime:     time.Duration(leadMinutes) * time.Minute,
		scanInterval: time.Duration(scanMinutes) * time.Minute,
		logger:       logger,
	}
}

// Start запускает цикл сканирования до отмены контекста.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info().
		Dur("lead", w.leadTime).
		Dur("interval", w.scanInterval).
		Msg("reminder worker started")

	ticker := time.NewTicker(w.scanInterval)
	defer ticker.Stop()

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("reminder worker stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ReminderWorker) scan(ctx context.Context) {
	now := time.Now().UTC()
	due, err := w.repo.GetDueReminders(ctx, now, now.Add(w.leadTime))
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to query due reminders")
		return
	}

	for _, app := range due {
		if err := w.remind(ctx, app); err != nil {
			w.logger.Error().Err(err).
				Int64("appointment_id", app.ID).
				Msg("failed to send reminder")
			continue
		}

		if err := w.repo.MarkReminderSent(ctx, app.ID); err != nil {
			w.logger.Error().Err(err).
				Int64("appointment_id", app.ID).
				Msg("failed to mark reminder as sent")
			continue
		}

		metrics.IncReminderSent()
	}
}

// remind шлет сообщение с повторами по экспоненциальной задержке.
func (w *ReminderWorker) remind(ctx context.Context, app *models.Appointment) error {
	user, err := w.repo.GetUserByID(ctx, app.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve user %d: %w", app.UserID, err)
	}

	local := w.converter.FromUTC(app.StartsAt)
	text := fmt.Sprintf(
		"⏰ Напоминание: через час у вас запись!\n\n💈 %s\n📅 %s\n🕐 %s",
		app.ServiceName,
		local.Format("02.01.2006"),
		local.Format("15:04"),
	)

	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		if _, lastErr = w.sender.SendMessage(user.TelegramID, text); lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	return fmt.Errorf("failed to deliver reminder after %d attempts: %w", w.retryPolicy.MaxRetries, lastErr)
}
