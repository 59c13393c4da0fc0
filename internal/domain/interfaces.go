package domain

import (
	"context"
	"time"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repository interface {
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	CreateAppointmentWithLock(ctx context.Context, app *models.Appointment) error
	RescheduleAppointmentWithLock(ctx context.Context, id int64, newStart, newEnd time.Time) (*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id int64, status string) error
	UpdateAppointmentStatusWithVersion(ctx context.Context, id int64, version int64, status string) error
	GetOccupyingAppointments(ctx context.Context, start, end time.Time) ([]*models.Appointment, error)
	GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error)
	GetUserAppointments(ctx context.Context, userID int64) ([]*models.Appointment, error)
	GetPendingAppointments(ctx context.Context) ([]*models.Appointment, error)
	GetDueReminders(ctx context.Context, now, before time.Time) ([]*models.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64) error

	GetServiceByID(ctx context.Context, id int64) (*models.Service, error)
	GetActiveServices(ctx context.Context) ([]*models.Service, error)
	GetAllServices(ctx context.Context) ([]*models.Service, error)
	CreateService(ctx context.Context, svc *models.Service) error
	UpdateService(ctx context.Context, svc *models.Service) error
	SetServiceActive(ctx context.Context, id int64, active bool) error

	GetScheduleDay(ctx context.Context, weekday int) (*models.ScheduleDay, error)
	GetAllScheduleDays(ctx context.Context) ([]*models.ScheduleDay, error)
	UpsertScheduleDay(ctx context.Context, day *models.ScheduleDay) error

	AddPortfolioItem(ctx context.Context, item *models.PortfolioItem) error
	GetLatestPortfolioItems(ctx context.Context, limit int) ([]*models.PortfolioItem, error)

	GetSetting(ctx context.Context, key, fallback string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateOrUpdateUser(ctx context.Context, user *models.User) error
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	GetAdmins(ctx context.Context) ([]*models.User, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// NotificationSender уведомляет клиента о событиях его записи.
// Воркер напоминаний зависит от этого порта, а не от телеграм-клиента.
type NotificationSender interface {
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
}

type BookingService interface {
	ValidateBookingDate(date time.Time) error
	GetSlots(ctx context.Context, serviceID int64, date time.Time) ([]models.Slot, error)
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Appointment, error)
	ConfirmBooking(ctx context.Context, appointmentID int64, version int64, adminID int64) error
	RejectBooking(ctx context.Context, appointmentID int64, version int64, adminID int64) error
	CompleteBooking(ctx context.Context, appointmentID int64, version int64, adminID int64) error
	CancelBooking(ctx context.Context, appointmentID int64, userID int64) error
	RescheduleBooking(ctx context.Context, appointmentID int64, date time.Time, clock time.Duration) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	GetUserAppointments(ctx context.Context, userID int64) ([]*models.Appointment, error)
	GetPendingAppointments(ctx context.Context) ([]*models.Appointment, error)
	GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error)
}

type AdminService interface {
	GetAllServices(ctx context.Context) ([]*models.Service, error)
	CreateService(ctx context.Context, svc *models.Service) error
	UpdateService(ctx context.Context, svc *models.Service) error
	SetServiceActive(ctx context.Context, id int64, active bool) error
	GetSchedule(ctx context.Context) ([]*models.ScheduleDay, error)
	SetScheduleDay(ctx context.Context, day *models.ScheduleDay) error
	AddPortfolioItem(ctx context.Context, item *models.PortfolioItem) error
	GetLatestPortfolio(ctx context.Context, limit int) ([]*models.PortfolioItem, error)
	SetPortfolioLink(ctx context.Context, link string) error
	GetPortfolioLink(ctx context.Context) (string, error)
}

type UserService interface {
	IsAdmin(ctx context.Context, userID int64) bool
	SaveUser(ctx context.Context, user *models.User) error
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	GetAdmins(ctx context.Context) ([]*models.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}
