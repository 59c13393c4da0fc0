package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	CreatedByClient = "client"
	CreatedByAdmin  = "admin"
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// SlotRoundMinutes округление первого слота сегодняшнего дня
	SlotRoundMinutes = 15

	// DefaultRedisTTL время жизни состояния пользователя в Redis
	DefaultRedisTTL = 24 * time.Hour

	// DefaultTimezone запасной часовой пояс при некорректной настройке
	DefaultTimezone = "Asia/Tashkent"

	// ReminderLeadMinutes за сколько минут до записи отправляется напоминание
	ReminderLeadMinutes = 60

	// ReminderScanMinutes период сканирования предстоящих записей
	ReminderScanMinutes = 15

	// DefaultMaxBookingDays горизонт бронирования по умолчанию
	DefaultMaxBookingDays = 30

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений в секундах
	RateLimitWindow = 60
)
