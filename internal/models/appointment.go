package models

import "time"

// Appointment запись клиента к мастеру. Интервал [StartsAt, EndsAt)
// хранится в UTC, независимо от бизнес-часового пояса.
type Appointment struct {
	ID            int64     `json:"id"`
	ServiceID     int64     `json:"service_id"`
	ServiceName   string    `json:"service_name"`
	UserID        int64     `json:"user_id"`
	Status        string    `json:"status"` // pending, confirmed, cancelled, completed
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CreatedBy     string    `json:"created_by"` // client, admin
	ReminderSent  bool      `json:"reminder_sent"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

// IsActive сообщает, участвует ли запись в инварианте непересечения.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// Occupies сообщает, занимает ли запись слот при показе доступности.
// Завершенные записи продолжают занимать своё время.
func (a *Appointment) Occupies() bool {
	return a.IsActive() || a.Status == StatusCompleted
}

// Overlaps проверяет пересечение с полуоткрытым интервалом [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartsAt.Before(end) && a.EndsAt.After(start)
}

// допустимые переходы статусов; терминальные статусы отсутствуют в карте
var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition проверяет переход статуса по жизненному циклу записи.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidStatus проверяет, что строка входит в закрытый набор статусов.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}
