package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"
)

const appointmentColumns = `id, service_id, service_name, user_id, status, starts_at, ends_at,
       customer_name, customer_phone, created_by, reminder_sent, created_at, updated_at, version`

// активные статусы — единственные участники инварианта непересечения
const activeStatusesSQL = `('pending', 'confirmed')`

func scanAppointment(scan func(dest ...any) error) (*models.Appointment, error) {
	var app models.Appointment
	var startsStr, endsStr string
	err := scan(
		&app.ID, &app.ServiceID, &app.ServiceName, &app.UserID, &app.Status,
		&startsStr, &endsStr, &app.CustomerName, &app.CustomerPhone,
		&app.CreatedBy, &app.ReminderSent, &app.CreatedAt, &app.UpdatedAt, &app.Version,
	)
	if err != nil {
		return nil, err
	}

	if app.StartsAt, err = parseTime(startsStr); err != nil {
		return nil, err
	}
	if app.EndsAt, err = parseTime(endsStr); err != nil {
		return nil, err
	}
	return &app, nil
}

// GetAppointment возвращает запись по ID.
func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`

	app, err := scanAppointment(db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return app, nil
}

// CreateAppointmentWithLock создает запись в одной транзакции с проверкой
// пересечений. Благодаря _txlock=immediate транзакция с самого начала
// держит блокировку записи sqlite, поэтому "проверить и вставить" атомарно
// для любого числа конкурирующих клиентов и процессов. При пересечении с
// активной записью — откат и ErrSlotTaken, в базе ничего не меняется.
func (db *DB) CreateAppointmentWithLock(ctx context.Context, app *models.Appointment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	overlaps, err := countOverlaps(ctx, tx, app.StartsAt, app.EndsAt, 0)
	if err != nil {
		return err
	}
	if overlaps > 0 {
		return ErrSlotTaken
	}

	query := `INSERT INTO appointments (
				service_id, service_name, user_id, status, starts_at, ends_at,
				customer_name, customer_phone, created_by, reminder_sent,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 1)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		app.ServiceID,
		app.ServiceName,
		app.UserID,
		app.Status,
		formatTime(app.StartsAt),
		formatTime(app.EndsAt),
		app.CustomerName,
		app.CustomerPhone,
		app.CreatedBy,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	app.ID = id
	app.CreatedAt = now
	app.UpdatedAt = now
	app.Version = 1

	return tx.Commit()
}

// RescheduleAppointmentWithLock переносит запись на новый интервал под той
// же гарантией непересечения. Собственный старый интервал записи исключен
// из проверки, поэтому перенос "на то же время" проходит. Статус и ID не
// меняются; при конфликте никакая часть изменения не видна.
func (db *DB) RescheduleAppointmentWithLock(ctx context.Context, id int64, newStart, newEnd time.Time) (*models.Appointment, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	app, err := scanAppointment(tx.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment in tx: %w", err)
	}

	if !app.IsActive() {
		return nil, ErrInvalidTransition
	}

	overlaps, err := countOverlaps(ctx, tx, newStart, newEnd, id)
	if err != nil {
		return nil, err
	}
	if overlaps > 0 {
		return nil, ErrSlotTaken
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE appointments SET starts_at = ?, ends_at = ?, reminder_sent = 0, updated_at = ?, version = version + 1 WHERE id = ?`,
		formatTime(newStart), formatTime(newEnd), now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reschedule: %w", err)
	}

	app.StartsAt = newStart.UTC()
	app.EndsAt = newEnd.UTC()
	app.ReminderSent = false
	app.UpdatedAt = now
	app.Version++
	return app, nil
}

// countOverlaps считает активные записи, пересекающие [start, end).
// excludeID исключает собственную строку при переносе.
func countOverlaps(ctx context.Context, tx *sql.Tx, start, end time.Time, excludeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM appointments
	          WHERE status IN ` + activeStatusesSQL + ` AND starts_at < ? AND ends_at > ? AND id != ?`

	var count int
	err := tx.QueryRowContext(ctx, query, formatTime(end), formatTime(start), excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	return count, nil
}

// UpdateAppointmentStatus меняет статус с проверкой жизненного цикла по
// текущему состоянию строки на момент коммита, а не по кэшу вызывающего.
func (db *DB) UpdateAppointmentStatus(ctx context.Context, id int64, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("unknown status %q: %w", status, ErrInvalidTransition)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM appointments WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get current status: %w", err)
	}

	if !models.CanTransition(current, status) {
		return fmt.Errorf("%s -> %s: %w", current, status, ErrInvalidTransition)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = ?, version = version + 1 WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	return tx.Commit()
}

// UpdateAppointmentStatusWithVersion то же, но с оптимистической проверкой
// версии для административных действий из нескольких чатов.
func (db *DB) UpdateAppointmentStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("unknown status %q: %w", status, ErrInvalidTransition)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM appointments WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get current status: %w", err)
	}

	if !models.CanTransition(current, status) {
		return fmt.Errorf("%s -> %s: %w", current, status, ErrInvalidTransition)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = ?, version = version + 1 WHERE id = ? AND version = ?`,
		status, time.Now(), id, fromVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	return tx.Commit()
}

// GetOccupyingAppointments возвращает записи, занимающие время внутри окна
// [start, end) в UTC: pending, confirmed и completed. Отмененные слоты
// свободны и в выборку не попадают.
func (db *DB) GetOccupyingAppointments(ctx context.Context, start, end time.Time) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
	          WHERE status IN ('pending', 'confirmed', 'completed')
	            AND starts_at < ? AND ends_at > ?
	          ORDER BY starts_at ASC`

	return db.queryAppointments(ctx, query, formatTime(end), formatTime(start))
}

// GetUserAppointments возвращает активные записи пользователя по возрастанию времени.
func (db *DB) GetUserAppointments(ctx context.Context, userID int64) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
	          WHERE user_id = ? AND status IN ` + activeStatusesSQL + `
	          ORDER BY starts_at ASC`

	return db.queryAppointments(ctx, query, userID)
}

// GetAppointmentsByDateRange возвращает все записи, начинающиеся в окне
// [start, end) в UTC, для административных списков и экспорта.
func (db *DB) GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
	          WHERE starts_at >= ? AND starts_at < ?
	          ORDER BY starts_at ASC`

	return db.queryAppointments(ctx, query, formatTime(start), formatTime(end))
}

// GetPendingAppointments возвращает неподтвержденные записи для администратора.
func (db *DB) GetPendingAppointments(ctx context.Context) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
	          WHERE status = 'pending' ORDER BY starts_at ASC`

	return db.queryAppointments(ctx, query)
}

// GetDueReminders возвращает подтвержденные записи без отправленного
// напоминания, начинающиеся в (now, before].
func (db *DB) GetDueReminders(ctx context.Context, now, before time.Time) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
	          WHERE status = 'confirmed' AND reminder_sent = 0
	            AND starts_at > ? AND starts_at <= ?
	          ORDER BY starts_at ASC`

	return db.queryAppointments(ctx, query, formatTime(now), formatTime(before))
}

// MarkReminderSent помечает запись как получившую напоминание.
func (db *DB) MarkReminderSent(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE appointments SET reminder_sent = 1, updated_at = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) queryAppointments(ctx context.Context, query string, args ...any) ([]*models.Appointment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var apps []*models.Appointment
	for rows.Next() {
		app, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}
	return apps, nil
}
