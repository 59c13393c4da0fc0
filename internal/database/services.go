package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"
)

const serviceColumns = `id, name, duration_min, buffer_min, price, is_active, sort_order, created_at, updated_at`

func scanService(scan func(dest ...any) error) (*models.Service, error) {
	var svc models.Service
	err := scan(
		&svc.ID, &svc.Name, &svc.DurationMin, &svc.BufferMin, &svc.Price,
		&svc.IsActive, &svc.SortOrder, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// CreateService создает услугу.
func (db *DB) CreateService(ctx context.Context, svc *models.Service) error {
	if svc.DurationMin <= 0 {
		return fmt.Errorf("service duration must be positive")
	}
	if svc.BufferMin < 0 {
		return fmt.Errorf("service buffer must be non-negative")
	}

	query := `INSERT INTO services (name, duration_min, buffer_min, price, is_active, sort_order, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		svc.Name, svc.DurationMin, svc.BufferMin, svc.Price, svc.IsActive, svc.SortOrder, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	svc.ID = id
	svc.CreatedAt = now
	svc.UpdatedAt = now
	return nil
}

// UpdateService обновляет параметры услуги. Существующие записи не
// пересчитываются: их интервалы зафиксированы в момент бронирования.
func (db *DB) UpdateService(ctx context.Context, svc *models.Service) error {
	if svc.DurationMin <= 0 {
		return fmt.Errorf("service duration must be positive")
	}
	if svc.BufferMin < 0 {
		return fmt.Errorf("service buffer must be non-negative")
	}

	query := `UPDATE services SET name = ?, duration_min = ?, buffer_min = ?, price = ?,
	          is_active = ?, sort_order = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		svc.Name, svc.DurationMin, svc.BufferMin, svc.Price, svc.IsActive, svc.SortOrder, time.Now(), svc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetServiceByID возвращает услугу по ID.
func (db *DB) GetServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`

	svc, err := scanService(db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

// GetActiveServices возвращает услуги, предлагаемые клиентам.
func (db *DB) GetActiveServices(ctx context.Context) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active = 1 ORDER BY sort_order, id`
	return db.queryServices(ctx, query)
}

// GetAllServices возвращает все услуги для администратора.
func (db *DB) GetAllServices(ctx context.Context) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services ORDER BY sort_order, id`
	return db.queryServices(ctx, query)
}

// SetServiceActive включает или выключает услугу. Существующие записи
// выключенной услуги остаются в силе.
func (db *DB) SetServiceActive(ctx context.Context, id int64, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE services SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to toggle service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedServices добавляет услуги из конфига, которых еще нет в базе.
// Существующие строки не трогаем: их мог править администратор.
func (db *DB) SeedServices(ctx context.Context, services []models.Service) error {
	for _, svc := range services {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services WHERE id = ?`, svc.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check service %d: %w", svc.ID, err)
		}
		if exists > 0 {
			continue
		}

		now := time.Now()
		_, err = db.ExecContext(ctx,
			`INSERT INTO services (id, name, duration_min, buffer_min, price, is_active, sort_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			svc.ID, svc.Name, svc.DurationMin, svc.BufferMin, svc.Price, svc.IsActive, svc.SortOrder, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed service %d: %w", svc.ID, err)
		}
	}
	return nil
}

func (db *DB) queryServices(ctx context.Context, query string, args ...any) ([]*models.Service, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		svc, err := scanService(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate services: %w", err)
	}
	return services, nil
}
