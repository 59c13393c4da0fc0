package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"
)

const userColumns = `id, telegram_id, username, first_name, last_name, phone, is_admin, last_activity, created_at, updated_at`

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	var user models.User
	err := scan(
		&user.ID, &user.TelegramID, &user.Username, &user.FirstName, &user.LastName,
		&user.Phone, &user.IsAdmin, &user.LastActivity, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateOrUpdateUser создает или обновляет пользователя по Telegram ID.
func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (telegram_id, username, first_name, last_name, phone, is_admin, last_activity, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(telegram_id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            phone = COALESCE(NULLIF(excluded.phone, ''), phone),
            is_admin = excluded.is_admin,
            last_activity = excluded.last_activity,
            updated_at = excluded.updated_at
    `

	now := time.Now()
	if user.LastActivity.IsZero() {
		user.LastActivity = now
	}

	_, err := db.ExecContext(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.IsAdmin,
		user.LastActivity,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create or update user: %w", err)
	}
	return nil
}

// GetUserByTelegramID возвращает пользователя по Telegram ID.
func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = ?`

	user, err := scanUser(db.QueryRowContext(ctx, query, telegramID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID возвращает пользователя по внутреннему ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUserPhone обновляет номер телефона пользователя.
func (db *DB) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET phone = ?, updated_at = ? WHERE telegram_id = ?`,
		phone, time.Now(), telegramID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user phone: %w", err)
	}
	return nil
}

// UpdateUserActivity обновляет время последней активности.
func (db *DB) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET last_activity = ?, updated_at = ? WHERE telegram_id = ?`,
		time.Now(), time.Now(), telegramID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user activity: %w", err)
	}
	return nil
}

// GetAdmins возвращает администраторов для служебных уведомлений.
func (db *DB) GetAdmins(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_admin = 1 ORDER BY created_at`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
