package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"
	"barberbot/internal/timeutil"
)

// UpsertScheduleDay создает или заменяет запись календаря для дня недели.
// Инвариант: break_start < break_end и перерыв целиком внутри
// [start_time, end_time); перерыв задается либо целиком, либо никак.
func (db *DB) UpsertScheduleDay(ctx context.Context, day *models.ScheduleDay) error {
	if day.Weekday < 0 || day.Weekday > 6 {
		return fmt.Errorf("weekday %d is out of range", day.Weekday)
	}

	if !day.IsDayOff {
		if day.StartTime >= day.EndTime {
			return fmt.Errorf("start time must be before end time: %w", ErrInvalidBreak)
		}
		if day.HasBreak {
			if day.BreakStart >= day.BreakEnd {
				return ErrInvalidBreak
			}
			if day.BreakStart < day.StartTime || day.BreakEnd > day.EndTime {
				return ErrInvalidBreak
			}
		}
	}

	var breakStart, breakEnd sql.NullString
	if day.HasBreak {
		breakStart = sql.NullString{String: timeutil.FormatClock(day.BreakStart), Valid: true}
		breakEnd = sql.NullString{String: timeutil.FormatClock(day.BreakEnd), Valid: true}
	}

	query := `INSERT INTO schedule_days (weekday, start_time, end_time, break_start, break_end, is_day_off)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(weekday) DO UPDATE SET
                  start_time = excluded.start_time,
                  end_time = excluded.end_time,
                  break_start = excluded.break_start,
                  break_end = excluded.break_end,
                  is_day_off = excluded.is_day_off`

	_, err := db.ExecContext(ctx, query,
		day.Weekday,
		timeutil.FormatClock(day.StartTime),
		timeutil.FormatClock(day.EndTime),
		breakStart,
		breakEnd,
		day.IsDayOff,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule day: %w", err)
	}
	return nil
}

// GetScheduleDay возвращает запись календаря для дня недели
// (0 = понедельник). Отсутствие записи — не ошибка: день считается
// закрытым, возвращается (nil, nil).
func (db *DB) GetScheduleDay(ctx context.Context, weekday int) (*models.ScheduleDay, error) {
	query := `SELECT id, weekday, start_time, end_time, break_start, break_end, is_day_off, created_at
              FROM schedule_days WHERE weekday = ?`

	day, err := scanScheduleDay(db.QueryRowContext(ctx, query, weekday).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule day: %w", err)
	}
	return day, nil
}

// GetAllScheduleDays возвращает весь календарь по дням недели.
func (db *DB) GetAllScheduleDays(ctx context.Context) ([]*models.ScheduleDay, error) {
	query := `SELECT id, weekday, start_time, end_time, break_start, break_end, is_day_off, created_at
              FROM schedule_days ORDER BY weekday`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule days: %w", err)
	}
	defer rows.Close()

	var days []*models.ScheduleDay
	for rows.Next() {
		day, err := scanScheduleDay(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule day: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule days: %w", err)
	}
	return days, nil
}

// SeedDefaultSchedule заполняет календарь первого запуска: 09:00-18:00,
// воскресенье выходной. Повторный запуск ничего не делает, поэтому
// выходные, проставленные мастером позже, не перетираются.
func (db *DB) SeedDefaultSchedule(ctx context.Context) error {
	seeded, err := db.GetSetting(ctx, "schedule_seeded", "")
	if err != nil {
		return fmt.Errorf("failed to check schedule seed flag: %w", err)
	}
	if seeded != "" {
		return nil
	}

	for wd := 0; wd < 7; wd++ {
		day := &models.ScheduleDay{
			Weekday:   wd,
			StartTime: 9 * time.Hour,
			EndTime:   18 * time.Hour,
			IsDayOff:  wd == 6,
		}
		if err := db.UpsertScheduleDay(ctx, day); err != nil {
			return fmt.Errorf("failed to seed schedule day %d: %w", wd, err)
		}
	}

	return db.SetSetting(ctx, "schedule_seeded", "1")
}

func scanScheduleDay(scan func(dest ...any) error) (*models.ScheduleDay, error) {
	var day models.ScheduleDay
	var startStr, endStr string
	var breakStart, breakEnd sql.NullString

	err := scan(&day.ID, &day.Weekday, &startStr, &endStr, &breakStart, &breakEnd, &day.IsDayOff, &day.CreatedAt)
	if err != nil {
		return nil, err
	}

	if day.StartTime, err = timeutil.ParseClock(startStr); err != nil {
		return nil, err
	}
	if day.EndTime, err = timeutil.ParseClock(endStr); err != nil {
		return nil, err
	}

	if breakStart.Valid && breakEnd.Valid {
		day.HasBreak = true
		if day.BreakStart, err = timeutil.ParseClock(breakStart.String); err != nil {
			return nil, err
		}
		if day.BreakEnd, err = timeutil.ParseClock(breakEnd.String); err != nil {
			return nil, err
		}
	}

	return &day, nil
}
