package database

import (
	"context"
	"fmt"

	"barberbot/internal/models"
)

// AddPortfolioItem сохраняет фотографию работы в галерею.
func (db *DB) AddPortfolioItem(ctx context.Context, item *models.PortfolioItem) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO portfolio_items (photo_file_id, caption) VALUES (?, ?)`,
		item.PhotoFileID, item.Caption,
	)
	if err != nil {
		return fmt.Errorf("failed to add portfolio item: %w", err)
	}

	item.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get portfolio item id: %w", err)
	}
	return nil
}

// GetLatestPortfolioItems последние работы, новые первыми.
func (db *DB) GetLatestPortfolioItems(ctx context.Context, limit int) ([]*models.PortfolioItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, photo_file_id, COALESCE(caption, ''), created_at
         FROM portfolio_items ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio items: %w", err)
	}
	defer rows.Close()

	var items []*models.PortfolioItem
	for rows.Next() {
		var item models.PortfolioItem
		if err := rows.Scan(&item.ID, &item.PhotoFileID, &item.Caption, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate portfolio items: %w", err)
	}
	return items, nil
}
