package models

import "time"

// PortfolioItem фотография работы мастера для галереи.
// Хранится телеграмный file_id, сам файл не скачивается.
type PortfolioItem struct {
	ID          int64     `json:"id"`
	PhotoFileID string    `json:"photo_file_id"`
	Caption     string    `json:"caption"`
	CreatedAt   time.Time `json:"created_at"`
}
