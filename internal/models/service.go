package models

import "time"

// Service услуга мастера. BufferMin — пауза после услуги перед
// следующей записью.
type Service struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	DurationMin int       `json:"duration_min" yaml:"duration_min"`
	BufferMin   int       `json:"buffer_min" yaml:"buffer_min"`
	Price       float64   `json:"price" yaml:"price"`
	IsActive    bool      `json:"is_active" yaml:"is_active"`
	SortOrder   int64     `json:"sort_order" yaml:"sort_order"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// TotalDuration полная занимаемая длительность: услуга плюс буфер.
func (s *Service) TotalDuration() time.Duration {
	return time.Duration(s.DurationMin+s.BufferMin) * time.Minute
}
