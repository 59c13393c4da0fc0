package models

import "time"

// ScheduleDay запись рабочего календаря для одного дня недели.
// Weekday: 0 = понедельник ... 6 = воскресенье.
// Времена — локальные "часы:минуты" от полуночи бизнес-часового пояса.
type ScheduleDay struct {
	ID         int64         `json:"id"`
	Weekday    int           `json:"weekday"`
	StartTime  time.Duration `json:"start_time"`
	EndTime    time.Duration `json:"end_time"`
	BreakStart time.Duration `json:"break_start"`
	BreakEnd   time.Duration `json:"break_end"`
	HasBreak   bool          `json:"has_break"`
	IsDayOff   bool          `json:"is_day_off"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Slot кандидат времени начала услуги с флагом доступности.
type Slot struct {
	Time      time.Time `json:"time"` // локальное время начала
	Available bool      `json:"available"`
}
