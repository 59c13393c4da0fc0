package timeutil

import (
	"fmt"
	"strings"
	"time"

	"barberbot/internal/models"

	"github.com/rs/zerolog"
)

// Converter переводит время между бизнес-часовым поясом и UTC.
// Все решения "сейчас/сегодня" принимаются в локальном поясе мастера,
// в базе интервалы хранятся в UTC.
type Converter struct {
	loc *time.Location
}

// NewConverter загружает бизнес-часовой пояс. Некорректное имя пояса не
// валит запуск: используется пояс по умолчанию (задокументированное
// снисходительное поведение для кривых переменных окружения вида ": /etc/localtime").
func NewConverter(tzName string, logger *zerolog.Logger) *Converter {
	name := strings.TrimSpace(tzName)
	if name == "" || strings.HasPrefix(name, ":") {
		name = models.DefaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		if logger != nil {
			logger.Warn().Err(err).Str("timezone", tzName).
				Str("fallback", models.DefaultTimezone).
				Msg("invalid business timezone, using fallback")
		}
		loc, err = time.LoadLocation(models.DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}

	return &Converter{loc: loc}
}

func (c *Converter) Location() *time.Location {
	return c.loc
}

// Now текущий момент в бизнес-часовом поясе.
func (c *Converter) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today локальная полночь текущего дня.
func (c *Converter) Today() time.Time {
	return c.StartOfDay(c.Now())
}

// StartOfDay локальная полночь дня, в который попадает t.
func (c *Converter) StartOfDay(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// ToUTC переводит момент в UTC для хранения.
func (c *Converter) ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// FromUTC переводит хранимый момент в бизнес-часовой пояс для показа.
func (c *Converter) FromUTC(t time.Time) time.Time {
	return t.In(c.loc)
}

// CombineDateClock собирает локальный момент из даты и времени "от полуночи".
// Часы и минуты подставляются как настенные, поэтому переходы на летнее
// время не сдвигают время открытия.
func (c *Converter) CombineDateClock(date time.Time, clock time.Duration) time.Time {
	local := date.In(c.loc)
	hours := int(clock / time.Hour)
	minutes := int((clock % time.Hour) / time.Minute)
	return time.Date(local.Year(), local.Month(), local.Day(), hours, minutes, 0, 0, c.loc)
}

// DayWindowUTC границы локального дня [полночь, полночь следующего дня) в UTC.
func (c *Converter) DayWindowUTC(date time.Time) (time.Time, time.Time) {
	start := c.StartOfDay(date)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// SameLocalDate проверяет совпадение календарных дат в бизнес-поясе.
func (c *Converter) SameLocalDate(a, b time.Time) bool {
	al, bl := a.In(c.loc), b.In(c.loc)
	return al.Year() == bl.Year() && al.YearDay() == bl.YearDay()
}

// ParseClock разбирает настенное время "HH:MM" в смещение от полуночи.
func ParseClock(s string) (time.Duration, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("failed to parse clock time %q: %w", s, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock time %q is out of range", s)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// FormatClock обратное преобразование для хранения и вывода.
func FormatClock(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
