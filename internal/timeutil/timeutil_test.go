package timeutil

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConverterFallback(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name string
		tz   string
		want string
	}{
		{"Valid", "Europe/Moscow", "Europe/Moscow"},
		{"Empty", "", "Asia/Tashkent"},
		{"Garbage", "Not/AZone", "Asia/Tashkent"},
		{"LocaltimePath", ": /etc/localtime", "Asia/Tashkent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConverter(tt.tz, &logger)
			assert.Equal(t, tt.want, c.Location().String())
		})
	}
}

func TestCombineDateClock(t *testing.T) {
	c := NewConverter("Asia/Tashkent", nil)

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, c.Location())
	got := c.CombineDateClock(date, 9*time.Hour+30*time.Minute)

	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, c.Location(), got.Location())
}

func TestCombineDateClockAcrossDST(t *testing.T) {
	// Берлин переходит на летнее время 30.03.2025: открытие в 09:00
	// должно остаться на 09:00 по настенным часам.
	c := NewConverter("Europe/Berlin", nil)

	date := time.Date(2025, 3, 30, 0, 0, 0, 0, c.Location())
	got := c.CombineDateClock(date, 9*time.Hour)

	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestDayWindowUTC(t *testing.T) {
	c := NewConverter("Asia/Tashkent", nil) // UTC+5, без летнего времени

	date := time.Date(2025, 6, 2, 13, 45, 0, 0, c.Location())
	start, end := c.DayWindowUTC(date)

	assert.Equal(t, time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestRoundTripUTC(t *testing.T) {
	c := NewConverter("Asia/Tashkent", nil)

	local := time.Date(2025, 6, 2, 10, 15, 0, 0, c.Location())
	utc := c.ToUTC(local)
	back := c.FromUTC(utc)

	assert.True(t, local.Equal(utc))
	assert.Equal(t, 10, back.Hour())
	assert.Equal(t, 15, back.Minute())
}

func TestSameLocalDate(t *testing.T) {
	c := NewConverter("Asia/Tashkent", nil)

	// 20:30 UTC 1 июня — это уже 2 июня в Ташкенте (UTC+5)
	utcEvening := time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC)
	localMorning := time.Date(2025, 6, 2, 8, 0, 0, 0, c.Location())

	assert.True(t, c.SameLocalDate(utcEvening, localMorning))
	assert.False(t, c.SameLocalDate(utcEvening, localMorning.AddDate(0, 0, 1)))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"09:00", 9 * time.Hour, false},
		{"18:30", 18*time.Hour + 30*time.Minute, false},
		{"00:00", 0, false},
		{"23:59", 23*time.Hour + 59*time.Minute, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:00", FormatClock(9*time.Hour))
	assert.Equal(t, "18:45", FormatClock(18*time.Hour+45*time.Minute))
	assert.Equal(t, "00:00", FormatClock(0))
}
