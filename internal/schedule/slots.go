package schedule

import (
	"time"

	"barberbot/internal/models"
	"barberbot/internal/timeutil"
)

// WeekdayIndex индекс дня недели в рабочем календаре: 0 = понедельник,
// 6 = воскресенье (в time.Weekday воскресенье — ноль).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// GenerateCandidates строит по возрастанию список локальных времен начала
// услуги на дату date. Слоты не привязаны к фиксированной сетке: каждый
// следующий начинается там, где закончился предыдущий (длительность плюс
// буфер), поэтому услуги разной длины дают разные наборы времен.
//
// Для сегодняшней даты отсчет идет не от номинального открытия, а от
// ближайшей четверти часа не раньше nowLocal. Слоты, пересекающие перерыв,
// молча выбрасываются — это не "занято", их просто нет.
func GenerateCandidates(conv *timeutil.Converter, entry *models.ScheduleDay, totalDuration time.Duration, date time.Time, nowLocal time.Time) []time.Time {
	if entry == nil || entry.IsDayOff || totalDuration <= 0 {
		return nil
	}

	start := conv.CombineDateClock(date, entry.StartTime)
	end := conv.CombineDateClock(date, entry.EndTime)

	if conv.SameLocalDate(date, nowLocal) && start.Before(nowLocal) {
		start = roundUpToQuarter(nowLocal)
	}

	var breakStart, breakEnd time.Time
	if entry.HasBreak {
		breakStart = conv.CombineDateClock(date, entry.BreakStart)
		breakEnd = conv.CombineDateClock(date, entry.BreakEnd)
	}

	var candidates []time.Time
	for cur := start; !cur.Add(totalDuration).After(end); cur = cur.Add(totalDuration) {
		if entry.HasBreak {
			curEnd := cur.Add(totalDuration)
			if cur.Before(breakEnd) && curEnd.After(breakStart) {
				continue
			}
		}
		candidates = append(candidates, cur)
	}

	return candidates
}

// roundUpToQuarter ближайшая четверть часа не раньше t.
func roundUpToQuarter(t time.Time) time.Time {
	rounded := t.Truncate(models.SlotRoundMinutes * time.Minute)
	if rounded.Before(t) {
		rounded = rounded.Add(models.SlotRoundMinutes * time.Minute)
	}
	return rounded
}

// MarkAvailability размечает кандидатов по занятости. Кандидат занят, если
// его интервал [start, start+total) пересекается с интервалом любой
// занимающей записи (pending, confirmed или completed). Сравнение в UTC,
// полуоткрытые интервалы: записи впритык друг к другу не конфликтуют.
func MarkAvailability(candidates []time.Time, totalDuration time.Duration, appointments []*models.Appointment) []models.Slot {
	slots := make([]models.Slot, 0, len(candidates))

	for _, candidate := range candidates {
		slotStart := candidate.UTC()
		slotEnd := slotStart.Add(totalDuration)

		taken := false
		for _, app := range appointments {
			if !app.Occupies() {
				continue
			}
			if app.Overlaps(slotStart, slotEnd) {
				taken = true
				break
			}
		}

		slots = append(slots, models.Slot{Time: candidate, Available: !taken})
	}

	return slots
}
