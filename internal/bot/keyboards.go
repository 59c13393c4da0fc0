package bot

import (
	"fmt"
	"time"

	"barberbot/internal/models"
	"barberbot/internal/timeutil"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки главного меню и диалога записи.
const (
	btnNewBooking = "📋 Записаться"
	btnMyBookings = "📊 Мои записи"
	btnServices   = "💈 Услуги и цены"
	btnPortfolio  = "📸 Портфолио"
	btnCancel     = "❌ Отмена"
	btnBack       = "⬅️ Назад"

	btnUseTelegramName = "👤 Использовать имя из Telegram"
	btnSharePhone      = "📱 Отправить номер телефона"
	btnConfirmBooking  = "✅ Подтвердить запись"

	btnAdminPending   = "🗂 Заявки"
	btnAdminSchedule  = "📅 Расписание"
	btnAdminServices  = "⚙️ Услуги"
	btnAdminExport    = "💾 Экспорт"
	btnAdminPortfolio = "📸 В портфолио"
)

func (b *Bot) mainMenuKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNewBooking),
			tgbotapi.NewKeyboardButton(btnMyBookings),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnServices),
			tgbotapi.NewKeyboardButton(btnPortfolio),
		),
	}

	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminPending),
			tgbotapi.NewKeyboardButton(btnAdminSchedule),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminServices),
			tgbotapi.NewKeyboardButton(btnAdminExport),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminPortfolio),
		))
	}

	return tgbotapi.NewReplyKeyboard(rows...)
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func nameKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnUseTelegramName),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func phoneKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(btnSharePhone),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirmBooking),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

// servicesKeyboard инлайн-клавиатура выбора услуги.
func servicesKeyboard(services []*models.Service) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, svc := range services {
		label := fmt.Sprintf("%s — %d мин", svc.Name, svc.DurationMin)
		if svc.Price > 0 {
			label = fmt.Sprintf("%s, %.0f сум", label, svc.Price)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("svc_%d", svc.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// datesKeyboard ближайшие дни по три в ряд.
func (b *Bot) datesKeyboard(days int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	today := b.converter.Today()
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		label := date.Format("02.01")
		switch i {
		case 0:
			label = "Сегодня"
		case 1:
			label = "Завтра"
		}

		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "date_"+date.Format("2006-01-02")))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// slotsKeyboard свободные времена по четыре в ряд. Занятые слоты не
// показываются вовсе.
func slotsKeyboard(slots []models.Slot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, slot := range slots {
		if !slot.Available {
			continue
		}
		label := slot.Time.Format("15:04")
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "slot_"+label))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// appointmentActionsKeyboard действия клиента над своей записью.
func appointmentActionsKeyboard(app *models.Appointment) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Перенести", fmt.Sprintf("resch_%d", app.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("cancel_%d", app.ID)),
		),
	)
}

// pendingActionsKeyboard действия мастера над заявкой; версия вшита в
// callback, чтобы поймать конкурентную правку.
func pendingActionsKeyboard(app *models.Appointment) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("adm_confirm_%d_%d", app.ID, app.Version)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("adm_reject_%d_%d", app.ID, app.Version)),
		),
	)
}

func confirmedActionsKeyboard(app *models.Appointment) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 Завершить", fmt.Sprintf("adm_complete_%d_%d", app.ID, app.Version)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("adm_reject_%d_%d", app.ID, app.Version)),
		),
	)
}

// formatScheduleDay строка календаря для показа мастеру.
func formatScheduleDay(day *models.ScheduleDay) string {
	names := [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
	name := "?"
	if day.Weekday >= 0 && day.Weekday < len(names) {
		name = names[day.Weekday]
	}

	if day.IsDayOff {
		return fmt.Sprintf("%s: выходной", name)
	}

	line := fmt.Sprintf("%s: %s–%s", name, timeutil.FormatClock(day.StartTime), timeutil.FormatClock(day.EndTime))
	if day.HasBreak {
		line += fmt.Sprintf(" (перерыв %s–%s)", timeutil.FormatClock(day.BreakStart), timeutil.FormatClock(day.BreakEnd))
	}
	return line
}

func statusEmoji(status string) string {
	switch status {
	case models.StatusConfirmed:
		return "✅"
	case models.StatusCancelled:
		return "❌"
	case models.StatusCompleted:
		return "🏁"
	default:
		return "⏳"
	}
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
