package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"barberbot/internal/models"
	"barberbot/internal/timeutil"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleServiceChosen(ctx context.Context, update *tgbotapi.Update, payload string) {
	cb := update.CallbackQuery
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	serviceID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	b.setUserState(ctx, userID, StateSelectDate, map[string]interface{}{
		"service_id": serviceID,
	})
	b.answerCallback(cb.ID, "")

	days := b.config.Bot.MaxBookingDays
	if days > 14 {
		// дальше двух недель клавиатура расползается, дальние даты доступны через API
		days = 14
	}
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "📅 Выберите дату:", b.datesKeyboard(days)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send dates keyboard")
	}
}

func (b *Bot) handleDateChosen(ctx context.Context, update *tgbotapi.Update, payload string) {
	cb := update.CallbackQuery
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	state := b.getUserState(ctx, userID)
	if state == nil || state.GetInt64("service_id") == 0 {
		b.answerCallback(cb.ID, "Начните запись заново")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", payload, b.converter.Location())
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	slots, err := b.bookingService.GetSlots(ctx, state.GetInt64("service_id"), date)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("date", payload).Msg("failed to get slots")
		b.answerCallback(cb.ID, "")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	available := 0
	for _, slot := range slots {
		if slot.Available {
			available++
		}
	}
	if available == 0 {
		b.answerCallback(cb.ID, "На этот день свободных мест нет")
		b.sendMessage(chatID, "😔 На "+formatDate(date)+" свободных мест нет. Выберите другую дату.")
		return
	}

	data := state.TempData
	data["date"] = date.Format(time.RFC3339)
	b.setUserState(ctx, userID, StateSelectTime, data)
	b.answerCallback(cb.ID, "")

	text := fmt.Sprintf("🕐 Свободное время на %s:", formatDate(date))
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, slotsKeyboard(slots)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send slots keyboard")
	}
}

func (b *Bot) handleSlotChosen(ctx context.Context, update *tgbotapi.Update, payload string) {
	cb := update.CallbackQuery
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	state := b.getUserState(ctx, userID)
	if state == nil || state.GetTime("date").IsZero() {
		b.answerCallback(cb.ID, "Начните запись заново")
		return
	}

	clock, err := timeutil.ParseClock(payload)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	if rescheduleID := state.GetInt64("reschedule_id"); rescheduleID != 0 {
		b.finishReschedule(ctx, cb, rescheduleID, state.GetTime("date"), clock)
		return
	}

	data := state.TempData
	data["clock"] = payload
	b.setUserState(ctx, userID, StateEnterName, data)
	b.answerCallback(cb.ID, "")

	if _, err := b.tgService.SendWithKeyboard(chatID, "👤 Как вас зовут?", nameKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send name keyboard")
	}
}

// handleRescheduleStart перенос своей записи: тот же диалог дата → время,
// но без повторного ввода имени и телефона.
func (b *Bot) handleRescheduleStart(ctx context.Context, update *tgbotapi.Update, payload string) {
	cb := update.CallbackQuery
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	appointmentID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	app, err := b.bookingService.GetAppointment(ctx, appointmentID)
	if err != nil || app.UserID != userID {
		b.answerCallback(cb.ID, "Запись не найдена")
		return
	}
	if !app.IsActive() {
		b.answerCallback(cb.ID, "Эту запись уже нельзя перенести")
		return
	}

	b.setUserState(ctx, userID, StateSelectDate, map[string]interface{}{
		"service_id":    app.ServiceID,
		"reschedule_id": appointmentID,
	})
	b.answerCallback(cb.ID, "")

	days := b.config.Bot.MaxBookingDays
	if days > 14 {
		days = 14
	}
	text := fmt.Sprintf("🔁 Перенос записи #%d. Выберите новую дату:", appointmentID)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, b.datesKeyboard(days)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send reschedule dates keyboard")
	}
}

func (b *Bot) finishReschedule(ctx context.Context, cb *tgbotapi.CallbackQuery, appointmentID int64, date time.Time, clock time.Duration) {
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	updated, err := b.bookingService.RescheduleBooking(ctx, appointmentID, date, clock)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Int64("appointment_id", appointmentID).
			Msg("reschedule failed")
		b.answerCallback(cb.ID, "")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)
	b.answerCallback(cb.ID, "Запись перенесена")

	local := b.converter.FromUTC(updated.StartsAt)
	b.sendMessage(chatID, fmt.Sprintf("🔁 Запись #%d перенесена на %s %s.",
		updated.ID, formatDate(local), local.Format("15:04")))
	b.showMainMenu(ctx, chatID, userID)
}

func (b *Bot) handleClientCancel(ctx context.Context, update *tgbotapi.Update, payload string) {
	cb := update.CallbackQuery
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	appointmentID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	if err := b.bookingService.CancelBooking(ctx, appointmentID, userID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Int64("appointment_id", appointmentID).
			Int64("user_id", userID).
			Msg("client cancel failed")
		b.answerCallback(cb.ID, "")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(cb.ID, "Запись отменена")
	if _, err := b.tgService.EditMessage(chatID, cb.Message.MessageID,
		cb.Message.Text+"\n\n❌ Отменена", nil); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("failed to edit cancelled appointment card")
	}
	b.sendMessage(chatID, "✅ Запись #"+payload+" отменена. Время снова свободно для других клиентов.")
}

// handleAdminCallback действия мастера: подтвердить, отклонить, завершить.
// В callback вшиты ID и версия записи, устаревшая версия отклоняется.
func (b *Bot) handleAdminCallback(ctx context.Context, update *tgbotapi.Update, payload string) {
	cb := update.CallbackQuery
	chatID := cb.Message.Chat.ID
	adminID := cb.From.ID

	if !b.isAdmin(ctx, adminID) {
		b.answerCallback(cb.ID, "Недостаточно прав")
		return
	}

	parts := strings.Split(payload, "_")
	if len(parts) != 3 {
		b.answerCallback(cb.ID, "")
		return
	}
	action := parts[0]
	appointmentID, err1 := strconv.ParseInt(parts[1], 10, 64)
	version, err2 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	var actErr error
	switch action {
	case "confirm":
		actErr = b.bookingService.ConfirmBooking(ctx, appointmentID, version, adminID)
	case "reject":
		actErr = b.bookingService.RejectBooking(ctx, appointmentID, version, adminID)
	case "complete":
		actErr = b.bookingService.CompleteBooking(ctx, appointmentID, version, adminID)
	default:
		b.answerCallback(cb.ID, "")
		return
	}

	if actErr != nil {
		zerolog.Ctx(ctx).Warn().Err(actErr).
			Str("action", action).
			Int64("appointment_id", appointmentID).
			Int64("admin_id", adminID).
			Msg("admin action failed")
		b.answerCallback(cb.ID, "")
		b.sendMessage(chatID, b.getErrorMessage(actErr))
		return
	}

	app, err := b.bookingService.GetAppointment(ctx, appointmentID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("appointment_id", appointmentID).Msg("failed to reload appointment")
		b.answerCallback(cb.ID, "Готово")
		return
	}

	b.answerCallback(cb.ID, "Готово")
	b.updateAdminCard(ctx, chatID, cb.Message.MessageID, cb.Message.Text, action, app)
	b.notifyClientAboutStatus(ctx, action, app)
}

// updateAdminCard правит карточку заявки в чате мастера под новый статус.
func (b *Bot) updateAdminCard(ctx context.Context, chatID int64, messageID int, oldText, action string, app *models.Appointment) {
	var (
		suffix   string
		keyboard *tgbotapi.InlineKeyboardMarkup
	)

	switch action {
	case "confirm":
		suffix = "\n\n✅ Подтверждена"
		kb := confirmedActionsKeyboard(app)
		keyboard = &kb
	case "reject":
		suffix = "\n\n❌ Отклонена"
	case "complete":
		suffix = "\n\n🏁 Завершена"
	}

	if _, err := b.tgService.EditMessage(chatID, messageID, oldText+suffix, keyboard); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Int("message_id", messageID).Msg("failed to edit admin card")
	}
}

// notifyClientAboutStatus сообщает клиенту о решении мастера.
func (b *Bot) notifyClientAboutStatus(ctx context.Context, action string, app *models.Appointment) {
	local := b.converter.FromUTC(app.StartsAt)

	var text string
	switch action {
	case "confirm":
		text = fmt.Sprintf("✅ Ваша запись #%d подтверждена!\n\n💈 %s\n📅 %s\n🕐 %s\n\nЖдем вас!",
			app.ID, app.ServiceName, formatDate(local), local.Format("15:04"))
	case "reject":
		text = fmt.Sprintf("😔 К сожалению, запись #%d на %s %s отменена мастером. Выберите другое время.",
			app.ID, formatDate(local), local.Format("15:04"))
	case "complete":
		text = fmt.Sprintf("🏁 Запись #%d завершена. Спасибо, что выбрали нас! Будем рады видеть вас снова.", app.ID)
	default:
		return
	}

	if _, err := b.tgService.SendMessage(app.UserID, text); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Int64("user_id", app.UserID).
			Int64("appointment_id", app.ID).
			Msg("failed to notify client about status change")
	}
}
