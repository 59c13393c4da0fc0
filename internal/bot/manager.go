package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleAdminCommand кнопки панели мастера. Возвращает true, если текст
// был командой панели.
func (b *Bot) handleAdminCommand(ctx context.Context, update *tgbotapi.Update) bool {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	switch update.Message.Text {
	case btnAdminPending:
		b.showPendingAppointments(ctx, chatID)
		return true
	case btnAdminSchedule:
		b.showSchedule(ctx, chatID)
		return true
	case btnAdminServices:
		b.showAllServices(ctx, chatID)
		return true
	case btnAdminExport:
		b.askExportDates(ctx, chatID, userID)
		return true
	case btnAdminPortfolio:
		b.startPortfolioUpload(ctx, chatID, userID)
		return true
	}

	if strings.HasPrefix(update.Message.Text, "/portfolio_link") {
		b.handlePortfolioLink(ctx, chatID, update.Message.Text)
		return true
	}

	return false
}

// handlePortfolioLink команда /portfolio_link <url>: ссылка на канал
// с полным портфолио под галереей клиента.
func (b *Bot) handlePortfolioLink(ctx context.Context, chatID int64, text string) {
	link := strings.TrimSpace(strings.TrimPrefix(text, "/portfolio_link"))
	if link == "" {
		b.sendMessage(chatID, "Использование: /portfolio_link https://t.me/ваш_канал")
		return
	}

	if err := b.adminService.SetPortfolioLink(ctx, link); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to save portfolio link")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, "✅ Ссылка на канал портфолио обновлена.")
}

func (b *Bot) showPendingAppointments(ctx context.Context, chatID int64) {
	apps, err := b.bookingService.GetPendingAppointments(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load pending appointments")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(apps) == 0 {
		b.sendMessage(chatID, "Новых заявок нет. 🎉")
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("🗂 Заявок на подтверждение: %d", len(apps)))
	for _, app := range apps {
		local := b.converter.FromUTC(app.StartsAt)
		text := fmt.Sprintf(
			"⏳ Заявка #%d\n💈 %s\n📅 %s\n🕐 %s\n👤 %s\n📱 %s",
			app.ID, app.ServiceName, formatDate(local), local.Format("15:04"),
			app.CustomerName, app.CustomerPhone,
		)
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, pendingActionsKeyboard(app)); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("appointment_id", app.ID).Msg("failed to send pending card")
		}
	}
}

func (b *Bot) showSchedule(ctx context.Context, chatID int64) {
	days, err := b.adminService.GetSchedule(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load schedule")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(days) == 0 {
		b.sendMessage(chatID, "Рабочий календарь пока не настроен.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Рабочий календарь:\n\n")
	for _, day := range days {
		sb.WriteString(formatScheduleDay(day))
		sb.WriteString("\n")
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) showAllServices(ctx context.Context, chatID int64) {
	services, err := b.adminService.GetAllServices(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load services")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	var sb strings.Builder
	sb.WriteString("⚙️ Услуги:\n")
	for _, svc := range services {
		mark := "🟢"
		if !svc.IsActive {
			mark = "🔴"
		}
		sb.WriteString(fmt.Sprintf("\n%s #%d %s — %d мин + %d мин буфер, %.0f сум",
			mark, svc.ID, svc.Name, svc.DurationMin, svc.BufferMin, svc.Price))
	}
	sb.WriteString("\n\n🔴 — услуга скрыта от записи, существующие записи сохраняются.")
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) askExportDates(ctx context.Context, chatID, userID int64) {
	b.setUserState(ctx, userID, StateWaitingExport, nil)
	if _, err := b.tgService.SendWithKeyboard(chatID,
		"💾 Введите период выгрузки в формате:\n\n01.08.2026 - 31.08.2026",
		cancelKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to ask export dates")
	}
}
