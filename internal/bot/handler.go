package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update *tgbotapi.Update) {
	userID := update.Message.From.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("handling message")

	if update.Message.Contact != nil {
		b.handleContactReceived(ctx, update)
		return
	}

	if len(update.Message.Photo) > 0 {
		b.handlePhotoReceived(ctx, update)
		return
	}

	if text == btnCancel || text == "/start" || strings.EqualFold(text, "сброс") {
		b.clearUserState(ctx, userID)
		b.handleStartWithUserTracking(ctx, update)
		return
	}

	if text == btnBack {
		b.clearUserState(ctx, userID)
		b.showMainMenu(ctx, update.Message.Chat.ID, userID)
		return
	}

	if b.isAdmin(ctx, userID) && b.handleAdminCommand(ctx, update) {
		return
	}

	if b.handleUserCommands(ctx, update) {
		return
	}

	state := b.getUserState(ctx, userID)
	if state != nil && b.handleUserStateSteps(ctx, update, text, state) {
		return
	}

	b.sendMessage(update.Message.Chat.ID, "Неизвестная команда. Используйте меню.")
	b.showMainMenu(ctx, update.Message.Chat.ID, userID)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update *tgbotapi.Update) {
	data := update.CallbackQuery.Data
	userID := update.CallbackQuery.From.ID

	zerolog.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Str("data", data).
		Msg("handling callback")

	switch {
	case strings.HasPrefix(data, "svc_"):
		b.handleServiceChosen(ctx, update, strings.TrimPrefix(data, "svc_"))

	case strings.HasPrefix(data, "date_"):
		b.handleDateChosen(ctx, update, strings.TrimPrefix(data, "date_"))

	case strings.HasPrefix(data, "slot_"):
		b.handleSlotChosen(ctx, update, strings.TrimPrefix(data, "slot_"))

	case strings.HasPrefix(data, "cancel_"):
		b.handleClientCancel(ctx, update, strings.TrimPrefix(data, "cancel_"))

	case strings.HasPrefix(data, "resch_"):
		b.handleRescheduleStart(ctx, update, strings.TrimPrefix(data, "resch_"))

	case strings.HasPrefix(data, "adm_"):
		b.handleAdminCallback(ctx, update, strings.TrimPrefix(data, "adm_"))

	default:
		b.answerCallback(update.CallbackQuery.ID, "")
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if err := b.tgService.AnswerCallback(callbackID, text); err != nil {
		b.logger.Debug().Err(err).Msg("failed to answer callback")
	}
}
