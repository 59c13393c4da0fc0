package bot

import (
	"context"
	"fmt"
	"strings"

	"barberbot/internal/models"
)

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.UserState {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil
	}
	return state
}

func (b *Bot) setUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) {
	if data == nil {
		data = make(map[string]interface{})
	}
	if err := b.stateService.SetUserState(ctx, userID, step, data); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to set user state")
	}
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear user state")
	}
}

// sanitizeInput обрезает служебные символы и длину свободного ввода.
func (b *Bot) sanitizeInput(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	if len([]rune(text)) > 100 {
		text = string([]rune(text)[:100])
	}
	return text
}

// normalizePhone приводит номер к виду +<цифры>. Принимаются номера от
// 9 до 15 цифр, остальное отбрасывается.
func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	cleaned := digits.String()
	if len(cleaned) < 9 || len(cleaned) > 15 {
		return ""
	}
	return "+" + cleaned
}

// formatAppointment карточка записи для клиента.
func (b *Bot) formatAppointment(app *models.Appointment) string {
	local := b.converter.FromUTC(app.StartsAt)
	return fmt.Sprintf("%s Запись #%d\n💈 %s\n📅 %s\n🕐 %s",
		statusEmoji(app.Status),
		app.ID,
		app.ServiceName,
		formatDate(local),
		local.Format("15:04"),
	)
}
