package bot

import (
	"context"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// portfolioPageSize сколько последних работ показываем клиенту.
const portfolioPageSize = 5

// showPortfolio последние работы мастера одной медиагруппой плюс
// ссылка на канал, если мастер ее задал.
func (b *Bot) showPortfolio(ctx context.Context, chatID int64) {
	items, err := b.adminService.GetLatestPortfolio(ctx, portfolioPageSize)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load portfolio")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(items) == 0 {
		b.sendMessage(chatID, "В портфолио пока нет работ. Загляните позже. ✂️")
		return
	}

	media := make([]interface{}, 0, len(items))
	for i, item := range items {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(item.PhotoFileID))
		// Телеграм показывает подпись альбома только у первого фото
		if i == 0 {
			photo.Caption = item.Caption
		}
		media = append(media, photo)
	}

	group := tgbotapi.NewMediaGroup(chatID, media)
	if _, err := b.tgService.Request(group); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send portfolio media group")
		b.sendMessage(chatID, "Не получилось загрузить фотографии. Попробуйте позже.")
		return
	}

	link, err := b.adminService.GetPortfolioLink(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load portfolio link")
		return
	}
	if link == "" {
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("👁 Все работы", link),
		),
	)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "Больше работ в нашем канале:", keyboard); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send portfolio link")
	}
}

// startPortfolioUpload переводит мастера в режим загрузки фотографий.
func (b *Bot) startPortfolioUpload(ctx context.Context, chatID, userID int64) {
	b.setUserState(ctx, userID, StateAddingPortfolio, nil)
	if _, err := b.tgService.SendWithKeyboard(chatID,
		"📸 Отправьте фотографии работ (можно с подписью). Каждое фото попадет в портфолио.\n\nЧтобы выйти, нажмите «"+btnCancel+"».",
		cancelKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to ask portfolio photos")
	}
}

// handlePhotoReceived фото от мастера в режиме загрузки. Чужие и
// внеплановые фотографии молча игнорируются.
func (b *Bot) handlePhotoReceived(ctx context.Context, update *tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != StateAddingPortfolio || !b.isAdmin(ctx, userID) {
		return
	}

	photos := update.Message.Photo
	item := &models.PortfolioItem{
		// Телеграм сортирует размеры по возрастанию, берем самый крупный
		PhotoFileID: photos[len(photos)-1].FileID,
		Caption:     update.Message.Caption,
	}

	if err := b.adminService.AddPortfolioItem(ctx, item); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to save portfolio item")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.sendMessage(chatID, "✅ Сохранено! Можно отправить следующее фото.")
}
