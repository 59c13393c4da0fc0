package bot

import (
	"context"
	"testing"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photoUpdate(userID int64, fileIDs []string, caption string) *tgbotapi.Update {
	u := messageUpdate(userID, "")
	for _, id := range fileIDs {
		u.Message.Photo = append(u.Message.Photo, tgbotapi.PhotoSize{FileID: id})
	}
	u.Message.Caption = caption
	return u
}

func (m *mockTelegramService) sentMediaGroups() []tgbotapi.MediaGroupConfig {
	m.mu.Lock()
	defer m.mu.Unlock()

	var groups []tgbotapi.MediaGroupConfig
	for _, c := range m.sentMessages {
		if group, ok := c.(tgbotapi.MediaGroupConfig); ok {
			groups = append(groups, group)
		}
	}
	return groups
}

func TestPortfolioEmpty(t *testing.T) {
	f := setupTestBot(t)

	f.bot.handleMessage(context.Background(), messageUpdate(testClientID, btnPortfolio))

	assert.True(t, f.tg.containsText("пока нет работ"))
	assert.Empty(t, f.tg.sentMediaGroups())
}

func TestPortfolioUploadAndShow(t *testing.T) {
	f := setupTestBot(t)
	ctx := context.Background()

	// мастер включает режим загрузки
	f.bot.handleMessage(ctx, messageUpdate(testAdminID, btnAdminPortfolio))
	assert.Equal(t, StateAddingPortfolio, f.mustState(t, testAdminID).CurrentStep)

	// размеры фото идут по возрастанию, сохраняется самый крупный
	f.bot.handleMessage(ctx, photoUpdate(testAdminID, []string{"small-1", "big-1"}, ""))
	f.bot.handleMessage(ctx, photoUpdate(testAdminID, []string{"small-2", "big-2"}, "Фейд"))
	assert.True(t, f.tg.containsText("Сохранено"))

	items, err := f.db.GetLatestPortfolioItems(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "big-2", items[0].PhotoFileID)
	assert.Equal(t, "Фейд", items[0].Caption)
	assert.Equal(t, "big-1", items[1].PhotoFileID)

	// клиент получает галерею одной медиагруппой
	f.tg.clearSentMessages()
	f.bot.handleMessage(ctx, messageUpdate(testClientID, btnPortfolio))

	groups := f.tg.sentMediaGroups()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Media, 2)

	// подпись альбома только у первого фото
	first, ok := groups[0].Media[0].(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Equal(t, "Фейд", first.Caption)

	second, ok := groups[0].Media[1].(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Equal(t, "", second.Caption)
}

func TestPortfolioIgnoresStrayPhotos(t *testing.T) {
	f := setupTestBot(t)
	ctx := context.Background()

	// фото от клиента и фото мастера вне режима загрузки не сохраняются
	f.bot.handleMessage(ctx, photoUpdate(testClientID, []string{"client-photo"}, ""))
	f.bot.handleMessage(ctx, photoUpdate(testAdminID, []string{"admin-photo"}, ""))

	items, err := f.db.GetLatestPortfolioItems(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPortfolioChannelLink(t *testing.T) {
	f := setupTestBot(t)
	ctx := context.Background()

	f.bot.handleMessage(ctx, messageUpdate(testAdminID, "/portfolio_link https://t.me/barber_works"))
	assert.True(t, f.tg.containsText("обновлена"))

	link, err := f.db.GetSetting(ctx, "portfolio_channel_link", "")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/barber_works", link)

	require.NoError(t, f.db.AddPortfolioItem(ctx, &models.PortfolioItem{PhotoFileID: "file-1"}))

	f.tg.clearSentMessages()
	f.bot.handleMessage(ctx, messageUpdate(testClientID, btnPortfolio))
	assert.True(t, f.tg.containsText("в нашем канале"))

	// команда без аргумента показывает подсказку
	f.tg.clearSentMessages()
	f.bot.handleMessage(ctx, messageUpdate(testAdminID, "/portfolio_link"))
	assert.True(t, f.tg.containsText("Использование"))
}
