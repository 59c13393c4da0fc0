package bot

import (
	"errors"

	"barberbot/internal/database"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrSlotTaken) {
		return "⚠️ Это время только что заняли. Пожалуйста, выберите другой слот."
	}

	if errors.Is(err, database.ErrPastDate) {
		return "⚠️ Нельзя записаться на прошедшее время."
	}

	if errors.Is(err, database.ErrDateTooFar) {
		return "⚠️ Так далеко вперед запись пока не открыта. Выберите более раннюю дату."
	}

	if errors.Is(err, database.ErrServiceInactive) {
		return "⚠️ Эта услуга сейчас недоступна для записи."
	}

	if errors.Is(err, database.ErrConcurrentModification) {
		return "⚠️ Запись уже обработана другим администратором. Обновите список."
	}

	if errors.Is(err, database.ErrInvalidTransition) {
		return "⚠️ Это действие недоступно для записи в текущем статусе."
	}

	if errors.Is(err, database.ErrNotFound) {
		return "⚠️ Запись не найдена. Возможно, она была удалена."
	}

	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
}
