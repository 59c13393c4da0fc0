package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"barberbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const exportDateLayout = "02.01.2006"

// handleExportDates разбирает период "01.08.2026 - 31.08.2026" и шлет
// мастеру файл выгрузки.
func (b *Bot) handleExportDates(ctx context.Context, chatID, userID int64, text string) {
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		b.sendMessage(chatID, "Не получилось разобрать период. Формат: 01.08.2026 - 31.08.2026")
		return
	}

	loc := b.converter.Location()
	from, err1 := time.ParseInLocation(exportDateLayout, strings.TrimSpace(parts[0]), loc)
	to, err2 := time.ParseInLocation(exportDateLayout, strings.TrimSpace(parts[1]), loc)
	if err1 != nil || err2 != nil {
		b.sendMessage(chatID, "Не получилось разобрать период. Формат: 01.08.2026 - 31.08.2026")
		return
	}
	if to.Before(from) {
		b.sendMessage(chatID, "Конец периода раньше начала. Поменяйте даты местами.")
		return
	}

	startUTC, _ := b.converter.DayWindowUTC(from)
	_, endUTC := b.converter.DayWindowUTC(to)

	apps, err := b.bookingService.GetAppointmentsByDateRange(ctx, startUTC, endUTC)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load appointments for export")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)

	if len(apps) == 0 {
		b.sendMessage(chatID, "За выбранный период записей нет.")
		b.showMainMenu(ctx, chatID, userID)
		return
	}

	path, err := b.buildExportFile(apps, from, to)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to build export file")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			b.logger.Debug().Err(err).Str("path", path).Msg("failed to remove export file")
		}
	}()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("💾 Записи с %s по %s (%d шт.)",
		from.Format(exportDateLayout), to.Format(exportDateLayout), len(apps))
	if _, err := b.tgService.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send export document")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.showMainMenu(ctx, chatID, userID)
}

// buildExportFile собирает xlsx с записями за период.
func (b *Bot) buildExportFile(apps []*models.Appointment, from, to time.Time) (string, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	const sheet = "Записи"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"№", "Дата", "Время", "Услуга", "Клиент", "Телефон", "Статус", "Создана"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, app := range apps {
		local := b.converter.FromUTC(app.StartsAt)
		values := []interface{}{
			app.ID,
			formatDate(local),
			local.Format("15:04"),
			app.ServiceName,
			app.CustomerName,
			app.CustomerPhone,
			statusLabel(app.Status),
			b.converter.FromUTC(app.CreatedAt).Format("02.01.2006 15:04"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return "", fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create exports dir: %w", err)
	}

	name := fmt.Sprintf("appointments_%s_%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02"))
	path := filepath.Join(b.config.Exports.Path, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save export file: %w", err)
	}
	return path, nil
}

func statusLabel(status string) string {
	switch status {
	case models.StatusPending:
		return "ожидает"
	case models.StatusConfirmed:
		return "подтверждена"
	case models.StatusCancelled:
		return "отменена"
	case models.StatusCompleted:
		return "завершена"
	default:
		return status
	}
}
