package bot

import (
	"context"
	"fmt"
	"strings"

	"barberbot/internal/database"
	"barberbot/internal/models"
	"barberbot/internal/timeutil"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleStartWithUserTracking приветствие и сохранение профиля клиента.
func (b *Bot) handleStartWithUserTracking(ctx context.Context, update *tgbotapi.Update) {
	from := update.Message.From

	user := &models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}
	if err := b.userService.SaveUser(ctx, user); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", from.ID).Msg("failed to save user")
	}

	b.showMainMenu(ctx, update.Message.Chat.ID, from.ID)
}

func (b *Bot) showMainMenu(ctx context.Context, chatID, userID int64) {
	text := "💈 Добро пожаловать в барбершоп!\n\nВыберите действие:"
	if _, err := b.tgService.SendWithKeyboard(chatID, text, b.mainMenuKeyboard(b.isAdmin(ctx, userID))); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("failed to send main menu")
	}
}

// handleUserCommands кнопки главного меню, доступные всем.
func (b *Bot) handleUserCommands(ctx context.Context, update *tgbotapi.Update) bool {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	switch update.Message.Text {
	case btnNewBooking:
		b.startBooking(ctx, chatID, userID)
		return true
	case btnMyBookings:
		b.showMyBookings(ctx, chatID, userID)
		return true
	case btnServices:
		b.showServicesList(ctx, chatID)
		return true
	case btnPortfolio:
		b.showPortfolio(ctx, chatID)
		return true
	}
	return false
}

// handleUserStateSteps текстовый ввод внутри диалога записи.
func (b *Bot) handleUserStateSteps(ctx context.Context, update *tgbotapi.Update, text string, state *models.UserState) bool {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	switch state.CurrentStep {
	case StateEnterName:
		name := text
		if name == btnUseTelegramName {
			name = strings.TrimSpace(update.Message.From.FirstName + " " + update.Message.From.LastName)
		}
		name = b.sanitizeInput(name)
		if name == "" {
			b.sendMessage(chatID, "Пожалуйста, введите ваше имя.")
			return true
		}
		b.askPhone(ctx, chatID, userID, state, name)
		return true

	case StateEnterPhone:
		phone := normalizePhone(text)
		if phone == "" {
			b.sendMessage(chatID, "Не получилось распознать номер. Введите его в формате +998901234567 или поделитесь контактом.")
			return true
		}
		b.showBookingSummary(ctx, chatID, userID, state, phone)
		return true

	case StateConfirm:
		if text == btnConfirmBooking {
			b.finalizeBooking(ctx, chatID, userID, state)
			return true
		}
		b.sendMessage(chatID, "Нажмите «"+btnConfirmBooking+"» или «"+btnCancel+"».")
		return true

	case StateWaitingExport:
		if b.isAdmin(ctx, userID) {
			b.handleExportDates(ctx, chatID, userID, text)
			return true
		}
	}

	return false
}

// handleContactReceived телефон, отправленный кнопкой "поделиться контактом".
func (b *Bot) handleContactReceived(ctx context.Context, update *tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	contact := update.Message.Contact

	// Чужой контакт из адресной книги не принимаем
	if contact.UserID != userID {
		b.sendMessage(chatID, "Пожалуйста, отправьте свой собственный контакт.")
		return
	}

	state := b.getUserState(ctx, userID)
	if state == nil || state.CurrentStep != StateEnterPhone {
		return
	}

	phone := normalizePhone(contact.PhoneNumber)
	if phone == "" {
		b.sendMessage(chatID, "Не получилось распознать номер. Введите его вручную.")
		return
	}

	if err := b.userService.UpdateUserPhone(ctx, userID, phone); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to update user phone")
	}

	b.showBookingSummary(ctx, chatID, userID, state, phone)
}

func (b *Bot) startBooking(ctx context.Context, chatID, userID int64) {
	services, err := b.adminService.GetAllServices(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load services")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	active := make([]*models.Service, 0, len(services))
	for _, svc := range services {
		if svc.IsActive {
			active = append(active, svc)
		}
	}
	if len(active) == 0 {
		b.sendMessage(chatID, "Сейчас нет доступных услуг. Загляните позже.")
		return
	}

	b.setUserState(ctx, userID, StateSelectService, nil)
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, "💈 Выберите услугу:", servicesKeyboard(active)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send services keyboard")
	}
}

func (b *Bot) askPhone(ctx context.Context, chatID, userID int64, state *models.UserState, name string) {
	data := state.TempData
	if data == nil {
		data = make(map[string]interface{})
	}
	data["customer_name"] = name

	b.setUserState(ctx, userID, StateEnterPhone, data)
	if _, err := b.tgService.SendWithKeyboard(chatID, "📱 Отправьте номер телефона кнопкой ниже или введите его вручную:", phoneKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send phone keyboard")
	}
}

func (b *Bot) showBookingSummary(ctx context.Context, chatID, userID int64, state *models.UserState, phone string) {
	serviceID := state.GetInt64("service_id")
	date := state.GetTime("date")
	clockStr := state.GetString("clock")
	name := state.GetString("customer_name")

	if serviceID == 0 || date.IsZero() || clockStr == "" {
		b.clearUserState(ctx, userID)
		b.sendMessage(chatID, "Диалог записи сбился. Начните заново через меню.")
		return
	}

	service, err := b.lookupService(ctx, serviceID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	data := state.TempData
	data["phone"] = phone
	b.setUserState(ctx, userID, StateConfirm, data)

	text := fmt.Sprintf(
		"📝 Проверьте данные записи:\n\n💈 %s\n📅 %s\n🕐 %s\n👤 %s\n📱 %s",
		service.Name,
		formatDate(b.converter.FromUTC(date)),
		clockStr,
		name,
		phone,
	)
	if _, err := b.tgService.SendWithKeyboard(chatID, text, confirmKeyboard()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to send booking summary")
	}
}

func (b *Bot) finalizeBooking(ctx context.Context, chatID, userID int64, state *models.UserState) {
	clock, err := timeutil.ParseClock(state.GetString("clock"))
	if err != nil {
		b.clearUserState(ctx, userID)
		b.sendMessage(chatID, "Диалог записи сбился. Начните заново через меню.")
		return
	}

	req := &models.BookingRequest{
		ServiceID:     state.GetInt64("service_id"),
		UserID:        userID,
		Date:          state.GetTime("date"),
		Clock:         clock,
		CustomerName:  state.GetString("customer_name"),
		CustomerPhone: state.GetString("phone"),
		CreatedBy:     models.CreatedByClient,
	}

	app, err := b.bookingService.CreateBooking(ctx, req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("booking failed")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)

	local := b.converter.FromUTC(app.StartsAt)
	text := fmt.Sprintf(
		"✅ Заявка #%d создана!\n\n💈 %s\n📅 %s\n🕐 %s\n\nМастер подтвердит запись в ближайшее время.",
		app.ID, app.ServiceName, formatDate(local), local.Format("15:04"),
	)
	b.sendMessage(chatID, text)
	b.showMainMenu(ctx, chatID, userID)

	b.notifyAdminsAboutBooking(ctx, app)
}

// notifyAdminsAboutBooking шлет мастеру карточку заявки с кнопками действий.
func (b *Bot) notifyAdminsAboutBooking(ctx context.Context, app *models.Appointment) {
	admins, err := b.userService.GetAdmins(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load admins for notification")
		return
	}

	local := b.converter.FromUTC(app.StartsAt)
	text := fmt.Sprintf(
		"🆕 Новая заявка #%d\n\n💈 %s\n📅 %s\n🕐 %s\n👤 %s\n📱 %s",
		app.ID, app.ServiceName, formatDate(local), local.Format("15:04"),
		app.CustomerName, app.CustomerPhone,
	)

	for _, admin := range admins {
		if _, err := b.tgService.SendWithInlineKeyboard(admin.TelegramID, text, pendingActionsKeyboard(app)); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).
				Int64("admin_id", admin.TelegramID).
				Msg("failed to notify admin about booking")
		}
	}
}

func (b *Bot) showMyBookings(ctx context.Context, chatID, userID int64) {
	apps, err := b.bookingService.GetUserAppointments(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to load user appointments")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if len(apps) == 0 {
		b.sendMessage(chatID, "У вас нет активных записей. Нажмите «"+btnNewBooking+"», чтобы записаться.")
		return
	}

	b.sendMessage(chatID, "📊 Ваши записи:")
	for _, app := range apps {
		if _, err := b.tgService.SendWithInlineKeyboard(chatID, b.formatAppointment(app), appointmentActionsKeyboard(app)); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("appointment_id", app.ID).Msg("failed to send appointment card")
		}
	}
}

func (b *Bot) showServicesList(ctx context.Context, chatID int64) {
	services, err := b.adminService.GetAllServices(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load services")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	var sb strings.Builder
	sb.WriteString("💈 Услуги и цены:\n")
	for _, svc := range services {
		if !svc.IsActive {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n• %s — %d мин", svc.Name, svc.DurationMin))
		if svc.Price > 0 {
			sb.WriteString(fmt.Sprintf(", %.0f сум", svc.Price))
		}
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) lookupService(ctx context.Context, serviceID int64) (*models.Service, error) {
	services, err := b.adminService.GetAllServices(ctx)
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		if svc.ID == serviceID {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("service %d: %w", serviceID, database.ErrNotFound)
}
