package bot

import (
	"context"
	"os"
	"time"

	"barberbot/internal/config"
	"barberbot/internal/domain"
	"barberbot/internal/events"
	"barberbot/internal/metrics"
	"barberbot/internal/timeutil"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bot телеграм-интерфейс записи: клиентский сценарий и панель мастера.
type Bot struct {
	tgService      domain.TelegramService
	config         *config.Config
	stateService   domain.StateManager
	eventBus       domain.EventPublisher
	bookingService domain.BookingService
	adminService   domain.AdminService
	userService    domain.UserService
	converter      *timeutil.Converter
	logger         *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	cfg *config.Config,
	stateService domain.StateManager,
	eventBus domain.EventPublisher,
	bookingService domain.BookingService,
	adminService domain.AdminService,
	userService domain.UserService,
	converter *timeutil.Converter,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService:      tgService,
		config:         cfg,
		stateService:   stateService,
		eventBus:       eventBus,
		bookingService: bookingService,
		adminService:   adminService,
		userService:    userService,
		converter:      converter,
		logger:         logger,
	}, nil
}

// Шаги диалога записи.
const (
	StateMainMenu      = "main_menu"
	StateSelectService = "select_service"
	StateSelectDate    = "select_date"
	StateSelectTime    = "select_time"
	StateEnterName     = "enter_name"
	StateEnterPhone    = "enter_phone"
	StateConfirm         = "confirm"
	StateWaitingExport   = "waiting_export_dates"
	StateAddingPortfolio = "adding_portfolio"
)

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("bot stopping")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.NewString()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		switch {
		case update.Message != nil:
			userID = update.Message.From.ID
			metrics.IncBotUpdate("message")
		case update.CallbackQuery != nil:
			userID = update.CallbackQuery.From.ID
			metrics.IncBotUpdate("callback")
		}

		if userID == 0 {
			return
		}

		b.trackActivity(userID)

		if !b.isAdmin(updateCtx, userID) {
			allowed, err := b.stateService.CheckRateLimit(
				updateCtx, userID,
				b.config.Bot.RateLimitMessages,
				time.Duration(b.config.Bot.RateLimitWindow)*time.Second,
			)
			if err != nil {
				l.Error().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
			} else if !allowed {
				l.Warn().Int64("user_id", userID).Msg("rate limit exceeded")
				if update.Message != nil {
					b.sendMessage(update.Message.Chat.ID, "⚠️ Вы отправляете сообщения слишком часто. Пожалуйста, подождите немного.")
				}
				return
			}
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, &update)
			return
		}

		if update.Message == nil {
			return
		}

		b.handleMessage(updateCtx, &update)
	})
}
