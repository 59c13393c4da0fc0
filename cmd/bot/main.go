package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"barberbot/internal/api"
	"barberbot/internal/bot"
	"barberbot/internal/config"
	"barberbot/internal/database"
	"barberbot/internal/events"
	"barberbot/internal/logging"
	"barberbot/internal/metrics"
	"barberbot/internal/models"
	"barberbot/internal/repository"
	"barberbot/internal/service"
	"barberbot/internal/timeutil"
	"barberbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	converter := timeutil.NewConverter(cfg.Timezone, &logger)

	eventBus := events.NewEventBus()
	subscribeAppointmentEvents(eventBus, &logger)

	bookingService := service.NewBookingService(db, eventBus, converter, cfg.Bot.MaxBookingDays, &logger)
	adminService := service.NewAdminService(db, &logger)
	userService := service.NewUserService(db, cfg, &logger)

	startMetrics(ctx, cfg, &logger)

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, bookingService, db, converter, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = apiServer.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	return startBot(ctx, cfg, db, stateService, eventBus, bookingService, adminService, userService, converter, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	dirs := []string{filepath.Dir(cfg.Database.Path), cfg.Exports.Path}
	if cfg.Backup.Enabled {
		dirs = append(dirs, cfg.Backup.StoragePath)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("failed to create directory")
			return err
		}
	}
	return nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("failed to init database")
		return nil, err
	}

	// Стартовый каталог услуг из конфига; правки мастера в базе не трогаем
	if err := db.SeedServices(context.Background(), cfg.Services); err != nil {
		logger.Error().Err(err).Msg("failed to seed services")
	}
	if err := db.SeedDefaultSchedule(context.Background()); err != nil {
		logger.Error().Err(err).Msg("failed to seed default schedule")
	}
	return db, nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, dialog state falls back to memory")
		} else {
			logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
		}
	}

	primary := repository.NewRedisStateRepository(redisClient, models.DefaultRedisTTL)
	fallback := repository.NewMemoryStateRepository(models.DefaultRedisTTL)
	stateRepo := repository.NewFailoverStateRepository(primary, fallback, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

// subscribeAppointmentEvents журнал событий жизненного цикла записей.
func subscribeAppointmentEvents(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(ev *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Int64("appointment_id", payload.AppointmentID).
			Int64("user_id", payload.UserID).
			Str("status", payload.Status).
			Msg("appointment event")
		return nil
	}

	for _, eventType := range []string{
		events.EventAppointmentCreated,
		events.EventAppointmentConfirmed,
		events.EventAppointmentCancelled,
		events.EventAppointmentCompleted,
		events.EventAppointmentRescheduled,
	} {
		bus.Subscribe(eventType, handler)
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		logger.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	stateService *service.StateService,
	eventBus *events.EventBus,
	bookingService *service.BookingService,
	adminService *service.AdminService,
	userService *service.UserService,
	converter *timeutil.Converter,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create bot API")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	tgService := service.NewTelegramService(bot.NewBotWrapper(botAPI))

	reminderWorker := worker.NewReminderWorker(
		db, tgService, converter,
		cfg.Bot.ReminderLeadMinutes, cfg.Bot.ReminderScanMinutes,
		logger,
	)
	go reminderWorker.Start(ctx)

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, eventBus,
		bookingService, adminService, userService,
		converter, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create bot")
		return err
	}

	logger.Info().Msg("bot started")
	telegramBot.Start(ctx)

	logger.Info().Msg("shutdown complete")
	return nil
}
