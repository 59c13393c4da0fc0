package service

import (
	"context"

	"barberbot/internal/domain"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
)

// portfolioLinkKey ключ настройки со ссылкой на канал портфолио.
const portfolioLinkKey = "portfolio_channel_link"

// AdminService операции мастера над каталогом услуг, рабочим
// календарем и портфолио.
type AdminService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewAdminService(repo domain.Repository, logger *zerolog.Logger) *AdminService {
	return &AdminService{
		repo:   repo,
		logger: logger,
	}
}

func (s *AdminService) GetAllServices(ctx context.Context) ([]*models.Service, error) {
	return s.repo.GetAllServices(ctx)
}

func (s *AdminService) CreateService(ctx context.Context, svc *models.Service) error {
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return err
	}
	s.logger.Info().Int64("service_id", svc.ID).Str("name", svc.Name).Msg("service created")
	return nil
}

// UpdateService правит услугу. Существующие записи не трогаем: их
// интервалы зафиксированы при бронировании.
func (s *AdminService) UpdateService(ctx context.Context, svc *models.Service) error {
	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return err
	}
	s.logger.Info().Int64("service_id", svc.ID).Msg("service updated")
	return nil
}

func (s *AdminService) SetServiceActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetServiceActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info().Int64("service_id", id).Bool("active", active).Msg("service toggled")
	return nil
}

func (s *AdminService) GetSchedule(ctx context.Context) ([]*models.ScheduleDay, error) {
	return s.repo.GetAllScheduleDays(ctx)
}

// AddPortfolioItem сохраняет фотографию работы в галерею мастера.
func (s *AdminService) AddPortfolioItem(ctx context.Context, item *models.PortfolioItem) error {
	if err := s.repo.AddPortfolioItem(ctx, item); err != nil {
		return err
	}
	s.logger.Info().Int64("item_id", item.ID).Msg("portfolio item added")
	return nil
}

func (s *AdminService) GetLatestPortfolio(ctx context.Context, limit int) ([]*models.PortfolioItem, error) {
	return s.repo.GetLatestPortfolioItems(ctx, limit)
}

// SetPortfolioLink сохраняет ссылку на канал с полным портфолио.
func (s *AdminService) SetPortfolioLink(ctx context.Context, link string) error {
	if err := s.repo.SetSetting(ctx, portfolioLinkKey, link); err != nil {
		return err
	}
	s.logger.Info().Str("link", link).Msg("portfolio link updated")
	return nil
}

func (s *AdminService) GetPortfolioLink(ctx context.Context) (string, error) {
	return s.repo.GetSetting(ctx, portfolioLinkKey, "")
}

// SetScheduleDay задает рабочие часы дня недели. Правка календаря
// влияет только на будущие расчеты слотов, существующие записи
// остаются в силе.
func (s *AdminService) SetScheduleDay(ctx context.Context, day *models.ScheduleDay) error {
	if err := s.repo.UpsertScheduleDay(ctx, day); err != nil {
		return err
	}
	s.logger.Info().Int("weekday", day.Weekday).Bool("day_off", day.IsDayOff).Msg("schedule day updated")
	return nil
}
