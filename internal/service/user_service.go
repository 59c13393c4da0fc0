package service

import (
	"context"

	"barberbot/internal/config"
	"barberbot/internal/domain"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	config *config.Config
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, cfg *config.Config, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		config: cfg,
		logger: logger,
	}
}

// IsAdmin проверяет права мастера: суперадмины из конфига либо флаг в
// базе.
func (s *UserService) IsAdmin(ctx context.Context, userID int64) bool {
	if s.config.IsSuperadmin(userID) {
		return true
	}

	user, err := s.repo.GetUserByTelegramID(ctx, userID)
	if err != nil {
		return false
	}
	return user.IsAdmin
}

func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	if s.config.IsSuperadmin(user.TelegramID) {
		user.IsAdmin = true
	}
	return s.repo.CreateOrUpdateUser(ctx, user)
}

func (s *UserService) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	return s.repo.UpdateUserPhone(ctx, telegramID, phone)
}

func (s *UserService) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	return s.repo.UpdateUserActivity(ctx, telegramID)
}

func (s *UserService) GetAdmins(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAdmins(ctx)
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repo.GetUserByTelegramID(ctx, telegramID)
}
