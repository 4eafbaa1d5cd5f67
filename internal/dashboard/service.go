package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/rbac-admin/internal"
)

type RepositoryAPI interface {
	Stats(ctx context.Context) (*Stats, error)
}

type ServiceAPI interface {
	Stats(ctx context.Context) (*Stats, error)
}

type Service struct {
	repo         RepositoryAPI
	queryTimeout time.Duration
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, queryTimeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, queryTimeout: queryTimeout, logger: logger}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to load dashboard stats", "error", err)
		return nil, err
	}
	return stats, nil
}
