package catalog

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/rbac-admin/internal"
)

// RepositoryAPI is the read-only catalog store. Lists are ordered by id (modules by menu id, id).
type RepositoryAPI interface {
	ListMenus(ctx context.Context) ([]Menu, error)
	ListModules(ctx context.Context) ([]Module, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListMenus(ctx context.Context) ([]Menu, error) {
	menus, err := s.repo.ListMenus(ctx)
	if err != nil {
		s.logger.Error("failed to list menus", "error", err)
		return nil, err
	}
	return menus, nil
}

func (s *Service) ListModules(ctx context.Context) ([]Module, error) {
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		s.logger.Error("failed to list modules", "error", err)
		return nil, err
	}
	return modules, nil
}

// ListModulesForMenu returns the modules of one menu, failing with NotFound for an unknown menu.
func (s *Service) ListModulesForMenu(ctx context.Context, menuID int64) ([]Module, error) {
	if _, err := s.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}

	modules, err := s.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	return ModulesForMenu(modules, menuID), nil
}

func (s *Service) GetMenu(ctx context.Context, menuID int64) (*Menu, error) {
	menus, err := s.ListMenus(ctx)
	if err != nil {
		return nil, err
	}
	for i := range menus {
		if menus[i].ID == menuID {
			return &menus[i], nil
		}
	}
	return nil, internal.ErrMenuNotFound
}

func (s *Service) GetModule(ctx context.Context, moduleID int64) (*Module, error) {
	modules, err := s.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	for i := range modules {
		if modules[i].ID == moduleID {
			return &modules[i], nil
		}
	}
	return nil, internal.ErrModuleNotFound
}

// FindModule resolves a module by its menu name and module name.
func (s *Service) FindModule(ctx context.Context, menuName, moduleName string) (*Module, error) {
	modules, err := s.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	for i := range modules {
		if modules[i].MenuName == menuName && modules[i].Name == moduleName {
			return &modules[i], nil
		}
	}
	s.logger.Warn("module not found in catalog", "menu", menuName, "module", moduleName)
	return nil, internal.ErrModuleNotFound
}
