package group

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
	"github.com/frahmantamala/rbac-admin/internal/permission"
)

type RepositoryAPI interface {
	// Create inserts the group, its menu associations and its grants in one transaction.
	Create(ctx context.Context, name string, menuIDs []int64, grants []permission.Grant) (*Group, error)
	List(ctx context.Context) ([]*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	Rename(ctx context.Context, id int64, name string) (*Group, error)
	// Delete removes the group with its associations and grants and detaches its employees.
	Delete(ctx context.Context, id int64) (detached int64, err error)
	ListMenusForGroup(ctx context.Context, id int64) ([]catalog.Menu, error)
	ReplaceMenuAssociations(ctx context.Context, id int64, menuIDs []int64) error
}

type CatalogAPI interface {
	ListModules(ctx context.Context) ([]catalog.Module, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateGroupDTO) (*Group, error)
	List(ctx context.Context) ([]*Group, error)
	Get(ctx context.Context, id int64) (*Group, error)
	Rename(ctx context.Context, id int64, dto RenameGroupDTO) (*Group, error)
	Delete(ctx context.Context, id int64) error
	ListMenus(ctx context.Context, id int64) ([]catalog.Menu, error)
	ReplaceMenus(ctx context.Context, id int64, dto ReplaceMenusDTO) ([]catalog.Menu, error)
}

type Service struct {
	repo         RepositoryAPI
	catalog      CatalogAPI
	publisher    EventPublisher
	queryTimeout time.Duration
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, catalog CatalogAPI, publisher EventPublisher, queryTimeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		catalog:      catalog,
		publisher:    publisher,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return internal.WithTimeout(ctx, s.queryTimeout)
}

// Create validates the whole request first, then writes group, menus and initial grants atomically.
func (s *Service) Create(ctx context.Context, dto CreateGroupDTO) (*Group, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	menuIDs := DedupeIDs(dto.MenuIDs)

	var grants []permission.Grant
	if len(dto.Permissions) > 0 {
		cctx, cancel := s.withTimeout(ctx)
		modules, err := s.catalog.ListModules(cctx)
		cancel()
		if err != nil {
			return nil, err
		}
		if err := permission.CheckKeys(dto.Permissions, modules); err != nil {
			return nil, err
		}

		editor := permission.NewEditor(0, menuIDs, modules)
		for _, p := range dto.Permissions {
			// the create form only offers modules under the selected menus
			if editor.InScope(p.MenuID) {
				editor.SetCapabilities(p.Key(), p.Capabilities)
			}
		}
		grants = editor.Grants()
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	g, err := s.repo.Create(cctx, dto.Name, menuIDs, grants)
	if err != nil {
		s.logger.Error("failed to create group", "name", dto.Name, "error", err)
		return nil, err
	}

	s.logger.Info("group created", "group_id", g.ID, "menus", len(menuIDs), "grants", len(grants))
	s.publish(ctx, events.NewGroupEvent(events.EventTypeGroupCreated, g.ID, g.Name, actorID(ctx), len(menuIDs)))
	return g, nil
}

func (s *Service) List(ctx context.Context) ([]*Group, error) {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(cctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Group, error) {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.GetByID(cctx, id)
}

func (s *Service) Rename(ctx context.Context, id int64, dto RenameGroupDTO) (*Group, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	g, err := s.repo.Rename(cctx, id, dto.Name)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewGroupEvent(events.EventTypeGroupRenamed, g.ID, g.Name, actorID(ctx), 0))
	return g, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	detached, err := s.repo.Delete(cctx, id)
	if err != nil {
		return err
	}

	s.logger.Info("group deleted", "group_id", id, "detached_employees", detached)
	s.publish(ctx, events.NewGroupEvent(events.EventTypeGroupDeleted, id, "", actorID(ctx), int(detached)))
	return nil
}

func (s *Service) ListMenus(ctx context.Context, id int64) ([]catalog.Menu, error) {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListMenusForGroup(cctx, id)
}

// ReplaceMenus swaps the group's menu associations. Grants under removed menus are kept;
// they stay hidden from bulk edits until the menu is associated again.
func (s *Service) ReplaceMenus(ctx context.Context, id int64, dto ReplaceMenusDTO) ([]catalog.Menu, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	menuIDs := DedupeIDs(dto.MenuIDs)
	cctx, cancel := s.withTimeout(ctx)
	err := s.repo.ReplaceMenuAssociations(cctx, id, menuIDs)
	cancel()
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewGroupEvent(events.EventTypeGroupMenusReplaced, id, "", actorID(ctx), len(menuIDs)))
	return s.ListMenus(ctx, id)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

func actorID(ctx context.Context) int64 {
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		return p.EmployeeID
	}
	return 0
}
