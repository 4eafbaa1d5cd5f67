package permission

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/catalog"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
	"golang.org/x/sync/errgroup"
)

// RepositoryAPI is the grant store of groups.
type RepositoryAPI interface {
	// ListGrants returns the group's non-trivial grants ordered by (menu, module).
	ListGrants(ctx context.Context, groupID int64) ([]Grant, error)
	// ReplaceGrants atomically swaps the group's whole grant set.
	ReplaceGrants(ctx context.Context, groupID int64, grants []Grant) error
	ListMenuIDsForGroup(ctx context.Context, groupID int64) ([]int64, error)
}

type CatalogAPI interface {
	ListMenus(ctx context.Context) ([]catalog.Menu, error)
	ListModules(ctx context.Context) ([]catalog.Module, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type MetricsRecorder interface {
	RecordAuthorization(action string, allowed bool)
	RecordGrantReplacement(err error)
}

type ServiceAPI interface {
	ListGrants(ctx context.Context, groupID int64) ([]Grant, error)
	SavePermissions(ctx context.Context, groupID int64, dto SavePermissionsDTO) ([]Grant, error)
	Navigation(ctx context.Context, p *auth.Principal) (*Access, error)
	OpenModule(ctx context.Context, p *auth.Principal, moduleID int64) (*OpenModuleResponse, error)
	AuthorizeByName(ctx context.Context, p *auth.Principal, menuName, moduleName string, action Action) (bool, error)
}

type Service struct {
	repo         RepositoryAPI
	catalog      CatalogAPI
	publisher    EventPublisher
	metrics      MetricsRecorder
	queryTimeout time.Duration
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, catalog CatalogAPI, publisher EventPublisher, metrics MetricsRecorder, queryTimeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		catalog:      catalog,
		publisher:    publisher,
		metrics:      metrics,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

func (s *Service) ListGrants(ctx context.Context, groupID int64) ([]Grant, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.repo.ListGrants(ctx, groupID)
}

// SavePermissions replaces the group's grants with the submitted matrix after bulk edits.
// All-false rows are dropped; validation runs before anything is written.
func (s *Service) SavePermissions(ctx context.Context, groupID int64, dto SavePermissionsDTO) ([]Grant, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		menuIDs []int64
		modules []catalog.Module
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cctx, cancel := internal.WithTimeout(gctx, s.queryTimeout)
		defer cancel()
		var err error
		menuIDs, err = s.repo.ListMenuIDsForGroup(cctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		modules, err = s.listModules(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := CheckKeys(dto.Permissions, modules); err != nil {
		return nil, err
	}

	editor := NewEditor(groupID, menuIDs, modules)
	for _, p := range dto.Permissions {
		editor.SetCapabilities(p.Key(), p.Capabilities)
	}
	for _, op := range dto.Bulk {
		action, _ := ParseAction(op.Action)
		if op.MenuID == nil {
			editor.ApplyToAll(action, op.Value)
			continue
		}
		if err := editor.ApplyToMenu(*op.MenuID, action, op.Value); err != nil {
			return nil, err
		}
	}

	grants := editor.Grants()
	err := s.replaceGrants(ctx, groupID, grants)
	if s.metrics != nil {
		s.metrics.RecordGrantReplacement(err)
	}
	if err != nil {
		s.logger.Error("failed to replace grants", "group_id", groupID, "error", err)
		return nil, err
	}

	s.logger.Info("group permissions replaced", "group_id", groupID, "grants", len(grants))
	s.publish(ctx, events.NewGroupEvent(events.EventTypeGroupPermissionsReplaced, groupID, "", actorID(ctx), len(grants)))

	return s.ListGrants(ctx, groupID)
}

// Navigation resolves the principal's access against the current catalog.
func (s *Service) Navigation(ctx context.Context, p *auth.Principal) (*Access, error) {
	in, err := s.load(ctx, p, true)
	if err != nil {
		return nil, err
	}
	return s.resolve(p, in), nil
}

// Authorize answers whether p may perform action on the module.
func (s *Service) Authorize(ctx context.Context, p *auth.Principal, menuID, moduleID int64, action Action) (bool, error) {
	var allowed bool
	switch {
	case p.IsSuperuser:
		allowed = true
	case p.GroupID == nil:
		allowed = false
	default:
		in, err := s.load(ctx, p, false)
		if err != nil {
			return false, err
		}
		allowed = s.resolve(p, in).Authorize(menuID, moduleID, action)
	}
	s.record(action, allowed)
	return allowed, nil
}

// AuthorizeByName looks the module up by display names. A module missing from the catalog
// is denied for everyone but a superuser.
func (s *Service) AuthorizeByName(ctx context.Context, p *auth.Principal, menuName, moduleName string, action Action) (bool, error) {
	in, err := s.load(ctx, p, false)
	if err != nil {
		return false, err
	}

	module := findModule(in.Modules, func(m catalog.Module) bool {
		return m.MenuName == menuName && m.Name == moduleName
	})
	if module == nil {
		s.logger.Warn("guarded module missing from catalog", "menu", menuName, "module", moduleName)
		s.record(action, p.IsSuperuser)
		return p.IsSuperuser, nil
	}

	allowed := s.resolve(p, in).Authorize(module.MenuID, module.ID, action)
	s.record(action, allowed)
	return allowed, nil
}

// OpenModule is the view check behind opening a module page.
func (s *Service) OpenModule(ctx context.Context, p *auth.Principal, moduleID int64) (*OpenModuleResponse, error) {
	in, err := s.load(ctx, p, false)
	if err != nil {
		return nil, err
	}

	module := findModule(in.Modules, func(m catalog.Module) bool { return m.ID == moduleID })
	if module == nil {
		return nil, internal.ErrModuleNotFound
	}

	access := s.resolve(p, in)
	allowed := access.Authorize(module.MenuID, module.ID, ActionView)
	s.record(ActionView, allowed)
	if !allowed {
		s.logger.Warn("module open denied", "employee_id", p.EmployeeID, "module_id", moduleID)
		return nil, internal.ErrAccessDenied
	}

	return &OpenModuleResponse{Module: *module, Capabilities: access.Capabilities(module.MenuID, module.ID)}, nil
}

// load fans out the catalog and grant reads for p. A superuser or a principal without a
// group gets no grants; a dangling group reference resolves to none.
func (s *Service) load(ctx context.Context, p *auth.Principal, withMenus bool) (Input, error) {
	in := Input{IsSuperuser: p.IsSuperuser}

	g, gctx := errgroup.WithContext(ctx)
	if withMenus {
		g.Go(func() error {
			cctx, cancel := internal.WithTimeout(gctx, s.queryTimeout)
			defer cancel()
			var err error
			in.Menus, err = s.catalog.ListMenus(cctx)
			return err
		})
	}
	g.Go(func() error {
		var err error
		in.Modules, err = s.listModules(gctx)
		return err
	})
	if !p.IsSuperuser && p.GroupID != nil {
		g.Go(func() error {
			cctx, cancel := internal.WithTimeout(gctx, s.queryTimeout)
			defer cancel()
			var err error
			in.Grants, err = s.repo.ListGrants(cctx, *p.GroupID)
			if internal.IsType(err, internal.ErrorTypeNotFound) {
				in.Grants = nil
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// resolve runs the resolver and logs every anomaly it reports.
func (s *Service) resolve(p *auth.Principal, in Input) *Access {
	access := Resolve(in)
	for _, a := range access.Anomalies() {
		s.logger.Warn("grant anomaly", "employee_id", p.EmployeeID, "key", a.Key.String(), "reason", string(a.Reason))
	}
	return access
}

func (s *Service) listModules(ctx context.Context) ([]catalog.Module, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.catalog.ListModules(ctx)
}

func (s *Service) replaceGrants(ctx context.Context, groupID int64, grants []Grant) error {
	ctx, cancel := internal.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.repo.ReplaceGrants(ctx, groupID, grants)
}

func (s *Service) record(action Action, allowed bool) {
	if s.metrics != nil {
		s.metrics.RecordAuthorization(action.String(), allowed)
	}
}

func findModule(modules []catalog.Module, match func(catalog.Module) bool) *catalog.Module {
	for i := range modules {
		if match(modules[i]) {
			return &modules[i]
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

// CheckKeys rejects submitted keys whose module is unknown or belongs to another menu.
func CheckKeys(inputs []GrantInput, modules []catalog.Module) error {
	moduleMenu := make(map[int64]int64, len(modules))
	menus := make(map[int64]struct{})
	for _, m := range modules {
		moduleMenu[m.ID] = m.MenuID
		menus[m.MenuID] = struct{}{}
	}
	for _, in := range inputs {
		menuID, ok := moduleMenu[in.ModuleID]
		if !ok {
			return internal.ErrModuleNotFound.WithDetails(map[string]int64{"module_id": in.ModuleID})
		}
		if menuID != in.MenuID {
			if _, known := menus[in.MenuID]; !known {
				return internal.ErrMenuNotFound.WithDetails(map[string]int64{"menu_id": in.MenuID})
			}
			return internal.NewValidationFieldError("module_id", "module does not belong to menu", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

func actorID(ctx context.Context) int64 {
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		return p.EmployeeID
	}
	return 0
}
