package employee

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
	"github.com/frahmantamala/rbac-admin/internal/core/events"
)

type RepositoryAPI interface {
	// Create returns internal.ErrEmployeeExists on a taken code or email and
	// internal.ErrGroupNotFound for an unknown group.
	Create(ctx context.Context, e *Employee) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	// Update keeps the stored password hash when e.PasswordHash is empty.
	Update(ctx context.Context, e *Employee) (*Employee, error)
	Delete(ctx context.Context, id int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo       RepositoryAPI
	publisher  EventPublisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, publisher EventPublisher, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	e, err := s.repo.Create(ctx, &Employee{
		EmployeeCode: dto.EmployeeCode,
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		PhoneNumber:  dto.PhoneNumber,
		Language:     dto.Language,
		GroupID:      dto.GroupID,
		IsSuperuser:  dto.IsSuperuser,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", e.ID, "group_id", e.GroupID)
	s.publish(ctx, events.NewEmployeeEvent(events.EventTypeEmployeeCreated, e.ID, e.Email, e.GroupID, actorID(ctx)))
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e := &Employee{
		ID:           id,
		EmployeeCode: dto.EmployeeCode,
		Name:         dto.Name,
		Email:        dto.Email,
		PhoneNumber:  dto.PhoneNumber,
		Language:     dto.Language,
		GroupID:      dto.GroupID,
		IsSuperuser:  dto.IsSuperuser,
	}
	if dto.Password != "" {
		hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		e.PasswordHash = hash
	}

	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee updated", "employee_id", id, "password_changed", dto.Password != "")
	s.publish(ctx, events.NewEmployeeEvent(events.EventTypeEmployeeUpdated, updated.ID, updated.Email, updated.GroupID, actorID(ctx)))
	return updated, nil
}

// Delete removes an employee. Deleting the signed-in employee is refused.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if actorID(ctx) == id {
		return internal.NewForbiddenError("You cannot delete your own account", internal.ErrCodeAccessDenied)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("employee deleted", "employee_id", id)
	s.publish(ctx, events.NewEmployeeEvent(events.EventTypeEmployeeDeleted, id, "", nil, actorID(ctx)))
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

func actorID(ctx context.Context) int64 {
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		return p.EmployeeID
	}
	return 0
}
