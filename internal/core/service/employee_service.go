package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

// EmployeeService implements staff and customer administration.
type EmployeeService struct {
	users    ports.UserRepository
	payments ports.PaymentRepository
	log      zerolog.Logger
}

func NewEmployeeService(users ports.UserRepository, payments ports.PaymentRepository, log zerolog.Logger) *EmployeeService {
	return &EmployeeService{users: users, payments: payments, log: log}
}

// ListStaff returns every employee and admin account.
func (s *EmployeeService) ListStaff(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListByRoles(ctx, []string{domain.RoleEmployee, domain.RoleAdmin})
}

// DeleteStaff removes an employee account. Admins cannot delete themselves or
// other admins.
func (s *EmployeeService) DeleteStaff(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return domain.ErrCannotDeleteSelf
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsStaff() {
		return domain.ErrEmployeeNotFound
	}
	if target.Role == domain.RoleAdmin {
		return domain.ErrCannotDeleteAdmin
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}
	s.log.Info().Str("actor_id", actorID).Str("employee_id", targetID).Msg("employee deleted")
	return nil
}

// CustomerActivity lists customers with their payment volumes.
func (s *EmployeeService) CustomerActivity(ctx context.Context) ([]*ports.UserActivity, error) {
	customers, err := s.users.ListByRoles(ctx, []string{domain.RoleCustomer})
	if err != nil {
		return nil, err
	}

	activity := make([]*ports.UserActivity, 0, len(customers))
	for _, u := range customers {
		total, err := s.payments.CountByUser(ctx, u.ID, "")
		if err != nil {
			return nil, err
		}
		pending, err := s.payments.CountByUser(ctx, u.ID, domain.StatusPending)
		if err != nil {
			return nil, err
		}
		activity = append(activity, &ports.UserActivity{User: u, PaymentCount: total, PendingCount: pending})
	}
	return activity, nil
}
