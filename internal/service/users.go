package service

import (
	"context"
	"fmt"
	"strings"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
)

// ListEmployees returns profiles with the employee role. Admin profiles are
// not managed from the staff screen.
func (s *Service) ListEmployees(ctx context.Context, sess domain.Session) ([]domain.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	employees := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Role == domain.RoleEmployee {
			employees = append(employees, u)
		}
	}
	return employees, nil
}

// UpdateEmployee changes name and branch assignment only. Every employee
// keeps a branch.
func (s *Service) UpdateEmployee(ctx context.Context, sess domain.Session, id string, req domain.UserUpdateRequest) (domain.User, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.User{}, err
	}
	name := strings.TrimSpace(req.Name)
	branchID := strings.TrimSpace(req.BranchID)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: employee name is required", store.ErrInvalidRecord)
	}
	if err := s.ValidateBranch(ctx, branchID); err != nil {
		return domain.User{}, err
	}

	existing, err := s.employee(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	existing.Name = name
	existing.BranchID = branchID
	updated, err := s.repo.UpdateUser(ctx, *existing)
	if err != nil {
		return domain.User{}, err
	}
	return *updated, nil
}

// DeleteEmployee removes the profile. Tokens already issued fail on their
// next request.
func (s *Service) DeleteEmployee(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if sess.UserID == id {
		return fmt.Errorf("%w: cannot remove your own profile", store.ErrInvalidRecord)
	}
	if _, err := s.employee(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.registers.Drop(id)
	return nil
}

// employee loads a profile the staff screen may manage. Admin profiles are
// reported as not found.
func (s *Service) employee(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleEmployee {
		return nil, fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
	}
	return user, nil
}

// ValidateBranch is used by account creation outside the service.
func (s *Service) ValidateBranch(ctx context.Context, branchID string) error {
	if strings.TrimSpace(branchID) == "" {
		return fmt.Errorf("%w: employee needs a branch", store.ErrInvalidRecord)
	}
	if _, err := s.repo.GetBranch(ctx, branchID); err != nil {
		return fmt.Errorf("branch %s: %w", branchID, err)
	}
	return nil
}
