package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/pkg/event"
)

// RoleService backs the admin review table: list every record, change one
// record's role.
type RoleService struct {
	users repositories.UserRepository
}

func NewRoleService(users repositories.UserRepository) *RoleService {
	return &RoleService{users: users}
}

// List returns the entire collection; the table pages it client side.
func (s *RoleService) List(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// ChangeRole sets the role of the record identified by orderID and fires
// EventRoleChanged. A malformed id is repositories.ErrNotFound.
func (s *RoleService) ChangeRole(ctx context.Context, actorID, orderID, role string) (models.User, error) {
	id, err := repositories.ParseID(orderID)
	if err != nil {
		return models.User{}, err
	}
	if !models.ValidRole(role) {
		return models.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	before, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	updated, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return models.User{}, err
	}

	event.Fire(ctx, models.EventRoleChanged, models.RoleChanged{
		UserID:  updated.ID.Hex(),
		ActorID: actorID,
		From:    before.Role,
		To:      updated.Role,
	})
	return updated, nil
}
