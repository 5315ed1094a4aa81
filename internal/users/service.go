package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

// Identity is what the access token says about the caller.
type Identity struct {
	UserID uuid.UUID
	Role   enums.UserRole
	Email  string
	Name   string
}

// Service resolves the calling user.
type Service interface {
	Me(ctx context.Context, identity Identity) (*UserDTO, error)
}

type service struct {
	repo Repository
}

// NewService builds the users service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

// Me returns the stored user, or the token identity when the user has no
// local row yet.
func (s *service) Me(ctx context.Context, identity Identity) (*UserDTO, error) {
	if identity.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id missing")
	}
	user, err := s.repo.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fromIdentity(identity), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}
