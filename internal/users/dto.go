package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// UserDTO is the /users/me payload. Registered is false while the caller is
// known only from their token and has no local row yet.
type UserDTO struct {
	ID         uuid.UUID      `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Role       enums.UserRole `json:"role"`
	Registered bool           `json:"registered"`
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		Registered: true,
		CreatedAt:  &u.CreatedAt,
	}
}

func fromIdentity(identity Identity) *UserDTO {
	return &UserDTO{
		ID:    identity.UserID,
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
	}
}
