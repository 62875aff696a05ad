package contract

import (
	"context"

	"vibenotes-be/internal/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	// Create fails with apperr.ErrConflict when the username or email is taken.
	Create(ctx context.Context, user *entity.User) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error)
}
