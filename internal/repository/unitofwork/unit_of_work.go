package unitofwork

import (
	"context"

	"vibenotes-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	NotificationRepository() contract.NotificationRepository
}
