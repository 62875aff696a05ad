// Package memory holds in-process repositories used by tests and NOTE_STORE=memory.
package memory

import (
	"context"
	"sync"

	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/model"
	"vibenotes-be/internal/repository/contract"
	"vibenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store is the shared backing state. Repositories hand out deep copies so
// callers can never mutate stored data without going through Update.
type Store struct {
	mu            sync.RWMutex
	notes         map[uuid.UUID]*entity.Note
	users         map[uuid.UUID]*entity.User
	notifications []*model.Notification
}

func NewStore() *Store {
	return &Store{
		notes: make(map[uuid.UUID]*entity.Note),
		users: make(map[uuid.UUID]*entity.User),
	}
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork has no real transaction; Begin/Commit/Rollback only exist to
// satisfy the interface.
type UnitOfWork struct {
	store *Store
}

func (u *UnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *UnitOfWork) Commit() error                   { return nil }
func (u *UnitOfWork) Rollback() error                 { return nil }

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &UserRepository{store: u.store}
}

func (u *UnitOfWork) NoteRepository() contract.NoteRepository {
	return &NoteRepository{store: u.store}
}

func (u *UnitOfWork) NotificationRepository() contract.NotificationRepository {
	return &NotificationRepository{store: u.store}
}
