package unitofwork

import (
	"context"

	"vibenotes-be/internal/repository/contract"

	"gorm.io/gorm"
)

type FactoryOption func(*RepositoryFactoryImpl)

// WithNoteRepository serves notes from a store other than Postgres (e.g. MongoDB).
// Such a store does not take part in the unit's transaction.
func WithNoteRepository(repo contract.NoteRepository) FactoryOption {
	return func(f *RepositoryFactoryImpl) {
		f.noteRepo = repo
	}
}

type RepositoryFactoryImpl struct {
	db       *gorm.DB
	noteRepo contract.NoteRepository
}

func NewRepositoryFactory(db *gorm.DB, opts ...FactoryOption) RepositoryFactory {
	f := &RepositoryFactoryImpl{
		db: db,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	// UoW is short lived, one per request.
	uow := NewUnitOfWork(f.db).(*UnitOfWorkImpl)
	uow.noteRepo = f.noteRepo
	return uow
}
