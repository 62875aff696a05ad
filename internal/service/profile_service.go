package service

import (
	"context"
	"time"

	"vibenotes-be/internal/mapper"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/memory"
	"vibenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IProfileService interface {
	// Resolve never fails: ids it cannot resolve are simply absent from the result.
	Resolve(ctx context.Context, ids []uuid.UUID) mapper.Profiles
}

type profileService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.ProfileCache
	logger     logger.ILogger
}

func NewProfileService(uowFactory unitofwork.RepositoryFactory, ttl time.Duration, log logger.ILogger) IProfileService {
	return &profileService{
		uowFactory: uowFactory,
		cache:      memory.NewProfileCache(ttl),
		logger:     log,
	}
}

func (s *profileService) Resolve(ctx context.Context, ids []uuid.UUID) mapper.Profiles {
	profiles := make(mapper.Profiles, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		if p, ok := s.cache.Get(id); ok {
			profiles[id] = p
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return profiles
	}

	users, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindByIds(ctx, missing)
	if err != nil {
		s.logger.Warn("ProfileService", "Profile lookup failed, serving raw author ids", map[string]interface{}{
			"error": err,
			"count": len(missing),
		})
		return profiles
	}

	for _, u := range users {
		p := u.Profile()
		s.cache.Save(p)
		profiles[p.Id] = p
	}
	return profiles
}
