package memory

import (
	"time"

	"vibenotes-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ProfileCache keeps recently resolved user profiles. Entries are never
// invalidated; a renamed user shows up once the ttl lapses.
type ProfileCache struct {
	cache *cache.Cache
}

func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *ProfileCache) Save(profile entity.UserProfile) {
	c.cache.Set(profile.Id.String(), profile, cache.DefaultExpiration)
}

func (c *ProfileCache) Get(id uuid.UUID) (entity.UserProfile, bool) {
	if x, found := c.cache.Get(id.String()); found {
		return x.(entity.UserProfile), true
	}
	return entity.UserProfile{}, false
}
