package directory

import (
	"context"
	"log"

	"twinhost/pkg/cache"
	"twinhost/pkg/twin"
)

// CachedStore wraps a Store with a Redis read-through cache on GetByName.
// ListAll always hits the backing store so freshly imported twins show up.
type CachedStore struct {
	Store
	cache *cache.Cache
}

func NewCachedStore(store Store, cache *cache.Cache) *CachedStore {
	return &CachedStore{
		Store: store,
		cache: cache,
	}
}

func (c *CachedStore) GetByName(name string) (*twin.Profile, error) {
	ctx := context.Background()
	key := c.cache.Key("twin", name)

	var cached twin.Profile
	if err := c.cache.GetJSON(ctx, key, &cached); err == nil && cached.Name != "" {
		return &cached, nil
	}

	profile, err := c.Store.GetByName(name)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetJSON(ctx, key, profile, cache.ProfileTTL); err != nil {
		log.Printf("Error caching twin %q: %v", name, err)
	}
	return profile, nil
}

func (c *CachedStore) Upsert(profile *twin.Profile) error {
	if err := c.Store.Upsert(profile); err != nil {
		return err
	}

	// Drop any stale cached copy; the next read repopulates it.
	ctx := context.Background()
	if err := c.cache.Delete(ctx, c.cache.Key("twin", profile.Name)); err != nil {
		log.Printf("Error invalidating cached twin %q: %v", profile.Name, err)
	}
	return nil
}
