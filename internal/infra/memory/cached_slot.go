package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"study-aid-service/internal/store"
)

// CachedSlot fronts a slower slot (e.g., Postgres) with a TTL read cache.
// Writes go through to the backing slot and refresh the cached value.
type CachedSlot struct {
	backing store.Slot
	ttl     time.Duration
	sf      singleflight.Group
	cache   *gocache.Cache

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// cachedValue marks an empty slot so misses are cached too.
type cachedValue struct {
	data  []byte
	empty bool
}

func NewCachedSlot(backing store.Slot, ttl time.Duration) *CachedSlot {
	cleanup := ttl * 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &CachedSlot{
		backing: backing,
		ttl:     ttl,
		cache:   gocache.New(ttl, cleanup),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.(cachedValue).result()
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if v, ok := c.cache.Get(key); ok {
			return v.(cachedValue), nil
		}
		data, err := c.backing.Get(ctx, key)
		if err != nil && !errors.Is(err, store.ErrSlotEmpty) {
			return cachedValue{}, err
		}
		entry := cachedValue{data: data, empty: err != nil}
		c.cache.Set(key, entry, c.ttlWithJitter())
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(cachedValue).result()
}

func (c *CachedSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := c.backing.Set(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, cachedValue{data: append([]byte(nil), value...)}, c.ttlWithJitter())
	return nil
}

func (c *CachedSlot) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return c.backing.Delete(ctx, key)
}

// Update always reads the backing slot; a cached copy may be stale when other
// instances write to the same backing store.
func (c *CachedSlot) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	c.cache.Delete(key)

	var written []byte
	record := func(current []byte, found bool) ([]byte, error) {
		next, err := fn(current, found)
		written = next
		return next, err
	}

	var err error
	if u, ok := c.backing.(store.Updater); ok {
		err = u.Update(ctx, key, record)
	} else {
		err = c.updateUnguarded(ctx, key, record)
	}
	if err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, cachedValue{data: append([]byte(nil), written...)}, c.ttlWithJitter())
	return nil
}

func (c *CachedSlot) updateUnguarded(ctx context.Context, key string, fn store.UpdateFunc) error {
	current, err := c.backing.Get(ctx, key)
	if err != nil && !errors.Is(err, store.ErrSlotEmpty) {
		return err
	}
	next, err := fn(current, err == nil)
	if err != nil {
		return err
	}
	return c.backing.Set(ctx, key, next)
}

func (v cachedValue) result() ([]byte, error) {
	if v.empty {
		return nil, store.ErrSlotEmpty
	}
	return append([]byte(nil), v.data...), nil
}

func (c *CachedSlot) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return gocache.NoExpiration
	}
	// up to 10% jitter spreads expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
