package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
)

type cacheEntry struct {
	rec     *schema.Chart
	expires time.Time
}

type cacheMiddleware struct {
	next    ports.ChartStore
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]cacheEntry
	epoch   uint64 // bumped by every invalidation
}

// NewCacheMiddleware keeps loaded records for ttl so that repeated reads of a
// chart skip the backend. Callers always receive their own copy. Saves and
// deletes through the cache invalidate it; writes made by other processes
// become visible once the entry expires.
func NewCacheMiddleware(ttl time.Duration) Middleware {
	return func(next ports.ChartStore) ports.ChartStore {
		return &cacheMiddleware{
			next:    next,
			ttl:     ttl,
			now:     time.Now,
			entries: make(map[string]cacheEntry),
		}
	}
}

func (m *cacheMiddleware) Save(ctx context.Context, rec *schema.Chart) error {
	m.forget(rec.Name)
	defer m.forget(rec.Name)
	return m.next.Save(ctx, rec)
}

func (m *cacheMiddleware) Load(ctx context.Context, name string) (*schema.Chart, error) {
	m.mu.Lock()
	e, ok := m.entries[name]
	if ok && m.now().After(e.expires) {
		delete(m.entries, name)
		ok = false
	}
	epoch := m.epoch
	m.mu.Unlock()
	if ok {
		return e.rec.Clone(), nil
	}

	rec, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	// A read that overlapped an invalidation may hold the old record.
	if m.epoch == epoch {
		m.entries[name] = cacheEntry{rec: rec.Clone(), expires: m.now().Add(m.ttl)}
	}
	m.mu.Unlock()
	return rec, nil
}

func (m *cacheMiddleware) Delete(ctx context.Context, name string) error {
	m.forget(name)
	defer m.forget(name)
	return m.next.Delete(ctx, name)
}

func (m *cacheMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *cacheMiddleware) forget(name string) {
	m.mu.Lock()
	delete(m.entries, name)
	m.epoch++
	m.mu.Unlock()
}
