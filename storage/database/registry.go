package database

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/tenant"
)

// TenantOpener opens a connection pool to the named tenant database.
type TenantOpener func(conf *core.Config, dbName string) (*sqlx.DB, error)

// PoolEntry is a cached, live connection pool for one tenant. Never mutated
// after creation; pools live for the process lifetime.
type PoolEntry struct {
	TenantID  string
	DB        *sqlx.DB
	CreatedAt time.Time
}

// PoolRegistry caches one isolated connection pool per tenant, creating pools
// lazily on first use. Creation is serialized per tenant ID so concurrent
// first-requests never end up with two pools; other tenants proceed
// independently. Failed creations are not cached and will be retried by the
// next request.
type PoolRegistry struct {
	conf *core.Config
	repo tenant.Repository
	open TenantOpener

	mu    sync.RWMutex
	pools map[string]*PoolEntry
	group singleflight.Group
}

func NewPoolRegistry(conf *core.Config, repo tenant.Repository, opener ...TenantOpener) *PoolRegistry {
	open := OpenTenant
	if len(opener) > 0 {
		open = opener[0]
	}
	return &PoolRegistry{
		conf:  conf,
		repo:  repo,
		open:  open,
		pools: make(map[string]*PoolEntry),
	}
}

// GetPool returns the connection pool for tenantID. On a cache miss the
// tenant is looked up in the directory and a new pool is opened; a missing
// directory entry yields tenant.ErrNotFound and a connection failure yields
// *tenant.PoolCreationError.
func (r *PoolRegistry) GetPool(ctx context.Context, tenantID string) (*sqlx.DB, error) {
	r.mu.RLock()
	entry, ok := r.pools[tenantID]
	r.mu.RUnlock()
	if ok {
		return entry.DB, nil
	}

	v, err, _ := r.group.Do(tenantID, func() (interface{}, error) {
		// re-check: another request may have won the race before Do
		r.mu.RLock()
		entry, ok := r.pools[tenantID]
		r.mu.RUnlock()
		if ok {
			return entry, nil
		}

		t, err := r.repo.GetTenantByID(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		db, err := r.open(r.conf, t.DBName)
		if err != nil {
			return nil, &tenant.PoolCreationError{TenantID: tenantID, Err: err}
		}

		entry = &PoolEntry{TenantID: tenantID, DB: db, CreatedAt: time.Now().UTC()}
		r.mu.Lock()
		r.pools[tenantID] = entry
		r.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PoolEntry).DB, nil
}

// Close closes all cached pools. Only meant for process shutdown.
func (r *PoolRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, entry := range r.pools {
		if err := entry.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.pools, id)
	}
	return firstErr
}
