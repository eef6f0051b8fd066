package database

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/tenant"
)

type stubTenantRepo struct {
	tenants map[string]tenant.Tenant
}

func (repo *stubTenantRepo) GetTenantByID(_ context.Context, id string) (tenant.Tenant, error) {
	if t, ok := repo.tenants[id]; ok {
		return t, nil
	}
	return tenant.Tenant{}, tenant.ErrNotFound
}

func (repo *stubTenantRepo) QueryAllTenants(context.Context) ([]tenant.Tenant, error) {
	return nil, nil
}

func (repo *stubTenantRepo) CreateTenant(_ context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	repo.tenants[t.ID] = t
	return t, nil
}

func fakePool() *sqlx.DB {
	return sqlx.NewDb(new(sql.DB), "postgres")
}

func testRegistry(opener TenantOpener) *PoolRegistry {
	repo := &stubTenantRepo{tenants: map[string]tenant.Tenant{
		"collegea": {ID: "collegea", Name: "College A", DBName: "darasa_collegea"},
		"collegeb": {ID: "collegeb", Name: "College B", DBName: "darasa_collegeb"},
	}}
	return NewPoolRegistry(&core.Config{}, repo, opener)
}

func TestGetPoolConcurrentCreation(t *testing.T) {
	var opens int32
	reg := testRegistry(func(*core.Config, string) (*sqlx.DB, error) {
		atomic.AddInt32(&opens, 1)
		time.Sleep(10 * time.Millisecond) // widen the race window
		return fakePool(), nil
	})

	const n = 20
	pools := make([]*sqlx.DB, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			db, err := reg.GetPool(context.Background(), "collegea")
			if err != nil {
				t.Errorf("GetPool() failed: %v", err)
				return
			}
			pools[i] = db
		}(i)
	}
	wg.Wait()

	if opens != 1 {
		t.Errorf("opener called %d times; want 1", opens)
	}
	for i := 1; i < n; i++ {
		if pools[i] != pools[0] {
			t.Fatalf("GetPool() returned distinct pools for the same tenant")
		}
	}
}

func TestGetPoolIsolation(t *testing.T) {
	reg := testRegistry(func(*core.Config, string) (*sqlx.DB, error) {
		return fakePool(), nil
	})

	a, err := reg.GetPool(context.Background(), "collegea")
	if err != nil {
		t.Fatalf("GetPool() failed: %v", err)
	}
	b, err := reg.GetPool(context.Background(), "collegeb")
	if err != nil {
		t.Fatalf("GetPool() failed: %v", err)
	}
	if a == b {
		t.Error("GetPool() shared a pool across tenants")
	}

	// cached on second call
	a2, err := reg.GetPool(context.Background(), "collegea")
	if err != nil {
		t.Fatalf("GetPool() failed: %v", err)
	}
	if a2 != a {
		t.Error("GetPool() did not reuse the cached pool")
	}
}

func TestGetPoolUnknownTenant(t *testing.T) {
	var opens int32
	reg := testRegistry(func(*core.Config, string) (*sqlx.DB, error) {
		atomic.AddInt32(&opens, 1)
		return fakePool(), nil
	})

	_, err := reg.GetPool(context.Background(), "nope")
	if errors.Cause(err) != tenant.ErrNotFound {
		t.Errorf("GetPool() error = %v, want %v", err, tenant.ErrNotFound)
	}
	if opens != 0 {
		t.Errorf("opener called %d times for unknown tenant; want 0", opens)
	}
}

func TestGetPoolCreationFailureRetries(t *testing.T) {
	var opens int32
	reg := testRegistry(func(*core.Config, string) (*sqlx.DB, error) {
		if atomic.AddInt32(&opens, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		return fakePool(), nil
	})

	_, err := reg.GetPool(context.Background(), "collegea")
	var pErr *tenant.PoolCreationError
	if !errors.As(err, &pErr) {
		t.Fatalf("GetPool() error = %T, want *tenant.PoolCreationError", err)
	}
	if pErr.TenantID != "collegea" {
		t.Errorf("PoolCreationError.TenantID = %v, want collegea", pErr.TenantID)
	}

	// failures are not cached; the next request gets a fresh attempt
	if _, err = reg.GetPool(context.Background(), "collegea"); err != nil {
		t.Errorf("GetPool() retry failed: %v", err)
	}
	if opens != 2 {
		t.Errorf("opener called %d times; want 2", opens)
	}
}
