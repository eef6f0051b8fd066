package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/tenant"
)

type tenantRepository struct {
	db *sqlx.DB
}

var _ tenant.Repository = (*tenantRepository)(nil) // interface compliance check

// NewTenantRepository returns the tenant directory repository backed by the
// global database.
func NewTenantRepository(db *sqlx.DB) tenant.Repository {
	return &tenantRepository{db: db}
}

func (repo *tenantRepository) GetTenantByID(ctx context.Context, id string) (tenant.Tenant, error) {
	var t tenant.Tenant
	err := repo.db.GetContext(ctx, &t, `SELECT id, name, db_name, created_at, updated_at FROM tenant WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return tenant.Tenant{}, tenant.ErrNotFound
		}
		return tenant.Tenant{}, errors.Wrap(err, "getting tenant by ID")
	}
	return t, nil
}

func (repo *tenantRepository) QueryAllTenants(ctx context.Context) ([]tenant.Tenant, error) {
	tenants := make([]tenant.Tenant, 0)
	err := repo.db.SelectContext(ctx, &tenants, `SELECT id, name, db_name, created_at, updated_at FROM tenant ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying tenants")
	}
	return tenants, nil
}

func (repo *tenantRepository) CreateTenant(ctx context.Context, t tenant.Tenant) (tenant.Tenant, error) {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
		t.UpdatedAt = now
	}
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO tenant (id, name, db_name, created_at, updated_at)
		 VALUES (:id, :name, :db_name, :created_at, :updated_at)`, t)
	if err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "creating tenant")
	}
	return t, nil
}
