package tenant

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// errors
	ErrNotFound               = errors.New("tenant not found")
	ErrIdentificationRequired = errors.New("tenant identification required")
)

// PoolCreationError reports that a tenant exists in the directory but its
// database connection pool could not be established. Retryable by the caller.
type PoolCreationError struct {
	TenantID string
	Err      error
}

func (e *PoolCreationError) Error() string {
	return fmt.Sprintf("creating connection pool for tenant %s: %v", e.TenantID, e.Err)
}

func (e *PoolCreationError) Unwrap() error { return e.Err }

// Tenant is a directory entry mapping a tenant ID to its isolated database.
type Tenant struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	DBName    string    `json:"-" db:"db_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Context is the resolved tenant of one request: the tenant ID plus the
// connection pool bound to it. Immutable once created.
type Context struct {
	TenantID string
	DB       *sqlx.DB
}

// Signals are the request inputs tenant resolution reads from, in priority
// order: host subdomain, token tenant claim, explicit header.
type Signals struct {
	Host         string
	BearerToken  string
	TenantHeader string
}
