package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/tenant"
	"github.com/trezcool/darasa/storage/database"
)

var contextTenantKey = "tenant"

// tenantMiddleware is the first pipeline stage: it resolves the tenant for
// the request and binds that tenant's connection pool to the context. No
// later stage runs when resolution or pool acquisition fails.
func tenantMiddleware(svc *tenant.Service, registry *database.PoolRegistry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			id, err := svc.ResolveID(tenant.Signals{
				Host:         req.Host,
				BearerToken:  bearerToken(req),
				TenantHeader: req.Header.Get(tenantIDHeader),
			})
			if err != nil {
				return err
			}

			db, err := registry.GetPool(req.Context(), id)
			if err != nil {
				return errors.Wrap(err, "acquiring tenant pool")
			}

			ctx.Set(contextTenantKey, tenant.Context{TenantID: id, DB: db})
			return next(ctx)
		}
	}
}

func getContextTenant(ctx echo.Context) (tenant.Context, error) {
	if tc, ok := ctx.Get(contextTenantKey).(tenant.Context); ok {
		return tc, nil
	}
	return tenant.Context{}, tenant.ErrIdentificationRequired
}
