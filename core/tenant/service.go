package tenant

import (
	"context"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

// reserved subdomains that can never identify a tenant
var reservedSubdomains = map[string]struct{}{
	"www": {},
	"api": {},
}

type (
	Repository interface {
		GetTenantByID(ctx context.Context, id string) (Tenant, error)
		QueryAllTenants(ctx context.Context) ([]Tenant, error)
		CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
	}

	// TokenVerifier decodes a signed session token. Satisfied by auth.Codec.
	TokenVerifier interface {
		Verify(token string) (*auth.Claims, error)
	}

	Service struct {
		repo  Repository
		codec TokenVerifier
	}
)

func NewService(repo Repository, codec TokenVerifier) *Service {
	return &Service{repo: repo, codec: codec}
}

func (svc *Service) Get(ctx context.Context, id string) (Tenant, error) {
	return svc.repo.GetTenantByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Tenant, error) {
	return svc.repo.QueryAllTenants(ctx)
}

// ResolveID determines the tenant ID for a request. First match wins; a
// reserved or missing subdomain falls through to the token hint, then to the
// explicit header. Token decode failures are swallowed on purpose: a bad
// token is rejected later by authentication, here it is only a best-effort
// hint.
func (svc *Service) ResolveID(sig Signals) (string, error) {
	if sub := SubdomainFromHost(sig.Host); sub != "" {
		return sub, nil
	}
	if sig.BearerToken != "" {
		if claims, err := svc.codec.Verify(sig.BearerToken); err == nil && claims.TenantID != "" {
			return claims.TenantID, nil
		}
	}
	if id := core.CleanString(sig.TenantHeader); id != "" {
		return id, nil
	}
	return "", ErrIdentificationRequired
}

// SubdomainFromHost extracts the first host label as a tenant candidate.
// Returns "" for hosts without a dot and for reserved subdomains.
func SubdomainFromHost(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i] // drop port
	}
	i := strings.IndexByte(host, '.')
	if i <= 0 {
		return ""
	}
	sub := host[:i]
	if _, reserved := reservedSubdomains[strings.ToLower(sub)]; reserved {
		return ""
	}
	return sub
}
