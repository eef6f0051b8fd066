package user

import (
	"fmt"
	"strings"

	"github.com/volatiletech/null/v8"
)

// ForbiddenError denies an authenticated principal access to a resource.
type ForbiddenError struct {
	msg string
}

func (e *ForbiddenError) Error() string { return e.msg }

// RequireRole fails unless the principal's role is one of allowed.
func RequireRole(p Principal, allowed ...Role) error {
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, role := range allowed {
		names[i] = role.String()
	}
	return &ForbiddenError{msg: fmt.Sprintf("access restricted to roles: %s", strings.Join(names, ", "))}
}

// RequireOwnership fails when a student principal targets a record owned by
// someone else. Admins and teachers bypass the check; an absent owner means
// the resource is not owned and any role may access it.
func RequireOwnership(p Principal, owner null.String) error {
	if p.Role == RoleAdmin || p.Role == RoleTeacher {
		return nil
	}
	if !owner.Valid || owner.String == p.ID {
		return nil
	}
	return &ForbiddenError{msg: "students may only access their own records"}
}

// RequireSameTenant fails when the principal belongs to a different tenant
// than the one the request resolved to. A principal without a tenant is
// tenant-agnostic and passes.
func RequireSameTenant(principalTenantID, resolvedTenantID string) error {
	if principalTenantID == "" || resolvedTenantID == "" {
		return nil
	}
	if principalTenantID != resolvedTenantID {
		return &ForbiddenError{msg: "permission denied"}
	}
	return nil
}
