package user

import (
	"strings"
	"testing"

	"github.com/volatiletech/null/v8"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		allowed []Role
		wantOk  bool
	}{
		{name: "admin allowed", role: RoleAdmin, allowed: []Role{RoleAdmin, RoleTeacher}, wantOk: true},
		{name: "teacher allowed", role: RoleTeacher, allowed: []Role{RoleAdmin, RoleTeacher}, wantOk: true},
		{name: "student denied", role: RoleStudent, allowed: []Role{RoleAdmin, RoleTeacher}},
		{name: "student allowed", role: RoleStudent, allowed: []Role{RoleStudent}, wantOk: true},
		{name: "empty set denies all", role: RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(Principal{ID: "u1", Role: tt.role}, tt.allowed...)
			if tt.wantOk {
				if err != nil {
					t.Errorf("RequireRole() error = %v, want nil", err)
				}
				return
			}
			fErr, ok := err.(*ForbiddenError)
			if !ok {
				t.Fatalf("RequireRole() error = %T, want *ForbiddenError", err)
			}
			for _, role := range tt.allowed {
				if !strings.Contains(fErr.Error(), role.String()) {
					t.Errorf("RequireRole() message %q does not list role %q", fErr.Error(), role)
				}
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		id     string
		owner  null.String
		wantOk bool
	}{
		{name: "admin any owner", role: RoleAdmin, id: "u1", owner: null.StringFrom("u2"), wantOk: true},
		{name: "teacher any owner", role: RoleTeacher, id: "u1", owner: null.StringFrom("u2"), wantOk: true},
		{name: "student own record", role: RoleStudent, id: "u1", owner: null.StringFrom("u1"), wantOk: true},
		{name: "student no owner", role: RoleStudent, id: "u1", wantOk: true},
		{name: "student other's record", role: RoleStudent, id: "u1", owner: null.StringFrom("u2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwnership(Principal{ID: tt.id, Role: tt.role}, tt.owner)
			if tt.wantOk != (err == nil) {
				t.Errorf("RequireOwnership() error = %v, wantOk %v", err, tt.wantOk)
			}
			if err != nil {
				if _, ok := err.(*ForbiddenError); !ok {
					t.Errorf("RequireOwnership() error = %T, want *ForbiddenError", err)
				}
			}
		})
	}
}

func TestRequireSameTenant(t *testing.T) {
	tests := []struct {
		name               string
		principalTenantID  string
		resolvedTenantID   string
		wantOk             bool
	}{
		{name: "same tenant", principalTenantID: "collegea", resolvedTenantID: "collegea", wantOk: true},
		{name: "different tenant", principalTenantID: "collegeb", resolvedTenantID: "collegea"},
		{name: "tenant-agnostic principal", resolvedTenantID: "collegea", wantOk: true},
		{name: "no resolved tenant", principalTenantID: "collegea", wantOk: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireSameTenant(tt.principalTenantID, tt.resolvedTenantID)
			if tt.wantOk != (err == nil) {
				t.Errorf("RequireSameTenant() error = %v, wantOk %v", err, tt.wantOk)
			}
		})
	}
}
