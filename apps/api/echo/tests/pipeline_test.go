package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
)

// Test_admissionPipeline walks a request through every stage in order:
// tenant resolution, pool acquisition, authentication, tenant membership.
func Test_admissionPipeline(t *testing.T) {
	app := setup(t)

	createTenant(t, "collegea", "College A")
	createTenant(t, "collegeb", "College B")
	teacherA := createUser(t, "Teacher A", "teachera", "teachera@test.cd", "", "collegea", user.RoleTeacher, true)
	teacherB := createUser(t, "Teacher B", "teacherb", "teacherb@test.cd", "", "collegeb", user.RoleTeacher, true)

	expiredToken := func() string {
		claims := getExpiredClaims(t, teacherA)
		token, err := codec.Issue(claims)
		if err != nil {
			t.Fatalf("issuing expired token failed: %v", err)
		}
		return token
	}()

	tests := []httpTest{
		{
			name: "no tenant signals", path: "/v1/users/me",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errTenantRequired),
		},
		{
			name: "unknown tenant host", path: "/v1/users/me", host: "nowhere.darasa.cd", token: getToken(t, teacherA),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errUnknownTenant),
		},
		{
			name: "reserved subdomain falls through to header", path: "/v1/users/me", host: "www.darasa.cd",
			tenantID: "collegea", token: getToken(t, teacherA),
			wantCode: http.StatusOK,
		},
		{
			name: "host with port", path: "/v1/users/me", host: "collegea.darasa.cd:8000", token: getToken(t, teacherA),
			wantCode: http.StatusOK,
		},
		{
			name: "header identifies tenant", path: "/v1/users/me", tenantID: "collegeb", token: getToken(t, teacherB),
			wantCode: http.StatusOK,
		},
		{
			name: "token claim identifies tenant", path: "/v1/users/me", token: getToken(t, teacherB),
			wantCode: http.StatusOK,
		},
		{
			name: "host wins over token claim", path: "/v1/users/me", host: "collegea.darasa.cd", token: getToken(t, teacherB),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "no credential", path: "/v1/users/me", host: "collegea.darasa.cd",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "garbage token swallowed at resolution, rejected at auth", path: "/v1/users/me",
			tenantID: "collegea", token: "lol.not.ajwt",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken),
		},
		{
			name: "expired token", path: "/v1/users/me", host: "collegea.darasa.cd", token: expiredToken,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errExpiredToken),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_admissionPipeline_noPoolWithoutTenant(t *testing.T) {
	app := setup(t)
	createTenant(t, "collegea", "College A")

	tt := httpTest{
		method: http.MethodGet, path: "/v1/users/me",
		wantCode: http.StatusBadRequest, wantData: marchallObj(t, errTenantRequired),
	}
	req, rec := newRequest(tt)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	if n := openerCallCount(); n != 0 {
		t.Errorf("opener called %d times for an unidentified request; want 0", n)
	}
}

func Test_admissionPipeline_poolCreationFailure(t *testing.T) {
	app := setup(t)
	createTenant(t, "collegea", "College A")
	usr := createUser(t, "Teacher A", "teachera", "teachera@test.cd", "", "collegea", user.RoleTeacher, true)

	failingTenants["collegea"] = struct{}{}

	tt := httpTest{
		method: http.MethodGet, path: "/v1/users/me", host: "collegea.darasa.cd", token: getToken(t, usr),
		wantCode: http.StatusServiceUnavailable, wantData: marchallObj(t, httpErr{Message: "tenant database unavailable"}),
	}
	req, rec := newRequest(tt)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	// failures are not cached; the next request goes through
	delete(failingTenants, "collegea")

	tt.wantCode = http.StatusOK
	tt.wantData = nil
	req, rec = newRequest(tt)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_admissionPipeline_poolReuse(t *testing.T) {
	app := setup(t)
	createTenant(t, "collegea", "College A")
	usr := createUser(t, "Teacher A", "teachera", "teachera@test.cd", "", "collegea", user.RoleTeacher, true)

	tt := httpTest{method: http.MethodGet, path: "/v1/users/me", host: "collegea.darasa.cd", token: getToken(t, usr), wantCode: http.StatusOK}
	for i := 0; i < 3; i++ {
		req, rec := newRequest(tt)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	}

	if n := openerCallCount(); n != 1 {
		t.Errorf("opener called %d times across 3 requests; want 1", n)
	}
}

// getExpiredClaims builds claims whose expiry and refresh window are both in
// the past.
func getExpiredClaims(t *testing.T, usr user.User) *auth.Claims {
	t.Helper()
	past := time.Now().Add(-2 * core.Conf.Server.JWTExpirationDelta)
	claims := GetPrincipalClaims(usr, past.Unix())
	claims.IssuedAt = jwt.NewNumericDate(past)
	claims.ExpiresAt = jwt.NewNumericDate(past.Add(core.Conf.Server.JWTExpirationDelta))
	return claims
}
