package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
)

var (
	contextUserKey   = "principal"
	contextClaimsKey = "userClaims"
)

// tenantIDHeader is the lowest-priority tenant signal, meant for machine
// clients and tests.
const tenantIDHeader = "X-Tenant-ID"

// bearerToken extracts the token from the Authorization header; "" when
// absent or malformed.
func bearerToken(req *http.Request) string {
	header := req.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// GetPrincipalClaims builds the session claims for a user.
func GetPrincipalClaims(usr user.User, origIat ...int64) *auth.Claims {
	now := time.Now()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = now.Unix()
	}

	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    core.Conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(core.Conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		TenantID:     usr.TenantID,
		Email:        usr.Email,
		Name:         usr.Name,
		Role:         usr.Role.String(),
	}
}

// authenticateCredentials checks a login attempt against the global store.
// It does not record the login; callers update lastLogin only once the
// attempt fully passes, tenant check included.
func authenticateCredentials(ctx echo.Context, uname, pwd string, svc *user.Service) (user.User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx.Request().Context(), uname)
	if err != nil {
		if err == user.ErrNotFound {
			return user.User{}, errAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errAuthenticationFailed
	}
	if !usr.IsActive {
		return user.User{}, errAccountDeactivated
	}
	return usr, nil
}

// authenticate verifies the bearer token and loads the caller's Principal
// from the global store.
func authenticate(ctx echo.Context, codec *auth.Codec, svc *user.Service) (user.Principal, *auth.Claims, error) {
	token := bearerToken(ctx.Request())
	if token == "" {
		return user.Principal{}, nil, auth.ErrMissingCredential
	}
	claims, err := codec.Verify(token)
	if err != nil {
		return user.Principal{}, nil, err
	}
	p, err := svc.GetPrincipal(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if err == user.ErrNotFound {
			return user.Principal{}, nil, err
		}
		return user.Principal{}, nil, errors.Wrap(err, "finding principal by ID")
	}
	return p, claims, nil
}

// authMiddleware runs the authentication stage and the tenant-membership
// check: the Principal's tenant must match the tenant the request resolved
// to. Requires tenantMiddleware to have run.
func authMiddleware(codec *auth.Codec, svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, claims, err := authenticate(ctx, codec, svc)
			if err != nil {
				return err
			}

			tc, err := getContextTenant(ctx)
			if err != nil {
				return err
			}
			if err = user.RequireSameTenant(p.TenantID, tc.TenantID); err != nil {
				return err
			}

			ctx.Set(contextUserKey, p)
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func getContextPrincipal(ctx echo.Context) (user.Principal, error) {
	if p, ok := ctx.Get(contextUserKey).(user.Principal); ok {
		return p, nil
	}
	return user.Principal{}, errUnauthorized
}

func getContextClaims(ctx echo.Context) (*auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*auth.Claims); ok {
		return claims, nil
	}
	return nil, errUnauthorized
}

// refreshToken re-issues a token within the refresh window keyed on the
// original issued-at timestamp.
func refreshToken(ctx echo.Context, codec *auth.Codec, svc *user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return "", err
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(core.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	usr, err := svc.GetByID(ctx.Request().Context(), p.ID)
	if err != nil {
		return "", errors.Wrap(err, "finding user by ID")
	}
	token, err := codec.Issue(GetPrincipalClaims(usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
