package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	pkgerrors "github.com/pkg/errors"
)

var (
	// errors
	ErrMissingCredential = errors.New("authorization credential not provided")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	TenantID     string `json:"tenant,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Role         string `json:"role,omitempty"`
}

// Codec signs and verifies session tokens.
//
// Verify distinguishes an expired token (ErrTokenExpired; the caller should
// log in again) from a malformed or forged one (ErrTokenInvalid).
type Codec struct {
	signingKey []byte
	method     jwt.SigningMethod
}

func NewCodec(secretKey string) *Codec {
	return &Codec{
		signingKey: []byte(secretKey),
		method:     jwt.SigningMethodHS256,
	}
}

// Issue generates a signed token string representing claims.
func (c *Codec) Issue(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(c.method, claims)
	ss, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", pkgerrors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify checks the signature and expiry of a token string and returns its claims.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != c.method.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
