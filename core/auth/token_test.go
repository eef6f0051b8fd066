package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueVerifyToken(t *testing.T) {
	codec := NewCodec("secret")

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "Darasa",
			Subject:   "c7035db6-858c-46f7-a47a-f42a8a2bb75a",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID: "collegea",
		Email:    "t@test.test",
		Role:     "teacher",
	}

	token, err := codec.Issue(claims)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	got, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if got.Subject != claims.Subject {
		t.Errorf("Verify() subject = %v, want %v", got.Subject, claims.Subject)
	}
	if got.TenantID != claims.TenantID {
		t.Errorf("Verify() tenant = %v, want %v", got.TenantID, claims.TenantID)
	}
	if got.Role != claims.Role {
		t.Errorf("Verify() role = %v, want %v", got.Role, claims.Role)
	}
	if got.ExpiresAt.Unix() != claims.ExpiresAt.Unix() {
		t.Errorf("Verify() expiry = %v, want %v", got.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
	}
}

func TestVerifyTokenErrors(t *testing.T) {
	codec := NewCodec("secret")
	now := time.Now()

	expired, err := codec.Issue(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	otherKey, err := NewCodec("not-the-secret").Issue(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "no token", wantErr: ErrTokenInvalid},
		{name: "garbage", token: "lmaooolol", wantErr: ErrTokenInvalid},
		{name: "wrong key", token: otherKey, wantErr: ErrTokenInvalid},
		{name: "expired", token: expired, wantErr: ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Verify(tt.token); err != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
