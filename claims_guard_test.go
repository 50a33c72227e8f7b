package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardClaims() *JWTClaims {
	now := time.Now()
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "user-123",
			Audience:  jwt.ClaimStrings{"test-audience"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:  "user-123",
		Mail: "peperone@example.com",
		Name: "Pepe Rone",
	}
}

func TestImmutableClaimsSnapshot_NoMutation(t *testing.T) {
	claims := guardClaims()
	snap := captureImmutableClaims(claims)

	claims.Metadata = map[string]any{"tenant": "acme"}

	require.NoError(t, snap.validate(claims))
}

func TestImmutableClaimsSnapshot_DetectsMutations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*JWTClaims)
		field  string
	}{
		{
			name:   "subject",
			mutate: func(c *JWTClaims) { c.RegisteredClaims.Subject = "someone-else" },
			field:  "sub",
		},
		{
			name:   "issuer",
			mutate: func(c *JWTClaims) { c.RegisteredClaims.Issuer = "rogue-issuer" },
			field:  "iss",
		},
		{
			name:   "uid",
			mutate: func(c *JWTClaims) { c.UID = "someone-else" },
			field:  "uid",
		},
		{
			name:   "email",
			mutate: func(c *JWTClaims) { c.Mail = "other@example.com" },
			field:  "email",
		},
		{
			name:   "full name",
			mutate: func(c *JWTClaims) { c.Name = "Someone Else" },
			field:  "full_name",
		},
		{
			name:   "audience",
			mutate: func(c *JWTClaims) { c.RegisteredClaims.Audience = jwt.ClaimStrings{"other"} },
			field:  "aud",
		},
		{
			name: "issued at",
			mutate: func(c *JWTClaims) {
				c.RegisteredClaims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			},
			field: "iat",
		},
		{
			name: "expiry",
			mutate: func(c *JWTClaims) {
				c.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(24 * time.Hour))
			},
			field: "exp",
		},
		{
			name:   "cleared expiry",
			mutate: func(c *JWTClaims) { c.RegisteredClaims.ExpiresAt = nil },
			field:  "exp",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims := guardClaims()
			snap := captureImmutableClaims(claims)

			tc.mutate(claims)

			err := snap.validate(claims)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrImmutableClaimMutation)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}
