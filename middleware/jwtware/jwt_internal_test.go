package jwtware

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestKeyfuncOptionsRefreshErrorHandlerIsSafe(t *testing.T) {
	opts := keyfuncOptions(nil)
	require.NotNil(t, opts.RefreshErrorHandler)
	require.NotPanics(t, func() {
		opts.RefreshErrorHandler(errors.New("refresh failed"))
	})

	require.Equal(t, time.Hour, opts.RefreshInterval)
	require.Equal(t, 5*time.Minute, opts.RefreshRateLimit)
	require.Equal(t, 10*time.Second, opts.RefreshTimeout)
	require.True(t, opts.RefreshUnknownKID)
}

func TestMapClaimsAdapter(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	m := mapClaims(jwt.MapClaims{
		"sub":       "user-123",
		"email":     "peperone@example.com",
		"full_name": "Pepe Rone",
		"exp":       float64(now.Add(time.Hour).Unix()),
		"iat":       now.Unix(),
	})

	require.Equal(t, "user-123", m.Subject())
	require.Equal(t, "user-123", m.UserID(), "uid should fall back to sub")
	require.Equal(t, "peperone@example.com", m.Email())
	require.Equal(t, "Pepe Rone", m.FullName())
	require.Equal(t, now.Add(time.Hour).Unix(), m.Expires().Unix())
	require.Equal(t, now.Unix(), m.IssuedAt().Unix())

	m["uid"] = "explicit-uid"
	require.Equal(t, "explicit-uid", m.UserID())
}

func TestMapClaimsAdapter_MissingValues(t *testing.T) {
	m := mapClaims(jwt.MapClaims{})

	require.Empty(t, m.Subject())
	require.Empty(t, m.UserID())
	require.True(t, m.Expires().IsZero())
	require.True(t, m.IssuedAt().IsZero())
}
