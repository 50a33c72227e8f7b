package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-authflow"
)

func newTestAuthenticator(provider auth.IdentityProvider) *auth.Auther {
	cfg := testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 168,
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
	}
	return auth.NewAuthenticator(provider, cfg)
}

func TestAutherLogin(t *testing.T) {
	identity := testIdentity{
		id:       "user-123",
		email:    "peperone@example.com",
		fullName: "Pepe Rone",
	}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "sup3r-secret").
		Return(identity, nil)

	authenticator := newTestAuthenticator(provider)

	token, err := authenticator.Login(context.Background(), "peperone@example.com", "sup3r-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := authenticator.TokenService().Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "peperone@example.com", claims.Email())
	assert.Equal(t, "Pepe Rone", claims.FullName())
	provider.AssertExpectations(t)
}

func TestAutherLogin_InvalidCredentials(t *testing.T) {
	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "wrong").
		Return(nil, auth.ErrInvalidCredentials)

	authenticator := newTestAuthenticator(provider)

	_, err := authenticator.Login(context.Background(), "peperone@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAutherLogin_NilIdentity(t *testing.T) {
	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "sup3r-secret").
		Return(nil, nil)

	authenticator := newTestAuthenticator(provider)

	_, err := authenticator.Login(context.Background(), "peperone@example.com", "sup3r-secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAutherLogin_EmitsActivityEvents(t *testing.T) {
	identity := testIdentity{id: "user-123", email: "peperone@example.com"}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "sup3r-secret").
		Return(identity, nil)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "wrong").
		Return(nil, auth.ErrInvalidCredentials)

	var events []auth.ActivityEvent
	authenticator := newTestAuthenticator(provider)
	authenticator.WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		events = append(events, event)
		return nil
	}))

	_, err := authenticator.Login(context.Background(), "peperone@example.com", "sup3r-secret")
	require.NoError(t, err)

	_, err = authenticator.Login(context.Background(), "peperone@example.com", "wrong")
	require.Error(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, auth.ActivityEventLoginSuccess, events[0].EventType)
	assert.Equal(t, "user-123", events[0].UserID)
	assert.False(t, events[0].OccurredAt.IsZero())
	assert.Equal(t, auth.ActivityEventLoginFailure, events[1].EventType)
}

func TestAutherLogin_ClaimsDecoratorMetadata(t *testing.T) {
	identity := testIdentity{id: "user-123", email: "peperone@example.com"}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "sup3r-secret").
		Return(identity, nil)

	authenticator := newTestAuthenticator(provider)
	authenticator.WithClaimsDecorator(auth.ClaimsDecoratorFunc(func(_ context.Context, _ auth.Identity, claims *auth.JWTClaims) error {
		if claims.Metadata == nil {
			claims.Metadata = map[string]any{}
		}
		claims.Metadata["tenant"] = "acme"
		return nil
	}))

	token, err := authenticator.Login(context.Background(), "peperone@example.com", "sup3r-secret")
	require.NoError(t, err)

	claims, err := authenticator.TokenService().Validate(token)
	require.NoError(t, err)

	jc, ok := claims.(*auth.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "acme", jc.Metadata["tenant"])
}

func TestAutherLogin_ClaimsDecoratorCannotMutateIdentity(t *testing.T) {
	identity := testIdentity{id: "user-123", email: "peperone@example.com"}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "sup3r-secret").
		Return(identity, nil)

	authenticator := newTestAuthenticator(provider)
	authenticator.WithClaimsDecorator(auth.ClaimsDecoratorFunc(func(_ context.Context, _ auth.Identity, claims *auth.JWTClaims) error {
		claims.UID = "someone-else"
		return nil
	}))

	_, err := authenticator.Login(context.Background(), "peperone@example.com", "sup3r-secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrImmutableClaimMutation)
}

func TestAutherSessionFromToken(t *testing.T) {
	identity := testIdentity{
		id:       "user-123",
		email:    "peperone@example.com",
		fullName: "Pepe Rone",
	}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "sup3r-secret").
		Return(identity, nil)

	authenticator := newTestAuthenticator(provider)

	token, err := authenticator.Login(context.Background(), "peperone@example.com", "sup3r-secret")
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", session.GetUserID())
	assert.Equal(t, []string{"test-audience"}, session.GetAudience())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.True(t, session.GetExpiration().After(time.Now()))
}

func TestAutherSessionFromToken_Invalid(t *testing.T) {
	authenticator := newTestAuthenticator(new(MockIdentityProvider))

	_, err := authenticator.SessionFromToken("not-a-token")
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestAutherSessionFromToken_EmitsTokenRejected(t *testing.T) {
	var events []auth.ActivityEvent
	authenticator := newTestAuthenticator(new(MockIdentityProvider))
	authenticator.WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		events = append(events, event)
		return nil
	}))

	_, err := authenticator.SessionFromToken("not-a-token")
	require.Error(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, auth.ActivityEventTokenRejected, events[0].EventType)
	assert.False(t, events[0].OccurredAt.IsZero())
	assert.Contains(t, events[0].Metadata, "error")
}

func TestAutherIdentityFromSession(t *testing.T) {
	identity := testIdentity{
		id:       "user-123",
		email:    "peperone@example.com",
		fullName: "Pepe Rone",
	}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "peperone@example.com", "sup3r-secret").
		Return(identity, nil)
	provider.On("FindIdentityByIdentifier", mock.Anything, "user-123").
		Return(identity, nil)

	authenticator := newTestAuthenticator(provider)

	token, err := authenticator.Login(context.Background(), "peperone@example.com", "sup3r-secret")
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(token)
	require.NoError(t, err)

	got, err := authenticator.IdentityFromSession(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "peperone@example.com", got.Email())
}
