package client

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	auth "github.com/goliatone/go-authflow"
)

// API is the server surface the session service depends on.
type API interface {
	SignUp(ctx context.Context, email, fullName, password string) (*AuthPayload, error)
	SignIn(ctx context.Context, email, password string) (*AuthPayload, error)
	Me(ctx context.Context, token string) (*auth.PublicUser, error)
	SignOut(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) error
}

var _ API = (*APIClient)(nil)

// Service owns the local session lifecycle: it signs users in and out,
// restores the persisted session on startup, and keeps token and user
// snapshot in sync with the store. All operations are serialized, callers
// racing Restore observe either the pre or post restore state, never a
// half-written one.
type Service struct {
	mu      sync.Mutex
	api     API
	store   Store
	logger  auth.Logger
	session *StoredSession
}

type ServiceOption func(*Service)

func WithServiceLogger(l auth.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(api API, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		api:   api,
		store: store,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SignUp registers the account and adopts the returned session, so a new
// user is signed in right away.
func (s *Service) SignUp(ctx context.Context, email, fullName, password string) (*auth.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.api.SignUp(ctx, email, fullName, password)
	if err != nil {
		return nil, err
	}

	return s.adoptSession(ctx, payload)
}

// SignIn exchanges credentials for a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*auth.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.adoptSession(ctx, payload)
}

// SignOut always leaves the client signed out. The server call is best
// effort, local state is cleared no matter what.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && s.session.Token != "" {
		if err := s.api.SignOut(ctx, s.session.Token); err != nil && s.logger != nil {
			s.logger.Warn("server sign out failed, clearing local session anyway", "error", err)
		}
	}

	s.clearLocked(ctx)
	return nil
}

// Restore loads the persisted session and revalidates it with the server.
// An expired or rejected token clears the session; a network failure keeps
// it so a later retry can still succeed. Call this once at startup before
// serving identity reads.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	if tokenExpired(stored.Token) {
		s.clearLocked(ctx)
		return ErrNoSession
	}

	if err := s.api.VerifyToken(ctx, stored.Token); err != nil {
		if IsUnauthorizedError(err) {
			s.clearLocked(ctx)
			return err
		}
		// transport failure: keep the stored session for a later retry
		return err
	}

	user, err := s.api.Me(ctx, stored.Token)
	if err != nil {
		if IsUnauthorizedError(err) {
			s.clearLocked(ctx)
			return err
		}
		return err
	}

	stored.User = user
	if err := s.store.Save(ctx, stored); err != nil {
		return err
	}

	s.session = stored
	return nil
}

// CurrentIdentity re-fetches the account behind the active token. A 401
// clears the session, the token is dead and keeping it would only produce
// more 401s.
func (s *Service) CurrentIdentity(ctx context.Context) (*auth.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.Token == "" {
		return nil, ErrNoSession
	}

	user, err := s.api.Me(ctx, s.session.Token)
	if err != nil {
		if IsUnauthorizedError(err) {
			s.clearLocked(ctx)
		}
		return nil, err
	}

	s.session.User = user
	if err := s.store.Save(ctx, s.session); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist refreshed user snapshot", "error", err)
	}

	return user, nil
}

// CachedIdentity returns the locally stored user snapshot without a server
// round trip. Returns ErrNoSession when signed out.
func (s *Service) CachedIdentity() (*auth.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrNoSession
	}

	return s.session.User, nil
}

// Token returns the active token or an empty string when signed out.
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// IsAuthenticated reports whether a session is active in memory.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.session.Token != ""
}

func (s *Service) adoptSession(ctx context.Context, payload *AuthPayload) (*auth.PublicUser, error) {
	session := &StoredSession{
		Token: payload.Token,
		User:  payload.User,
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.session = session
	return payload.User, nil
}

func (s *Service) clearLocked(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil && s.logger != nil {
		s.logger.Warn("failed to clear stored session", "error", err)
	}
	s.session = nil
}

// tokenExpired checks the exp claim locally without verifying the signature.
// The server remains the authority, this only avoids a doomed round trip.
// The boundary is exclusive, exp equal to now counts as expired.
func tokenExpired(raw string) bool {
	claims := &auth.JWTClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return true
	}

	return claims.IsExpired(time.Now())
}
