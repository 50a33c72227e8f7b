package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/goliatone/go-errors"

	auth "github.com/goliatone/go-authflow"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// StoredSession is the unit the store persists: the raw token plus the user
// snapshot that came with it. Both are written together or not at all.
type StoredSession struct {
	Token string           `json:"token"`
	User  *auth.PublicUser `json:"user,omitempty"`
}

// Store persists the local session across process restarts.
// Save replaces the whole session atomically, Clear is idempotent.
type Store interface {
	Load(ctx context.Context) (*StoredSession, error)
	Save(ctx context.Context, session *StoredSession) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the session in a small key/value table so the pair
// survives restarts. The table is created on first use.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS auth_state (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to initialize auth state table")
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*StoredSession, error) {
	var token []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM auth_state WHERE key = ?`, keyToken).Scan(&token)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read stored token")
	}

	session := &StoredSession{Token: string(token)}

	var rawUser []byte
	err = s.db.QueryRowContext(ctx, `SELECT value FROM auth_state WHERE key = ?`, keyUser).Scan(&rawUser)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read stored user")
	}

	if len(rawUser) > 0 {
		user := &auth.PublicUser{}
		if err := json.Unmarshal(rawUser, user); err == nil {
			session.User = user
		}
	}

	return session, nil
}

// Save writes token and user in one transaction so a crash can never leave a
// token without its user or vice versa.
func (s *SQLiteStore) Save(ctx context.Context, session *StoredSession) error {
	if session == nil || session.Token == "" {
		return errors.New("cannot save empty session", errors.CategoryBadInput)
	}

	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode user snapshot")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to begin save transaction")
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO auth_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`

	if _, err := tx.ExecContext(ctx, upsert, keyToken, []byte(session.Token)); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save token")
	}

	if _, err := tx.ExecContext(ctx, upsert, keyUser, rawUser); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save user snapshot")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to commit session save")
	}

	return nil
}

// Clear removes the session. Clearing an empty store is not an error.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_state WHERE key IN (?, ?)`, keyToken, keyUser)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear stored session")
	}
	return nil
}

// MemoryStore keeps the session in process memory, handy for tests and
// short-lived tools.
type MemoryStore struct {
	mu      sync.RWMutex
	session *StoredSession
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil, ErrNoSession
	}

	copied := *s.session
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, session *StoredSession) error {
	if session == nil || session.Token == "" {
		return errors.New("cannot save empty session", errors.CategoryBadInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.session = &copied
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}
