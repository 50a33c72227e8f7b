package auth_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/goliatone/go-authflow"
)

var usersTableDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
}

func newUsersDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	for _, ddl := range usersTableDDL {
		_, err = db.ExecContext(context.Background(), ddl)
		require.NoError(t, err)
	}

	return db
}

func TestUsersRegister_DuplicateIdentifier(t *testing.T) {
	db := newUsersDB(t)
	repo := auth.NewRepositoryManager(db)
	require.NoError(t, repo.Validate())

	first, err := repo.Users().Register(context.Background(), &auth.User{
		Email:        "peperone@example.com",
		FullName:     "Pepe Rone",
		PasswordHash: "stored-hash",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ID)

	_, err = repo.Users().Register(context.Background(), &auth.User{
		Email:        "Peperone@example.com",
		FullName:     "Impostor",
		PasswordHash: "other-hash",
	})
	require.Error(t, err)
	assert.True(t, auth.IsDuplicateIdentifierError(err))

	kept, err := repo.Users().GetByIdentifier(context.Background(), "peperone@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, kept.ID)
	assert.Equal(t, "Pepe Rone", kept.FullName)
	assert.Equal(t, "stored-hash", kept.PasswordHash)
}

func TestRegisterUserHandler_DuplicateKeepsFirstAccount(t *testing.T) {
	db := newUsersDB(t)
	repo := auth.NewRepositoryManager(db)

	var events []auth.ActivityEvent
	handler := auth.NewRegisterUserHandler(repo).
		WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
			events = append(events, event)
			return nil
		}))

	require.NoError(t, handler.Execute(context.Background(), auth.RegisterUserMessage{
		Email:    "peperone@example.com",
		FullName: "Pepe Rone",
		Password: "sup3r-secret",
	}))

	err := handler.Execute(context.Background(), auth.RegisterUserMessage{
		Email:    "PEPERONE@example.com",
		FullName: "Impostor",
		Password: "other-secret",
	})
	require.Error(t, err)
	assert.True(t, auth.IsDuplicateIdentifierError(err))

	kept, err := repo.Users().GetByIdentifier(context.Background(), "peperone@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Pepe Rone", kept.FullName)
	require.NoError(t, auth.ComparePasswordAndHash("sup3r-secret", kept.PasswordHash))

	require.Len(t, events, 2)
	assert.Equal(t, auth.ActivityEventRegisterSuccess, events[0].EventType)
	assert.Equal(t, kept.ID.String(), events[0].UserID)
	assert.False(t, events[0].OccurredAt.IsZero())
	assert.Equal(t, auth.ActivityEventRegisterFailure, events[1].EventType)
}

type usersStore struct {
	users auth.Users
}

func (s usersStore) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return s.users.GetByIdentifier(ctx, identifier)
}

func TestUsersGetByIdentifier_UnknownIsNotFound(t *testing.T) {
	db := newUsersDB(t)
	repo := auth.NewRepositoryManager(db)

	_, err := repo.Users().GetByIdentifier(context.Background(), "ghost@example.com")
	require.Error(t, err)

	provider := auth.NewUserProvider(usersStore{users: repo.Users()})
	_, err = provider.VerifyIdentity(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
