package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUserIdentifier(t *testing.T) {
	id := uuid.New().String()

	tests := []struct {
		name       string
		identifier string
		want       []identifierOption
	}{
		{
			name:       "uuid resolves to id column",
			identifier: id,
			want:       []identifierOption{{column: "id", value: id}},
		},
		{
			name:       "email resolves to email column lowercased",
			identifier: "PepeRone@Example.com",
			want:       []identifierOption{{column: "email", value: "peperone@example.com"}},
		},
		{
			name:       "email with surrounding whitespace",
			identifier: "  peperone@example.com  ",
			want:       []identifierOption{{column: "email", value: "peperone@example.com"}},
		},
		{
			name:       "empty identifier resolves to nothing",
			identifier: "",
			want:       nil,
		},
		{
			name:       "whitespace only resolves to nothing",
			identifier: "   ",
			want:       nil,
		},
		{
			name:       "plain string is neither uuid nor email",
			identifier: "not-an-identifier",
			want:       []identifierOption{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveUserIdentifier(tc.identifier)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrepareUserDefaults(t *testing.T) {
	record := &User{
		Email: "  PepeRone@Example.COM ",
	}

	prepareUserDefaults(record)

	assert.Equal(t, "peperone@example.com", record.Email)
	assert.NotEqual(t, uuid.Nil, record.ID)
}

func TestPrepareUserDefaults_KeepsExistingID(t *testing.T) {
	id := uuid.New()
	record := &User{
		ID:    id,
		Email: "peperone@example.com",
	}

	prepareUserDefaults(record)

	assert.Equal(t, id, record.ID)
}

func TestPrepareUserDefaults_NilRecord(t *testing.T) {
	require.NotPanics(t, func() {
		prepareUserDefaults(nil)
	})
}

func TestIsEmail(t *testing.T) {
	assert.True(t, isEmail("peperone@example.com"))
	assert.True(t, isEmail("a+b@example.co"))
	assert.False(t, isEmail("not-an-email"))
	assert.False(t, isEmail(""))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID(uuid.New().String()))
	assert.False(t, isUUID("not-a-uuid"))
	assert.False(t, isUUID(""))
}
