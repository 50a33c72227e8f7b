package activitymap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-authflow"
	"github.com/goliatone/go-authflow/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	occurred := time.Now().Add(-time.Minute)

	record := activitymap.Normalize(auth.ActivityEvent{
		EventType:  auth.ActivityEventLoginSuccess,
		Actor:      auth.ActorRef{ID: "user-123", Type: "user"},
		UserID:     "user-123",
		Metadata:   map[string]any{"identifier": "peperone@example.com"},
		OccurredAt: occurred,
	})

	assert.Equal(t, "user-123", record.ActorID)
	assert.Equal(t, "auth.login.success", record.Verb)
	assert.Equal(t, "user", record.ObjectType)
	assert.Equal(t, "user-123", record.ObjectID)
	assert.Equal(t, "auth", record.Channel)
	assert.Equal(t, occurred, record.OccurredAt)

	require.NotNil(t, record.Metadata)
	assert.Equal(t, "peperone@example.com", record.Metadata["identifier"])
	assert.Equal(t, "user", record.Metadata[activitymap.MetadataKeyActorType])
}

func TestNormalizeActorFallback(t *testing.T) {
	record := activitymap.Normalize(auth.ActivityEvent{
		EventType: auth.ActivityEventLoginFailure,
	})

	assert.Equal(t, "system", record.ActorID)
	assert.False(t, record.OccurredAt.IsZero())
}

func TestNormalizeOptions(t *testing.T) {
	record := activitymap.Normalize(
		auth.ActivityEvent{
			EventType: auth.ActivityEventRegisterSuccess,
			UserID:    "user-123",
		},
		activitymap.WithDefaultChannel("audit"),
		activitymap.WithDefaultObjectType("account"),
		activitymap.WithObjectIDResolver(func(e auth.ActivityEvent) string {
			return "account:" + e.UserID
		}),
	)

	assert.Equal(t, "audit", record.Channel)
	assert.Equal(t, "account", record.ObjectType)
	assert.Equal(t, "account:user-123", record.ObjectID)
}

func TestNormalizeDoesNotMutateEventMetadata(t *testing.T) {
	meta := map[string]any{"identifier": "peperone@example.com"}

	record := activitymap.Normalize(auth.ActivityEvent{
		EventType: auth.ActivityEventLoginSuccess,
		Actor:     auth.ActorRef{Type: "user"},
		Metadata:  meta,
	})

	record.Metadata["injected"] = true
	_, exists := meta["injected"]
	assert.False(t, exists)
	_, exists = meta[activitymap.MetadataKeyActorType]
	assert.False(t, exists)
}
