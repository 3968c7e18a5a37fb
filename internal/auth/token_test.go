package auth

import (
	"context"
	"testing"

	"drivehub/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestMintAndParseToken(t *testing.T) {
	user := &db.User{ID: 7, Email: "alice@example.com", Role: db.RoleAdmin}

	token, err := MintToken(testSecret, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	actor, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, 7, actor.UserID)
	assert.Equal(t, db.RoleAdmin, actor.Role)
	assert.True(t, actor.IsAdmin())
}

func TestParseTokenWrongSecret(t *testing.T) {
	user := &db.User{ID: 7, Email: "alice@example.com", Role: db.RoleCustomer}

	token, err := MintToken(testSecret, user)
	require.NoError(t, err)

	_, err = ParseToken("another-secret", token)
	require.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.jwt")
	require.Error(t, err)
}

func TestMintTokenRequiresSecret(t *testing.T) {
	_, err := MintToken("", &db.User{ID: 1, Role: db.RoleCustomer})
	require.Error(t, err)
}

func TestActorContextRoundTrip(t *testing.T) {
	actor := Actor{UserID: 3, Role: db.RoleCustomer}

	ctx := WithActor(context.Background(), actor)
	got, ok := ActorFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, actor, got)

	_, ok = ActorFrom(context.Background())
	assert.False(t, ok)
}
