package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactCreateConnectsByEmail(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	a := createTestAccount(t, client, "a@x.com")

	connect := ByEmail("a@x.com")
	c, err := client.Contacts().Create(ctx, ContactCreate{
		Name:           strPtr("D"),
		Email:          "d@x.com",
		ConnectAccount: &connect,
	})
	require.NoError(t, err)
	assert.Equal(t, "d@x.com", c.Email)
	assert.True(t, c.AccountID.Valid)
	assert.Equal(t, a.ID, c.AccountID.Int64)

	owner, err := client.Contacts().ContactOf(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "a@x.com", owner.Email)
}

func TestContactCreateMissingAccount(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	connect := ByEmail("nobody@x.com")
	_, err := client.Contacts().Create(ctx, ContactCreate{Email: "d@x.com", ConnectAccount: &connect})
	require.ErrorIs(t, err, ErrNotFound)

	all, err := client.Contacts().FindMany(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "no contact row is written when the account is missing")
}

func TestContactCreateWithoutAccount(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	c, err := client.Contacts().Create(ctx, ContactCreate{Email: "solo@x.com"})
	require.NoError(t, err)
	assert.False(t, c.AccountID.Valid)

	owner, err := client.Contacts().ContactOf(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestContactCreateDuplicateEmail(t *testing.T) {
	client := newTestClient(t)
	createTestAccount(t, client, "a@x.com", "c@x.com")

	_, err := client.Contacts().Create(context.Background(), ContactCreate{Email: "c@x.com"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestContactFindUnique(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	createTestAccount(t, client, "a@x.com", "c@x.com")

	byEmail, err := client.Contacts().FindUnique(ctx, ByEmail("c@x.com"))
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	byID, err := client.Contacts().FindUnique(ctx, ByID(byEmail.ID))
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, byEmail, byID)

	missing, err := client.Contacts().FindUnique(ctx, ByID(byEmail.ID+100))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestContactDisconnect(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	a := createTestAccount(t, client, "a@x.com", "c1@x.com", "c2@x.com")
	createTestAccount(t, client, "b@x.com", "other@x.com")

	t.Run("detaches the named contact only", func(t *testing.T) {
		c, err := client.Contacts().Disconnect(ctx, ByEmail("c1@x.com"), ByEmail("a@x.com"))
		require.NoError(t, err)
		assert.Equal(t, "c1@x.com", c.Email)
		assert.False(t, c.AccountID.Valid)

		remaining, err := client.Accounts().Contacts(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "c2@x.com", remaining[0].Email)

		kept, err := client.Contacts().FindUnique(ctx, ByEmail("c1@x.com"))
		require.NoError(t, err)
		assert.NotNil(t, kept, "the contact row is kept")
	})

	t.Run("contact of another account", func(t *testing.T) {
		_, err := client.Contacts().Disconnect(ctx, ByEmail("other@x.com"), ByEmail("a@x.com"))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("already detached", func(t *testing.T) {
		_, err := client.Contacts().Disconnect(ctx, ByEmail("c1@x.com"), ByEmail("a@x.com"))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := client.Contacts().Disconnect(ctx, ByEmail("c2@x.com"), ByEmail("nobody@x.com"))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing contact", func(t *testing.T) {
		_, err := client.Contacts().Disconnect(ctx, ByEmail("ghost@x.com"), ByEmail("a@x.com"))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("contact not identified", func(t *testing.T) {
		_, err := client.Contacts().Disconnect(ctx, WhereUnique{}, ByEmail("a@x.com"))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}
