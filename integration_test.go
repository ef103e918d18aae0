package authkit_test

import (
	"context"
	"testing"

	"github.com/accessmanagerpro/authkit"
	"github.com/accessmanagerpro/authkit/provider/hosted"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// full wiring against the hosted provider: register, login, projection
// into state through the session synchronizer, then logout.
func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()

	db, err := hosted.Open(":memory:")
	require.NoError(t, err)
	db.DB.SetMaxOpenConns(1)
	defer db.Close()
	require.NoError(t, hosted.CreateSchema(ctx, db))

	client, err := hosted.NewClient(db, &hosted.Config{
		SigningKey:      "integration-signing-key",
		TokenExpiration: 1,
		Issuer:          "authkit-test",
	})
	require.NoError(t, err)

	profiles := hosted.NewProfiles(db, client)
	store := authkit.NewStore()
	notifier := &RecordingNotifier{}

	container := authkit.New(store, client, profiles).WithNotifier(notifier)
	sync := authkit.NewSynchronizer(store, client, profiles)
	defer sync.Bind().Unsubscribe()

	// register: identity plus profile row, no session yet
	require.NoError(t, container.Register(ctx, "grace@x.com", "super-secret", "Grace", "Hopper"))
	require.Len(t, notifier.Successes, 1)
	assert.False(t, store.State().IsAuthenticated)

	// login: credentials verified, session broadcast, profile projected
	require.NoError(t, container.LoginAndWait(ctx, "grace@x.com", "super-secret"))

	state := store.State()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
	require.NotNil(t, state.User)
	assert.Equal(t, "grace@x.com", state.User.Email)
	assert.Equal(t, "Grace", state.User.FirstName)
	assert.Equal(t, "Hopper", state.User.LastName)
	assert.True(t, state.User.HasRole("USER"))
	require.NotNil(t, state.User.CreatedAt)

	// logout: provider session ends and state resets
	require.NoError(t, container.Logout(ctx))
	final := store.State()
	assert.False(t, final.IsAuthenticated)
	assert.Nil(t, final.User)
	require.Len(t, notifier.Successes, 2)
}

func TestLoginFailureLeavesStateClean(t *testing.T) {
	ctx := context.Background()

	db, err := hosted.Open(":memory:")
	require.NoError(t, err)
	db.DB.SetMaxOpenConns(1)
	defer db.Close()
	require.NoError(t, hosted.CreateSchema(ctx, db))

	client, err := hosted.NewClient(db, &hosted.Config{
		SigningKey:      "integration-signing-key",
		TokenExpiration: 1,
		Issuer:          "authkit-test",
	})
	require.NoError(t, err)

	profiles := hosted.NewProfiles(db, client)
	store := authkit.NewStore()
	container := authkit.New(store, client, profiles)
	sync := authkit.NewSynchronizer(store, client, profiles)
	defer sync.Bind().Unsubscribe()

	require.NoError(t, container.Register(ctx, "grace@x.com", "super-secret", "Grace", "Hopper"))

	err = container.Login(ctx, "grace@x.com", "wrong password")
	assert.ErrorIs(t, err, authkit.ErrInvalidCredentials)

	state := store.State()
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
	assert.Equal(t, "Invalid credentials", state.Error)
}
