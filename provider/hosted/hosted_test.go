package hosted_test

import (
	"context"
	"testing"

	"github.com/accessmanagerpro/authkit"
	"github.com/accessmanagerpro/authkit/provider/hosted"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func testConfig() *hosted.Config {
	return &hosted.Config{
		SigningKey:      "test-signing-key",
		TokenExpiration: 1,
		Issuer:          "authkit-test",
	}
}

func testDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := hosted.Open(":memory:")
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive for the test
	db.DB.SetMaxOpenConns(1)

	require.NoError(t, hosted.CreateSchema(context.Background(), db))
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func testClient(t *testing.T) (*hosted.Client, *bun.DB) {
	t.Helper()

	db := testDB(t)
	client, err := hosted.NewClient(db, testConfig())
	require.NoError(t, err)

	return client, db
}

func TestSignUpCreatesIdentity(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	identity, err := client.SignUp(ctx, "Ada@X.com", "super-secret", map[string]any{
		"first_name": "Ada",
	})
	require.NoError(t, err)
	require.NotNil(t, identity)

	// email is normalized, id is a real uuid
	assert.Equal(t, "ada@x.com", identity.Email())
	_, err = uuid.Parse(identity.ID())
	assert.NoError(t, err)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	_, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)

	_, err = client.SignUp(ctx, "a@x.com", "another-secret", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestVerifyCredentialsStartsSessionAndNotifies(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	identity, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)

	var events []authkit.SessionEvent
	sub := client.OnSessionChange(func(_ context.Context, event authkit.SessionEvent, _ authkit.Session) {
		events = append(events, event)
	})
	defer sub.Unsubscribe()

	session, err := client.VerifyCredentials(ctx, "a@x.com", "super-secret")
	require.NoError(t, err)

	assert.Equal(t, identity.ID(), session.GetUserID())
	assert.Equal(t, "a@x.com", session.GetEmail())
	assert.NotEmpty(t, session.GetAccessToken())
	require.NotNil(t, session.GetIssuedAt())
	require.NotNil(t, session.GetExpiresAt())
	assert.True(t, session.GetExpiresAt().After(*session.GetIssuedAt()))

	// INITIAL_SESSION on subscribe, then SIGNED_IN
	require.Len(t, events, 2)
	assert.Equal(t, authkit.SessionEventInitial, events[0])
	assert.Equal(t, authkit.SessionEventSignedIn, events[1])

	require.NotNil(t, client.Session())
	assert.Equal(t, identity.ID(), client.Session().GetUserID())
}

func TestVerifyCredentialsRejectsBadPassword(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	_, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)

	_, err = client.VerifyCredentials(ctx, "a@x.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, hosted.ErrMismatchedHashAndPassword)
	assert.Nil(t, client.Session())
}

func TestVerifyCredentialsUnknownEmailLooksLikeBadPassword(t *testing.T) {
	client, _ := testClient(t)

	_, err := client.VerifyCredentials(context.Background(), "nobody@x.com", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, hosted.ErrMismatchedHashAndPassword)
}

func TestSignOutEndsSessionAndNotifies(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	_, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)
	_, err = client.VerifyCredentials(ctx, "a@x.com", "super-secret")
	require.NoError(t, err)

	var lastSession authkit.Session
	var lastEvent authkit.SessionEvent
	sub := client.OnSessionChange(func(_ context.Context, event authkit.SessionEvent, session authkit.Session) {
		lastEvent = event
		lastSession = session
	})
	defer sub.Unsubscribe()

	require.NoError(t, client.SignOut(ctx))
	assert.Equal(t, authkit.SessionEventSignedOut, lastEvent)
	assert.Nil(t, lastSession)
	assert.Nil(t, client.Session())

	// no session left to end
	err = client.SignOut(ctx)
	assert.ErrorIs(t, err, authkit.ErrNoActiveSession)
}

func TestRestoreResumesSessionFromToken(t *testing.T) {
	client, db := testClient(t)
	ctx := context.Background()

	identity, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)
	session, err := client.VerifyCredentials(ctx, "a@x.com", "super-secret")
	require.NoError(t, err)

	// a fresh client, as after a process restart, resumes from the token
	restarted, err := hosted.NewClient(db, testConfig())
	require.NoError(t, err)

	restored, err := restarted.Restore(ctx, session.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, identity.ID(), restored.GetUserID())
	assert.Equal(t, "a@x.com", restored.GetEmail())

	_, err = restarted.Restore(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestProfilesRoundTrip(t *testing.T) {
	client, db := testClient(t)
	profiles := hosted.NewProfiles(db, client)
	ctx := context.Background()

	identity, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)

	require.NoError(t, profiles.Insert(ctx, authkit.NewProfile(identity.ID(), "a@x.com", "Ada", "Lovelace")))

	_, err = client.VerifyCredentials(ctx, "a@x.com", "super-secret")
	require.NoError(t, err)

	profile, err := profiles.SelectByID(ctx, identity.ID())
	require.NoError(t, err)

	assert.Equal(t, identity.ID(), profile.ID)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
	require.Len(t, profile.Roles, 1)
	assert.Equal(t, "USER", profile.Roles[0].Name)
	require.Len(t, profile.Permissions, 1)
	assert.Equal(t, "READ", profile.Permissions[0].Name)
	assert.NotEmpty(t, profile.CreatedAt)
	assert.NotEmpty(t, profile.UpdatedAt)

	// timestamps travel as parseable strings
	user := profile.ToUser()
	require.NotNil(t, user.CreatedAt)
	require.NotNil(t, user.UpdatedAt)
}

func TestProfilesRowPolicyRejectsForeignRows(t *testing.T) {
	client, db := testClient(t)
	profiles := hosted.NewProfiles(db, client)
	ctx := context.Background()

	mine, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)
	other, err := client.SignUp(ctx, "b@x.com", "super-secret", nil)
	require.NoError(t, err)

	require.NoError(t, profiles.Insert(ctx, authkit.NewProfile(mine.ID(), "a@x.com", "A", "B")))
	require.NoError(t, profiles.Insert(ctx, authkit.NewProfile(other.ID(), "b@x.com", "C", "D")))

	// no session at all
	_, err = profiles.SelectByID(ctx, mine.ID())
	require.Error(t, err)

	_, err = client.VerifyCredentials(ctx, "a@x.com", "super-secret")
	require.NoError(t, err)

	// own row works, someone else's does not
	_, err = profiles.SelectByID(ctx, mine.ID())
	require.NoError(t, err)

	_, err = profiles.SelectByID(ctx, other.ID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestProfilesSelectMissingRowIsNotFound(t *testing.T) {
	client, db := testClient(t)
	profiles := hosted.NewProfiles(db, client)
	ctx := context.Background()

	_, err := client.SignUp(ctx, "a@x.com", "super-secret", nil)
	require.NoError(t, err)
	session, err := client.VerifyCredentials(ctx, "a@x.com", "super-secret")
	require.NoError(t, err)

	_, err = profiles.SelectByID(ctx, session.GetUserID())
	require.Error(t, err)
	assert.True(t, authkit.IsProfileNotFound(err))
}
