package session

import (
	"path/filepath"
	"testing"

	"github.com/dulceria/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() models.Identity {
	return models.Identity{
		ID:              7,
		Name:            "Maria Lopez",
		PaternalSurname: "Garcia",
		MaternalSurname: "Ruiz",
		Email:           "m@x.com",
		Phone:           "5551234567",
		SecretQuestion:  "¿En qué ciudad naciste?",
		SecretAnswer:    "CDMX",
		Role:            models.RoleClient,
		Status:          models.StatusActive,
	}
}

func newTestStore(t *testing.T) (*Store, *FileStore) {
	t.Helper()
	creds := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	return NewStore(creds, nil), creds
}

func TestStoreStartsInitializing(t *testing.T) {
	s, _ := newTestStore(t)

	assert.True(t, s.Initializing())
	assert.Nil(t, s.CurrentUser())
	assert.Empty(t, s.CurrentToken())
}

func TestLoginStoresIdentityAndPersists(t *testing.T) {
	s, creds := newTestStore(t)

	role := s.Login(testIdentity(), "tok-1")
	assert.Equal(t, models.RoleClient, role)

	user := s.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Maria Lopez", user.Name)
	assert.Equal(t, "tok-1", s.CurrentToken())

	rec, err := creds.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "tok-1", rec.Token)
	assert.Equal(t, int64(7), rec.User.ID)
}

func TestLogoutClearsMemoryAndDisk(t *testing.T) {
	s, creds := newTestStore(t)
	s.Login(testIdentity(), "tok-1")

	s.Logout()

	assert.Nil(t, s.CurrentUser())
	assert.Empty(t, s.CurrentToken())

	rec, err := creds.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSnapshotIsAtomic(t *testing.T) {
	s, _ := newTestStore(t)
	s.Login(testIdentity(), "tok-1")

	state := s.Snapshot()
	require.NotNil(t, state.User)
	assert.Equal(t, "tok-1", state.Token)
	assert.True(t, state.LoggedIn())

	s.Logout()
	state = s.Snapshot()
	assert.Nil(t, state.User)
	assert.Empty(t, state.Token)
	assert.False(t, state.LoggedIn())
}

func TestSubscribeReceivesEveryChange(t *testing.T) {
	s, _ := newTestStore(t)

	var states []State
	unsubscribe := s.Subscribe(func(st State) { states = append(states, st) })

	s.Login(testIdentity(), "tok-1")
	s.Logout()

	require.Len(t, states, 2)
	assert.True(t, states[0].LoggedIn())
	assert.False(t, states[1].LoggedIn())

	unsubscribe()
	s.Login(testIdentity(), "tok-2")
	assert.Len(t, states, 2)
}

func TestFileStoreRoundTrip(t *testing.T) {
	creds := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))

	// Absent record reads as nil without error.
	rec, err := creds.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)

	id := testIdentity()
	require.NoError(t, creds.Save(&Record{User: &id, Token: "tok-9"}))

	rec, err = creds.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "tok-9", rec.Token)
	assert.Equal(t, models.RoleClient, rec.User.Role)

	require.NoError(t, creds.Clear())
	rec, err = creds.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Clearing twice is a no-op.
	require.NoError(t, creds.Clear())
}

func TestFileStoreRejectsTornRecord(t *testing.T) {
	creds := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, creds.Save(&Record{Token: "orphan-token"}))

	rec, err := creds.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)
}
