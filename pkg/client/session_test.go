package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AuthenticatedInvariant(t *testing.T) {
	s, err := NewSession(&MemoryStorage{})
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.SetAuth(User{ID: "u1"}, "access", "refresh"))
	assert.True(t, s.IsAuthenticated())

	require.NoError(t, s.UpdateAccessToken(""))
	assert.False(t, s.IsAuthenticated(), "an empty access token breaks the session")

	require.NoError(t, s.UpdateAccessToken("access-2"))
	assert.True(t, s.IsAuthenticated())

	require.NoError(t, s.Logout())
	st := s.Snapshot()
	assert.Nil(t, st.User)
	assert.Empty(t, st.AccessToken)
	assert.Empty(t, st.RefreshToken)
	assert.False(t, st.Authenticated)
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s, err := NewSession(&MemoryStorage{})
	require.NoError(t, err)
	require.NoError(t, s.SetAuth(User{ID: "u1", FullName: "Alice"}, "a", "r"))

	snap := s.Snapshot()
	snap.User.FullName = "Mallory"
	assert.Equal(t, "Alice", s.Snapshot().User.FullName)
}

func TestFileStorage_RoundTripAndHydrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storage := FileStorage{Path: path}

	s, err := NewSession(storage)
	require.NoError(t, err)
	require.NoError(t, s.SetAuth(User{ID: "u1", Email: "a@example.com", Role: "USER"}, "access", "refresh"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored, err := NewSession(storage)
	require.NoError(t, err)
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, "refresh", restored.RefreshToken())
	assert.Equal(t, "a@example.com", restored.Snapshot().User.Email)

	require.NoError(t, restored.Logout())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorage_HydrateRecomputesFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	// A tampered file claims to be authenticated without a refresh token.
	raw := `{"user":{"id":"u1"},"accessToken":"a","refreshToken":"","authenticated":true}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	s, err := NewSession(FileStorage{Path: path})
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestFileStorage_MissingFileIsEmpty(t *testing.T) {
	s, err := NewSession(FileStorage{Path: filepath.Join(t.TempDir(), "absent.json")})
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewSession(FileStorage{Path: path})
	require.Error(t, err)
}
