package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/eventbooking/internal/client/models"
	"github.com/dmitrijs2005/eventbooking/internal/dbx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := dbx.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return NewSQLiteStore(db)
}

func stores(t *testing.T) map[string]*Store {
	return map[string]*Store{
		"sqlite": newSQLiteStore(t),
		"memory": NewMemoryStore(),
	}
}

func TestStore_LoginAndClear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			tok, err := s.Token(ctx)
			require.NoError(t, err)
			assert.Empty(t, tok)

			u := &models.User{ID: uuid.New(), Username: "alice", Roles: []models.Role{models.RoleObject(models.RoleAdmin)}}
			require.NoError(t, s.SaveLogin(ctx, "tok-1", u))

			tok, err = s.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-1", tok)

			got, err := s.User(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, u.ID, got.ID)
			assert.True(t, got.IsAdmin())

			require.NoError(t, s.SetToken(ctx, "tok-2"))
			tok, err = s.Token(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-2", tok)

			cleared, err := s.Clear(ctx)
			require.NoError(t, err)
			assert.True(t, cleared)

			cleared, err = s.Clear(ctx)
			require.NoError(t, err)
			assert.False(t, cleared, "second clear has nothing to remove")

			got, err = s.User(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStore_UnparsableUserClearsSession(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SetToken(ctx, "tok"))
			require.NoError(t, s.repo.Set(ctx, KeyUser, []byte("{not json")))

			u, err := s.User(ctx)
			require.NoError(t, err)
			assert.Nil(t, u)

			tok, err := s.Token(ctx)
			require.NoError(t, err)
			assert.Empty(t, tok)
		})
	}
}

func TestStore_RedirectIsPoppedOnce(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			loc, err := s.PopRedirect(ctx)
			require.NoError(t, err)
			assert.Empty(t, loc)

			require.NoError(t, s.SetRedirect(ctx, "bookings"))
			loc, err = s.PopRedirect(ctx)
			require.NoError(t, err)
			assert.Equal(t, "bookings", loc)

			loc, err = s.PopRedirect(ctx)
			require.NoError(t, err)
			assert.Empty(t, loc)
		})
	}
}

func TestStore_CookiesSurviveClear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			v, err := s.LoadCookies(ctx)
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, s.SaveCookies(ctx, []byte(`[{"name":"refreshToken"}]`)))
			require.NoError(t, s.SaveLogin(ctx, "tok", &models.User{Username: "u"}))
			_, err = s.Clear(ctx)
			require.NoError(t, err)

			v, err = s.LoadCookies(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"name":"refreshToken"}]`, string(v))
		})
	}
}

func TestSQLiteStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := dbx.OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteStore(db).SaveLogin(ctx, "persisted", &models.User{Username: "bob"}))
	require.NoError(t, db.Close())

	db, err = dbx.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLiteStore(db)
	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", tok)

	u, err := s.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "bob", u.Username)
}
