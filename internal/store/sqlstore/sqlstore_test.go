package sqlstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/folio/internal/models"
	"github.com/folio-dev/folio/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "folio.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestCreateAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.Len(t, user.ID, 26)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := s.UserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestUserByEmail_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.UserByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUser_Duplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "a@x.com", PasswordHash: "one"}))

	err := s.CreateUser(ctx, &models.User{Email: "a@x.com", PasswordHash: "two"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestCreateUser_ConcurrentDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateUser(ctx, &models.User{Email: "race@x.com", PasswordHash: "h"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, store.ErrDuplicateKey):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, rejected)
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com"} {
		require.NoError(t, s.CreateUser(ctx, &models.User{Email: email, PasswordHash: "h"}))
	}

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.NoError(t, s.DeleteUser(ctx, users[0].ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, users[0].ID), store.ErrNotFound)

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
