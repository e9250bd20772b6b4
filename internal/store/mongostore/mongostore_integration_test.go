//go:build integration

package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/folio-dev/folio/internal/models"
	"github.com/folio-dev/folio/internal/store"
)

func setupMongo(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := Connect(ctx, uri, "folio_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s
}

func TestMongoStore_Lifecycle(t *testing.T) {
	s := setupMongo(t)
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.Len(t, user.ID, 26)

	got, err := s.UserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.WithinDuration(t, user.CreatedAt, got.CreatedAt, time.Millisecond)

	got, err = s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	err = s.CreateUser(ctx, &models.User{Email: "a@x.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, s.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, user.ID), store.ErrNotFound)

	_, err = s.UserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := Connect(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=500", "folio_test")
	assert.ErrorIs(t, err, store.ErrDatabaseUnavailable)
}
