package store

import (
	"context"
	"testing"
	"time"

	"github.com/dcode-ide/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsersRejectDuplicateEmail(t *testing.T) {
	users := NewMemory().Users()
	ctx := context.Background()

	_, err := users.Create(ctx, types.User{ID: "u1", Email: "a@b.com"})
	require.NoError(t, err)

	_, err = users.Create(ctx, types.User{ID: "u2", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := users.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = users.GetByEmail(ctx, "A@B.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProjectsScopedByOwner(t *testing.T) {
	mem := NewMemory()
	projects := mem.Projects()
	ctx := context.Background()

	_, err := projects.Create(ctx, types.Project{ID: "p1", OwnerID: "alice", Name: "one"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = projects.Create(ctx, types.Project{ID: "p2", OwnerID: "alice", Name: "two"})
	require.NoError(t, err)
	_, err = projects.Create(ctx, types.Project{ID: "p3", OwnerID: "bob", Name: "three"})
	require.NoError(t, err)

	list, err := projects.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID, "newest first")

	_, err = projects.Get(ctx, "p3", "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, projects.UpdateCode(ctx, "p3", "alice", "x"), ErrNotFound)
	assert.ErrorIs(t, projects.Delete(ctx, "p3", "alice"), ErrNotFound)

	require.NoError(t, projects.UpdateName(ctx, "p1", "alice", "renamed"))
	got, err := projects.Get(ctx, "p1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	require.NoError(t, projects.Delete(ctx, "p1", "alice"))
	_, err = projects.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}
