package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"khawater/models"
	"khawater/store"
)

const adminEmail = "admin@example.com"

func setup(t *testing.T) (*Admin, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	return New(st, adminEmail), st
}

func TestAllowed(t *testing.T) {
	a, _ := setup(t)

	require.True(t, a.Allowed(models.User{Email: adminEmail}))
	require.False(t, a.Allowed(models.User{Email: "user@example.com"}))
	require.False(t, a.Allowed(models.User{}))
}

func TestEmptyAllowListDeniesEveryone(t *testing.T) {
	a := New(store.NewMemStore(), "")
	require.False(t, a.Allowed(models.User{Email: ""}))
	require.False(t, a.Allowed(models.User{Email: adminEmail}))
}

func TestSetVerified(t *testing.T) {
	a, st := setup(t)
	ctx := context.Background()

	_, err := st.Create(ctx, models.UsersCollection, models.NewUserDoc("u1", "فارس", "u1@example.com"))
	require.NoError(t, err)

	admin := models.User{ID: "root", Email: adminEmail}
	require.NoError(t, a.SetVerified(ctx, admin, "u1", true))

	doc, err := st.GetOne(ctx, models.UsersCollection, "u1")
	require.NoError(t, err)
	u, err := models.UserFromDoc(doc)
	require.NoError(t, err)
	require.True(t, u.IsVerified)

	require.NoError(t, a.SetVerified(ctx, admin, "u1", false))
	doc, err = st.GetOne(ctx, models.UsersCollection, "u1")
	require.NoError(t, err)
	u, err = models.UserFromDoc(doc)
	require.NoError(t, err)
	require.False(t, u.IsVerified)
}

func TestSetVerifiedDenied(t *testing.T) {
	a, st := setup(t)
	ctx := context.Background()

	_, err := st.Create(ctx, models.UsersCollection, models.NewUserDoc("u1", "فارس", "u1@example.com"))
	require.NoError(t, err)

	err = a.SetVerified(ctx, models.User{ID: "u2", Email: "u2@example.com"}, "u1", true)
	require.ErrorIs(t, err, ErrNotAllowed)
}

func TestDeletePost(t *testing.T) {
	a, st := setup(t)
	ctx := context.Background()

	id, err := st.Create(ctx, models.PostsCollection, store.Document{"content": "نص"})
	require.NoError(t, err)

	admin := models.User{ID: "root", Email: adminEmail}
	require.NoError(t, a.DeletePost(ctx, admin, id))

	_, err = st.GetOne(ctx, models.PostsCollection, id)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, a.DeletePost(ctx, admin, id), store.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	a, st := setup(t)
	ctx := context.Background()

	_, err := st.Create(ctx, models.UsersCollection, models.NewUserDoc("u1", "فارس", "u1@example.com"))
	require.NoError(t, err)

	require.ErrorIs(t, a.DeleteUser(ctx, models.User{Email: "nope"}, "u1"), ErrNotAllowed)

	admin := models.User{ID: "root", Email: adminEmail}
	require.NoError(t, a.DeleteUser(ctx, admin, "u1"))

	_, err = st.GetOne(ctx, models.UsersCollection, "u1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
