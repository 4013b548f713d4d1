package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"khawater/models"
	"khawater/store"
)

func TestMarkReadOwnerOnly(t *testing.T) {
	st := store.NewMemStore()
	n := New(st)
	ctx := context.Background()

	n.Like(ctx, models.Post{ID: "p1", AuthorID: "owner"}, models.User{ID: "actor", Name: "فارس"})

	docs, err := st.Query(ctx, models.NotificationsCollection, nil, store.Sort{}, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	id := docs[0]["_id"].(string)

	// Someone else's flip attempt reads as not found and changes nothing.
	require.ErrorIs(t, n.MarkRead(ctx, id, "stranger"), store.ErrNotFound)
	doc, err := st.GetOne(ctx, models.NotificationsCollection, id)
	require.NoError(t, err)
	require.Equal(t, false, doc["isRead"])

	require.NoError(t, n.MarkRead(ctx, id, "owner"))
	doc, err = st.GetOne(ctx, models.NotificationsCollection, id)
	require.NoError(t, err)
	require.Equal(t, true, doc["isRead"])

	require.ErrorIs(t, n.MarkRead(ctx, "missing", "owner"), store.ErrNotFound)
}
