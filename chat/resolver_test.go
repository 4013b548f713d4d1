package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"khawater/models"
	"khawater/store"
)

func setup(t *testing.T) (*Resolver, *store.MemStore, models.User, models.User) {
	t.Helper()
	st := store.NewMemStore()
	ctx := context.Background()

	_, err := st.Create(ctx, models.UsersCollection, models.NewUserDoc("u1", "فارس", "u1@example.com"))
	require.NoError(t, err)
	_, err = st.Create(ctx, models.UsersCollection, models.NewUserDoc("u2", "نورة", "u2@example.com"))
	require.NoError(t, err)

	self := models.User{ID: "u1", Name: "فارس"}
	other := models.User{ID: "u2", Name: "نورة", IsOnline: true}
	return New(st), st, self, other
}

func TestStartOrGetChatCreates(t *testing.T) {
	r, st, self, other := setup(t)
	ctx := context.Background()

	chat, err := r.StartOrGetChat(ctx, self, other)
	require.NoError(t, err)
	require.NotEmpty(t, chat.ID)
	require.Equal(t, "u2", chat.PartnerID)
	require.Equal(t, "نورة", chat.PartnerName)
	require.True(t, chat.IsOnline)

	doc, err := st.GetOne(ctx, models.ChatsCollection, chat.ID)
	require.NoError(t, err)
	stored, err := models.ChatFromDoc(doc)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u2"}, stored.Participants)
	require.Equal(t, "فارس", stored.ParticipantNames["u1"])
	require.Equal(t, "نورة", stored.ParticipantNames["u2"])
}

func TestStartOrGetChatReusesExisting(t *testing.T) {
	r, _, self, other := setup(t)
	ctx := context.Background()

	first, err := r.StartOrGetChat(ctx, self, other)
	require.NoError(t, err)

	second, err := r.StartOrGetChat(ctx, self, other)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	// The counterpart resolves to the same conversation.
	fromOther, err := r.StartOrGetChat(ctx, other, self)
	require.NoError(t, err)
	require.Equal(t, first.ID, fromOther.ID)
	require.Equal(t, "u1", fromOther.PartnerID)
	require.Equal(t, "فارس", fromOther.PartnerName)
}

func TestSendMessageUpdatesSummary(t *testing.T) {
	r, st, self, other := setup(t)
	ctx := context.Background()
	st.SetClock(func() int64 { return 1700000000 })

	chat, err := r.StartOrGetChat(ctx, self, other)
	require.NoError(t, err)

	st.SetClock(func() int64 { return 1700000042 })
	msgID, err := r.SendMessage(ctx, chat.ID, self.ID, "مرحبا")
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	doc, err := st.GetOne(ctx, models.MessagesCollection, msgID)
	require.NoError(t, err)
	msg, err := models.MessageFromDoc(doc)
	require.NoError(t, err)
	require.Equal(t, chat.ID, msg.ChatID)
	require.Equal(t, "u1", msg.SenderID)
	require.Equal(t, "مرحبا", msg.Text)
	require.Equal(t, int64(1700000042), msg.CreatedAt)

	doc, err = st.GetOne(ctx, models.ChatsCollection, chat.ID)
	require.NoError(t, err)
	updated, err := models.ChatFromDoc(doc)
	require.NoError(t, err)
	require.Equal(t, "مرحبا", updated.LastMessage)
	require.Equal(t, int64(1700000042), updated.LastMessageAt)
}

func TestSendMessageSurvivesSummaryFailure(t *testing.T) {
	r, st, self, _ := setup(t)
	ctx := context.Background()

	// Chat document missing: the summary update fails, the message still
	// lands in the authoritative collection.
	msgID, err := r.SendMessage(ctx, "ghost-chat", self.ID, "مرحبا")
	require.NoError(t, err)

	doc, err := st.GetOne(ctx, models.MessagesCollection, msgID)
	require.NoError(t, err)
	require.Equal(t, "مرحبا", doc["text"])
}

func TestMessageOrderWithinChat(t *testing.T) {
	r, st, self, other := setup(t)
	ctx := context.Background()

	chat, err := r.StartOrGetChat(ctx, self, other)
	require.NoError(t, err)

	clock := int64(1700000000)
	st.SetClock(func() int64 { clock++; return clock })

	for _, text := range []string{"أولاً", "ثانياً", "ثالثاً"} {
		_, err := r.SendMessage(ctx, chat.ID, self.ID, text)
		require.NoError(t, err)
	}

	docs, err := st.Query(ctx, models.MessagesCollection,
		[]store.Filter{store.Where("chatId", chat.ID)},
		store.Sort{Field: "createdAt", Desc: false}, 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "أولاً", docs[0]["text"])
	require.Equal(t, "ثالثاً", docs[2]["text"])
}
