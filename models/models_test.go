package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"khawater/store"
)

func TestUserFromDocDefaults(t *testing.T) {
	u, err := UserFromDoc(store.Document{"_id": "u1", "email": "a@example.com"})
	require.NoError(t, err)
	require.Equal(t, DefaultName, u.Name)
	require.NotNil(t, u.SavedPostIDs)
	require.NotNil(t, u.FollowingIDs)
	require.NotNil(t, u.FollowerIDs)
}

func TestNewUserDocNameFallback(t *testing.T) {
	doc := NewUserDoc("u1", "", "farees@example.com")
	require.Equal(t, "farees", doc["name"])

	doc = NewUserDoc("u1", "", "")
	require.Equal(t, DefaultName, doc["name"])

	doc = NewUserDoc("u1", "نورة", "x@example.com")
	require.Equal(t, "نورة", doc["name"])
}

func TestPostFromDocDefaults(t *testing.T) {
	p, err := PostFromDoc(store.Document{"_id": "p1", "content": "نص"})
	require.NoError(t, err)
	require.Equal(t, DefaultName, p.AuthorName)
	require.NotNil(t, p.LikedBy)
	require.NotNil(t, p.Comments)
	require.Equal(t, "الآن", p.Date)
}

func TestPostFromDocResolvedDate(t *testing.T) {
	p, err := PostFromDoc(store.Document{"_id": "p1", "createdAt": int64(1700000000)})
	require.NoError(t, err)
	require.NotEqual(t, "الآن", p.Date)
}

func TestChatResolve(t *testing.T) {
	c := Chat{
		Participants:     []string{"u1", "u2"},
		ParticipantNames: map[string]string{"u1": "فارس", "u2": "نورة"},
	}
	c.Resolve("u1")
	require.Equal(t, "u2", c.PartnerID)
	require.Equal(t, "نورة", c.PartnerName)

	c.Resolve("u2")
	require.Equal(t, "u1", c.PartnerID)
	require.Equal(t, "فارس", c.PartnerName)
}

func TestChatResolveMissingName(t *testing.T) {
	c := Chat{Participants: []string{"u1", "u2"}}
	c.Resolve("u1")
	require.Equal(t, DefaultName, c.PartnerName)
}

func TestNotificationFromDoc(t *testing.T) {
	n, err := NotificationFromDoc(store.Document{
		"_id":       "n1",
		"userId":    "u1",
		"type":      "LIKE",
		"content":   "أعجب بخاطرتك",
		"createdAt": int64(0),
	})
	require.NoError(t, err)
	require.Equal(t, NotificationLike, n.Type)
	require.Equal(t, DefaultName, n.FromName)
	require.Equal(t, "الآن", n.Date)
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "الآن", FormatDate(0))
	require.NotEmpty(t, FormatDate(1700000000))
}
