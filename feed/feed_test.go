package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"khawater/models"
)

func TestFilterAllPassesThrough(t *testing.T) {
	posts := []models.Post{{ID: "p1"}, {ID: "p2"}}
	viewer := models.User{ID: "u1"}

	require.Equal(t, posts, Filter(posts, All, viewer))
	require.Equal(t, posts, Filter(posts, Mode("whatever"), viewer))
}

func TestFilterFollowingKeepsOrder(t *testing.T) {
	posts := []models.Post{
		{ID: "p1", AuthorID: "a"},
		{ID: "p2", AuthorID: "b"},
		{ID: "p3", AuthorID: "a"},
		{ID: "p4", AuthorID: "c"},
	}
	viewer := models.User{ID: "u1", FollowingIDs: []string{"a", "c"}}

	got := Filter(posts, Following, viewer)
	require.Len(t, got, 3)
	require.Equal(t, "p1", got[0].ID)
	require.Equal(t, "p3", got[1].ID)
	require.Equal(t, "p4", got[2].ID)
}

func TestFilterFollowingNobody(t *testing.T) {
	posts := []models.Post{{ID: "p1", AuthorID: "a"}}
	got := Filter(posts, Following, models.User{ID: "u1"})
	require.Empty(t, got)
}

func TestTrendingWindowAndOrder(t *testing.T) {
	now := time.Unix(1700000000, 0)
	inWindow := now.Add(-time.Hour).Unix()
	stale := now.Add(-72 * time.Hour).Unix()

	posts := []models.Post{
		{ID: "old", Likes: 999, CreatedAt: stale},
		{ID: "mid", Likes: 10, CreatedAt: inWindow},
		{ID: "top", Likes: 50, CreatedAt: inWindow},
		{ID: "low", Likes: 1, CreatedAt: inWindow},
	}

	got := Trending(posts, DefaultTrendingWindow, DefaultTrendingLimit, now)
	require.Len(t, got, 3)
	require.Equal(t, "top", got[0].ID)
	require.Equal(t, "mid", got[1].ID)
	require.Equal(t, "low", got[2].ID)
}

func TestTrendingCapsToLimit(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := now.Add(-time.Hour).Unix()

	posts := make([]models.Post, 10)
	for i := range posts {
		posts[i] = models.Post{ID: string(rune('a' + i)), Likes: int64(i), CreatedAt: ts}
	}

	got := Trending(posts, DefaultTrendingWindow, 6, now)
	require.Len(t, got, 6)
	require.Equal(t, int64(9), got[0].Likes)
}

func TestTrendingUnresolvedTimestampCountsAsFresh(t *testing.T) {
	now := time.Unix(1700000000, 0)

	posts := []models.Post{
		{ID: "pending", Likes: 5, CreatedAt: 0},
	}
	got := Trending(posts, DefaultTrendingWindow, DefaultTrendingLimit, now)
	require.Len(t, got, 1)
	require.Equal(t, "pending", got[0].ID)
}

func TestTrendingTiesKeepIncomingOrder(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := now.Add(-time.Hour).Unix()

	posts := []models.Post{
		{ID: "newer", Likes: 7, CreatedAt: ts + 100},
		{ID: "older", Likes: 7, CreatedAt: ts},
	}
	got := Trending(posts, DefaultTrendingWindow, DefaultTrendingLimit, now)
	require.Equal(t, "newer", got[0].ID)
	require.Equal(t, "older", got[1].ID)
}
