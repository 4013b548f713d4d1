package feed

import (
	"sort"
	"time"

	"khawater/models"
)

type Mode string

const (
	All       Mode = "ALL"
	Following Mode = "FOLLOWING"
)

const (
	DefaultTrendingWindow = 48 * time.Hour
	DefaultTrendingLimit  = 6
)

// Filter projects the synchronized feed for a viewer. Following mode keeps
// only posts authored by someone the viewer follows, preserving relative
// order. Pure function, recomputed on every snapshot.
func Filter(posts []models.Post, mode Mode, viewer models.User) []models.Post {
	if mode != Following {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if viewer.IsFollowing(p.AuthorID) {
			out = append(out, p)
		}
	}
	return out
}

// Trending returns the top posts by like count from the trailing window.
// Posts with an unresolved creation timestamp count as just-created. Ties
// keep the incoming (creation-time-descending) order.
func Trending(posts []models.Post, window time.Duration, topN int, now time.Time) []models.Post {
	cutoff := now.Add(-window).Unix()

	recent := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.CreatedAt == 0 || p.CreatedAt > cutoff {
			recent = append(recent, p)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Likes > recent[j].Likes
	})
	if len(recent) > topN {
		recent = recent[:topN]
	}
	return recent
}
