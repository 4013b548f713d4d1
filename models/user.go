package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"khawater/store"
)

// Collection names used across the sync layer.
const (
	UsersCollection         = "users"
	PostsCollection         = "posts"
	ChatsCollection         = "chats"
	MessagesCollection      = "messages"
	NotificationsCollection = "notifications"
)

// DefaultName is shown when a user has no display name yet.
const DefaultName = "مبدع"

type User struct {
	ID             string   `bson:"_id" json:"id"`
	Name           string   `bson:"name" json:"name"`
	Email          string   `bson:"email" json:"email"`
	Bio            string   `bson:"bio" json:"bio"`
	Avatar         string   `bson:"avatar,omitempty" json:"avatar,omitempty"`
	SavedPostIDs   []string `bson:"savedPostIds" json:"savedPostIds"`
	FollowingIDs   []string `bson:"followingIds" json:"followingIds"`
	FollowerIDs    []string `bson:"followerIds" json:"followerIds"`
	FollowersCount int64    `bson:"followersCount" json:"followersCount"`
	FollowingCount int64    `bson:"followingCount" json:"followingCount"`
	IsVerified     bool     `bson:"isVerified" json:"isVerified"`
	IsOnline       bool     `bson:"isOnline" json:"isOnline"`
	LastSeen       int64    `bson:"lastSeen" json:"lastSeen"`
}

func (u User) IsFollowing(userID string) bool {
	for _, id := range u.FollowingIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (u User) HasSaved(postID string) bool {
	for _, id := range u.SavedPostIDs {
		if id == postID {
			return true
		}
	}
	return false
}

// NewUserDoc builds the default profile document created on first sign-in.
func NewUserDoc(id, name, email string) store.Document {
	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
	}
	if name == "" {
		name = DefaultName
	}
	return store.Document{
		"_id":            id,
		"name":           name,
		"email":          email,
		"bio":            "",
		"savedPostIds":   []interface{}{},
		"followingIds":   []interface{}{},
		"followerIds":    []interface{}{},
		"followersCount": int64(0),
		"followingCount": int64(0),
		"isVerified":     false,
		"isOnline":       true,
		"lastSeen":       store.ServerTimestamp,
	}
}

// UserFromDoc decodes a raw store document and fills defaults so callers
// never branch on missing fields.
func UserFromDoc(d store.Document) (User, error) {
	var u User
	if err := decode(d, &u); err != nil {
		return User{}, err
	}
	if u.Name == "" {
		u.Name = DefaultName
	}
	if u.SavedPostIDs == nil {
		u.SavedPostIDs = []string{}
	}
	if u.FollowingIDs == nil {
		u.FollowingIDs = []string{}
	}
	if u.FollowerIDs == nil {
		u.FollowerIDs = []string{}
	}
	return u, nil
}

func decode(d store.Document, out interface{}) error {
	raw, err := bson.Marshal(d)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// FormatDate renders a creation timestamp for display. Zero means the
// server timestamp has not resolved yet.
func FormatDate(ts int64) string {
	if ts == 0 {
		return "الآن"
	}
	return time.Unix(ts, 0).Format("2 Jan 15:04")
}
