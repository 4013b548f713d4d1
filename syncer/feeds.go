package syncer

import (
	"context"
	"log"

	"khawater/models"
	"khawater/store"
)

const (
	notificationCap = 30
	messageCap      = 50
)

// Posts synchronizes every post, newest first. While the collection is
// empty the fixed placeholder feed is published instead.
func Posts(ctx context.Context, st store.Store) (*Syncer[models.Post], error) {
	return New(ctx, st, Config[models.Post]{
		Collection: models.PostsCollection,
		Sort:       store.Sort{Field: "createdAt", Desc: true},
		Transform: func(_ context.Context, docs []store.Document) []models.Post {
			posts := make([]models.Post, 0, len(docs))
			for _, d := range docs {
				p, err := models.PostFromDoc(d)
				if err != nil {
					log.Printf("[Syncer] skipping malformed post: %v", err)
					continue
				}
				posts = append(posts, p)
			}
			if len(posts) == 0 {
				return models.SeedPosts()
			}
			return posts
		},
	})
}

// Notifications synchronizes the session user's inbox, newest first,
// truncated to the 30 most recent.
func Notifications(ctx context.Context, st store.Store, userID string) (*Syncer[models.Notification], error) {
	return New(ctx, st, Config[models.Notification]{
		Collection: models.NotificationsCollection,
		Filters:    []store.Filter{store.Where("userId", userID)},
		Sort:       store.Sort{Field: "createdAt", Desc: true},
		Transform: func(_ context.Context, docs []store.Document) []models.Notification {
			notifs := make([]models.Notification, 0, len(docs))
			for _, d := range docs {
				n, err := models.NotificationFromDoc(d)
				if err != nil {
					log.Printf("[Syncer] skipping malformed notification: %v", err)
					continue
				}
				notifs = append(notifs, n)
			}
			if len(notifs) > notificationCap {
				notifs = notifs[:notificationCap]
			}
			return notifs
		},
	})
}

// Chats synchronizes the session user's conversations, most recently
// active first. The counterpart's online flag is joined by point-in-time
// lookup; staleness until the next batch is tolerated.
func Chats(ctx context.Context, st store.Store, userID string) (*Syncer[models.Chat], error) {
	return New(ctx, st, Config[models.Chat]{
		Collection: models.ChatsCollection,
		Filters:    []store.Filter{store.WhereContains("participants", userID)},
		Sort:       store.Sort{Field: "lastMessageAt", Desc: true},
		Transform: func(ctx context.Context, docs []store.Document) []models.Chat {
			chats := make([]models.Chat, 0, len(docs))
			for _, d := range docs {
				c, err := models.ChatFromDoc(d)
				if err != nil {
					log.Printf("[Syncer] skipping malformed chat: %v", err)
					continue
				}
				c.Resolve(userID)
				if c.PartnerID != "" {
					if doc, err := st.GetOne(ctx, models.UsersCollection, c.PartnerID); err == nil {
						if partner, err := models.UserFromDoc(doc); err == nil {
							c.IsOnline = partner.IsOnline
						}
					}
				}
				chats = append(chats, c)
			}
			return chats
		},
	})
}

// Messages synchronizes one open chat, oldest first, capped to the 50 most
// recent for the initial load.
func Messages(ctx context.Context, st store.Store, chatID string) (*Syncer[models.ChatMessage], error) {
	return New(ctx, st, Config[models.ChatMessage]{
		Collection: models.MessagesCollection,
		Filters:    []store.Filter{store.Where("chatId", chatID)},
		Sort:       store.Sort{Field: "createdAt", Desc: false},
		Transform: func(_ context.Context, docs []store.Document) []models.ChatMessage {
			msgs := make([]models.ChatMessage, 0, len(docs))
			for _, d := range docs {
				m, err := models.MessageFromDoc(d)
				if err != nil {
					log.Printf("[Syncer] skipping malformed message: %v", err)
					continue
				}
				msgs = append(msgs, m)
			}
			if len(msgs) > messageCap {
				msgs = msgs[len(msgs)-messageCap:]
			}
			return msgs
		},
	})
}
