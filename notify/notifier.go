package notify

import (
	"context"
	"log"

	"khawater/models"
	"khawater/store"
)

// Notifier writes fan-out notifications to the target user's inbox.
// Writes are best-effort: a failure is logged and the triggering action is
// never rolled back.
type Notifier struct {
	store store.Store
}

func New(st store.Store) *Notifier {
	return &Notifier{store: st}
}

func (n *Notifier) Like(ctx context.Context, post models.Post, actor models.User) {
	n.publish(ctx, models.Notification{
		UserID:   post.AuthorID,
		FromID:   actor.ID,
		FromName: actor.Name,
		Type:     models.NotificationLike,
		Content:  "أعجب بخاطرتك",
		PostID:   post.ID,
	})
}

func (n *Notifier) Comment(ctx context.Context, post models.Post, actor models.User) {
	n.publish(ctx, models.Notification{
		UserID:   post.AuthorID,
		FromID:   actor.ID,
		FromName: actor.Name,
		Type:     models.NotificationComment,
		Content:  "علق على خاطرتك",
		PostID:   post.ID,
	})
}

func (n *Notifier) Follow(ctx context.Context, targetID string, actor models.User) {
	n.publish(ctx, models.Notification{
		UserID:   targetID,
		FromID:   actor.ID,
		FromName: actor.Name,
		Type:     models.NotificationFollow,
		Content:  "بدأ بمتابعتك الآن",
	})
}

// MarkRead flips the read flag, the only mutation a notification sees.
// Scoped to the owner: a foreign id reads as not found.
func (n *Notifier) MarkRead(ctx context.Context, id, ownerID string) error {
	doc, err := n.store.GetOne(ctx, models.NotificationsCollection, id)
	if err != nil {
		return err
	}
	if owner, _ := doc["userId"].(string); owner != ownerID {
		return store.ErrNotFound
	}
	return n.store.Mutate(ctx, models.NotificationsCollection, id, store.Update{
		Set: store.Document{"isRead": true},
	})
}

func (n *Notifier) publish(ctx context.Context, notif models.Notification) {
	if _, err := n.store.Create(ctx, models.NotificationsCollection, models.NewNotificationDoc(notif)); err != nil {
		log.Printf("[Notifier] %s notification to %s failed: %v", notif.Type, notif.UserID, err)
	}
}
