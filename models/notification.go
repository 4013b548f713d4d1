package models

import "khawater/store"

type NotificationKind string

const (
	NotificationLike    NotificationKind = "LIKE"
	NotificationComment NotificationKind = "COMMENT"
	NotificationFollow  NotificationKind = "FOLLOW"
	NotificationMessage NotificationKind = "MESSAGE"
)

// Notification is created by the triggering action, mutated only to flip
// the read flag, never deleted by normal flow.
type Notification struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"userId" json:"userId"`
	FromID    string           `bson:"fromId" json:"fromId"`
	FromName  string           `bson:"fromName" json:"fromName"`
	Type      NotificationKind `bson:"type" json:"type"`
	Content   string           `bson:"content" json:"content"`
	PostID    string           `bson:"postId,omitempty" json:"postId,omitempty"`
	IsRead    bool             `bson:"isRead" json:"isRead"`
	CreatedAt int64            `bson:"createdAt" json:"createdAt"`
	Date      string           `bson:"-" json:"date"`
}

func NotificationFromDoc(d store.Document) (Notification, error) {
	var n Notification
	if err := decode(d, &n); err != nil {
		return Notification{}, err
	}
	if n.FromName == "" {
		n.FromName = DefaultName
	}
	n.Date = FormatDate(n.CreatedAt)
	return n, nil
}

func NewNotificationDoc(n Notification) store.Document {
	doc := store.Document{
		"userId":    n.UserID,
		"fromId":    n.FromID,
		"fromName":  n.FromName,
		"type":      string(n.Type),
		"content":   n.Content,
		"isRead":    false,
		"createdAt": store.ServerTimestamp,
	}
	if n.PostID != "" {
		doc["postId"] = n.PostID
	}
	return doc
}
