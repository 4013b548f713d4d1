package models

import "khawater/store"

// ChatMessage is append-only: immutable once created.
type ChatMessage struct {
	ID        string `bson:"_id" json:"id"`
	ChatID    string `bson:"chatId" json:"chatId"`
	SenderID  string `bson:"senderId" json:"senderId"`
	Text      string `bson:"text" json:"text"`
	CreatedAt int64  `bson:"createdAt" json:"createdAt"`
	Date      string `bson:"-" json:"date"`
}

func MessageFromDoc(d store.Document) (ChatMessage, error) {
	var m ChatMessage
	if err := decode(d, &m); err != nil {
		return ChatMessage{}, err
	}
	m.Date = FormatDate(m.CreatedAt)
	return m, nil
}

func NewMessageDoc(chatID, senderID, text string) store.Document {
	return store.Document{
		"chatId":    chatID,
		"senderId":  senderID,
		"text":      text,
		"createdAt": store.ServerTimestamp,
	}
}
