package models

import "khawater/store"

type Chat struct {
	ID               string            `bson:"_id" json:"id"`
	Participants     []string          `bson:"participants" json:"participants"`
	ParticipantNames map[string]string `bson:"participantNames" json:"participantNames"`
	LastMessage      string            `bson:"lastMessage" json:"lastMessage"`
	LastMessageAt    int64             `bson:"lastMessageAt" json:"lastMessageAt"`
	CreatedAt        int64             `bson:"createdAt" json:"createdAt"`

	// Derived at read time, never stored.
	PartnerID   string `bson:"-" json:"partnerId"`
	PartnerName string `bson:"-" json:"partnerName"`
	IsOnline    bool   `bson:"-" json:"isOnline"`
}

func (c Chat) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Resolve fills the counterpart projection for the given viewer.
func (c *Chat) Resolve(selfID string) {
	for _, id := range c.Participants {
		if id != selfID {
			c.PartnerID = id
			break
		}
	}
	c.PartnerName = c.ParticipantNames[c.PartnerID]
	if c.PartnerName == "" {
		c.PartnerName = DefaultName
	}
}

func ChatFromDoc(d store.Document) (Chat, error) {
	var c Chat
	if err := decode(d, &c); err != nil {
		return Chat{}, err
	}
	if c.Participants == nil {
		c.Participants = []string{}
	}
	if c.ParticipantNames == nil {
		c.ParticipantNames = map[string]string{}
	}
	return c, nil
}

func NewChatDoc(self, other User) store.Document {
	return store.Document{
		"participants": []interface{}{self.ID, other.ID},
		"participantNames": map[string]string{
			self.ID:  self.Name,
			other.ID: other.Name,
		},
		"lastMessage":   "",
		"lastMessageAt": store.ServerTimestamp,
		"createdAt":     store.ServerTimestamp,
	}
}
