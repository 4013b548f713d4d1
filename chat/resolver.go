package chat

import (
	"context"
	"log"

	"khawater/models"
	"khawater/store"
)

// Resolver finds or creates the two-party chat for a counterpart and
// relays message sends into the messages collection.
type Resolver struct {
	store store.Store
}

func New(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// StartOrGetChat queries existing chats containing self and scans the
// result for the counterpart; creates a new chat document otherwise.
// The read-then-create pattern has no uniqueness constraint, so two
// concurrent callers can still create a duplicate pair.
func (r *Resolver) StartOrGetChat(ctx context.Context, self, other models.User) (models.Chat, error) {
	docs, err := r.store.Query(ctx, models.ChatsCollection,
		[]store.Filter{store.WhereContains("participants", self.ID)}, store.Sort{}, 0)
	if err != nil {
		return models.Chat{}, err
	}

	for _, doc := range docs {
		c, err := models.ChatFromDoc(doc)
		if err != nil {
			log.Printf("[Resolver] skipping malformed chat document: %v", err)
			continue
		}
		if c.HasParticipant(other.ID) {
			c.Resolve(self.ID)
			c.IsOnline = other.IsOnline
			return c, nil
		}
	}

	id, err := r.store.Create(ctx, models.ChatsCollection, models.NewChatDoc(self, other))
	if err != nil {
		return models.Chat{}, err
	}
	c := models.Chat{
		ID:           id,
		Participants: []string{self.ID, other.ID},
		ParticipantNames: map[string]string{
			self.ID:  self.Name,
			other.ID: other.Name,
		},
	}
	c.Resolve(self.ID)
	c.IsOnline = other.IsOnline
	return c, nil
}

// SendMessage appends to the authoritative messages collection, then
// updates the chat summary. The two writes are not atomic; a failed
// summary update is logged only, the summary being a read optimization.
func (r *Resolver) SendMessage(ctx context.Context, chatID, senderID, text string) (string, error) {
	id, err := r.store.Create(ctx, models.MessagesCollection, models.NewMessageDoc(chatID, senderID, text))
	if err != nil {
		return "", err
	}

	err = r.store.Mutate(ctx, models.ChatsCollection, chatID, store.Update{
		Set: store.Document{
			"lastMessage":   text,
			"lastMessageAt": store.ServerTimestamp,
		},
	})
	if err != nil {
		log.Printf("[Resolver] chat %s summary update failed: %v", chatID, err)
	}
	return id, nil
}
