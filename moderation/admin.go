package moderation

import (
	"context"
	"errors"

	"khawater/models"
	"khawater/store"
)

var ErrNotAllowed = errors.New("moderation: account is not on the admin allow-list")

// Admin gates the elevated operations behind a static allow-list check on
// the session identity. All mutations are direct and irreversible; no
// audit trail is written.
type Admin struct {
	store      store.Store
	allowEmail string
}

func New(st store.Store, allowEmail string) *Admin {
	return &Admin{store: st, allowEmail: allowEmail}
}

func (a *Admin) Allowed(actor models.User) bool {
	return a.allowEmail != "" && actor.Email == a.allowEmail
}

func (a *Admin) SetVerified(ctx context.Context, actor models.User, userID string, verified bool) error {
	if !a.Allowed(actor) {
		return ErrNotAllowed
	}
	return a.store.Mutate(ctx, models.UsersCollection, userID, store.Update{
		Set: store.Document{"isVerified": verified},
	})
}

func (a *Admin) DeleteUser(ctx context.Context, actor models.User, userID string) error {
	if !a.Allowed(actor) {
		return ErrNotAllowed
	}
	return a.store.Delete(ctx, models.UsersCollection, userID)
}

func (a *Admin) DeletePost(ctx context.Context, actor models.User, postID string) error {
	if !a.Allowed(actor) {
		return ErrNotAllowed
	}
	return a.store.Delete(ctx, models.PostsCollection, postID)
}
