package session

import (
	"context"
	"log"
	"sync"

	"khawater/models"
	"khawater/store"
)

// AuthUser is the identity-service view of a signed-in account.
type AuthUser struct {
	ID    string
	Email string
	Name  string
}

// Identity is the external identity service the tracker consumes.
type Identity interface {
	OnAuthChange(fn func(user AuthUser, signedIn bool)) (cancel func())
	SignIn(ctx context.Context, email, password string) (AuthUser, error)
	SignUp(ctx context.Context, email, password string) (AuthUser, error)
	SignOut(ctx context.Context) error
}

// Tracker maintains the current-user identity and presence. Presence
// writes are advisory: failures are logged and swallowed.
type Tracker struct {
	store store.Store
	ident Identity

	mu         sync.RWMutex
	current    *models.User
	userSub    *store.Subscription
	cancelAuth func()
	closeOnce  sync.Once
}

func NewTracker(st store.Store, ident Identity) *Tracker {
	return &Tracker{store: st, ident: ident}
}

// Start registers the auth-change hook. On sign-in the user document is
// ensured, presence goes online and the own profile is kept synchronized;
// on sign-out presence goes offline and local state is cleared.
func (t *Tracker) Start(ctx context.Context) {
	cancel := t.ident.OnAuthChange(func(au AuthUser, signedIn bool) {
		if signedIn {
			t.handleSignIn(ctx, au)
		} else {
			t.handleSignOut(ctx)
		}
	})
	t.mu.Lock()
	t.cancelAuth = cancel
	t.mu.Unlock()
}

func (t *Tracker) handleSignIn(ctx context.Context, au AuthUser) {
	doc, err := t.store.GetOne(ctx, models.UsersCollection, au.ID)
	if err == store.ErrNotFound {
		profile := models.NewUserDoc(au.ID, au.Name, au.Email)
		if _, err := t.store.Create(ctx, models.UsersCollection, profile); err != nil {
			log.Printf("[Session] creating profile for %s failed: %v", au.ID, err)
			return
		}
		// Re-fetch so the server timestamp is resolved.
		doc, err = t.store.GetOne(ctx, models.UsersCollection, au.ID)
		if err != nil {
			log.Printf("[Session] loading profile for %s failed: %v", au.ID, err)
			return
		}
	} else if err != nil {
		log.Printf("[Session] loading profile for %s failed: %v", au.ID, err)
		return
	}

	user, err := models.UserFromDoc(doc)
	if err != nil {
		log.Printf("[Session] decoding profile for %s failed: %v", au.ID, err)
		return
	}

	t.mu.Lock()
	t.current = &user
	t.mu.Unlock()

	t.writePresence(ctx, au.ID, true)

	sub, err := t.store.Subscribe(ctx, models.UsersCollection,
		[]store.Filter{store.Where("_id", au.ID)}, store.Sort{})
	if err != nil {
		log.Printf("[Session] profile subscription for %s failed: %v", au.ID, err)
		return
	}
	t.mu.Lock()
	if t.userSub != nil {
		t.userSub.Cancel()
	}
	t.userSub = sub
	t.mu.Unlock()

	go func() {
		for snap := range sub.Snapshots() {
			if len(snap) == 0 {
				continue
			}
			u, err := models.UserFromDoc(snap[0])
			if err != nil {
				continue
			}
			t.mu.Lock()
			t.current = &u
			t.mu.Unlock()
		}
	}()
}

func (t *Tracker) handleSignOut(ctx context.Context) {
	t.mu.Lock()
	var id string
	if t.current != nil {
		id = t.current.ID
	}
	t.current = nil
	sub := t.userSub
	t.userSub = nil
	t.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	if id != "" {
		t.writePresence(ctx, id, false)
	}
}

// Current returns a copy of the synchronized profile, or nil when no one
// is signed in.
func (t *Tracker) Current() *models.User {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return nil
	}
	u := *t.current
	return &u
}

// SetForeground is the visibility-change hook: foreground means online.
func (t *Tracker) SetForeground(ctx context.Context, foreground bool) {
	if u := t.Current(); u != nil {
		t.writePresence(ctx, u.ID, foreground)
	}
}

// Shutdown is the process-termination hook. Runs at most once.
func (t *Tracker) Shutdown(ctx context.Context) {
	t.closeOnce.Do(func() {
		if u := t.Current(); u != nil {
			t.writePresence(ctx, u.ID, false)
		}
		t.mu.Lock()
		cancelAuth := t.cancelAuth
		t.cancelAuth = nil
		sub := t.userSub
		t.userSub = nil
		t.mu.Unlock()
		if cancelAuth != nil {
			cancelAuth()
		}
		if sub != nil {
			sub.Cancel()
		}
	})
}

func (t *Tracker) writePresence(ctx context.Context, userID string, online bool) {
	err := t.store.Mutate(ctx, models.UsersCollection, userID, store.Update{
		Set: store.Document{
			"isOnline": online,
			"lastSeen": store.ServerTimestamp,
		},
	})
	if err != nil {
		// Presence is advisory; staleness is acceptable.
		log.Printf("[Session] presence write for %s failed: %v", userID, err)
	}
}
