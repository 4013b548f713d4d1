package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"khawater/models"
	"khawater/store"
)

// fakeIdentity drives auth-change callbacks by hand.
type fakeIdentity struct {
	fn func(AuthUser, bool)
}

func (f *fakeIdentity) OnAuthChange(fn func(AuthUser, bool)) func() {
	f.fn = fn
	return func() { f.fn = nil }
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (AuthUser, error) {
	return AuthUser{}, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (AuthUser, error) {
	return AuthUser{}, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context) error { return nil }

func (f *fakeIdentity) signIn(au AuthUser) { f.fn(au, true) }
func (f *fakeIdentity) signOut()           { f.fn(AuthUser{}, false) }

func presence(t *testing.T, st *store.MemStore, id string) (bool, int64) {
	t.Helper()
	doc, err := st.GetOne(context.Background(), models.UsersCollection, id)
	require.NoError(t, err)
	u, err := models.UserFromDoc(doc)
	require.NoError(t, err)
	return u.IsOnline, u.LastSeen
}

func TestFirstSignInCreatesProfile(t *testing.T) {
	st := store.NewMemStore()
	st.SetClock(func() int64 { return 1700000000 })
	ident := &fakeIdentity{}

	tr := NewTracker(st, ident)
	tr.Start(context.Background())
	defer tr.Shutdown(context.Background())

	ident.signIn(AuthUser{ID: "u1", Email: "u1@example.com"})

	cur := tr.Current()
	require.NotNil(t, cur)
	require.Equal(t, "u1", cur.ID)
	// Display name falls back to the email prefix.
	require.Equal(t, "u1", cur.Name)

	online, lastSeen := presence(t, st, "u1")
	require.True(t, online)
	require.Equal(t, int64(1700000000), lastSeen)
}

func TestSignInKeepsExistingProfile(t *testing.T) {
	st := store.NewMemStore()
	ident := &fakeIdentity{}
	ctx := context.Background()

	_, err := st.Create(ctx, models.UsersCollection, models.NewUserDoc("u1", "فارس", "u1@example.com"))
	require.NoError(t, err)

	tr := NewTracker(st, ident)
	tr.Start(ctx)
	defer tr.Shutdown(ctx)

	ident.signIn(AuthUser{ID: "u1", Email: "u1@example.com"})

	cur := tr.Current()
	require.NotNil(t, cur)
	require.Equal(t, "فارس", cur.Name)
}

func TestSignOutGoesOffline(t *testing.T) {
	st := store.NewMemStore()
	ident := &fakeIdentity{}

	tr := NewTracker(st, ident)
	tr.Start(context.Background())
	defer tr.Shutdown(context.Background())

	ident.signIn(AuthUser{ID: "u1", Email: "u1@example.com"})
	ident.signOut()

	require.Nil(t, tr.Current())
	online, _ := presence(t, st, "u1")
	require.False(t, online)
}

func TestCurrentTracksProfileMutations(t *testing.T) {
	st := store.NewMemStore()
	ident := &fakeIdentity{}
	ctx := context.Background()

	tr := NewTracker(st, ident)
	tr.Start(ctx)
	defer tr.Shutdown(ctx)

	ident.signIn(AuthUser{ID: "u1", Email: "u1@example.com"})

	err := st.Mutate(ctx, models.UsersCollection, "u1", store.Update{
		Set: store.Document{"bio": "كاتب"},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		cur := tr.Current()
		return cur != nil && cur.Bio == "كاتب"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCurrentReturnsCopy(t *testing.T) {
	st := store.NewMemStore()
	ident := &fakeIdentity{}

	tr := NewTracker(st, ident)
	tr.Start(context.Background())
	defer tr.Shutdown(context.Background())

	ident.signIn(AuthUser{ID: "u1", Email: "u1@example.com"})

	cur := tr.Current()
	require.NotNil(t, cur)
	cur.Name = "mutated"
	require.NotEqual(t, "mutated", tr.Current().Name)
}

func TestSetForeground(t *testing.T) {
	st := store.NewMemStore()
	ident := &fakeIdentity{}
	ctx := context.Background()

	tr := NewTracker(st, ident)
	tr.Start(ctx)
	defer tr.Shutdown(ctx)

	ident.signIn(AuthUser{ID: "u1", Email: "u1@example.com"})

	tr.SetForeground(ctx, false)
	online, _ := presence(t, st, "u1")
	require.False(t, online)

	tr.SetForeground(ctx, true)
	online, _ = presence(t, st, "u1")
	require.True(t, online)
}

func TestShutdownDetachesAuthCallback(t *testing.T) {
	st := store.NewMemStore()
	ident := &fakeIdentity{}
	ctx := context.Background()

	tr := NewTracker(st, ident)
	tr.Start(ctx)
	require.NotNil(t, ident.fn)

	tr.Shutdown(ctx)
	require.Nil(t, ident.fn)
}

func TestShutdownIdempotent(t *testing.T) {
	st := store.NewMemStore()
	ident := &fakeIdentity{}
	ctx := context.Background()

	tr := NewTracker(st, ident)
	tr.Start(ctx)

	ident.signIn(AuthUser{ID: "u1", Email: "u1@example.com"})

	tr.Shutdown(ctx)
	tr.Shutdown(ctx)

	online, _ := presence(t, st, "u1")
	require.False(t, online)
}
