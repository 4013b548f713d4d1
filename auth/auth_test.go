package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"khawater/session"
	"khawater/store"
)

func TestSignUpAndSignIn(t *testing.T) {
	svc := New(store.NewMemStore(), "test-secret")
	ctx := context.Background()

	created, err := svc.SignUp(ctx, "Someone@Example.com ", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "someone@example.com", created.Email)

	signedIn, err := svc.SignIn(ctx, "someone@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, created.ID, signedIn.ID)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := New(store.NewMemStore(), "test-secret")
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "a@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInUnknownEmail(t *testing.T) {
	svc := New(store.NewMemStore(), "test-secret")

	_, err := svc.SignIn(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := New(store.NewMemStore(), "test-secret")
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@example.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "A@example.com", "other-pw")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := New(store.NewMemStore(), "test-secret")

	token, err := svc.Token(session.AuthUser{ID: "u1", Email: "a@example.com"})
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "a@example.com", claims.Email)
}

func TestParseTokenWrongSecret(t *testing.T) {
	issuer := New(store.NewMemStore(), "secret-one")
	verifier := New(store.NewMemStore(), "secret-two")

	token, err := issuer.Token(session.AuthUser{ID: "u1"})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestOnAuthChangeCallbacks(t *testing.T) {
	svc := New(store.NewMemStore(), "test-secret")
	ctx := context.Background()

	var gotUser session.AuthUser
	var gotSignedIn bool
	calls := 0
	cancel := svc.OnAuthChange(func(au session.AuthUser, signedIn bool) {
		gotUser = au
		gotSignedIn = signedIn
		calls++
	})

	created, err := svc.SignUp(ctx, "a@example.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.True(t, gotSignedIn)
	require.Equal(t, created.ID, gotUser.ID)

	require.NoError(t, svc.SignOut(ctx))
	require.Equal(t, 2, calls)
	require.False(t, gotSignedIn)
	require.Empty(t, gotUser.ID)

	cancel()
	_, err = svc.SignIn(ctx, "a@example.com", "pw123456")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
