package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"khawater/session"
	"khawater/store"
)

const credentialsCollection = "credentials"

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already in use")
)

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service is the email/password identity service: bcrypt-hashed
// credentials in their own collection, HS256 tokens for the HTTP facade,
// and auth-change callbacks for the session tracker.
type Service struct {
	store  store.Store
	secret []byte

	mu        sync.Mutex
	callbacks map[int]func(session.AuthUser, bool)
	nextCB    int
}

func New(st store.Store, secret string) *Service {
	return &Service{
		store:     st,
		secret:    []byte(secret),
		callbacks: make(map[int]func(session.AuthUser, bool)),
	}
}

func (s *Service) OnAuthChange(fn func(user session.AuthUser, signedIn bool)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextCB
	s.nextCB++
	s.callbacks[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.callbacks, id)
	}
}

func (s *Service) SignUp(ctx context.Context, email, password string) (session.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.store.Query(ctx, credentialsCollection,
		[]store.Filter{store.Where("email", email)}, store.Sort{}, 1)
	if err != nil {
		return session.AuthUser{}, err
	}
	if len(existing) > 0 {
		return session.AuthUser{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return session.AuthUser{}, err
	}

	id, err := s.store.Create(ctx, credentialsCollection, store.Document{
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    store.ServerTimestamp,
	})
	if err != nil {
		return session.AuthUser{}, err
	}

	au := session.AuthUser{ID: id, Email: email}
	s.fire(au, true)
	return au, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (session.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	docs, err := s.store.Query(ctx, credentialsCollection,
		[]store.Filter{store.Where("email", email)}, store.Sort{}, 1)
	if err != nil {
		return session.AuthUser{}, err
	}
	if len(docs) == 0 {
		return session.AuthUser{}, ErrInvalidCredentials
	}

	id, _ := docs[0]["_id"].(string)
	hash, _ := docs[0]["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return session.AuthUser{}, ErrInvalidCredentials
	}

	au := session.AuthUser{ID: id, Email: email}
	s.fire(au, true)
	return au, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	s.fire(session.AuthUser{}, false)
	return nil
}

// Token issues a signed 24h session token.
func (s *Service) Token(user session.AuthUser) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: token is not valid")
	}
	return claims, nil
}

func (s *Service) fire(au session.AuthUser, signedIn bool) {
	s.mu.Lock()
	fns := make([]func(session.AuthUser, bool), 0, len(s.callbacks))
	for _, fn := range s.callbacks {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(au, signedIn)
	}
}
