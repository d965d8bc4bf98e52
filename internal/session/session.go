package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("no active session")
)

const DefaultTokenTTL = 72 * time.Hour

// Profile is the remote account as returned by the auth API.
type Profile struct {
	ID     int    `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Authenticator is the remote auth API. Login must answer
// ErrInvalidCredentials when the remote side rejects the credentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password, avatar string) error
	Profile(ctx context.Context, token string) (Profile, error)
	UpdateProfile(ctx context.Context, token string, userID int, upd ProfileUpdate) (Profile, error)
}

// CartDropper forgets a user's session cart on sign-out.
type CartDropper interface {
	Drop(userID int)
}

type SignInResult struct {
	Token   string  `json:"token"`
	Profile Profile `json:"user"`
}

// Service keeps the remote access token of each signed-in user in the
// persisted store and issues local JWTs for the protected routes.
type Service struct {
	auth   Authenticator
	kv     storage.Store
	carts  CartDropper
	secret []byte
	ttl    time.Duration
}

func NewService(auth Authenticator, kv storage.Store, carts CartDropper, secret []byte) *Service {
	return &Service{auth: auth, kv: kv, carts: carts, secret: secret, ttl: DefaultTokenTTL}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	remoteToken, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return SignInResult{}, err
	}
	profile, err := s.auth.Profile(ctx, remoteToken)
	if err != nil {
		return SignInResult{}, fmt.Errorf("fetch profile: %w", err)
	}
	if err := storage.PutJSON(ctx, s.kv, storage.TokenKey(profile.ID), remoteToken); err != nil {
		return SignInResult{}, fmt.Errorf("store session token: %w", err)
	}

	token, err := IssueToken(s.secret, profile.ID, profile.Email, s.ttl)
	if err != nil {
		return SignInResult{}, fmt.Errorf("failed to generate token: %w", err)
	}
	log.Infof("user %d signed in", profile.ID)
	return SignInResult{Token: token, Profile: profile}, nil
}

// SignUp registers the account remotely, then signs in with it.
func (s *Service) SignUp(ctx context.Context, name, email, password, avatar string) (SignInResult, error) {
	if err := s.auth.Register(ctx, name, email, password, avatar); err != nil {
		return SignInResult{}, err
	}
	return s.SignIn(ctx, email, password)
}

func (s *Service) Profile(ctx context.Context, userID int) (Profile, error) {
	token, err := s.remoteToken(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.auth.Profile(ctx, token)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int, upd ProfileUpdate) (Profile, error) {
	token, err := s.remoteToken(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.auth.UpdateProfile(ctx, token, userID, upd)
}

// SignOut removes the stored token and the session cart. Order history is kept.
func (s *Service) SignOut(ctx context.Context, userID int) error {
	if s.carts != nil {
		s.carts.Drop(userID)
	}
	if err := s.kv.Remove(ctx, storage.TokenKey(userID), storage.CartKey(userID)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	log.Infof("user %d signed out", userID)
	return nil
}

func (s *Service) remoteToken(ctx context.Context, userID int) (string, error) {
	var token string
	found, err := storage.GetJSON(ctx, s.kv, storage.TokenKey(userID), &token)
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	if !found || token == "" {
		return "", ErrNotSignedIn
	}
	return token, nil
}
