// Package token implements the access-token service: opaque random bearer
// tokens bound to one user and an absolute expiry. Expiry is checked lazily
// at verification time; nothing reaps expired records in the background.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"upcheck/internal/ident"
	"upcheck/internal/model"
	"upcheck/internal/storage"
)

var (
	// ErrInvalidCredential is returned by Issue when the user does not exist
	// or the password does not match. The two cases are deliberately not
	// distinguished.
	ErrInvalidCredential = errors.New("invalid phone or password")
	// ErrExpired is returned by Extend when the token's expiry has passed.
	ErrExpired = errors.New("token has expired")
)

// DefaultWindow is how far an issued or extended token's expiry sits in the
// future unless configured otherwise.
const DefaultWindow = time.Hour

// Service issues, verifies, extends, and revokes tokens.
type Service struct {
	store  storage.Store
	window time.Duration
	now    func() time.Time
}

// New creates a token service. A non-positive window falls back to
// DefaultWindow; a nil now falls back to time.Now.
func New(store storage.Store, window time.Duration, now func() time.Time) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, window: window, now: now}
}

// Issue verifies the user's credential and mints a fresh token expiring one
// hour from now. Store failures other than a missing user propagate as-is.
func (s *Service) Issue(ctx context.Context, phone, password string) (model.Token, error) {
	var user model.User
	if err := s.store.Read(ctx, storage.Users, phone, &user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Token{}, ErrInvalidCredential
		}
		return model.Token{}, fmt.Errorf("read user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return model.Token{}, ErrInvalidCredential
	}

	tok := model.Token{
		ID:      ident.New(ident.Length),
		Phone:   phone,
		Expires: s.now().Add(s.window).UnixMilli(),
	}
	if err := s.store.Create(ctx, storage.Tokens, tok.ID, tok); err != nil {
		return model.Token{}, fmt.Errorf("create token: %w", err)
	}
	return tok, nil
}

// Get reads a token record by id.
func (s *Service) Get(ctx context.Context, id string) (model.Token, error) {
	var tok model.Token
	if err := s.store.Read(ctx, storage.Tokens, id, &tok); err != nil {
		return model.Token{}, err
	}
	return tok, nil
}

// Verify reports whether a token with the given id exists, is bound to phone,
// and has not yet expired. It never returns an error; any failure to load the
// token yields false. This predicate is the sole authorization gate for
// owner-scoped operations.
func (s *Service) Verify(ctx context.Context, id, phone string) bool {
	tok, ok := s.Resolve(ctx, id)
	return ok && tok.Phone == phone
}

// Resolve loads a token and checks its expiry, returning the record and true
// when the token is live. Used by the auth middleware to bind a request to
// the token's owner.
func (s *Service) Resolve(ctx context.Context, id string) (model.Token, bool) {
	var tok model.Token
	if err := s.store.Read(ctx, storage.Tokens, id, &tok); err != nil {
		return model.Token{}, false
	}
	if tok.Expires <= s.now().UnixMilli() {
		return model.Token{}, false
	}
	return tok, true
}

// Extend pushes a live token's expiry one window forward from now. An expired
// token can never be extended.
func (s *Service) Extend(ctx context.Context, id string) error {
	var tok model.Token
	if err := s.store.Read(ctx, storage.Tokens, id, &tok); err != nil {
		return err
	}
	if tok.Expires <= s.now().UnixMilli() {
		return ErrExpired
	}
	tok.Expires = s.now().Add(s.window).UnixMilli()
	return s.store.Update(ctx, storage.Tokens, id, tok)
}

// Revoke deletes a token (logout).
func (s *Service) Revoke(ctx context.Context, id string) error {
	return s.store.Delete(ctx, storage.Tokens, id)
}
