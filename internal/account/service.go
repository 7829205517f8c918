// Package account manages owner records: signup, profile reads and partial
// updates, and deletion with its cascade over the owner's checks.
package account

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"upcheck/internal/model"
	"upcheck/internal/registry"
	"upcheck/internal/storage"
)

// ErrExists is returned by Create when an account with the phone already exists.
var ErrExists = errors.New("a user with that phone already exists")

// NewUser carries the signup fields.
type NewUser struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	TOSAgreement bool   `json:"tosAgreement"`
}

// Patch is a partial profile update; at least one field must be supplied.
type Patch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  *string `json:"password"`
}

// Service provides account operations.
type Service struct {
	store    storage.Store
	registry *registry.Registry
}

func New(store storage.Store, reg *registry.Registry) *Service {
	return &Service{store: store, registry: reg}
}

// Create validates the signup fields, hashes the password, and persists the
// account. A duplicate phone fails ErrExists.
func (s *Service) Create(ctx context.Context, nu NewUser) (model.User, error) {
	if !model.ValidPhone(nu.Phone) {
		return model.User{}, fmt.Errorf("%w: phone must be 10 digits", model.ErrInvalidInput)
	}
	if nu.FirstName == "" || nu.LastName == "" {
		return model.User{}, fmt.Errorf("%w: firstName and lastName are required", model.ErrInvalidInput)
	}
	if nu.Password == "" {
		return model.User{}, fmt.Errorf("%w: password is required", model.ErrInvalidInput)
	}
	if !nu.TOSAgreement {
		return model.User{}, fmt.Errorf("%w: tosAgreement must be accepted", model.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Phone:          nu.Phone,
		FirstName:      nu.FirstName,
		LastName:       nu.LastName,
		HashedPassword: string(hash),
		TOSAgreement:   true,
	}
	if err := s.store.Create(ctx, storage.Users, user.Phone, user); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return model.User{}, ErrExists
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	user.HashedPassword = ""
	return user, nil
}

// Get returns the account without its password hash.
func (s *Service) Get(ctx context.Context, phone string) (model.User, error) {
	var user model.User
	if err := s.store.Read(ctx, storage.Users, phone, &user); err != nil {
		return model.User{}, err
	}
	user.HashedPassword = ""
	return user, nil
}

// Update merges the supplied profile fields and persists the account.
func (s *Service) Update(ctx context.Context, phone string, patch Patch) error {
	if patch.FirstName == nil && patch.LastName == nil && patch.Password == nil {
		return fmt.Errorf("%w: no fields to update", model.ErrInvalidInput)
	}
	if patch.FirstName != nil && *patch.FirstName == "" {
		return fmt.Errorf("%w: firstName must not be empty", model.ErrInvalidInput)
	}
	if patch.LastName != nil && *patch.LastName == "" {
		return fmt.Errorf("%w: lastName must not be empty", model.ErrInvalidInput)
	}
	if patch.Password != nil && *patch.Password == "" {
		return fmt.Errorf("%w: password must not be empty", model.ErrInvalidInput)
	}

	// The user record carries the owner's check-id set, so this
	// read-modify-write must be serialized with the registry's mutations or
	// a concurrent check create would have its index entry overwritten.
	unlock := s.registry.LockOwner(phone)
	defer unlock()

	var user model.User
	if err := s.store.Read(ctx, storage.Users, phone, &user); err != nil {
		return err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.HashedPassword = string(hash)
	}
	return s.store.Update(ctx, storage.Users, phone, user)
}

// Delete removes the account and cascades to all of its checks. The account
// record is gone even when some constituent check deletions fail; such
// failures surface as a *registry.PartialFailureError.
func (s *Service) Delete(ctx context.Context, phone string) error {
	return s.registry.PurgeOwner(ctx, phone)
}
