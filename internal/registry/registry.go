// Package registry validates and persists check definitions, enforces the
// per-owner quota, and keeps the bidirectional link between an owner and its
// check-id set consistent. Every divergence between a check record and its
// owner's index is surfaced as ErrInconsistent, never healed silently.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"upcheck/internal/ident"
	"upcheck/internal/model"
	"upcheck/internal/storage"
)

var (
	// ErrForbidden is returned when a check exists but belongs to another owner.
	ErrForbidden = errors.New("check belongs to another owner")
	// ErrQuotaExceeded is returned by Create when the owner is at the check limit.
	ErrQuotaExceeded = errors.New("maximum number of checks reached")
	// ErrInconsistent is returned when a check record and its owner's check-id
	// set have diverged.
	ErrInconsistent = errors.New("check index inconsistent")
)

// PartialFailureError reports a cascading delete in which some constituent
// check deletions failed. FailedIDs names every check that could not be
// removed; the owner record is gone regardless.
type PartialFailureError struct {
	FailedIDs []string
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("failed to delete checks: %s", strings.Join(e.FailedIDs, ", "))
}

// Patch is a partial check update. Nil (or, for SuccessCodes, empty) fields
// are left untouched.
type Patch struct {
	Protocol       *string `json:"protocol"`
	URL            *string `json:"url"`
	Method         *string `json:"method"`
	SuccessCodes   []int   `json:"successCodes"`
	TimeoutSeconds *int    `json:"timeoutSeconds"`
}

func (p Patch) empty() bool {
	return p.Protocol == nil && p.URL == nil && p.Method == nil &&
		len(p.SuccessCodes) == 0 && p.TimeoutSeconds == nil
}

// Registry is the check registry.
type Registry struct {
	store     storage.Store
	maxChecks int
	locks     *ownerLocks
	log       *slog.Logger
}

// New creates a registry. maxChecks is the per-owner quota.
func New(store storage.Store, maxChecks int, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		store:     store,
		maxChecks: maxChecks,
		locks:     newOwnerLocks(),
		log:       log,
	}
}

// LockOwner serializes the caller against every other mutation of the owner's
// record, the registry's own included. Any writer of a user record outside
// this package must hold this lock across its read-modify-write, or a
// concurrent check create or delete can have its index entry clobbered. The
// returned func releases the lock.
func (r *Registry) LockOwner(phone string) func() {
	lock := r.locks.acquire(phone)
	return lock.Unlock
}

// Create validates the definition, checks the owner's quota, persists the
// check, and appends its id to the owner's check-id set. If the owner record
// cannot be updated after the check was written, the orphan check is removed
// best-effort and ErrInconsistent is returned.
func (r *Registry) Create(ctx context.Context, phone string, def model.Check) (model.Check, error) {
	def.UserPhone = phone
	def.State = ""
	def.LastChecked = 0
	if err := def.ValidateDefinition(); err != nil {
		return model.Check{}, err
	}

	lock := r.locks.acquire(phone)
	defer lock.Unlock()

	var user model.User
	if err := r.store.Read(ctx, storage.Users, phone, &user); err != nil {
		return model.Check{}, fmt.Errorf("read owner: %w", err)
	}
	if len(user.Checks) >= r.maxChecks {
		return model.Check{}, ErrQuotaExceeded
	}

	def.ID = ident.New(ident.Length)
	if err := r.store.Create(ctx, storage.Checks, def.ID, def); err != nil {
		return model.Check{}, fmt.Errorf("create check: %w", err)
	}

	user.Checks = append(user.Checks, def.ID)
	if err := r.store.Update(ctx, storage.Users, phone, user); err != nil {
		if delErr := r.store.Delete(ctx, storage.Checks, def.ID); delErr != nil {
			r.log.Error("orphan check left behind after failed owner update",
				"check", def.ID, "owner", phone, "err", delErr)
		}
		return model.Check{}, fmt.Errorf("%w: owner index update failed: %v", ErrInconsistent, err)
	}
	return def, nil
}

// Read returns the check iff it exists and belongs to phone.
func (r *Registry) Read(ctx context.Context, phone, id string) (model.Check, error) {
	var chk model.Check
	if err := r.store.Read(ctx, storage.Checks, id, &chk); err != nil {
		return model.Check{}, err
	}
	if chk.UserPhone != phone {
		return model.Check{}, ErrForbidden
	}
	return chk, nil
}

// Update merges the supplied fields into the check and persists it. At least
// one field must be supplied, and every supplied field must be valid.
func (r *Registry) Update(ctx context.Context, phone, id string, patch Patch) (model.Check, error) {
	if patch.empty() {
		return model.Check{}, fmt.Errorf("%w: no fields to update", model.ErrInvalidInput)
	}

	chk, err := r.Read(ctx, phone, id)
	if err != nil {
		return model.Check{}, err
	}

	if patch.Protocol != nil {
		chk.Protocol = *patch.Protocol
	}
	if patch.URL != nil {
		chk.URL = *patch.URL
	}
	if patch.Method != nil {
		chk.Method = *patch.Method
	}
	if len(patch.SuccessCodes) > 0 {
		chk.SuccessCodes = patch.SuccessCodes
	}
	if patch.TimeoutSeconds != nil {
		chk.TimeoutSeconds = *patch.TimeoutSeconds
	}
	if err := chk.ValidateDefinition(); err != nil {
		return model.Check{}, err
	}

	if err := r.store.Update(ctx, storage.Checks, id, chk); err != nil {
		return model.Check{}, fmt.Errorf("update check: %w", err)
	}
	return chk, nil
}

// Delete removes the check record and its id from the owner's check-id set.
// An id missing from the owner's set after the record existed is reported as
// ErrInconsistent rather than swallowed.
func (r *Registry) Delete(ctx context.Context, phone, id string) error {
	lock := r.locks.acquire(phone)
	defer lock.Unlock()

	var chk model.Check
	if err := r.store.Read(ctx, storage.Checks, id, &chk); err != nil {
		return err
	}
	if chk.UserPhone != phone {
		return ErrForbidden
	}

	if err := r.store.Delete(ctx, storage.Checks, id); err != nil {
		return fmt.Errorf("delete check: %w", err)
	}

	var user model.User
	if err := r.store.Read(ctx, storage.Users, phone, &user); err != nil {
		return fmt.Errorf("read owner: %w", err)
	}

	idx := -1
	for i, cid := range user.Checks {
		if cid == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: check %s not in owner index", ErrInconsistent, id)
	}
	user.Checks = append(user.Checks[:idx], user.Checks[idx+1:]...)

	if err := r.store.Update(ctx, storage.Users, phone, user); err != nil {
		return fmt.Errorf("%w: owner index update failed: %v", ErrInconsistent, err)
	}
	return nil
}

// PurgeOwner deletes every check in the owner's set concurrently, then
// removes the owner record itself. The owner record goes away whether or not
// every constituent delete succeeded; failures are reported as a
// *PartialFailureError naming the ids that remain.
func (r *Registry) PurgeOwner(ctx context.Context, phone string) error {
	lock := r.locks.acquire(phone)
	defer lock.Unlock()

	var user model.User
	if err := r.store.Read(ctx, storage.Users, phone, &user); err != nil {
		return fmt.Errorf("read owner: %w", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)
	for _, id := range user.Checks {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.store.Delete(ctx, storage.Checks, id); err != nil {
				r.log.Error("cascading delete failed", "check", id, "owner", phone, "err", err)
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := r.store.Delete(ctx, storage.Users, phone); err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return &PartialFailureError{FailedIDs: failed}
	}
	return nil
}
