package account

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"upcheck/internal/model"
	"upcheck/internal/registry"
	"upcheck/internal/storage"
)

func validSignup() NewUser {
	return NewUser{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Phone:        "5551234567",
		Password:     "hunter2",
		TOSAgreement: true,
	}
}

func newService(t *testing.T) (*Service, *registry.Registry, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	reg := registry.New(store, 5, nil)
	return New(store, reg), reg, store
}

func TestCreate(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, validSignup())
	require.NoError(t, err)
	assert.Empty(t, user.HashedPassword, "hash never leaves the service")

	var stored model.User
	require.NoError(t, store.Read(ctx, storage.Users, "5551234567", &stored))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("hunter2")))
	assert.True(t, stored.TOSAgreement)

	_, err = svc.Create(ctx, validSignup())
	assert.ErrorIs(t, err, ErrExists)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*NewUser)
	}{
		{"short phone", func(u *NewUser) { u.Phone = "555123" }},
		{"non-numeric phone", func(u *NewUser) { u.Phone = "555123456x" }},
		{"missing first name", func(u *NewUser) { u.FirstName = "" }},
		{"missing last name", func(u *NewUser) { u.LastName = "" }},
		{"missing password", func(u *NewUser) { u.Password = "" }},
		{"tos not accepted", func(u *NewUser) { u.TOSAgreement = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := validSignup()
			tt.mutate(&nu)
			_, err := svc.Create(ctx, nu)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestUpdate(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validSignup())
	require.NoError(t, err)

	first := "Grace"
	password := "newpass"
	require.NoError(t, svc.Update(ctx, "5551234567", Patch{FirstName: &first, Password: &password}))

	var stored model.User
	require.NoError(t, store.Read(ctx, storage.Users, "5551234567", &stored))
	assert.Equal(t, "Grace", stored.FirstName)
	assert.Equal(t, "Lovelace", stored.LastName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("newpass")))

	assert.ErrorIs(t, svc.Update(ctx, "5551234567", Patch{}), model.ErrInvalidInput)
	assert.ErrorIs(t, svc.Update(ctx, "0000000000", Patch{FirstName: &first}), storage.ErrNotFound)
}

// gatedStore parks the next user-record write after arming, signaling entry
// so the test can interleave another mutation while the write is in flight.
type gatedStore struct {
	storage.Store
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Update(ctx context.Context, collection, id string, value any) error {
	if collection == storage.Users && g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.Store.Update(ctx, collection, id, value)
}

func TestUpdate_SerializedWithCheckCreate(t *testing.T) {
	store := storage.NewMemory()
	reg := registry.New(store, 5, nil)
	gated := &gatedStore{Store: store, entered: make(chan struct{}), release: make(chan struct{})}
	svc := New(gated, reg)
	ctx := context.Background()

	_, err := svc.Create(ctx, validSignup())
	require.NoError(t, err)

	// Park the profile update mid read-modify-write.
	gated.armed.Store(true)
	updateDone := make(chan error, 1)
	go func() {
		first := "Grace"
		updateDone <- svc.Update(ctx, "5551234567", Patch{FirstName: &first})
	}()
	<-gated.entered

	// A check create during the window must not have its index entry
	// clobbered by the in-flight profile write.
	type createResult struct {
		chk model.Check
		err error
	}
	createDone := make(chan createResult, 1)
	go func() {
		chk, err := reg.Create(ctx, "5551234567", model.Check{
			Protocol:       "http",
			URL:            "example.com",
			Method:         "get",
			SuccessCodes:   []int{200},
			TimeoutSeconds: 3,
		})
		createDone <- createResult{chk, err}
	}()

	close(gated.release)
	require.NoError(t, <-updateDone)
	res := <-createDone
	require.NoError(t, res.err)

	var stored model.User
	require.NoError(t, store.Read(ctx, storage.Users, "5551234567", &stored))
	assert.Equal(t, "Grace", stored.FirstName)
	assert.Contains(t, stored.Checks, res.chk.ID, "check id survives the concurrent profile update")
	require.NoError(t, reg.Delete(ctx, "5551234567", res.chk.ID))
}

func TestGet_StripsHash(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validSignup())
	require.NoError(t, err)

	user, err := svc.Get(ctx, "5551234567")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Empty(t, user.HashedPassword)
}

func TestDelete_CascadesToChecks(t *testing.T) {
	svc, reg, store := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validSignup())
	require.NoError(t, err)

	chk, err := reg.Create(ctx, "5551234567", model.Check{
		Protocol:       "http",
		URL:            "example.com",
		Method:         "get",
		SuccessCodes:   []int{200},
		TimeoutSeconds: 3,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "5551234567"))

	_, err = svc.Get(ctx, "5551234567")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	var saved model.Check
	assert.ErrorIs(t, store.Read(ctx, storage.Checks, chk.ID, &saved), storage.ErrNotFound)
}
