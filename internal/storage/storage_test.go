package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFile(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
	}
}

func TestStore_CreateReadUpdateDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Create(ctx, "things", "a", record{Name: "one", Count: 1}))

			err := s.Create(ctx, "things", "a", record{Name: "dup"})
			assert.ErrorIs(t, err, ErrExists)

			var got record
			require.NoError(t, s.Read(ctx, "things", "a", &got))
			assert.Equal(t, record{Name: "one", Count: 1}, got)

			require.NoError(t, s.Update(ctx, "things", "a", record{Name: "two", Count: 2}))
			require.NoError(t, s.Read(ctx, "things", "a", &got))
			assert.Equal(t, record{Name: "two", Count: 2}, got)

			require.NoError(t, s.Delete(ctx, "things", "a"))
			assert.ErrorIs(t, s.Read(ctx, "things", "a", &got), ErrNotFound)
			assert.ErrorIs(t, s.Update(ctx, "things", "a", got), ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "things", "a"), ErrNotFound)
		})
	}
}

func TestStore_ListDistinguishesMissingFromEmpty(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.List(ctx, "things")
			assert.ErrorIs(t, err, ErrNoCollection)

			require.NoError(t, s.Create(ctx, "things", "a", record{Name: "one"}))
			require.NoError(t, s.Create(ctx, "things", "b", record{Name: "two"}))

			ids, err := s.List(ctx, "things")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"a", "b"}, ids)

			require.NoError(t, s.Delete(ctx, "things", "a"))
			require.NoError(t, s.Delete(ctx, "things", "b"))

			_, err = s.List(ctx, "things")
			assert.ErrorIs(t, err, ErrEmptyCollection)
		})
	}
}

func TestStore_DeleteWinsOverConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				require.NoError(t, s.Create(ctx, "things", "a", record{Name: "one"}))

				done := make(chan error, 1)
				go func() {
					done <- s.Update(ctx, "things", "a", record{Name: "two"})
				}()
				deleted := s.Delete(ctx, "things", "a") == nil
				updateErr := <-done

				// A successful delete must stick: the racing update
				// either landed first or failed, never resurrected
				// the record afterwards.
				var got record
				if deleted {
					assert.ErrorIs(t, s.Read(ctx, "things", "a", &got), ErrNotFound)
				} else {
					require.NoError(t, updateErr)
					require.NoError(t, s.Delete(ctx, "things", "a"))
				}
			}
		})
	}
}

func TestStore_ReadCopiesRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Create(ctx, "things", "a", record{Name: "one"}))

	var first record
	require.NoError(t, s.Read(ctx, "things", "a", &first))
	first.Name = "mutated"

	var second record
	require.NoError(t, s.Read(ctx, "things", "a", &second))
	assert.Equal(t, "one", second.Name)
}
