package hub

import (
	"errors"
	"testing"
)

type testWriter struct {
	writes int
	fail   bool
}

func (w *testWriter) Write(message []byte) error {
	w.writes++
	if w.fail {
		return errors.New("write failed")
	}
	return nil
}

func (w *testWriter) Close() error { return nil }

func TestHub_BroadcastReachesOwnerOnly(t *testing.T) {
	h := New()
	w1 := &testWriter{}
	w2 := &testWriter{}
	h.Register(&Connection{ID: "c1", Phone: "5551234567", Writer: w1})
	h.Register(&Connection{ID: "c2", Phone: "9990001111", Writer: w2})

	h.Broadcast("5551234567", []byte("alert"))
	if w1.writes != 1 {
		t.Fatalf("expected 1 write to owner, got %d", w1.writes)
	}
	if w2.writes != 0 {
		t.Fatalf("expected no writes to other owner, got %d", w2.writes)
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	h := New()
	w := &testWriter{}
	c := &Connection{ID: "c1", Phone: "5551234567", Writer: w}
	h.Register(c)
	h.Unregister(c)

	h.Broadcast("5551234567", []byte("alert"))
	if w.writes != 0 {
		t.Fatalf("expected no writes, got %d", w.writes)
	}
}

func TestHub_DropsFailedConnections(t *testing.T) {
	h := New()
	w := &testWriter{fail: true}
	h.Register(&Connection{ID: "c1", Phone: "5551234567", Writer: w})

	h.Broadcast("5551234567", []byte("alert"))
	h.Broadcast("5551234567", []byte("alert"))
	if w.writes != 1 {
		t.Fatalf("expected failed connection dropped after 1 write, got %d", w.writes)
	}
}
