package memory

import (
	"context"
	"testing"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session := store.GetOrCreate(ctx, "sid-1")
	if session == nil {
		t.Fatalf("expected session")
	}
	if again := store.GetOrCreate(ctx, "sid-1"); again != session {
		t.Fatalf("expected the same session instance")
	}
	if _, ok := store.Get(ctx, "sid-1"); !ok {
		t.Fatalf("expected session present")
	}

	store.DeleteIfEmpty(ctx, "sid-1")
	if _, ok := store.Get(ctx, "sid-1"); ok {
		t.Fatalf("expected session removed when empty")
	}
}

func TestSessionStoreKeepsSubscribedSession(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session := store.GetOrCreate(ctx, "sid-1")
	_, cancel := session.Subscribe()

	store.DeleteIfEmpty(ctx, "sid-1")
	if store.Len() != 1 {
		t.Fatalf("expected subscribed session to be kept")
	}

	cancel()
	store.DeleteIfEmpty(ctx, "sid-1")
	if store.Len() != 0 {
		t.Fatalf("expected session removed after unsubscribe")
	}
}
