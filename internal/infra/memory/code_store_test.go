package memory

import (
	"context"
	"testing"
)

func TestCodeStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewCodeStore()

	ok, err := store.Reserve(ctx, "ABC234")
	if err != nil || !ok {
		t.Fatalf("expected first reservation to succeed, ok=%v err=%v", ok, err)
	}
	if ok, _ := store.Reserve(ctx, "ABC234"); ok {
		t.Fatalf("expected duplicate reservation to fail")
	}
	if !store.Live("ABC234") {
		t.Fatalf("expected code live")
	}

	if err := store.Release(ctx, "ABC234"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.Live("ABC234") {
		t.Fatalf("expected code released")
	}
	if ok, _ := store.Reserve(ctx, "ABC234"); !ok {
		t.Fatalf("expected released code to be reusable")
	}
}
