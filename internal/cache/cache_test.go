package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySetGetDelete(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get(ctx, "k")
	if err != nil || v != "v" {
		t.Fatalf("Get = (%q, %v)", v, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired key = %v, want ErrNotFound", err)
	}
}

func TestTakeOnceConsumes(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "nonce", "naver", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := TakeOnce(ctx, c, "nonce")
	if err != nil || v != "naver" {
		t.Fatalf("TakeOnce = (%q, %v)", v, err)
	}

	if _, err := TakeOnce(ctx, c, "nonce"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second TakeOnce = %v, want ErrNotFound", err)
	}
}

func TestMemoryDeleteAbsentKey(t *testing.T) {
	c := NewMemory(time.Minute)
	if err := c.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("Delete absent = %v, want nil", err)
	}
}
