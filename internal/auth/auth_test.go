package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherHashIsSaltedAndVerifiable(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	a, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == "secret1" || a == b {
		t.Fatalf("hashes must be salted and never the plaintext: %q %q", a, b)
	}
	if !h.Verify(a, "secret1") || !h.Verify(b, "secret1") {
		t.Fatal("Verify rejected the right password")
	}
	if h.Verify(a, "secret2") {
		t.Fatal("Verify accepted a wrong password")
	}
	if h.Verify("not-a-hash", "secret1") {
		t.Fatal("Verify accepted a malformed hash")
	}
	h.Burn("anything")
}

func TestHasherRejectsBadCostAndLongPasswords(t *testing.T) {
	if _, err := NewHasher(bcrypt.MinCost - 1); err == nil {
		t.Fatal("expected error for cost below minimum")
	}
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	if _, err := h.Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("want ErrPasswordTooLong, got %v", err)
	}
}

func newLimiter(t *testing.T, max int, window time.Duration) (*AttemptLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAttemptLimiter(rdb, max, window), mr
}

func TestAttemptLimiterLocksAfterMaxFailures(t *testing.T) {
	l, mr := newLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allowed(ctx, "alice@example.com")
		if err != nil || !ok {
			t.Fatalf("attempt %d refused: %v", i, err)
		}
		if err := l.Fail(ctx, "Alice@Example.com "); err != nil {
			t.Fatalf("Fail: %v", err)
		}
	}

	ok, wait, err := l.Allowed(ctx, "alice@example.com")
	if err != nil || ok {
		t.Fatalf("expected lockout, got ok=%v err=%v", ok, err)
	}
	if wait <= 0 || wait > time.Minute {
		t.Fatalf("remaining lockout = %v", wait)
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, _, _ := l.Allowed(ctx, "alice@example.com"); !ok {
		t.Fatal("lockout should expire with the window")
	}
}

func TestAttemptLimiterResetAndIsolation(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_ = l.Fail(ctx, "a@example.com")
	if ok, _, _ := l.Allowed(ctx, "a@example.com"); ok {
		t.Fatal("a should be locked")
	}
	if ok, _, _ := l.Allowed(ctx, "b@example.com"); !ok {
		t.Fatal("b must not be affected by a")
	}
	if err := l.Reset(ctx, "a@example.com"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _, _ := l.Allowed(ctx, "a@example.com"); !ok {
		t.Fatal("Reset should unlock")
	}
}

func TestNilAttemptLimiterAllowsEverything(t *testing.T) {
	var l *AttemptLimiter
	ctx := context.Background()
	if ok, _, err := l.Allowed(ctx, "x"); !ok || err != nil {
		t.Fatal("nil limiter must allow")
	}
	if l.Fail(ctx, "x") != nil || l.Reset(ctx, "x") != nil {
		t.Fatal("nil limiter must be a no-op")
	}
}

func TestAttemptLimiterFailsOpenOnRedisError(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	mr.Close()
	ok, _, err := l.Allowed(context.Background(), "a@example.com")
	if err == nil || !ok {
		t.Fatalf("want ok=true with error, got ok=%v err=%v", ok, err)
	}
}

func TestAttemptLimiterRepairsCounterWithoutExpiry(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()
	key := loginKeyPrefix + "a@example.com"
	if err := mr.Set(key, "1"); err != nil {
		t.Fatal(err)
	}

	ok, wait, err := l.Allowed(ctx, "a@example.com")
	if err != nil || ok || wait != time.Minute {
		t.Fatalf("Allowed = %v, %v, %v", ok, wait, err)
	}
	if mr.TTL(key) <= 0 {
		t.Fatal("counter still has no expiry")
	}
	mr.FastForward(time.Minute + time.Second)
	if ok, _, _ := l.Allowed(ctx, "a@example.com"); !ok {
		t.Fatal("lock must clear once the window passes")
	}
}

func TestAttemptLimiterFailAlwaysLeavesExpiry(t *testing.T) {
	l, mr := newLimiter(t, 5, time.Minute)
	ctx := context.Background()
	key := loginKeyPrefix + "a@example.com"

	if err := l.Fail(ctx, "a@example.com"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if got := mr.TTL(key); got <= 0 || got > time.Minute {
		t.Fatalf("TTL after first failure = %v", got)
	}

	_ = mr.Set(key, "3")
	if err := l.Fail(ctx, "a@example.com"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if got, _ := mr.Get(key); got != "4" {
		t.Fatalf("counter = %q", got)
	}
	if mr.TTL(key) <= 0 {
		t.Fatal("Fail left a counter without expiry")
	}
}
