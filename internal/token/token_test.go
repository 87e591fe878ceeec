package token

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestConfirmationRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c := NewCodec("secret", WithClock(fixedClock(now)))

	raw, exp, err := c.MintConfirmation("ap-1", "u-1", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %s", exp)
	}

	got, err := c.ParseConfirmation(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.AppointmentID != "ap-1" || got.UserID != "u-1" || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected claims %+v", got)
	}

	again, _, _ := c.MintConfirmation("ap-1", "u-1", 30*time.Minute)
	if again == raw {
		t.Fatal("two confirmations for the same slot must differ")
	}
}

func TestConfirmationExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	minted := NewCodec("secret", WithClock(fixedClock(now)))
	later := NewCodec("secret", WithClock(fixedClock(now.Add(31*time.Minute))))

	raw, _, err := minted.MintConfirmation("ap-1", "u-1", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := later.ParseConfirmation(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	c := NewCodec("secret")

	session, _, err := c.MintSession("u-1", "admin", "a@b.c", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ParseConfirmation(session); !errors.Is(err, ErrInvalid) {
		t.Fatalf("session token accepted as confirmation: %v", err)
	}

	confirm, _, _ := c.MintConfirmation("ap-1", "u-1", time.Hour)
	if _, err := c.ParseSession(confirm); !errors.Is(err, ErrInvalid) {
		t.Fatalf("confirmation token accepted as session: %v", err)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	raw, _, _ := NewCodec("other").MintSession("u-1", "user", "a@b.c", time.Hour)

	if _, err := NewCodec("secret").ParseSession(raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if _, err := NewCodec("secret").ParseSession("not-a-token"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	s, err := NewCodec("other").ParseSession(raw)
	if err != nil || s.UserID != "u-1" || s.Role != "user" {
		t.Fatalf("unexpected session %+v %v", s, err)
	}
}
