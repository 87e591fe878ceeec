package appointment

import (
	"testing"
	"time"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

var art = time.FixedZone("ART", -3*60*60)

func openSlot(date time.Time, start string) *models.Appointment {
	return &models.Appointment{
		ID:        "ap-1",
		Date:      date,
		StartTime: start,
		EndTime:   start,
		State:     string(StateNull),
		UserID:    "u-1",
	}
}

func TestParseState(t *testing.T) {
	for _, s := range []string{"null", "reserved", "pending", "accept", "reject", "cancel"} {
		if _, err := ParseState(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	for _, s := range []string{"", "NULL", "accepted", "confirmed"} {
		if _, err := ParseState(s); err == nil {
			t.Fatalf("%q should be rejected", s)
		}
	}
}

func TestReserveLifecycle(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, art)
	ap := openSlot(today.AddDate(0, 0, 1), "10:00")

	fields := ClientFields{FullName: " Ana Pérez ", Email: "Ana@Mail.com", Cellphone: "387", Reason: "consulta"}
	if err := Reserve(ap, fields, "tok", today); err != nil {
		t.Fatal(err)
	}
	if ap.State != string(StateReserved) || ap.Token == nil || *ap.Token != "tok" {
		t.Fatalf("unexpected slot after reserve: %+v", ap)
	}
	if *ap.FullName != "Ana Pérez" || *ap.Email != "ana@mail.com" {
		t.Fatalf("client fields not normalized: %q %q", *ap.FullName, *ap.Email)
	}
	if !IsExpirable(ap) {
		t.Fatal("reserved slot with token must be expirable")
	}

	if err := Reserve(ap, fields, "tok2", today); !httperr.IsBusiness(err, "appointment_not_open") {
		t.Fatalf("expected appointment_not_open, got %v", err)
	}

	if err := Confirm(ap); err != nil {
		t.Fatal(err)
	}
	if ap.State != string(StatePending) || ap.Token == nil {
		t.Fatal("confirm must keep the token")
	}
	if IsExpirable(ap) {
		t.Fatal("pending slot must not be expirable")
	}
	if err := Confirm(ap); !httperr.IsBusiness(err, "already_confirmed") {
		t.Fatalf("expected already_confirmed, got %v", err)
	}

	if err := Decide(ap, StateAccept); err != nil {
		t.Fatal(err)
	}
	if ap.Token != nil || ap.FullName == nil {
		t.Fatal("accept must clear the token and keep client fields")
	}

	Reset(ap)
	if ap.State != string(StateNull) || ap.FullName != nil || ap.Email != nil || ap.Cellphone != nil || ap.Reason != nil || ap.Token != nil {
		t.Fatalf("reset left data behind: %+v", ap)
	}
}

func TestReserveRejectsTodayAndPast(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, art)

	for _, d := range []time.Time{today, today.AddDate(0, 0, -3)} {
		ap := openSlot(d, "10:00")
		err := Reserve(ap, ClientFields{FullName: "a", Email: "a@b.c"}, "t", today)
		if kind, _ := httperr.KindOf(err); kind != httperr.KindInvalidOperation {
			t.Fatalf("%s: expected invalid_operation, got %v", d, err)
		}
		if ap.State != string(StateNull) {
			t.Fatal("failed reserve mutated the slot")
		}
	}
}

func TestDecideRequiresClaimedSlot(t *testing.T) {
	ap := openSlot(time.Now(), "10:00")
	if err := Decide(ap, StateReject); !httperr.IsBusiness(err, "appointment_not_claimed") {
		t.Fatalf("expected appointment_not_claimed, got %v", err)
	}
	if err := Decide(ap, StatePending); !httperr.IsBusiness(err, "invalid_decision") {
		t.Fatalf("expected invalid_decision, got %v", err)
	}
}

func TestCanDecideBuffer(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, art)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if err := CanDecide(openSlot(day, "10:00"), now, 2*time.Hour); !httperr.IsBusiness(err, "decision_window_closed") {
		t.Fatalf("exactly at the buffer must be refused, got %v", err)
	}
	if err := CanDecide(openSlot(day, "10:30"), now, 2*time.Hour); err != nil {
		t.Fatalf("outside the buffer must be allowed, got %v", err)
	}
	if err := CanDecide(openSlot(day, "07:00"), now, 2*time.Hour); err == nil {
		t.Fatal("past slot must be refused")
	}
}
