package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (f *fakeMailer) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func str(s string) *string { return &s }

func reserved() models.Appointment {
	return models.Appointment{
		ID:        "ap-1",
		Date:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "10:30",
		FullName:  str("Ana Pérez"),
		Email:     str("ana@example.com"),
		Cellphone: str("3875551234"),
		Reason:    str("Consulta laboral"),
		State:     "reserved",
		Token:     str("tok-123"),
	}
}

func newNotifier(m Mailer) *EmailNotifier {
	return NewEmailNotifier(m, func(tok string) string {
		return "https://sijac.test/turnos/confirmar?token=" + tok
	}, "oficina@sijac.test", 30*time.Minute)
}

func TestConfirmRequestCarriesLink(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(m)

	if err := n.NotifyClient(context.Background(), domain.NoticeConfirmRequest, reserved(), ""); err != nil {
		t.Fatal(err)
	}

	if len(m.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(m.sent))
	}
	msg := m.sent[0]
	if msg.To != "ana@example.com" || msg.Subject != subjectClient {
		t.Fatalf("unexpected envelope %+v", msg)
	}
	for _, want := range []string{"token=tok-123", "12-03-2026", "10:00", "30 minutos"} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestRejectedIncludesReason(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(m)

	if err := n.NotifyClient(context.Background(), domain.NoticeRejected, reserved(), "Agenda completa"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(m.sent[0].HTML, "Agenda completa") {
		t.Fatal("reject reason missing from body")
	}
}

func TestNotifyClientWithoutEmail(t *testing.T) {
	n := newNotifier(&fakeMailer{})
	ap := reserved()
	ap.Email = nil

	if err := n.NotifyClient(context.Background(), domain.NoticeCancelled, ap, ""); err != ErrNoRecipient {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}

func TestNotifyStaffFallsBackToOfficeAddress(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(m)

	if err := n.NotifyStaff(context.Background(), reserved(), nil); err != nil {
		t.Fatal(err)
	}
	if err := n.NotifyStaff(context.Background(), reserved(), &models.User{Email: "lawyer@sijac.test"}); err != nil {
		t.Fatal(err)
	}

	if m.sent[0].To != "oficina@sijac.test" || m.sent[1].To != "lawyer@sijac.test" {
		t.Fatalf("unexpected recipients %q, %q", m.sent[0].To, m.sent[1].To)
	}
	if m.sent[0].ReplyTo != "ana@example.com" {
		t.Fatalf("expected reply-to client, got %q", m.sent[0].ReplyTo)
	}
}

func TestTemplatesEscapeClientInput(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(m)

	ap := reserved()
	ap.Reason = str("<script>alert(1)</script>")

	if err := n.NotifyClient(context.Background(), domain.NoticeAccepted, ap, ""); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(m.sent[0].HTML, "<script>") {
		t.Fatal("client input was not escaped")
	}
}

func TestSendContact(t *testing.T) {
	m := &fakeMailer{}
	n := newNotifier(m)

	err := n.SendContact(context.Background(), ContactForm{
		Name:    "Juan",
		Email:   " juan@example.com ",
		Message: "Necesito asesoramiento",
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.sent[0].To != "oficina@sijac.test" || m.sent[0].ReplyTo != "juan@example.com" {
		t.Fatalf("unexpected envelope %+v", m.sent[0])
	}
}
