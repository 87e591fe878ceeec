package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

const (
	subjectClient  = "Turno SIJAC"
	subjectStaff   = "Nuevo turno SIJAC"
	subjectContact = "Consulta desde la web SIJAC"
)

var ErrNoRecipient = errors.New("no recipient address")

type slotView struct {
	FullName  string
	Email     string
	Cellphone string
	Motive    string
	Date      string
	Start     string
	End       string

	Reason     string
	ConfirmURL string
	TTLMinutes int
}

type ContactForm struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

type EmailNotifier struct {
	mailer       Mailer
	confirmURL   func(token string) string
	staffAddress string
	ttl          time.Duration
}

func NewEmailNotifier(
	mailer Mailer,
	confirmURL func(token string) string,
	staffAddress string,
	ttl time.Duration,
) *EmailNotifier {
	return &EmailNotifier{
		mailer:       mailer,
		confirmURL:   confirmURL,
		staffAddress: staffAddress,
		ttl:          ttl,
	}
}

var _ domain.Notifier = (*EmailNotifier)(nil)

func (n *EmailNotifier) NotifyClient(
	ctx context.Context,
	kind domain.Notice,
	ap models.Appointment,
	reason string,
) error {
	if ap.Email == nil || *ap.Email == "" {
		return ErrNoRecipient
	}

	view := viewOf(ap)
	view.Reason = reason

	if kind == domain.NoticeConfirmRequest {
		if ap.Token == nil {
			return fmt.Errorf("appointment %s has no confirmation token", ap.ID)
		}
		view.ConfirmURL = n.confirmURL(*ap.Token)
		view.TTLMinutes = int(n.ttl / time.Minute)
	}

	body, err := render(string(kind), view)
	if err != nil {
		return err
	}

	return n.mailer.Send(ctx, Message{
		To:      *ap.Email,
		Subject: subjectClient,
		HTML:    body,
	})
}

// NotifyStaff mails the owning staff member, falling back to the office inbox.
func (n *EmailNotifier) NotifyStaff(
	ctx context.Context,
	ap models.Appointment,
	staff *models.User,
) error {
	to := n.staffAddress
	if staff != nil && staff.Email != "" {
		to = staff.Email
	}
	if to == "" {
		return ErrNoRecipient
	}

	body, err := render("staff", viewOf(ap))
	if err != nil {
		return err
	}

	msg := Message{To: to, Subject: subjectStaff, HTML: body}
	if ap.Email != nil {
		msg.ReplyTo = *ap.Email
	}
	return n.mailer.Send(ctx, msg)
}

func (n *EmailNotifier) SendContact(ctx context.Context, form ContactForm) error {
	if n.staffAddress == "" {
		return ErrNoRecipient
	}

	body, err := render("contact", form)
	if err != nil {
		return err
	}

	return n.mailer.Send(ctx, Message{
		To:      n.staffAddress,
		ReplyTo: strings.TrimSpace(form.Email),
		Subject: subjectContact,
		HTML:    body,
	})
}

func viewOf(ap models.Appointment) slotView {
	return slotView{
		FullName:  deref(ap.FullName),
		Email:     deref(ap.Email),
		Cellphone: deref(ap.Cellphone),
		Motive:    deref(ap.Reason),
		Date:      ap.Date.Format("02-01-2006"),
		Start:     ap.StartTime,
		End:       ap.EndTime,
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
