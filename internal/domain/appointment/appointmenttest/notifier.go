package appointmenttest

import (
	"context"
	"sync"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

type ClientNotice struct {
	Kind        domain.Notice
	Appointment models.Appointment
	Reason      string
}

// Notifier records every notice. Err is returned from every call.
type Notifier struct {
	mu sync.Mutex

	Client []ClientNotice
	Staff  []models.Appointment
	Err    error
}

var _ domain.Notifier = (*Notifier)(nil)

func (n *Notifier) NotifyClient(ctx context.Context, kind domain.Notice, ap models.Appointment, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Client = append(n.Client, ClientNotice{Kind: kind, Appointment: ap, Reason: reason})
	return n.Err
}

func (n *Notifier) NotifyStaff(ctx context.Context, ap models.Appointment, staff *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Staff = append(n.Staff, ap)
	return n.Err
}

func (n *Notifier) ClientNotices() []ClientNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ClientNotice(nil), n.Client...)
}
