package appointment

import (
	"context"

	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

type Notice string

const (
	NoticeConfirmRequest Notice = "confirm_request"
	NoticeAccepted       Notice = "accepted"
	NoticeRejected       Notice = "rejected"
	NoticeCancelled      Notice = "cancelled"
)

// NoticeFor maps a staff decision to the e-mail the client receives.
func NoticeFor(s State) Notice {
	switch s {
	case StateAccept:
		return NoticeAccepted
	case StateReject:
		return NoticeRejected
	default:
		return NoticeCancelled
	}
}

// Notifier delivers appointment e-mails. Callers log and swallow errors.
type Notifier interface {
	NotifyClient(
		ctx context.Context,
		kind Notice,
		ap models.Appointment,
		reason string,
	) error

	NotifyStaff(
		ctx context.Context,
		ap models.Appointment,
		staff *models.User,
	) error
}
