package availability

import (
	"context"
	"errors"
	"time"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

// Summary is an availability plus whether any of its slots is still open.
type Summary struct {
	models.Availability
	Disponibility bool `json:"disponibility"`
}

type ListAvailabilities struct {
	repo domain.Repository
	now  func() time.Time
}

func NewListAvailabilities(repo domain.Repository, now func() time.Time) *ListAvailabilities {
	return &ListAvailabilities{repo: repo, now: now}
}

// ForStaff lists a staff member's availabilities within the optional range.
func (uc *ListAvailabilities) ForStaff(
	ctx context.Context,
	userID string,
	from, to *time.Time,
) ([]Summary, error) {

	list, err := uc.repo.ListAvailabilities(ctx, domain.AvailabilityFilter{
		UserID:           userID,
		DateFrom:         from,
		DateTo:           to,
		WithAppointments: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(list))
	for _, av := range list {
		out = append(out, Summary{Availability: av, Disponibility: hasOpenSlot(av)})
	}
	return out, nil
}

// Public lists the upcoming dates of a staff member that still have an
// open slot. Today is never bookable.
func (uc *ListAvailabilities) Public(
	ctx context.Context,
	userID string,
	from, to *time.Time,
) ([]Summary, error) {

	tomorrow := timezone.DateOf(uc.now()).AddDate(0, 0, 1)
	if from == nil || timezone.BeforeDate(*from, tomorrow) {
		from = &tomorrow
	}

	all, err := uc.ForStaff(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, s := range all {
		if s.Disponibility {
			out = append(out, s)
		}
	}
	return out, nil
}

// Get returns one availability with its slots ordered by start.
func (uc *ListAvailabilities) Get(
	ctx context.Context,
	id string,
	userID string,
) (*models.Availability, error) {

	av, err := uc.repo.GetAvailability(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.ErrNotFound("availability_not_found", "")
		}
		return nil, err
	}
	if av.UserID != userID {
		return nil, httperr.ErrForbidden("not_owner", "the availability belongs to another user")
	}

	slots, err := uc.repo.ListAppointments(ctx, domain.AppointmentFilter{AvailabilityID: av.ID})
	if err != nil {
		return nil, err
	}
	av.Appointments = slots
	return av, nil
}

func hasOpenSlot(av models.Availability) bool {
	for _, ap := range av.Appointments {
		if ap.State == string(domain.StateNull) {
			return true
		}
	}
	return false
}
