package appointment

import (
	"context"
	"errors"
	"time"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

type ListAppointments struct {
	repo domain.Repository
	now  func() time.Time
}

func NewListAppointments(repo domain.Repository, now func() time.Time) *ListAppointments {
	return &ListAppointments{repo: repo, now: now}
}

func (uc *ListAppointments) ForStaff(
	ctx context.Context,
	userID string,
	from, to *time.Time,
) ([]models.Appointment, error) {
	return uc.repo.ListAppointments(ctx, domain.AppointmentFilter{
		UserID:   userID,
		DateFrom: from,
		DateTo:   to,
	})
}

func (uc *ListAppointments) Get(
	ctx context.Context,
	id string,
	userID string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errAppointmentNotFound
		}
		return nil, err
	}
	if ap.UserID != userID {
		return nil, errAppointmentNotFound
	}
	return ap, nil
}

// OpenSlots lists the bookable slots of a staff member on a future date.
func (uc *ListAppointments) OpenSlots(
	ctx context.Context,
	userID string,
	date time.Time,
) ([]models.Appointment, error) {

	if !timezone.BeforeDate(uc.now(), date) {
		return nil, httperr.ErrBusiness("date_must_be_future")
	}

	return uc.repo.ListAppointments(ctx, domain.AppointmentFilter{
		UserID:   userID,
		States:   []domain.State{domain.StateNull},
		DateFrom: &date,
		DateTo:   &date,
	})
}
