package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type AvailabilityFilter struct {
	UserID   string
	DateFrom *time.Time
	DateTo   *time.Time

	WithAppointments bool
}

// AppointmentFilter bounds are inclusive except DateBefore, which is strict.
type AppointmentFilter struct {
	UserID         string
	AvailabilityID string
	States         []State

	DateFrom   *time.Time
	DateTo     *time.Time
	DateBefore *time.Time
}

type Repository interface {
	// -------- User --------
	GetUser(
		ctx context.Context,
		id string,
	) (*models.User, error)

	// -------- Availability --------
	GetAvailability(
		ctx context.Context,
		id string,
	) (*models.Availability, error)

	// GetAvailabilityForUpdate locks the row until the transaction ends.
	GetAvailabilityForUpdate(
		ctx context.Context,
		id string,
	) (*models.Availability, error)

	FindAvailabilityByDate(
		ctx context.Context,
		userID string,
		date time.Time,
	) (*models.Availability, error)

	ListAvailabilities(
		ctx context.Context,
		f AvailabilityFilter,
	) ([]models.Availability, error)

	CreateAvailability(
		ctx context.Context,
		av *models.Availability,
	) error

	UpdateAvailability(
		ctx context.Context,
		av *models.Availability,
	) error

	DeleteAvailability(
		ctx context.Context,
		id string,
	) error

	// -------- Appointment --------
	GetAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	GetAppointmentForUpdate(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	ListAppointments(
		ctx context.Context,
		f AppointmentFilter,
	) ([]models.Appointment, error)

	// ListAppointmentsForUpdate locks every matched row until the
	// transaction ends. Rows changed by a transaction that committed while
	// waiting are returned in their committed state.
	ListAppointmentsForUpdate(
		ctx context.Context,
		f AppointmentFilter,
	) ([]models.Appointment, error)

	CreateAppointments(
		ctx context.Context,
		aps []models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	DeleteAppointment(
		ctx context.Context,
		id string,
	) error
}

// Store is a Repository that can run a unit of work atomically. The
// Repository handed to fn is bound to the transaction.
type Store interface {
	Repository

	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error
}
