package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// translate maps gorm errors onto the domain sentinels. The connection is
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	default:
		return err
	}
}

func day(t time.Time) string {
	return t.Format(timezone.DateLayout)
}

// --------------------------------------------------
// User
// --------------------------------------------------

func (r *AppointmentGormRepository) GetUser(
	ctx context.Context,
	id string,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAvailability(
	ctx context.Context,
	id string,
) (*models.Availability, error) {

	var av models.Availability
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&av).Error; err != nil {
		return nil, translate(err)
	}
	return &av, nil
}

func (r *AppointmentGormRepository) GetAvailabilityForUpdate(
	ctx context.Context,
	id string,
) (*models.Availability, error) {

	var av models.Availability
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&av).Error; err != nil {
		return nil, translate(err)
	}
	return &av, nil
}

func (r *AppointmentGormRepository) FindAvailabilityByDate(
	ctx context.Context,
	userID string,
	date time.Time,
) (*models.Availability, error) {

	var av models.Availability
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day(date)).
		First(&av).Error; err != nil {
		return nil, translate(err)
	}
	return &av, nil
}

func (r *AppointmentGormRepository) ListAvailabilities(
	ctx context.Context,
	f domain.AvailabilityFilter,
) ([]models.Availability, error) {

	q := r.db.WithContext(ctx).Model(&models.Availability{})

	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.DateFrom != nil {
		q = q.Where("date >= ?", day(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("date <= ?", day(*f.DateTo))
	}
	if f.WithAppointments {
		q = q.Preload("Appointments", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_time ASC")
		})
	}

	var list []models.Availability
	if err := q.Order("date ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AppointmentGormRepository) CreateAvailability(
	ctx context.Context,
	av *models.Availability,
) error {
	return translate(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(av).Error)
}

func (r *AppointmentGormRepository) UpdateAvailability(
	ctx context.Context,
	av *models.Availability,
) error {
	return translate(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(av).Error)
}

func (r *AppointmentGormRepository) DeleteAvailability(
	ctx context.Context,
	id string,
) error {

	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Availability{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, translate(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) GetAppointmentForUpdate(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, translate(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.AppointmentFilter,
) ([]models.Appointment, error) {
	return r.findAppointments(r.appointmentQuery(ctx, f))
}

func (r *AppointmentGormRepository) ListAppointmentsForUpdate(
	ctx context.Context,
	f domain.AppointmentFilter,
) ([]models.Appointment, error) {
	q := r.appointmentQuery(ctx, f).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findAppointments(q)
}

func (r *AppointmentGormRepository) appointmentQuery(
	ctx context.Context,
	f domain.AppointmentFilter,
) *gorm.DB {

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.AvailabilityID != "" {
		q = q.Where("availability_id = ?", f.AvailabilityID)
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		q = q.Where("state IN ?", states)
	}
	if f.DateFrom != nil {
		q = q.Where("date >= ?", day(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("date <= ?", day(*f.DateTo))
	}
	if f.DateBefore != nil {
		q = q.Where("date < ?", day(*f.DateBefore))
	}
	return q
}

// findAppointments orders by (date, start) so concurrent lockers acquire
// rows in the same order.
func (r *AppointmentGormRepository) findAppointments(q *gorm.DB) ([]models.Appointment, error) {
	var apps []models.Appointment
	if err := q.
		Order("date ASC").
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) CreateAppointments(
	ctx context.Context,
	aps []models.Appointment,
) error {
	if len(aps) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&aps, 100).Error)
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return translate(r.db.WithContext(ctx).Save(ap).Error)
}

func (r *AppointmentGormRepository) DeleteAppointment(
	ctx context.Context,
	id string,
) error {

	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Appointment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Compile-time check
var _ domain.Store = (*AppointmentGormRepository)(nil)
