// Package appointmenttest provides an in-memory Store for use-case tests.
package appointmenttest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

// MemStore keeps rows in maps. Transaction snapshots the maps and restores
// them when fn fails.
type MemStore struct {
	mu sync.Mutex

	Users          map[string]models.User
	Availabilities map[string]models.Availability
	Appointments   map[string]models.Appointment

	// Fail, when set, is consulted before every write. A non-nil error is
	// returned as the write's failure.
	Fail func(op, id string) error

	// BeforeLockedList runs before ListAppointmentsForUpdate reads. It
	// stands in for a concurrent transaction that commits while the lock
	// is awaited.
	BeforeLockedList func()
	LockedLists      int

	Commits   int
	Rollbacks int
}

func NewMemStore() *MemStore {
	return &MemStore{
		Users:          map[string]models.User{},
		Availabilities: map[string]models.Availability{},
		Appointments:   map[string]models.Appointment{},
	}
}

var _ domain.Store = (*MemStore)(nil)

func (s *MemStore) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	s.mu.Lock()
	av := copyMap(s.Availabilities)
	aps := copyMap(s.Appointments)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.Availabilities = av
		s.Appointments = aps
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.Commits++
	s.mu.Unlock()
	return nil
}

func copyMap[T any](m map[string]T) map[string]T {
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *MemStore) fail(op, id string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, id)
}

// --------------------------------------------------
// Seeding helpers
// --------------------------------------------------

func (s *MemStore) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[u.ID] = u
}

func (s *MemStore) AddAppointment(ap models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.ID == "" {
		ap.ID = uuid.NewString()
	}
	s.Appointments[ap.ID] = ap
}

// Slots returns the appointments of an availability ordered by start.
func (s *MemStore) Slots(availabilityID string) []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.Appointments {
		if ap.AvailabilityID == availabilityID {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// --------------------------------------------------
// User
// --------------------------------------------------

func (s *MemStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.Users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (s *MemStore) GetAvailability(ctx context.Context, id string) (*models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	av, ok := s.Availabilities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &av, nil
}

func (s *MemStore) GetAvailabilityForUpdate(ctx context.Context, id string) (*models.Availability, error) {
	return s.GetAvailability(ctx, id)
}

func (s *MemStore) FindAvailabilityByDate(ctx context.Context, userID string, date time.Time) (*models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, av := range s.Availabilities {
		if av.UserID == userID && timezone.SameDate(av.Date, date) {
			return &av, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemStore) ListAvailabilities(ctx context.Context, f domain.AvailabilityFilter) ([]models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Availability
	for _, av := range s.Availabilities {
		if f.UserID != "" && av.UserID != f.UserID {
			continue
		}
		if !inRange(av.Date, f.DateFrom, f.DateTo) {
			continue
		}
		if f.WithAppointments {
			av.Appointments = nil
			for _, ap := range s.Appointments {
				if ap.AvailabilityID == av.ID {
					av.Appointments = append(av.Appointments, ap)
				}
			}
			sort.Slice(av.Appointments, func(i, j int) bool {
				return av.Appointments[i].StartTime < av.Appointments[j].StartTime
			})
		}
		out = append(out, av)
	}
	sort.Slice(out, func(i, j int) bool { return timezone.BeforeDate(out[i].Date, out[j].Date) })
	return out, nil
}

func (s *MemStore) CreateAvailability(ctx context.Context, av *models.Availability) error {
	if err := s.fail("CreateAvailability", av.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.Availabilities {
		if existing.UserID == av.UserID && timezone.SameDate(existing.Date, av.Date) {
			return domain.ErrDuplicate
		}
	}
	if av.ID == "" {
		av.ID = uuid.NewString()
	}
	stored := *av
	stored.Appointments = nil
	s.Availabilities[av.ID] = stored
	return nil
}

func (s *MemStore) UpdateAvailability(ctx context.Context, av *models.Availability) error {
	if err := s.fail("UpdateAvailability", av.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Availabilities[av.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *av
	stored.Appointments = nil
	s.Availabilities[av.ID] = stored
	return nil
}

func (s *MemStore) DeleteAvailability(ctx context.Context, id string) error {
	if err := s.fail("DeleteAvailability", id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Availabilities, id)
	for apID, ap := range s.Appointments {
		if ap.AvailabilityID == id {
			delete(s.Appointments, apID)
		}
	}
	return nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (s *MemStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap, ok := s.Appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ap, nil
}

func (s *MemStore) GetAppointmentForUpdate(ctx context.Context, id string) (*models.Appointment, error) {
	return s.GetAppointment(ctx, id)
}

func (s *MemStore) ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.Appointments {
		if f.UserID != "" && ap.UserID != f.UserID {
			continue
		}
		if f.AvailabilityID != "" && ap.AvailabilityID != f.AvailabilityID {
			continue
		}
		if len(f.States) > 0 && !hasState(f.States, ap.State) {
			continue
		}
		if !inRange(ap.Date, f.DateFrom, f.DateTo) {
			continue
		}
		if f.DateBefore != nil && !timezone.BeforeDate(ap.Date, *f.DateBefore) {
			continue
		}
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool {
		if !timezone.SameDate(out[i].Date, out[j].Date) {
			return timezone.BeforeDate(out[i].Date, out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *MemStore) ListAppointmentsForUpdate(ctx context.Context, f domain.AppointmentFilter) ([]models.Appointment, error) {
	if s.BeforeLockedList != nil {
		s.BeforeLockedList()
	}
	s.mu.Lock()
	s.LockedLists++
	s.mu.Unlock()
	return s.ListAppointments(ctx, f)
}

func (s *MemStore) CreateAppointments(ctx context.Context, aps []models.Appointment) error {
	if err := s.fail("CreateAppointments", ""); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range aps {
		if aps[i].ID == "" {
			aps[i].ID = uuid.NewString()
		}
		s.Appointments[aps[i].ID] = aps[i]
	}
	return nil
}

func (s *MemStore) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	if err := s.fail("UpdateAppointment", ap.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Appointments[ap.ID]; !ok {
		return domain.ErrNotFound
	}
	s.Appointments[ap.ID] = *ap
	return nil
}

func (s *MemStore) DeleteAppointment(ctx context.Context, id string) error {
	if err := s.fail("DeleteAppointment", id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.Appointments, id)
	return nil
}

func hasState(states []domain.State, s string) bool {
	for _, st := range states {
		if string(st) == s {
			return true
		}
	}
	return false
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && timezone.BeforeDate(d, *from) {
		return false
	}
	if to != nil && timezone.BeforeDate(*to, d) {
		return false
	}
	return true
}
