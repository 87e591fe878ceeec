package appointment

import (
	"sort"
	"time"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

// Fixed reasons sent to clients whose slot disappears with an edit.
const (
	ReasonAvailabilityModified = "Se ha modificado la disponibilidad del día, por favor contactarse nuevamente con SIJAC o solicitar un turno nuevo desde nuestra web."
	ReasonAvailabilityDeleted  = "Se ha eliminado la disponibilidad del día, por favor contactarse nuevamente con SIJAC o solicitar un turno nuevo desde nuestra web."
)

// Plan is the outcome of reconciling an availability's slots against a new
// schedule. Notify is a subset of Remove.
type Plan struct {
	Keep   []models.Appointment
	Remove []models.Appointment
	Notify []models.Appointment
	Create []time.Time
}

// PlanUpdate keeps every active slot and regenerates the rest. It fails
// with a schedule conflict if an active slot would fall outside the new
// windows. Reserved slots being removed are flagged for notification.
func PlanUpdate(current []models.Appointment, s Schedule, interval time.Duration) (Plan, error) {
	sorted := make([]models.Appointment, len(current))
	copy(sorted, current)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var plan Plan
	kept := map[string]struct{}{}

	for _, ap := range sorted {
		if !StateOf(&ap).IsActive() {
			continue
		}
		t, err := ParseClock(ap.StartTime)
		if err != nil || !s.Contains(t) {
			return Plan{}, httperr.ErrScheduleConflict(
				"active_outside_window",
				"there are active appointments outside the new range: "+ap.StartTime,
			)
		}
		kept[ap.StartTime] = struct{}{}
	}

	for _, ap := range sorted {
		if _, ok := kept[ap.StartTime]; ok && StateOf(&ap).IsActive() {
			plan.Keep = append(plan.Keep, ap)
			continue
		}
		plan.Remove = append(plan.Remove, ap)
		if StateOf(&ap) == StateReserved && IsClaimed(&ap) {
			plan.Notify = append(plan.Notify, ap)
		}
	}

	seen := map[string]struct{}{}
	for _, start := range s.SlotStarts(interval) {
		hm := FormatClock(start)
		if _, ok := kept[hm]; ok {
			continue
		}
		if _, ok := seen[hm]; ok {
			continue
		}
		seen[hm] = struct{}{}
		plan.Create = append(plan.Create, start)
	}

	return plan, nil
}

// PlanDelete removes every slot and notifies the holders of active ones.
func PlanDelete(current []models.Appointment) Plan {
	plan := Plan{Remove: current}
	for _, ap := range current {
		if StateOf(&ap).IsActive() && IsClaimed(&ap) {
			plan.Notify = append(plan.Notify, ap)
		}
	}
	return plan
}

// BuildSlots materializes open appointments for an availability.
func BuildSlots(av *models.Availability, starts []time.Time, duration time.Duration) []models.Appointment {
	slots := make([]models.Appointment, 0, len(starts))
	for _, st := range starts {
		slots = append(slots, models.Appointment{
			Date:           av.Date,
			StartTime:      FormatClock(st),
			EndTime:        EndOf(st, duration),
			State:          string(StateNull),
			UserID:         av.UserID,
			AvailabilityID: av.ID,
		})
	}
	return slots
}

// ScheduleOf rebuilds the stored schedule of an availability.
func ScheduleOf(av *models.Availability) (Schedule, error) {
	return NewSchedule(av.StartTime, av.EndTime, av.StartTimeOptional, av.EndTimeOptional)
}

// ApplySchedule writes the windows back onto the availability.
func ApplySchedule(av *models.Availability, s Schedule) {
	av.StartTime, av.EndTime, av.StartTimeOptional, av.EndTimeOptional = s.Fields()
}
