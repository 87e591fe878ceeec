package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
	"github.com/SaltaGet/Back-SIJAC/internal/domain/appointment/appointmenttest"
	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/scheduler"
	"github.com/SaltaGet/Back-SIJAC/internal/token"
)

var art = time.FixedZone("ART", -3*60*60)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeScheduler struct {
	jobs []scheduler.Job
	err  error
}

func (s *fakeScheduler) Schedule(ctx context.Context, job scheduler.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

type fixture struct {
	clock     *fakeClock
	store     *appointmenttest.MemStore
	notifier  *appointmenttest.Notifier
	scheduler *fakeScheduler

	reserve *ReserveAppointment
	confirm *ConfirmAppointment
	update  *UpdateAppointmentState
	expire  *ExpireReservation
	list    *ListAppointments
}

const ttl = 30 * time.Minute

func newFixture() *fixture {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, art)}
	store := appointmenttest.NewMemStore()
	notifier := &appointmenttest.Notifier{}
	sched := &fakeScheduler{}
	codec := token.NewCodec("secret", token.WithClock(clock.Now))
	log := zap.NewNop()

	store.AddUser(models.User{ID: "lawyer-1", Email: "lawyer@sijac.com"})

	return &fixture{
		clock:     clock,
		store:     store,
		notifier:  notifier,
		scheduler: sched,
		reserve:   NewReserveAppointment(store, codec, sched, notifier, nil, log, clock.Now, ttl),
		confirm:   NewConfirmAppointment(store, codec, notifier, nil, log),
		update:    NewUpdateAppointmentState(store, notifier, nil, log, clock.Now, 2*time.Hour),
		expire:    NewExpireReservation(store, codec, nil, log, clock.Now),
		list:      NewListAppointments(store, clock.Now),
	}
}

func (f *fixture) addSlot(id string, day int, start string) {
	f.store.AddAppointment(models.Appointment{
		ID:             id,
		Date:           time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		StartTime:      start,
		EndTime:        start,
		State:          string(domain.StateNull),
		UserID:         "lawyer-1",
		AvailabilityID: "av-1",
	})
}

func (f *fixture) get(t *testing.T, id string) *models.Appointment {
	t.Helper()
	ap, err := f.store.GetAppointment(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return ap
}

func (f *fixture) mustReserve(t *testing.T, id string) string {
	t.Helper()
	ap, err := f.reserve.Execute(context.Background(), ReserveInput{
		AppointmentID: id,
		FullName:      "Ana Pérez",
		Email:         "ana@mail.com",
		Cellphone:     "3875551234",
		Reason:        "Consulta laboral",
	})
	if err != nil {
		t.Fatal(err)
	}
	return *ap.Token
}

func kindOf(err error) httperr.Kind {
	k, _ := httperr.KindOf(err)
	return k
}

// ======================================================
// Reserve
// ======================================================

func TestReserveArmsTokenAndExpiry(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")

	tok := f.mustReserve(t, "ap-1")

	ap := f.get(t, "ap-1")
	if ap.State != string(domain.StateReserved) || ap.Token == nil || *ap.Token != tok {
		t.Fatalf("unexpected slot %+v", ap)
	}
	if len(f.scheduler.jobs) != 1 {
		t.Fatalf("expected one expiry job, got %d", len(f.scheduler.jobs))
	}
	job := f.scheduler.jobs[0]
	if job.AppointmentID != "ap-1" || !job.RunAt.Equal(f.clock.Now().Add(ttl)) {
		t.Fatalf("unexpected job %+v", job)
	}

	notices := f.notifier.ClientNotices()
	if len(notices) != 1 || notices[0].Kind != domain.NoticeConfirmRequest || *notices[0].Appointment.Token != tok {
		t.Fatalf("expected a confirm request carrying the token, got %+v", notices)
	}
}

func TestReserveGuards(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	f.addSlot("today", 10, "18:00")
	f.mustReserve(t, "ap-1")

	_, err := f.reserve.Execute(context.Background(), ReserveInput{AppointmentID: "ap-1", FullName: "B", Email: "b@mail.com"})
	if kindOf(err) != httperr.KindInvalidState {
		t.Fatalf("expected invalid_state, got %v", err)
	}

	_, err = f.reserve.Execute(context.Background(), ReserveInput{AppointmentID: "today", FullName: "B", Email: "b@mail.com"})
	if kindOf(err) != httperr.KindInvalidOperation {
		t.Fatalf("expected invalid_operation, got %v", err)
	}

	_, err = f.reserve.Execute(context.Background(), ReserveInput{AppointmentID: "nope", FullName: "B", Email: "b@mail.com"})
	if kindOf(err) != httperr.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestReserveRollsBackWhenSchedulingFails(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	f.scheduler.err = errors.New("redis down")

	_, err := f.reserve.Execute(context.Background(), ReserveInput{AppointmentID: "ap-1", FullName: "A", Email: "a@mail.com"})
	if err == nil {
		t.Fatal("expected failure")
	}

	ap := f.get(t, "ap-1")
	if ap.State != string(domain.StateNull) || ap.Token != nil || ap.FullName != nil {
		t.Fatalf("reservation leaked: %+v", ap)
	}
	if len(f.notifier.ClientNotices()) != 0 {
		t.Fatal("no e-mail may be sent for a failed reservation")
	}
}

// ======================================================
// Confirm
// ======================================================

func TestConfirmMovesToPending(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	tok := f.mustReserve(t, "ap-1")

	ap, err := f.confirm.Execute(context.Background(), tok)
	if err != nil {
		t.Fatal(err)
	}
	if ap.State != string(domain.StatePending) || ap.Token == nil || *ap.Token != tok {
		t.Fatalf("unexpected slot %+v", ap)
	}
	if len(f.notifier.Staff) != 1 {
		t.Fatal("staff must be notified")
	}

	_, err = f.confirm.Execute(context.Background(), tok)
	if kindOf(err) != httperr.KindInvalidState {
		t.Fatalf("second confirm must fail with invalid_state, got %v", err)
	}
}

func TestConfirmExpiredToken(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	tok := f.mustReserve(t, "ap-1")

	f.clock.Advance(ttl + time.Minute)

	_, err := f.confirm.Execute(context.Background(), tok)
	if !httperr.IsBusiness(err, "token_expired") || kindOf(err) != httperr.KindUnauthorized {
		t.Fatalf("expected token_expired, got %v", err)
	}
	if ap := f.get(t, "ap-1"); ap.State != string(domain.StateReserved) {
		t.Fatalf("expired confirm changed state to %s", ap.State)
	}
}

func TestConfirmRejectsMalformedToken(t *testing.T) {
	f := newFixture()
	_, err := f.confirm.Execute(context.Background(), "garbage")
	if kindOf(err) != httperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestConfirmRejectsStaleToken(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	first := f.mustReserve(t, "ap-1")

	_, err := f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "ap-1", UserID: "lawyer-1", State: domain.StateNull,
	})
	if err != nil {
		t.Fatal(err)
	}
	f.mustReserve(t, "ap-1")

	_, err = f.confirm.Execute(context.Background(), first)
	if kindOf(err) != httperr.KindNotFound {
		t.Fatalf("expected not_found for a superseded token, got %v", err)
	}
	if ap := f.get(t, "ap-1"); ap.State != string(domain.StateReserved) {
		t.Fatal("stale token changed state")
	}
}

// ======================================================
// Expiry
// ======================================================

func TestExpiryReleasesUnconfirmedReservation(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	f.mustReserve(t, "ap-1")

	f.clock.Advance(ttl)

	if err := f.expire.Handle(context.Background(), f.scheduler.jobs[0]); err != nil {
		t.Fatal(err)
	}

	ap := f.get(t, "ap-1")
	if ap.State != string(domain.StateNull) || ap.Token != nil || ap.FullName != nil || ap.Email != nil {
		t.Fatalf("slot not reset: %+v", ap)
	}
}

func TestExpiryAfterConfirmIsNoop(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	tok := f.mustReserve(t, "ap-1")

	if _, err := f.confirm.Execute(context.Background(), tok); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(ttl)

	released, err := f.expire.Execute(context.Background(), "ap-1")
	if err != nil {
		t.Fatal(err)
	}
	if released {
		t.Fatal("confirmed slot must not be released")
	}

	ap := f.get(t, "ap-1")
	if ap.State != string(domain.StatePending) || ap.Token == nil || *ap.Token != tok {
		t.Fatalf("expiry touched a confirmed slot: %+v", ap)
	}
}

func TestExpiryIgnoresNewerReservation(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	f.mustReserve(t, "ap-1")

	_, _ = f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "ap-1", UserID: "lawyer-1", State: domain.StateNull,
	})
	f.clock.Advance(20 * time.Minute)
	f.mustReserve(t, "ap-1")
	f.clock.Advance(10 * time.Minute)

	released, err := f.expire.Execute(context.Background(), "ap-1")
	if err != nil {
		t.Fatal(err)
	}
	if released {
		t.Fatal("first job released the second reservation")
	}
	if ap := f.get(t, "ap-1"); ap.State != string(domain.StateReserved) {
		t.Fatalf("unexpected state %s", ap.State)
	}
}

func TestExpiryOnDeletedSlotIsNoop(t *testing.T) {
	f := newFixture()
	released, err := f.expire.Execute(context.Background(), "gone")
	if err != nil || released {
		t.Fatalf("expected silent no-op, got %v %v", released, err)
	}
}

// ======================================================
// UpdateState
// ======================================================

func pendingSlot(t *testing.T, f *fixture, id string) string {
	t.Helper()
	f.addSlot(id, 12, "10:00")
	tok := f.mustReserve(t, id)
	if _, err := f.confirm.Execute(context.Background(), tok); err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestUpdateStateAccept(t *testing.T) {
	f := newFixture()
	pendingSlot(t, f, "ap-1")

	ap, err := f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "ap-1", UserID: "lawyer-1", State: domain.StateAccept,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ap.State != string(domain.StateAccept) || ap.Token != nil || ap.FullName == nil {
		t.Fatalf("unexpected slot %+v", ap)
	}

	notices := f.notifier.ClientNotices()
	last := notices[len(notices)-1]
	if last.Kind != domain.NoticeAccepted || last.Appointment.State != string(domain.StatePending) {
		t.Fatalf("expected accepted notice built from the pre-change row, got %+v", last)
	}
}

func TestUpdateStateRejectCarriesReason(t *testing.T) {
	f := newFixture()
	pendingSlot(t, f, "ap-1")

	_, err := f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "ap-1", UserID: "lawyer-1", State: domain.StateReject, Reason: "Sin disponibilidad",
	})
	if err != nil {
		t.Fatal(err)
	}

	notices := f.notifier.ClientNotices()
	last := notices[len(notices)-1]
	if last.Kind != domain.NoticeRejected || last.Reason != "Sin disponibilidad" {
		t.Fatalf("unexpected notice %+v", last)
	}
}

func TestUpdateStateCancelResetsAndNotifies(t *testing.T) {
	f := newFixture()
	pendingSlot(t, f, "ap-1")

	ap, err := f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "ap-1", UserID: "lawyer-1", State: domain.StateCancel, Reason: "Viaje",
	})
	if err != nil {
		t.Fatal(err)
	}
	if ap.State != string(domain.StateNull) || ap.Email != nil || ap.Token != nil {
		t.Fatalf("cancel must reset the slot, got %+v", ap)
	}

	notices := f.notifier.ClientNotices()
	last := notices[len(notices)-1]
	if last.Kind != domain.NoticeCancelled || *last.Appointment.Email != "ana@mail.com" {
		t.Fatalf("cancel notice must use the snapshot, got %+v", last)
	}
}

func TestUpdateStateResetIsSilent(t *testing.T) {
	f := newFixture()
	pendingSlot(t, f, "ap-1")
	before := len(f.notifier.ClientNotices())

	ap, err := f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "ap-1", UserID: "lawyer-1", State: domain.StatePending,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ap.State != string(domain.StateNull) {
		t.Fatalf("non-decision target must reset, got %s", ap.State)
	}
	if len(f.notifier.ClientNotices()) != before {
		t.Fatal("plain reset must not e-mail the client")
	}
}

func TestUpdateStateGuards(t *testing.T) {
	f := newFixture()
	pendingSlot(t, f, "ap-1")
	f.addSlot("soon", 10, "10:30")

	_, err := f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "ap-1", UserID: "lawyer-2", State: domain.StateAccept,
	})
	if kindOf(err) != httperr.KindNotFound {
		t.Fatalf("expected not_found for another user, got %v", err)
	}

	_, err = f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "soon", UserID: "lawyer-1", State: domain.StateAccept,
	})
	if !httperr.IsBusiness(err, "decision_window_closed") {
		t.Fatalf("expected decision_window_closed, got %v", err)
	}

	f.addSlot("open", 12, "15:00")
	_, err = f.update.Execute(context.Background(), UpdateStateInput{
		AppointmentID: "open", UserID: "lawyer-1", State: domain.StateAccept,
	})
	if kindOf(err) != httperr.KindInvalidState {
		t.Fatalf("accepting an unclaimed slot must fail, got %v", err)
	}
}

// ======================================================
// Queries
// ======================================================

func TestOpenSlots(t *testing.T) {
	f := newFixture()
	f.addSlot("a", 12, "09:00")
	f.addSlot("b", 12, "09:30")
	f.addSlot("c", 13, "09:00")
	f.mustReserve(t, "b")

	day := time.Date(2026, 3, 12, 0, 0, 0, 0, art)
	slots, err := f.list.OpenSlots(context.Background(), "lawyer-1", day)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0].ID != "a" {
		t.Fatalf("unexpected open slots %+v", slots)
	}

	_, err = f.list.OpenSlots(context.Background(), "lawyer-1", time.Date(2026, 3, 10, 0, 0, 0, 0, art))
	if !httperr.IsBusiness(err, "date_must_be_future") {
		t.Fatalf("expected date_must_be_future, got %v", err)
	}
}
