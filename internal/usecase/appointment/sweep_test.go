package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	domain "github.com/SaltaGet/Back-SIJAC/internal/domain/appointment"
)

type fakeBackup struct {
	name string
	err  error
	runs int
}

func (b *fakeBackup) Name() string { return b.name }

func (b *fakeBackup) Run(ctx context.Context) error {
	b.runs++
	return b.err
}

func TestSweepPurgesStaleOpenSlots(t *testing.T) {
	f := newFixture()
	f.addSlot("past-open-1", 8, "09:00")
	f.addSlot("past-open-2", 9, "09:00")
	f.addSlot("today-open", 10, "09:00")
	f.addSlot("future-open", 12, "09:00")

	f.addSlot("past-accepted", 9, "10:00")
	ap := f.get(t, "past-accepted")
	name, mail := "Ana", "ana@mail.com"
	ap.State, ap.FullName, ap.Email = string(domain.StateAccept), &name, &mail
	f.store.AddAppointment(*ap)

	db := &fakeBackup{name: "database"}
	images := &fakeBackup{name: "images", err: errors.New("bucket unreachable")}

	sweep := NewSweepStaleAppointments(f.store, f.expire, []BackupTask{db, images}, nil, zap.NewNop(), f.clock.Now)
	res, err := sweep.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Purged != 2 || res.PurgeFailures != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, id := range []string{"today-open", "future-open", "past-accepted"} {
		if _, err := f.store.GetAppointment(context.Background(), id); err != nil {
			t.Fatalf("%s must survive the sweep", id)
		}
	}

	if db.runs != 1 || images.runs != 1 {
		t.Fatal("every backup must run")
	}
	if len(res.BackupsOK) != 1 || len(res.BackupsFailed) != 1 || res.BackupsFailed[0] != "images" {
		t.Fatalf("unexpected backup report %+v", res)
	}
}

func TestSweepContinuesAfterRowFailure(t *testing.T) {
	f := newFixture()
	f.addSlot("bad", 8, "09:00")
	f.addSlot("good-1", 8, "09:30")
	f.addSlot("good-2", 9, "09:00")
	f.store.Fail = func(op, id string) error {
		if op == "DeleteAppointment" && id == "bad" {
			return errors.New("row locked")
		}
		return nil
	}

	sweep := NewSweepStaleAppointments(f.store, nil, nil, nil, zap.NewNop(), f.clock.Now)
	res, err := sweep.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Purged != 2 || res.PurgeFailures != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := f.store.GetAppointment(context.Background(), "bad"); err != nil {
		t.Fatal("failed row must remain")
	}
}

func TestSweepReleasesLostReservations(t *testing.T) {
	f := newFixture()
	f.addSlot("ap-1", 12, "10:00")
	f.mustReserve(t, "ap-1")
	f.clock.Advance(2 * time.Hour)

	sweep := NewSweepStaleAppointments(f.store, f.expire, nil, nil, zap.NewNop(), f.clock.Now)
	res, err := sweep.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Released != 1 {
		t.Fatalf("expected one released reservation, got %+v", res)
	}
	if ap := f.get(t, "ap-1"); ap.State != string(domain.StateNull) {
		t.Fatalf("unexpected state %s", ap.State)
	}
}
