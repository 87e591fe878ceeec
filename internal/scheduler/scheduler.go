// Package scheduler runs deferred one-shot jobs. Jobs carry only the
// appointment id and the fire time; handlers must re-read state before
// acting, since a job can never be cancelled.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	RunAt         time.Time `json:"run_at"`
}

func NewJob(appointmentID string, runAt time.Time) Job {
	return Job{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		RunAt:         runAt,
	}
}

type Handler func(ctx context.Context, job Job) error

type Scheduler interface {
	Schedule(ctx context.Context, job Job) error

	// Run dispatches due jobs to h until ctx is done.
	Run(ctx context.Context, h Handler) error
}
