package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Memory fires jobs from in-process timers. Pending jobs are lost on
// restart; the nightly sweep releases whatever they would have released.
type Memory struct {
	log  *zap.Logger
	fire chan Job

	stopOnce sync.Once
	stop     chan struct{}
}

func NewMemory(log *zap.Logger) *Memory {
	return &Memory{
		log:  log,
		fire: make(chan Job, 64),
		stop: make(chan struct{}),
	}
}

func (m *Memory) Schedule(ctx context.Context, job Job) error {
	time.AfterFunc(time.Until(job.RunAt), func() {
		select {
		case m.fire <- job:
		case <-m.stop:
		}
	})
	return nil
}

func (m *Memory) Run(ctx context.Context, h Handler) error {
	defer m.stopOnce.Do(func() { close(m.stop) })

	for {
		select {
		case job := <-m.fire:
			if err := h(ctx, job); err != nil {
				m.log.Error("scheduled job failed",
					zap.String("job_id", job.ID),
					zap.String("appointment_id", job.AppointmentID),
					zap.Error(err),
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
