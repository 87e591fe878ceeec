package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const DefaultQueueKey = "sijac:reservation-expiry"

// ZSet is the subset of the redis client the queue uses.
type ZSet interface {
	ZAdd(ctx context.Context, key string, members ...*redis.Z) *redis.IntCmd
	ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
}

// Redis keeps jobs in a sorted set scored by fire time. A job is claimed by
// whoever removes it from the set, so several pollers never run it twice.
type Redis struct {
	client ZSet
	log    *zap.Logger

	key   string
	poll  time.Duration
	batch int64
	now   func() time.Time
}

func NewRedis(client ZSet, log *zap.Logger) *Redis {
	return &Redis{
		client: client,
		log:    log,
		key:    DefaultQueueKey,
		poll:   time.Second,
		batch:  50,
		now:    time.Now,
	}
}

func (r *Redis) Schedule(ctx context.Context, job Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	// Scores are unix milliseconds; whole seconds would fire a job up to
	// a second early.
	err = r.client.ZAdd(ctx, r.key, &redis.Z{
		Score:  float64(job.RunAt.UnixMilli()),
		Member: string(b),
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

func (r *Redis) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.drain(ctx, h); err != nil {
				r.log.Error("expiry queue poll failed", zap.Error(err))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Redis) drain(ctx context.Context, h Handler) error {
	due, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(r.now().UnixMilli(), 10),
		Count: r.batch,
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range due {
		removed, err := r.client.ZRem(ctx, r.key, member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			r.log.Error("dropping malformed job", zap.String("member", member), zap.Error(err))
			continue
		}

		if err := h(ctx, job); err != nil {
			r.log.Error("scheduled job failed",
				zap.String("job_id", job.ID),
				zap.String("appointment_id", job.AppointmentID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Pending reports how many jobs are waiting.
func (r *Redis) Pending(ctx context.Context) (int64, error) {
	return r.client.ZCard(ctx, r.key).Result()
}
