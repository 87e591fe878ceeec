package scheduler

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// fakeZSet is a single-key sorted set.
type fakeZSet struct {
	mu      sync.Mutex
	members map[string]float64

	// beforeRem runs ahead of each ZRem, outside the lock.
	beforeRem func(member string)
}

func newFakeZSet() *fakeZSet {
	return &fakeZSet{members: map[string]float64{}}
}

func (f *fakeZSet) ZAdd(_ context.Context, _ string, members ...*redis.Z) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var added int64
	for _, z := range members {
		m := z.Member.(string)
		if _, ok := f.members[m]; !ok {
			added++
		}
		f.members[m] = z.Score
	}
	return redis.NewIntResult(added, nil)
}

func (f *fakeZSet) ZRangeByScore(_ context.Context, _ string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	upper, err := strconv.ParseFloat(opt.Max, 64)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}

	var due []string
	for m, score := range f.members {
		if score <= upper {
			due = append(due, m)
		}
	}
	sort.Slice(due, func(i, j int) bool { return f.members[due[i]] < f.members[due[j]] })
	if opt.Count > 0 && int64(len(due)) > opt.Count {
		due = due[:opt.Count]
	}
	return redis.NewStringSliceResult(due, nil)
}

func (f *fakeZSet) ZRem(_ context.Context, _ string, members ...interface{}) *redis.IntCmd {
	if f.beforeRem != nil {
		for _, m := range members {
			f.beforeRem(m.(string))
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, m := range members {
		if _, ok := f.members[m.(string)]; ok {
			delete(f.members, m.(string))
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *fakeZSet) ZCard(context.Context, string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(int64(len(f.members)), nil)
}

func newTestRedis(zs *fakeZSet, now time.Time) *Redis {
	r := NewRedis(zs, zap.NewNop())
	r.now = func() time.Time { return now }
	return r
}

func TestRedisDrainRunsOnlyDueJobs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	zs := newFakeZSet()
	r := newTestRedis(zs, now)

	_ = r.Schedule(ctx, NewJob("ap-due", now.Add(-time.Minute)))
	_ = r.Schedule(ctx, NewJob("ap-late", now.Add(time.Minute)))

	var ran []string
	if err := r.drain(ctx, func(_ context.Context, job Job) error {
		ran = append(ran, job.AppointmentID)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if len(ran) != 1 || ran[0] != "ap-due" {
		t.Fatalf("ran %v", ran)
	}
	if n, _ := r.Pending(ctx); n != 1 {
		t.Fatalf("pending = %d, want 1", n)
	}
}

func TestRedisScoresBySubSecond(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 200*int(time.Millisecond), time.UTC)
	zs := newFakeZSet()
	r := newTestRedis(zs, now)

	// Same second as now, but 600ms later.
	_ = r.Schedule(ctx, NewJob("ap", now.Add(600*time.Millisecond)))

	fired := false
	_ = r.drain(ctx, func(context.Context, Job) error { fired = true; return nil })
	if fired {
		t.Fatal("job fired before its time")
	}

	r.now = func() time.Time { return now.Add(600 * time.Millisecond) }
	_ = r.drain(ctx, func(context.Context, Job) error { fired = true; return nil })
	if !fired {
		t.Fatal("job did not fire at its time")
	}
}

func TestRedisSkipsJobsClaimedElsewhere(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	zs := newFakeZSet()
	r := newTestRedis(zs, now)

	_ = r.Schedule(ctx, NewJob("ap-taken", now.Add(-2*time.Second)))
	_ = r.Schedule(ctx, NewJob("ap-mine", now.Add(-time.Second)))

	// Another poller removes the first member between our range and our remove.
	zs.beforeRem = func(member string) {
		zs.beforeRem = nil
		zs.mu.Lock()
		delete(zs.members, member)
		zs.mu.Unlock()
	}

	var ran []string
	if err := r.drain(ctx, func(_ context.Context, job Job) error {
		ran = append(ran, job.AppointmentID)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if len(ran) != 1 || ran[0] != "ap-mine" {
		t.Fatalf("ran %v, want only ap-mine", ran)
	}
}

func TestRedisDropsMalformedMembers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	zs := newFakeZSet()
	r := newTestRedis(zs, now)

	zs.ZAdd(ctx, DefaultQueueKey, &redis.Z{Score: 0, Member: "{not json"})
	_ = r.Schedule(ctx, NewJob("ap", now))

	var ran []string
	if err := r.drain(ctx, func(_ context.Context, job Job) error {
		ran = append(ran, job.AppointmentID)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if len(ran) != 1 || ran[0] != "ap" {
		t.Fatalf("ran %v", ran)
	}
	if n, _ := r.Pending(ctx); n != 0 {
		t.Fatalf("malformed member left in queue, pending = %d", n)
	}
}
