package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

// Task is one scheduled maintenance job.
type Task func(ctx context.Context) error

type entry struct {
	spec string
	task Task
	id   cron.EntryID
}

// Scheduler runs registered tasks on cron specs. Overlapping runs of the same
// task are skipped and panics are recovered.
type Scheduler struct {
	log  *logger.Logger
	cron *cron.Cron

	mu      sync.Mutex
	ctx     context.Context
	entries map[string]*entry
}

func NewScheduler(baseLog *logger.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	log := baseLog.With("component", "Scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		log: log,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:     context.Background(),
		entries: make(map[string]*entry),
	}
}

// Register adds task under name. Spec accepts the standard five fields and
// descriptors such as @hourly or @every 10m.
func (s *Scheduler) Register(name, spec string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.entries[name]; dup {
		return fmt.Errorf("task %q already registered", name)
	}
	e := &entry{spec: spec, task: task}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, e.task) })
	if err != nil {
		return fmt.Errorf("schedule %q (%s): %w", name, spec, err)
	}
	e.id = id
	s.entries[name] = e
	s.log.Info("Task scheduled", "task", name, "spec", spec)
	return nil
}

// Tasks lists registered task names in order.
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for name := range s.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RunNow executes a registered task synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return e.task(ctx)
}

// Start runs the scheduler until ctx is cancelled, then waits for running
// tasks to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("Scheduler started", "tasks", len(s.Tasks()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) run(name string, task Task) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	if err := task(ctx); err != nil {
		s.log.Warn("Task failed", "task", name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return
	}
	s.log.Debug("Task finished", "task", name, "duration_ms", time.Since(start).Milliseconds())
}

type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
