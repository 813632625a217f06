package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Job is a named unit of periodic background work.
type Job struct {
	Name string
	// Schedule is a standard 5 field cron spec or a descriptor like "@every 8h".
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs on their cron schedules. A job never overlaps with itself.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

func New() *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(
				cron.Recover(logger),
				cron.SkipIfStillRunning(logger),
			),
		),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]cron.EntryID),
	}
}

func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already scheduled", job.Name)
	}

	entryID, err := s.cron.AddFunc(job.Schedule, func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("schedule job %s [%s]: %w", job.Name, job.Schedule, err)
	}
	s.jobs[job.Name] = entryID

	log.Debugf("scheduler: job %s added [%s]", job.Name, job.Schedule)
	return nil
}

// Next returns the next planned run of the named job, zero if unknown or not started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	entryID, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(entryID).Next
}

func (s *Scheduler) Start() {
	log.Infof("scheduler: starting with %d jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop prevents new runs and waits for the running ones, at most until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
		log.Debugln("scheduler: stopped")
	case <-ctx.Done():
		log.Warnln("scheduler: stop timed out, jobs still running")
	}
}

func (s *Scheduler) runJob(job Job) {
	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		log.Errorf("scheduler: job %s failed after %s: %s", job.Name, time.Since(start), err)
		return
	}
	log.Debugf("scheduler: job %s done in %s", job.Name, time.Since(start))
}
