// Package jobs schedules one-shot settlement jobs and periodic sweeps on
// robfig/cron.
package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const GroupDistributeProfit = "DistributeProfit"

// Handler runs the job named name. For DistributeProfit jobs name is the
// order item id.
type Handler func(ctx context.Context, name string) error

// once fires a single time at at. cron calls Next with the current time and
// stops scheduling the entry when it gets the zero time back.
type once struct {
	at    time.Time
	fired bool
	mu    sync.Mutex
}

func (o *once) Next(t time.Time) time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fired {
		return time.Time{}
	}
	o.fired = true
	if o.at.After(t) {
		return o.at
	}
	return t
}

type Scheduler struct {
	cron *cron.Cron

	mu       sync.Mutex
	entries  map[string]cron.EntryID
	handlers map[string]Handler
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		entries:  make(map[string]cron.EntryID),
		handlers: make(map[string]Handler),
	}
}

func jobKey(group, name string) string {
	return group + "/" + name
}

func (s *Scheduler) Handle(group string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[group] = h
}

// Schedule registers a one-shot job. Scheduling the same group/name again
// replaces the pending entry. Times in the past fire on the next tick.
func (s *Scheduler) Schedule(group, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handlers[group]
	if !ok {
		return fmt.Errorf("no handler for job group %s", group)
	}
	key := jobKey(group, name)
	if id, ok := s.entries[key]; ok {
		s.cron.Remove(id)
	}

	// id is assigned before s.mu is released, so the job always sees it.
	var id cron.EntryID
	id = s.cron.Schedule(&once{at: at}, cron.FuncJob(func() {
		s.mu.Lock()
		if s.entries[key] == id {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		s.cron.Remove(id)

		log.Printf("Running job: %s...", key)
		if err := h(context.Background(), name); err != nil {
			log.Printf("🔥 Job %s failed: %v", key, err)
		}
	}))
	s.entries[key] = id
	return nil
}

func (s *Scheduler) ScheduleDistributeProfitJob(orderItemID uuid.UUID, at time.Time) error {
	return s.Schedule(GroupDistributeProfit, orderItemID.String(), at)
}

// CancelScheduleJob removes a pending job. Unknown jobs are ignored.
func (s *Scheduler) CancelScheduleJob(name, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey(group, name)
	if id, ok := s.entries[key]; ok {
		s.cron.Remove(id)
		delete(s.entries, key)
	}
	return nil
}

func (s *Scheduler) Pending(group, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[jobKey(group, name)]
	return ok
}

// AddPeriodic runs fn on a standard five-field cron spec.
func (s *Scheduler) AddPeriodic(spec string, fn func()) error {
	_, err := s.cron.AddFunc(spec, fn)
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("✅ Job scheduler started.")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
