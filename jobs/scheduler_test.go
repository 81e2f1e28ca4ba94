package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestOnceFiresASingleTime(t *testing.T) {
	now := time.Now()
	at := now.Add(time.Hour)
	o := &once{at: at}
	if got := o.Next(now); !got.Equal(at) {
		t.Fatalf("first Next = %v, want %v", got, at)
	}
	if got := o.Next(at); !got.IsZero() {
		t.Fatalf("second Next = %v, want zero", got)
	}

	past := &once{at: now.Add(-time.Hour)}
	if got := past.Next(now); !got.Equal(now) {
		t.Fatalf("past job Next = %v, want %v", got, now)
	}
}

func TestScheduledJobRunsAndClearsEntry(t *testing.T) {
	s := NewScheduler()
	done := make(chan string, 1)
	s.Handle(GroupDistributeProfit, func(_ context.Context, name string) error {
		done <- name
		return nil
	})
	s.Start()
	defer s.Stop()

	id := uuid.New()
	if err := s.ScheduleDistributeProfitJob(id, time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	select {
	case name := <-done:
		if name != id.String() {
			t.Fatalf("job ran with name %q", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("past-due job did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	if s.Pending(GroupDistributeProfit, id.String()) {
		t.Fatal("entry should be cleared after running")
	}
}

func TestCancelScheduleJob(t *testing.T) {
	s := NewScheduler()
	var ran int32
	s.Handle(GroupDistributeProfit, func(context.Context, string) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	id := uuid.New()
	if err := s.ScheduleDistributeProfitJob(id, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if !s.Pending(GroupDistributeProfit, id.String()) {
		t.Fatal("job should be pending")
	}
	if err := s.CancelScheduleJob(id.String(), GroupDistributeProfit); err != nil {
		t.Fatal(err)
	}
	if s.Pending(GroupDistributeProfit, id.String()) {
		t.Fatal("job should be cancelled")
	}
	if err := s.CancelScheduleJob("unknown", GroupDistributeProfit); err != nil {
		t.Fatalf("cancelling an unknown job: %v", err)
	}
}

func TestScheduleWithoutHandlerFails(t *testing.T) {
	s := NewScheduler()
	if err := s.Schedule("Unknown", "x", time.Now()); err == nil {
		t.Fatal("expected error for unregistered group")
	}
}

type countingDistributor struct{ calls int32 }

func (c *countingDistributor) DistributeDueProfits(context.Context) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	return 2, nil
}

func TestDistributeDueProfitsJob(t *testing.T) {
	d := &countingDistributor{}
	DistributeDueProfits(d, time.Second)()
	if atomic.LoadInt32(&d.calls) != 1 {
		t.Fatal("sweep did not call the distributor")
	}
}
