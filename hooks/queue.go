// Package hooks runs best-effort work after a database transaction commits:
// notifications, event publishing and job cancellation.
package hooks

import (
	"context"
	"log"
	"sync"
)

type Hook struct {
	Name string
	Run  func(ctx context.Context) error
}

type Queue struct {
	inbox  chan Hook
	wg     sync.WaitGroup
	once   sync.Once
	closed chan struct{}
	mu     sync.RWMutex
}

func NewQueue(workers, buffer int) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		inbox:  make(chan Hook, buffer),
		closed: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for h := range q.inbox {
		q.run(h)
	}
}

func (q *Queue) run(h Hook) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Post-commit hook %s panicked: %v", h.Name, r)
		}
	}()
	if err := h.Run(context.Background()); err != nil {
		log.Printf("⚠️ Post-commit hook %s failed: %v", h.Name, err)
	}
}

// Enqueue never blocks. A full or closed queue drops the hook and logs it.
func (q *Queue) Enqueue(name string, fn func(ctx context.Context) error) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	select {
	case <-q.closed:
		log.Printf("⚠️ Hook queue closed, dropping %s", name)
		return false
	default:
	}
	select {
	case q.inbox <- Hook{Name: name, Run: fn}:
		return true
	default:
		log.Printf("⚠️ Hook queue full, dropping %s", name)
		return false
	}
}

// Close stops intake and waits for queued hooks to finish.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		close(q.closed)
		close(q.inbox)
		q.mu.Unlock()
	})
	q.wg.Wait()
}
