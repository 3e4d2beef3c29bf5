package auction

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"
)

// scheduler owns a single goroutine and a min-heap of bid deadlines,
// replacing one detached timer per bid. Cancellation is lazy: the fire
// callback is responsible for ignoring bids that were withdrawn or
// superseded before their deadline came up.
type scheduler struct {
	mu   sync.Mutex
	h    deadlineHeap
	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	fire func(bidID string)
	log  *slog.Logger
}

type deadline struct {
	at    time.Time
	bidID string
}

func newScheduler(fire func(string), log *slog.Logger) *scheduler {
	s := &scheduler{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		fire: fire,
		log:  log,
	}
	go s.loop()
	return s
}

// arm schedules a firing for bidID at the given time and nudges the loop so
// an earlier deadline takes effect immediately.
func (s *scheduler) arm(bidID string, at time.Time) {
	s.mu.Lock()
	heap.Push(&s.h, deadline{at: at, bidID: bidID})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// close stops the loop and waits for it to exit. Pending deadlines are
// dropped; expiry by wall clock still holds through Bid.IsActive.
func (s *scheduler) close() {
	close(s.stop)
	<-s.done
}

func (s *scheduler) loop() {
	defer close(s.done)

	const idle = time.Hour

	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		s.mu.Lock()
		now := time.Now()
		var due []string
		for s.h.Len() > 0 && !s.h[0].at.After(now) {
			due = append(due, heap.Pop(&s.h).(deadline).bidID)
		}
		wait := idle
		if s.h.Len() > 0 {
			wait = s.h[0].at.Sub(now)
		}
		s.mu.Unlock()

		for _, id := range due {
			s.safeFire(id)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
		case <-s.wake:
		case <-s.stop:
			return
		}
	}
}

// safeFire keeps a fault in one expiration from taking down the loop (and
// with it every other outstanding deadline). The bid stays in whatever state
// it last reached.
func (s *scheduler) safeFire(bidID string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("bid expiry panicked", "bid_id", bidID, "panic", r)
		}
	}()
	s.fire(bidID)
}

type deadlineHeap []deadline

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x any)         { *h = append(*h, x.(deadline)) }
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	*h = old[:n-1]
	return d
}
