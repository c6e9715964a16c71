package session

import "sync"

// subscriber delivers statuses to one callback in FIFO order on its own
// goroutine. The queue is unbounded so a slow callback never drops or
// reorders transitions.
type subscriber struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Status
	closed bool
	fn     func(Status)
}

func newSubscriber(fn func(Status)) *subscriber {
	s := &subscriber{fn: fn}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

func (s *subscriber) push(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, status)
	s.cond.Signal()
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Signal()
}

func (s *subscriber) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.fn(next)
	}
}
