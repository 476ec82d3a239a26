package generator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"go.viam.com/trajgen/logging"
	"go.viam.com/trajgen/utils"
)

// ErrSchedulerClosed is returned by Submit after Close.
var ErrSchedulerClosed = errors.New("scheduler is closed")

// Callback receives every result that has not been superseded. It is called from worker
// goroutines and must not block for long.
type Callback func(Result)

type generateFunc func(ctx context.Context, req Request, logger logging.Logger) Result

// Scheduler runs requests on at most a fixed number of workers. Requests for the same PathID
// supersede each other: at most one runs at a time, at most one waits behind it, and a result
// whose request has been superseded is dropped instead of delivered.
type Scheduler struct {
	mu       sync.Mutex
	sem      *semaphore.Weighted
	workers  utils.StoppableWorkers
	callback Callback
	logger   logging.Logger
	generate generateFunc

	pending map[string]Request
	running map[string]string
	latest  map[string]string
	closed  bool
}

// NewScheduler returns a scheduler with the given number of workers.
func NewScheduler(ctx context.Context, workers int, callback Callback, logger logging.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		sem:      semaphore.NewWeighted(int64(workers)),
		workers:  utils.NewStoppableWorkers(ctx),
		callback: callback,
		logger:   logger,
		generate: Generate,
		pending:  make(map[string]Request),
		running:  make(map[string]string),
		latest:   make(map[string]string),
	}
}

// Submit queues req and returns its request id. A request still waiting for the same PathID is
// dropped.
func (s *Scheduler) Submit(req Request) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrSchedulerClosed
	}
	s.latest[req.PathID] = req.ID
	if _, busy := s.running[req.PathID]; busy {
		if old, ok := s.pending[req.PathID]; ok {
			s.logger.Debugw("superseding pending request", "path", req.PathID, "dropped", old.ID, "request", req.ID)
		}
		s.pending[req.PathID] = req
		return req.ID, nil
	}
	s.startLocked(req)
	return req.ID, nil
}

func (s *Scheduler) startLocked(req Request) {
	s.running[req.PathID] = req.ID
	if !s.workers.Add(func(ctx context.Context) { s.run(ctx, req) }) {
		delete(s.running, req.PathID)
	}
}

func (s *Scheduler) run(ctx context.Context, req Request) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.finish(req, nil)
		return
	}
	res := s.generate(ctx, req, s.logger.Sublogger(req.PathID))
	s.sem.Release(1)
	s.finish(req, &res)
}

func (s *Scheduler) finish(req Request, res *Result) {
	s.mu.Lock()
	delete(s.running, req.PathID)
	stale := s.latest[req.PathID] != req.ID
	if next, ok := s.pending[req.PathID]; ok {
		delete(s.pending, req.PathID)
		if !s.closed {
			s.startLocked(next)
		}
	}
	s.mu.Unlock()

	switch {
	case res == nil:
	case stale:
		s.logger.Debugw("discarding stale result", "path", req.PathID, "request", req.ID)
	default:
		s.callback(*res)
	}
}

// Close drops waiting requests, cancels running ones and waits for every worker to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = make(map[string]Request)
	s.mu.Unlock()
	s.workers.Stop()
}
