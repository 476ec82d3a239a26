package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a collection of goroutines that can be stopped at a later time.
type StoppableWorkers interface {
	Add(func(context.Context)) bool
	Stop()
	Context() context.Context
}

// stoppableWorkersImpl is behind the StoppableWorkers interface because it holds a
// sync.WaitGroup, which must not be copied.
type stoppableWorkersImpl struct {
	mu         sync.Mutex
	cancelCtx  context.Context
	cancelFunc func()
	active     sync.WaitGroup
}

// NewStoppableWorkers returns an empty set of workers whose context derives from ctx.
func NewStoppableWorkers(ctx context.Context) StoppableWorkers {
	cancelCtx, cancelFunc := context.WithCancel(ctx)
	return &stoppableWorkersImpl{cancelCtx: cancelCtx, cancelFunc: cancelFunc}
}

// Add starts f in its own goroutine. Panics are captured and logged by goutils. After Stop has
// been called, Add starts nothing and returns false.
func (sw *stoppableWorkersImpl) Add(f func(context.Context)) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.cancelCtx.Err() != nil {
		return false
	}

	sw.active.Add(1)
	goutils.PanicCapturingGo(func() {
		defer sw.active.Done()
		f(sw.cancelCtx)
	})
	return true
}

// Stop cancels the shared context and waits for every worker to return.
func (sw *stoppableWorkersImpl) Stop() {
	sw.mu.Lock()
	sw.cancelFunc()
	sw.mu.Unlock()

	sw.active.Wait()
}

// Context gets the context the workers are checking on.
func (sw *stoppableWorkersImpl) Context() context.Context {
	return sw.cancelCtx
}
