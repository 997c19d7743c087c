package rollcall

import (
	"context"
	"errors"
	"sync"
)

// ErrJobAlreadyRunning is returned when a job is requested while another
// one is still in flight. Requests are rejected, never queued.
var ErrJobAlreadyRunning = errors.New("另一項工作正在執行中")

// Runner serializes job execution: at most one job runs at a time.
type Runner struct {
	service Service

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewRunner(service Service) *Runner {
	return &Runner{service: service}
}

func (r *Runner) acquire(ctx context.Context) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, ErrJobAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	r.running = true
	r.cancel = cancel
	return ctx, nil
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.cancel = nil
}

// Run executes one full import job, or fails fast with
// ErrJobAlreadyRunning.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	ctx, err := r.acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer r.release()
	return r.service.Run(ctx), nil
}

// RunLogin executes a credential-check job under the same gate.
func (r *Runner) RunLogin(ctx context.Context) (Result, error) {
	ctx, err := r.acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer r.release()
	return r.service.RunLogin(ctx), nil
}

// Stop cancels the in-flight job, if any. The job still tears down its
// browser session and reports a result before Run returns.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}
