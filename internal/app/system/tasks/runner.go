// Package tasks runs periodic background jobs such as request count
// retention.
package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is a task run once at startup and then every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Recorder receives the outcome of every job run.
type Recorder interface {
	ObserveJob(name string, took time.Duration, err error)
}

// Status describes a job's most recent run.
type Status struct {
	Name      string        `json:"name"`
	Running   bool          `json:"running"`
	Runs      int           `json:"runs"`
	Failures  int           `json:"failures"`
	LastRun   time.Time     `json:"last_run,omitzero"`
	LastTook  time.Duration `json:"last_took"`
	LastError string        `json:"last_error,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder reports every run to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// Runner executes registered jobs on their intervals.
type Runner struct {
	logger   *zap.Logger
	recorder Recorder
	jobs     []Job
	wg       sync.WaitGroup
	cancel   context.CancelFunc

	mu     sync.Mutex
	status map[string]*Status
}

// New creates a runner with no jobs.
func New(logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger: logger,
		status: make(map[string]*Status),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a job. Jobs must be registered before Start.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
	r.mu.Lock()
	r.status[job.Name] = &Status{Name: job.Name}
	r.mu.Unlock()
}

// Start launches one goroutine per job. Call Stop to shut down.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
	r.logger.Info("background task runner started", zap.Strings("jobs", r.Names()))
}

// Stop cancels every job and waits for them to return. If ctx ends first,
// the names of the jobs still running are logged and ctx.Err() returned.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped")
		return nil
	case <-ctx.Done():
		var running []string
		for _, st := range r.Status() {
			if st.Running {
				running = append(running, st.Name)
			}
		}
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("jobs_still_running", running))
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	_ = r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			_ = r.execute(ctx, job)
		}
	}
}

// execute runs job once, updating its status and the recorder.
func (r *Runner) execute(ctx context.Context, job Job) error {
	r.mu.Lock()
	r.status[job.Name].Running = true
	r.mu.Unlock()

	start := time.Now()
	err := job.Run(ctx)
	took := time.Since(start)

	// cancellation during shutdown is not a failure
	cancelled := err != nil && ctx.Err() != nil

	r.mu.Lock()
	st := r.status[job.Name]
	st.Running = false
	if !cancelled {
		st.Runs++
		st.LastRun = start
		st.LastTook = took
		st.LastError = ""
		if err != nil {
			st.Failures++
			st.LastError = err.Error()
		}
	}
	r.mu.Unlock()

	switch {
	case cancelled:
		r.logger.Debug("job cancelled during shutdown", zap.String("job", job.Name), zap.Duration("duration", took))
		return err
	case err != nil:
		r.logger.Error("job failed", zap.String("job", job.Name), zap.Duration("duration", took), zap.Error(err))
	default:
		r.logger.Debug("job completed", zap.String("job", job.Name), zap.Duration("duration", took))
	}
	if r.recorder != nil {
		r.recorder.ObserveJob(job.Name, took, err)
	}
	return err
}

// RunOnce executes the named job immediately, outside its schedule.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return r.execute(ctx, job)
		}
	}
	return ErrUnknownJob
}

// Names returns the registered job names in registration order.
func (r *Runner) Names() []string {
	names := make([]string, len(r.jobs))
	for i, job := range r.jobs {
		names[i] = job.Name
	}
	return names
}

// Status returns a snapshot of every job in registration order.
func (r *Runner) Status() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, *r.status[job.Name])
	}
	return out
}
