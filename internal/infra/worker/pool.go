package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Task is a unit of deferred work. Errors are logged by the pool.
type Task func(ctx context.Context) error

type Options struct {
	Workers     int
	QueueSize   int
	SubmitWait  time.Duration // how long Submit waits for queue space; 0 = fail fast
	TaskTimeout time.Duration // 0 = no deadline
}

type job struct {
	name string
	task Task
}

// Pool runs submitted tasks on a fixed set of workers fed by a bounded queue.
type Pool struct {
	opts Options
	jobs chan job
	log  *zerolog.Logger

	mu     sync.RWMutex
	closed bool

	wg       sync.WaitGroup
	inFlight atomic.Int64
	base     context.Context
	cancel   context.CancelFunc
}

func NewPool(opts Options, logger *zerolog.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = opts.Workers * 4
	}
	l := logger.With().Str("component", "worker_pool").Logger()
	return &Pool{opts: opts, jobs: make(chan job, opts.QueueSize), log: &l}
}

// Start launches the workers. Task contexts inherit ctx values but not its cancellation;
// they are only cancelled when Shutdown gives up waiting.
func (p *Pool) Start(ctx context.Context) {
	p.base, p.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for j := range p.jobs {
				metrics.SetQueueDepth(len(p.jobs))
				p.run(id, j)
			}
		}(i)
	}
	p.log.Info().Int("workers", p.opts.Workers).Int("queue", p.opts.QueueSize).Msg("worker pool started")
}

// Submit enqueues task under name. It returns domain.ErrQueueFull when no slot frees up
// within SubmitWait and domain.ErrPoolClosed after Shutdown.
func (p *Pool) Submit(name string, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.IncTask(name, "rejected")
		return domain.ErrPoolClosed
	}

	j := job{name: name, task: task}
	select {
	case p.jobs <- j:
	default:
		if p.opts.SubmitWait <= 0 {
			metrics.IncTask(name, "rejected")
			return domain.ErrQueueFull
		}
		timer := time.NewTimer(p.opts.SubmitWait)
		defer timer.Stop()
		select {
		case p.jobs <- j:
		case <-timer.C:
			metrics.IncTask(name, "rejected")
			return domain.ErrQueueFull
		}
	}
	metrics.SetQueueDepth(len(p.jobs))
	return nil
}

// InFlight returns the number of tasks currently executing.
func (p *Pool) InFlight() int64 { return p.inFlight.Load() }

// Pending returns the number of queued tasks not yet picked up.
func (p *Pool) Pending() int { return len(p.jobs) }

// Shutdown stops intake and waits for queued and running tasks to finish.
// If ctx expires first, running tasks are cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("worker pool drained")
		if p.cancel != nil {
			p.cancel()
		}
		return nil
	case <-ctx.Done():
		p.log.Warn().Int64("in_flight", p.InFlight()).Int("pending", p.Pending()).Msg("worker pool shutdown deadline exceeded")
		if p.cancel != nil {
			p.cancel()
		}
		return ctx.Err()
	}
}

func (p *Pool) run(id int, j job) {
	metrics.SetInFlight(p.inFlight.Add(1))
	start := time.Now()
	defer func() {
		metrics.SetInFlight(p.inFlight.Add(-1))
		metrics.ObserveTask(j.name, time.Since(start))
		if rec := recover(); rec != nil {
			metrics.IncTask(j.name, "panic")
			p.log.Error().Int("worker", id).Str("task", j.name).Str("panic", fmt.Sprint(rec)).Msg("task panicked")
		}
	}()

	ctx := p.base
	if p.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.TaskTimeout)
		defer cancel()
	}

	if err := j.task(ctx); err != nil {
		metrics.IncTask(j.name, "error")
		p.log.Error().Err(err).Int("worker", id).Str("task", j.name).Msg("task failed")
		return
	}
	metrics.IncTask(j.name, "ok")
}
