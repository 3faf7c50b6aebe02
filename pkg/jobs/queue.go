package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Submit once the dispatcher no longer accepts work.
var ErrStopped = errors.New("dispatcher stopped")

// ErrFull is returned by Submit when the buffer is saturated.
var ErrFull = errors.New("dispatcher buffer full")

// Task is a unit of background work such as delivering a sign-in email.
type Task struct {
	Kind    string
	Key     string
	Run     func(ctx context.Context) error
	attempt int
}

// Config tunes the worker pool.
type Config struct {
	Workers    int
	Buffer     int
	MaxRetries int
	Backoff    time.Duration
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Dispatcher runs tasks on a fixed pool of goroutines, retrying failures with
// linear backoff.
type Dispatcher struct {
	cfg   Config
	tasks chan Task

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewDispatcher applies defaults to cfg and returns an idle dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = cfg.Workers * 8
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Dispatcher{cfg: cfg, tasks: make(chan Task, cfg.Buffer)}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running = true
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.loop()
	}
	d.cfg.Logger.Info("dispatcher started", zap.Int("workers", d.cfg.Workers))
}

// Stop cancels pending retries and waits for in-flight tasks to return.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	d.cfg.Logger.Info("dispatcher stopped")
}

// Submit queues t without blocking.
func (d *Dispatcher) Submit(t Task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.running {
		return ErrStopped
	}
	select {
	case d.tasks <- t:
		return nil
	default:
		return ErrFull
	}
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case t := <-d.tasks:
			d.execute(t)
		}
	}
}

func (d *Dispatcher) execute(t Task) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	err := t.Run(ctx)
	cancel()
	if err == nil {
		return
	}

	log := d.cfg.Logger.With(zap.String("kind", t.Kind), zap.String("key", t.Key), zap.Error(err))
	if t.attempt >= d.cfg.MaxRetries {
		log.Error("task failed, giving up", zap.Int("attempts", t.attempt+1))
		return
	}
	t.attempt++
	log.Warn("task failed, retrying", zap.Int("attempt", t.attempt))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		timer := time.NewTimer(time.Duration(t.attempt) * d.cfg.Backoff)
		defer timer.Stop()
		select {
		case <-d.ctx.Done():
		case <-timer.C:
			if err := d.Submit(t); err != nil {
				log.Error("task requeue failed", zap.NamedError("submit_error", err))
			}
		}
	}()
}
