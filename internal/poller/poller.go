// Package poller keeps selected cache entries warm on a schedule, such as
// the support chat inbox and the signed-in company's profile.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Task is a periodic job
type Task struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Poller wraps robfig/cron and runs tasks while a guard allows it
type Poller struct {
	cron   *cron.Cron
	tasks  []Task
	active func() bool
	logger zerolog.Logger

	mu      sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	running bool
}

// Option configures a Poller
type Option func(*Poller)

// WithGuard skips ticks while active returns false, e.g. when signed out
func WithGuard(active func() bool) Option {
	return func(p *Poller) { p.active = active }
}

// WithLogger sets the poller's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

// New returns a Poller for tasks. Tasks with a non-positive interval are
// disabled.
func New(tasks []Task, opts ...Option) *Poller {
	p := &Poller{
		active: func() bool { return true },
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, t := range tasks {
		if t.Every > 0 {
			p.tasks = append(p.tasks, t)
		}
	}
	return p
}

// Start schedules every task and runs each once right away
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	p.cron = cron.New()
	ctx, cancel := context.WithCancel(ctx)
	for _, t := range p.tasks {
		spec := fmt.Sprintf("@every %s", t.Every)
		if _, err := p.cron.AddFunc(spec, func() { p.tick(ctx, t) }); err != nil {
			cancel()
			return fmt.Errorf("schedule %s: %w", t.Name, err)
		}
	}
	p.cron.Start()
	p.cancel = cancel
	p.running = true
	p.logger.Debug().Int("tasks", len(p.tasks)).Msg("poller started")

	for _, t := range p.tasks {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.tick(ctx, t)
		}()
	}
	return nil
}

// Stop halts the schedule and waits for running ticks to finish
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	<-p.cron.Stop().Done()
	p.wg.Wait()
	p.logger.Debug().Msg("poller stopped")
}

func (p *Poller) tick(ctx context.Context, t Task) {
	if ctx.Err() != nil || !p.active() {
		return
	}
	if err := t.Run(ctx); err != nil {
		p.logger.Warn().Err(err).Str("task", t.Name).Msg("poll failed")
	}
}

// Refetch returns a task that refreshes one cache entry
func Refetch(c *cache.Cache, rt cache.ResourceType, p params.Params, every time.Duration) Task {
	return Task{
		Name:  string(rt),
		Every: every,
		Run: func(ctx context.Context) error {
			_, err := c.Refetch(ctx, rt, p)
			return err
		},
	}
}
