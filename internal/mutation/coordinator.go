// Package mutation executes state-changing API calls and keeps the cache
// consistent afterwards. A mutation runs exactly once; its declared cache
// patterns are invalidated only after the call succeeds.
package mutation

import (
	"context"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/rs/zerolog"
)

// Invalidator is the part of the cache mutations may touch
type Invalidator interface {
	Invalidate(patterns ...cache.Pattern) int
}

// Recorder journals executed mutations
type Recorder interface {
	Record(ctx context.Context, entry *models.MutationEntry) error
}

// Descriptor describes one kind of mutation
type Descriptor[In, Out any] struct {
	Name    string
	Execute func(ctx context.Context, in In) (Out, error)
	// Invalidates lists the cache patterns made stale by a successful call
	Invalidates func(in In, out Out) []cache.Pattern
	// OnSuccess runs after invalidation, for session bookkeeping
	OnSuccess func(in In, out Out)
	// Subject names the mutated object in the journal
	Subject func(in In) string
}

// Coordinator runs descriptors
type Coordinator struct {
	cache    Invalidator
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithRecorder journals every run
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithLogger sets the coordinator's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// NewCoordinator returns a Coordinator invalidating inv
func NewCoordinator(inv Invalidator, opts ...Option) *Coordinator {
	c := &Coordinator{cache: inv, logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes d once with in. On failure the cache is left alone and the
// error is returned as is.
func Run[In, Out any](ctx context.Context, c *Coordinator, d Descriptor[In, Out], in In) (Out, error) {
	start := c.now()
	out, err := d.Execute(ctx, in)

	entry := &models.MutationEntry{
		Name:      d.Name,
		Succeeded: err == nil,
		Duration:  c.now().Sub(start),
		CreatedAt: start.UTC(),
	}
	if d.Subject != nil {
		entry.Subject = d.Subject(in)
	}

	if err != nil {
		entry.Error = err.Error()
		c.logger.Debug().Err(err).Str("mutation", d.Name).Msg("mutation failed")
		c.record(ctx, entry)
		return out, err
	}

	if d.Invalidates != nil {
		patterns := d.Invalidates(in, out)
		if len(patterns) > 0 {
			c.cache.Invalidate(patterns...)
		}
		for _, pt := range patterns {
			entry.Invalidated = append(entry.Invalidated, pt.String())
		}
	}
	if d.OnSuccess != nil {
		d.OnSuccess(in, out)
	}

	c.logger.Debug().Str("mutation", d.Name).Strs("invalidated", entry.Invalidated).Msg("mutation succeeded")
	c.record(ctx, entry)
	return out, nil
}

func (c *Coordinator) record(ctx context.Context, entry *models.MutationEntry) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		c.logger.Warn().Err(err).Str("mutation", entry.Name).Msg("could not journal mutation")
	}
}
