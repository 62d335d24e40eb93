// Package cache is the keyed store of server data. Reads are deduplicated
// per key, responses are applied in issue order, and writes elsewhere in
// the program reach it only through Invalidate.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/rs/zerolog"
)

// ErrUnknownResource is returned for a resource type with no fetcher
var ErrUnknownResource = errors.New("no fetcher registered for resource")

// Status is the lifecycle state of an entry
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Fetcher loads one resource from the server
type Fetcher func(ctx context.Context, p params.Params) (any, error)

// Result is a snapshot of an entry. Data survives a failed refetch, so an
// error result may still carry the last good payload.
type Result struct {
	Data      any
	Status    Status
	Err       error
	FetchedAt time.Time
	Stale     bool
}

type call struct {
	seq  uint64
	done chan struct{}
}

type entry struct {
	key    string
	rt     ResourceType
	params params.Params

	status    Status
	data      any
	err       error
	fetchedAt time.Time

	// issued is the newest sequence number handed out for this key. A
	// response with a lower number is discarded.
	issued uint64
	// results from requests issued at or before staleThrough land stale
	staleThrough uint64
	stale        bool
	inflight     *call

	subs    map[int]chan Result
	nextSub int
	gc      *time.Timer
}

// Cache is the resource cache
type Cache struct {
	logger  zerolog.Logger
	policy  Policy
	gcAfter time.Duration
	base    context.Context
	now     func() time.Time

	mu       sync.Mutex
	fetchers map[ResourceType]Fetcher
	entries  map[string]*entry
}

// Option configures a Cache
type Option func(*Cache)

// WithPolicy sets the staleness policy
func WithPolicy(p Policy) Option {
	return func(c *Cache) { c.policy = p }
}

// WithGC drops unobserved entries d after their last use. Zero keeps
// entries for the life of the cache.
func WithGC(d time.Duration) Option {
	return func(c *Cache) { c.gcAfter = d }
}

// WithLogger sets the cache's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithBaseContext sets the context fetches run under. Fetches never inherit
// the cancellation of the read that triggered them.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Cache) { c.base = context.WithoutCancel(ctx) }
}

// New returns an empty cache
func New(opts ...Option) *Cache {
	c := &Cache{
		logger:   zerolog.Nop(),
		policy:   DefaultPolicy(),
		base:     context.Background(),
		now:      time.Now,
		fetchers: map[ResourceType]Fetcher{},
		entries:  map[string]*entry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register binds rt to the function that fetches it
func (c *Cache) Register(rt ResourceType, f Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchers[rt] = f
}

// Read returns fresh data for (rt, p), fetching if needed. Concurrent reads
// of one key share a single request. Cancelling ctx abandons the wait but
// not the request.
func (c *Cache) Read(ctx context.Context, rt ResourceType, p params.Params) (Result, error) {
	c.mu.Lock()
	if _, ok := c.fetchers[rt]; !ok {
		c.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownResource, rt)
	}
	e := c.entryLocked(rt, p)
	if c.freshLocked(e) {
		r := c.resultLocked(e)
		c.mu.Unlock()
		return r, nil
	}
	cl := e.inflight
	if cl == nil {
		cl = c.startLocked(e)
	}
	c.mu.Unlock()

	return c.wait(ctx, e, cl)
}

// Refetch issues a new request for (rt, p) even if the entry is fresh or a
// request is already in flight. The newer request supersedes the older one.
func (c *Cache) Refetch(ctx context.Context, rt ResourceType, p params.Params) (Result, error) {
	c.mu.Lock()
	if _, ok := c.fetchers[rt]; !ok {
		c.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownResource, rt)
	}
	e := c.entryLocked(rt, p)
	cl := c.startLocked(e)
	c.mu.Unlock()

	return c.wait(ctx, e, cl)
}

// Peek returns what is cached for (rt, p) without blocking. A missing or
// stale entry is revalidated in the background.
func (c *Cache) Peek(rt ResourceType, p params.Params) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.fetchers[rt]; !ok {
		return Result{Status: StatusIdle}
	}
	e := c.entryLocked(rt, p)
	if !c.freshLocked(e) && e.inflight == nil {
		c.startLocked(e)
	}
	return c.resultLocked(e)
}

// Invalidate marks every entry matching any pattern stale and returns how
// many entries matched. Entries with subscribers are refetched right away;
// the rest wait for their next read.
func (c *Cache) Invalidate(patterns ...Pattern) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if !matchesAny(patterns, e) {
			continue
		}
		n++
		e.stale = true
		e.staleThrough = e.issued
		if _, ok := c.fetchers[e.rt]; ok && len(e.subs) > 0 {
			c.startLocked(e)
		}
	}
	if c.logger.GetLevel() <= zerolog.DebugLevel {
		names := make([]string, len(patterns))
		for i, pt := range patterns {
			names[i] = pt.String()
		}
		c.logger.Debug().Int("entries", n).Strs("patterns", names).Msg("invalidate")
	}
	return n
}

func matchesAny(patterns []Pattern, e *entry) bool {
	for _, pt := range patterns {
		if pt.Matches(e.rt, e.params) {
			return true
		}
	}
	return false
}

// Subscribe streams snapshots of (rt, p) as it changes. The channel holds
// only the latest snapshot; a slow reader skips intermediate ones. cancel
// stops the stream and closes the channel.
func (c *Cache) Subscribe(rt ResourceType, p params.Params) (<-chan Result, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.fetchers[rt]; !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownResource, rt)
	}

	ch := make(chan Result, 1)
	e := c.entryLocked(rt, p)
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	if e.gc != nil {
		e.gc.Stop()
		e.gc = nil
	}

	if !c.freshLocked(e) && e.inflight == nil {
		c.startLocked(e)
	}
	push(ch, c.resultLocked(e))

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(sub)
			}
			c.scheduleGCLocked(e)
		})
	}
	return ch, cancel, nil
}

// Clear drops every entry and closes every subscription. Requests still in
// flight complete into the void.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		for id, ch := range e.subs {
			delete(e.subs, id)
			close(ch)
		}
		if e.gc != nil {
			e.gc.Stop()
		}
		delete(c.entries, key)
	}
}

// Len returns the number of entries held
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) entryLocked(rt ResourceType, p params.Params) *entry {
	key := entryKey(rt, p)
	if e, ok := c.entries[key]; ok {
		return e
	}
	e := &entry{
		key:    key,
		rt:     rt,
		params: p.Clone(),
		status: StatusIdle,
		subs:   map[int]chan Result{},
	}
	c.entries[key] = e
	return e
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.status != StatusSuccess || e.stale {
		return false
	}
	window := c.policy.StaleAfter(e.rt)
	return window > 0 && c.now().Sub(e.fetchedAt) < window
}

func (c *Cache) resultLocked(e *entry) Result {
	return Result{
		Data:      e.data,
		Status:    e.status,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
		Stale:     !c.freshLocked(e),
	}
}

func (c *Cache) startLocked(e *entry) *call {
	e.issued++
	cl := &call{seq: e.issued, done: make(chan struct{})}
	e.inflight = cl
	e.status = StatusLoading
	if e.gc != nil {
		e.gc.Stop()
		e.gc = nil
	}
	c.broadcastLocked(e)

	go c.run(e, cl, c.fetchers[e.rt])
	return cl
}

func (c *Cache) run(e *entry, cl *call, fetch Fetcher) {
	data, err := fetch(c.base, e.params)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(cl.done)

	if cl.seq < e.issued {
		c.logger.Debug().
			Str("resource", string(e.rt)).
			Stringer("params", e.params).
			Uint64("seq", cl.seq).
			Uint64("latest", e.issued).
			Msg("discarding superseded response")
		return
	}

	e.inflight = nil
	if err != nil {
		e.status = StatusError
		e.err = err
		c.logger.Debug().Err(err).Str("resource", string(e.rt)).Msg("fetch failed")
	} else {
		e.status = StatusSuccess
		e.data = data
		e.err = nil
		e.fetchedAt = c.now()
		e.stale = cl.seq <= e.staleThrough
	}
	c.broadcastLocked(e)
	c.scheduleGCLocked(e)
}

// wait blocks until cl settles, following newer requests for the same key
// so the caller always sees the last-issued result.
func (c *Cache) wait(ctx context.Context, e *entry, cl *call) (Result, error) {
	for {
		select {
		case <-cl.done:
		case <-ctx.Done():
			c.mu.Lock()
			r := c.resultLocked(e)
			c.mu.Unlock()
			return r, ctx.Err()
		}

		c.mu.Lock()
		if next := e.inflight; next != nil && next.seq > cl.seq {
			cl = next
			c.mu.Unlock()
			continue
		}
		r := c.resultLocked(e)
		c.mu.Unlock()

		if r.Status == StatusError {
			return r, r.Err
		}
		return r, nil
	}
}

func (c *Cache) broadcastLocked(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	r := c.resultLocked(e)
	for _, ch := range e.subs {
		push(ch, r)
	}
}

// push replaces whatever snapshot is buffered in ch with r
func push(ch chan Result, r Result) {
	select {
	case ch <- r:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- r:
	default:
	}
}

func (c *Cache) scheduleGCLocked(e *entry) {
	if c.gcAfter <= 0 || len(e.subs) > 0 || e.inflight != nil {
		return
	}
	if e.gc != nil {
		e.gc.Stop()
	}
	e.gc = time.AfterFunc(c.gcAfter, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.entries[e.key] == e && len(e.subs) == 0 && e.inflight == nil {
			delete(c.entries, e.key)
		}
	})
}
