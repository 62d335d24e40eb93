package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	data any
	err  error
}

// gated is a fetcher whose calls block until the test releases them
type gated struct {
	mu      sync.Mutex
	calls   []chan reply
	ctxs    []context.Context
	started chan int
}

func newGated() *gated {
	return &gated{started: make(chan int, 32)}
}

func (g *gated) fetch(ctx context.Context, _ params.Params) (any, error) {
	ch := make(chan reply, 1)
	g.mu.Lock()
	idx := len(g.calls)
	g.calls = append(g.calls, ch)
	g.ctxs = append(g.ctxs, ctx)
	g.mu.Unlock()

	g.started <- idx
	r := <-ch
	return r.data, r.err
}

func (g *gated) waitStarted(t *testing.T) int {
	t.Helper()
	select {
	case idx := <-g.started:
		return idx
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not started")
		return -1
	}
}

func (g *gated) assertNoStart(t *testing.T) {
	t.Helper()
	select {
	case idx := <-g.started:
		t.Fatalf("unexpected fetch #%d", idx)
	case <-time.After(30 * time.Millisecond):
	}
}

func (g *gated) release(idx int, data any, err error) {
	g.mu.Lock()
	ch := g.calls[idx]
	g.mu.Unlock()
	ch <- reply{data: data, err: err}
}

func (g *gated) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// counting answers immediately with "<params>#<n>"
type counting struct {
	n   int32
	err error
}

func (c *counting) fetch(_ context.Context, p params.Params) (any, error) {
	n := atomic.AddInt32(&c.n, 1)
	if c.err != nil {
		return nil, c.err
	}
	return fmt.Sprintf("%s#%d", p, n), nil
}

func (c *counting) calls() int {
	return int(atomic.LoadInt32(&c.n))
}

type outcome struct {
	r   cache.Result
	err error
}

func readAsync(c *cache.Cache, rt cache.ResourceType, p params.Params) <-chan outcome {
	out := make(chan outcome, 1)
	go func() {
		r, err := c.Read(context.Background(), rt, p)
		out <- outcome{r, err}
	}()
	return out
}

func refetchAsync(c *cache.Cache, rt cache.ResourceType, p params.Params) <-chan outcome {
	out := make(chan outcome, 1)
	go func() {
		r, err := c.Refetch(context.Background(), rt, p)
		out <- outcome{r, err}
	}()
	return out
}

func recv(t *testing.T, ch <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("read did not complete")
		return outcome{}
	}
}

func TestReadDeduplicatesConcurrentCallers(t *testing.T) {
	g := newGated()
	c := cache.New()
	c.Register(cache.JobsList, g.fetch)
	p := params.Params{"status": "active"}

	outs := make([]<-chan outcome, 5)
	for i := range outs {
		outs[i] = readAsync(c, cache.JobsList, p)
	}
	idx := g.waitStarted(t)
	time.Sleep(50 * time.Millisecond)
	g.release(idx, "jobs-v1", nil)

	for _, ch := range outs {
		o := recv(t, ch)
		require.NoError(t, o.err)
		assert.Equal(t, "jobs-v1", o.r.Data)
		assert.Equal(t, cache.StatusSuccess, o.r.Status)
	}
	assert.Equal(t, 1, g.count())
}

func TestEquivalentParamsShareAnEntry(t *testing.T) {
	f := &counting{}
	c := cache.New()
	c.Register(cache.JobsList, f.fetch)
	ctx := context.Background()

	_, err := c.Read(ctx, cache.JobsList, params.Params{"status": "active", "search": "", "page": nil})
	require.NoError(t, err)
	_, err = c.Read(ctx, cache.JobsList, params.Params{"status": "active"})
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls())
	assert.Equal(t, 1, c.Len())
}

func TestLastIssuedWins(t *testing.T) {
	tests := []struct {
		name       string
		firstEarly bool
	}{
		{"first request resolves last", false},
		{"first request resolves first", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGated()
			c := cache.New()
			c.Register(cache.JobsList, g.fetch)
			p := params.Params{"status": "active"}

			readCh := readAsync(c, cache.JobsList, p)
			first := g.waitStarted(t)
			refetchCh := refetchAsync(c, cache.JobsList, p)
			second := g.waitStarted(t)

			if tt.firstEarly {
				g.release(first, "old", nil)
				time.Sleep(20 * time.Millisecond)
				assert.NotEqual(t, "old", c.Peek(cache.JobsList, p).Data, "superseded response must not be applied")
				g.release(second, "new", nil)
			} else {
				g.release(second, "new", nil)
				assert.Equal(t, "new", recv(t, refetchCh).r.Data)
				g.release(first, "old", nil)
			}

			assert.Equal(t, "new", recv(t, readCh).r.Data, "waiters follow the newest request")
			if tt.firstEarly {
				assert.Equal(t, "new", recv(t, refetchCh).r.Data)
			}
			time.Sleep(20 * time.Millisecond)
			assert.Equal(t, "new", c.Peek(cache.JobsList, p).Data)
			assert.Equal(t, 2, g.count())
		})
	}
}

func TestFreshEntryIsServedFromMemory(t *testing.T) {
	f := &counting{}
	c := cache.New()
	c.Register(cache.JobsList, f.fetch)
	ctx := context.Background()

	first, err := c.Read(ctx, cache.JobsList, nil)
	require.NoError(t, err)
	second, err := c.Read(ctx, cache.JobsList, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.False(t, second.Stale)
	assert.Equal(t, 1, f.calls())
}

func TestZeroWindowAlwaysRevalidates(t *testing.T) {
	f := &counting{}
	c := cache.New()
	c.Register(cache.Quota, f.fetch)
	ctx := context.Background()

	_, err := c.Read(ctx, cache.Quota, nil)
	require.NoError(t, err)
	_, err = c.Read(ctx, cache.Quota, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, f.calls())
}

func TestEntryGoesStaleAfterWindow(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	f := &counting{}
	c := cache.New(cache.WithClock(clock), cache.WithPolicy(cache.DefaultPolicy().With("dashboard", 30*time.Second)))
	c.Register(cache.DashboardStats, f.fetch)
	ctx := context.Background()

	_, err := c.Read(ctx, cache.DashboardStats, nil)
	require.NoError(t, err)

	advance(29 * time.Second)
	_, err = c.Read(ctx, cache.DashboardStats, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls())

	advance(2 * time.Second)
	assert.True(t, c.Peek(cache.DashboardStats, nil).Stale)
	_, err = c.Read(ctx, cache.DashboardStats, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls())
}

func TestInvalidateByPrefix(t *testing.T) {
	jobs := &counting{}
	candidates := &counting{}
	c := cache.New()
	c.Register(cache.JobsList, jobs.fetch)
	c.Register(cache.JobDetail, jobs.fetch)
	c.Register(cache.CandidatesList, candidates.fetch)
	ctx := context.Background()

	read := func(rt cache.ResourceType, p params.Params) {
		_, err := c.Read(ctx, rt, p)
		require.NoError(t, err)
	}
	read(cache.JobsList, nil)
	read(cache.JobDetail, params.Params{"id": 5})
	read(cache.CandidatesList, nil)
	require.Equal(t, 2, jobs.calls())

	n := c.Invalidate(cache.Prefix("jobs"))
	assert.Equal(t, 2, n)

	read(cache.JobsList, nil)
	read(cache.JobDetail, params.Params{"id": 5})
	read(cache.CandidatesList, nil)
	assert.Equal(t, 4, jobs.calls())
	assert.Equal(t, 1, candidates.calls(), "other groups are untouched")
}

func TestInvalidateExactMatchesParams(t *testing.T) {
	f := &counting{}
	c := cache.New()
	c.Register(cache.CandidateDetail, f.fetch)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		_, err := c.Read(ctx, cache.CandidateDetail, params.Params{"id": id})
		require.NoError(t, err)
	}

	n := c.Invalidate(cache.Exact(cache.CandidateDetail, params.Params{"id": int64(2)}))
	assert.Equal(t, 1, n)

	assert.False(t, c.Peek(cache.CandidateDetail, params.Params{"id": int64(1)}).Stale)
	assert.True(t, c.Peek(cache.CandidateDetail, params.Params{"id": int64(2)}).Stale)
}

func TestInvalidateDoesNotFetchWithoutSubscribers(t *testing.T) {
	g := newGated()
	c := cache.New()
	c.Register(cache.JobsList, g.fetch)

	ch := readAsync(c, cache.JobsList, nil)
	g.release(g.waitStarted(t), "v1", nil)
	recv(t, ch)

	c.Invalidate(cache.Prefix("jobs"))
	g.assertNoStart(t)
}

func TestInvalidateRefetchesSubscribedEntries(t *testing.T) {
	g := newGated()
	c := cache.New()
	c.Register(cache.ChatConversations, g.fetch)

	updates, cancel, err := c.Subscribe(cache.ChatConversations, nil)
	require.NoError(t, err)
	defer cancel()

	g.release(g.waitStarted(t), "v1", nil)
	waitFor(t, updates, func(r cache.Result) bool { return r.Status == cache.StatusSuccess && r.Data == "v1" })

	c.Invalidate(cache.Prefix("chat"))
	g.release(g.waitStarted(t), "v2", nil)
	waitFor(t, updates, func(r cache.Result) bool { return r.Data == "v2" })
}

func TestInvalidateDuringFlightLandsStale(t *testing.T) {
	g := newGated()
	c := cache.New()
	c.Register(cache.JobsList, g.fetch)

	ch := readAsync(c, cache.JobsList, nil)
	idx := g.waitStarted(t)
	c.Invalidate(cache.Prefix("jobs"))
	g.release(idx, "before-mutation", nil)

	o := recv(t, ch)
	require.NoError(t, o.err)
	assert.Equal(t, "before-mutation", o.r.Data)
	assert.True(t, o.r.Stale)

	next := readAsync(c, cache.JobsList, nil)
	g.release(g.waitStarted(t), "after-mutation", nil)
	assert.Equal(t, "after-mutation", recv(t, next).r.Data)
}

func TestFailedRefetchRetainsData(t *testing.T) {
	g := newGated()
	c := cache.New()
	c.Register(cache.JobsList, g.fetch)

	ch := readAsync(c, cache.JobsList, nil)
	g.release(g.waitStarted(t), "v1", nil)
	recv(t, ch)

	boom := errors.New("HTTP 500")
	ch = refetchAsync(c, cache.JobsList, nil)
	g.release(g.waitStarted(t), nil, boom)
	o := recv(t, ch)

	assert.ErrorIs(t, o.err, boom)
	assert.Equal(t, cache.StatusError, o.r.Status)
	assert.Equal(t, "v1", o.r.Data)

	peek := c.Peek(cache.JobsList, nil)
	assert.Equal(t, "v1", peek.Data)
	assert.ErrorIs(t, peek.Err, boom)
}

func TestSessionExpiryIsNotRetried(t *testing.T) {
	f := &counting{err: api.ErrSessionExpired}
	c := cache.New()
	c.Register(cache.DashboardStats, f.fetch)

	_, err := c.Read(context.Background(), cache.DashboardStats, nil)
	assert.ErrorIs(t, err, api.ErrSessionExpired)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.calls())
}

func TestPeekRevalidatesInBackground(t *testing.T) {
	g := newGated()
	c := cache.New()
	c.Register(cache.Quota, g.fetch)

	r := c.Peek(cache.Quota, nil)
	assert.Equal(t, cache.StatusLoading, r.Status)
	assert.Nil(t, r.Data)

	g.release(g.waitStarted(t), "quota-v1", nil)
	require.Eventually(t, func() bool {
		return c.Peek(cache.Quota, nil).Data == "quota-v1"
	}, time.Second, 5*time.Millisecond)
}

func TestCancelledReadDoesNotCancelFetch(t *testing.T) {
	g := newGated()
	c := cache.New()
	c.Register(cache.JobsList, g.fetch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Read(ctx, cache.JobsList, nil)
		done <- err
	}()
	idx := g.waitStarted(t)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("read did not return after cancel")
	}

	g.mu.Lock()
	fetchCtx := g.ctxs[idx]
	g.mu.Unlock()
	assert.NoError(t, fetchCtx.Err())

	g.release(idx, "v1", nil)
	require.Eventually(t, func() bool {
		return c.Peek(cache.JobsList, nil).Data == "v1"
	}, time.Second, 5*time.Millisecond)
}

func TestUnknownResource(t *testing.T) {
	c := cache.New()
	_, err := c.Read(context.Background(), cache.Packages, nil)
	assert.ErrorIs(t, err, cache.ErrUnknownResource)

	_, err = c.Refetch(context.Background(), cache.Packages, nil)
	assert.ErrorIs(t, err, cache.ErrUnknownResource)
}

func TestSubscribeRejectsUnknownResource(t *testing.T) {
	c := cache.New()
	c.Register(cache.JobsList, (&counting{}).fetch)

	updates, cancel, err := c.Subscribe("jobs:unregistered", nil)
	require.ErrorIs(t, err, cache.ErrUnknownResource)
	assert.Nil(t, updates)
	assert.Nil(t, cancel)
	assert.Zero(t, c.Len())

	// nothing to refetch, and no fetcher is started for the unknown type
	assert.NotPanics(t, func() { c.Invalidate(cache.Prefix("jobs")) })
}

func TestClearDropsEntriesAndClosesSubscriptions(t *testing.T) {
	f := &counting{}
	c := cache.New()
	c.Register(cache.Profile, f.fetch)

	updates, cancel, err := c.Subscribe(cache.Profile, nil)
	require.NoError(t, err)
	defer cancel()
	_, err = c.Read(context.Background(), cache.Profile, nil)
	require.NoError(t, err)

	c.Clear()
	assert.Zero(t, c.Len())

	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-updates:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)
}

func TestGarbageCollectsUnobservedEntries(t *testing.T) {
	f := &counting{}
	c := cache.New(cache.WithGC(20 * time.Millisecond))
	c.Register(cache.JobsList, f.fetch)
	c.Register(cache.Profile, f.fetch)
	ctx := context.Background()

	_, err := c.Read(ctx, cache.JobsList, nil)
	require.NoError(t, err)

	updates, cancel, err := c.Subscribe(cache.Profile, nil)
	require.NoError(t, err)
	defer cancel()
	waitFor(t, updates, func(r cache.Result) bool { return r.Status == cache.StatusSuccess })

	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, c.Peek(cache.Profile, nil).Stale, "subscribed entry is kept")
}

func waitFor(t *testing.T, updates <-chan cache.Result, cond func(cache.Result) bool) cache.Result {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case r, ok := <-updates:
			require.True(t, ok, "subscription closed")
			if cond(r) {
				return r
			}
		case <-deadline:
			t.Fatal("condition not reached")
			return cache.Result{}
		}
	}
}
