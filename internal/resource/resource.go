// Package resource binds cache resource types to API calls and offers typed
// reads on top of the cache.
package resource

import (
	"context"
	"fmt"
	"strconv"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Register installs a fetcher for every resource type
func Register(c *cache.Cache, client *api.Client) {
	c.Register(cache.JobsList, func(ctx context.Context, p params.Params) (any, error) {
		return client.ListJobs(ctx, p)
	})
	c.Register(cache.JobDetail, byID(client.GetJob))
	c.Register(cache.CandidatesList, func(ctx context.Context, p params.Params) (any, error) {
		return client.ListApplications(ctx, p)
	})
	c.Register(cache.CandidateDetail, byID(client.GetApplication))
	c.Register(cache.CandidateTimeline, byID(client.Timeline))
	c.Register(cache.DashboardStats, func(ctx context.Context, _ params.Params) (any, error) {
		return client.DashboardStats(ctx)
	})
	c.Register(cache.DashboardRecentApplicants, func(ctx context.Context, p params.Params) (any, error) {
		return client.RecentApplicants(ctx, p)
	})
	c.Register(cache.DashboardActiveJobs, func(ctx context.Context, p params.Params) (any, error) {
		return client.ActiveJobs(ctx, p)
	})
	c.Register(cache.Quota, func(ctx context.Context, _ params.Params) (any, error) {
		return client.Quota(ctx)
	})
	c.Register(cache.Packages, func(ctx context.Context, _ params.Params) (any, error) {
		return client.Packages(ctx)
	})
	c.Register(cache.PaymentsList, func(ctx context.Context, p params.Params) (any, error) {
		return client.ListPayments(ctx, p)
	})
	c.Register(cache.PaymentDetail, byID(client.GetPayment))
	c.Register(cache.ChatConversations, func(ctx context.Context, p params.Params) (any, error) {
		return client.Conversations(ctx, p)
	})
	c.Register(cache.ChatMessages, byID(client.Conversation))
	c.Register(cache.Profile, func(ctx context.Context, _ params.Params) (any, error) {
		return client.Me(ctx)
	})
}

func byID[T any](get func(context.Context, int64) (T, error)) cache.Fetcher {
	return func(ctx context.Context, p params.Params) (any, error) {
		id, err := ID(p)
		if err != nil {
			return nil, err
		}
		return get(ctx, id)
	}
}

// ID extracts the "id" param of a detail resource
func ID(p params.Params) (int64, error) {
	switch v := p["id"].(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid id %q: %w", v, err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("missing id param in %s", p)
}

// IDParams is the params of a detail resource
func IDParams(id int64) params.Params {
	return params.Params{"id": id}
}

// Resources gives typed reads over the cache
type Resources struct {
	cache *cache.Cache
}

// New wraps a cache whose fetchers were installed with Register
func New(c *cache.Cache) *Resources {
	return &Resources{cache: c}
}

// Cache returns the underlying cache
func (r *Resources) Cache() *cache.Cache {
	return r.cache
}

func read[T any](ctx context.Context, c *cache.Cache, rt cache.ResourceType, p params.Params) (T, error) {
	var zero T
	res, err := c.Read(ctx, rt, p)
	if err != nil {
		return zero, err
	}
	if res.Data == nil {
		return zero, nil
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected cached type %T", rt, res.Data)
	}
	return v, nil
}

// Peek returns the cached value of (rt, p) typed as T without blocking. ok
// is false when nothing has been fetched yet.
func Peek[T any](r *Resources, rt cache.ResourceType, p params.Params) (T, cache.Result, bool) {
	var zero T
	res := r.cache.Peek(rt, p)
	v, ok := res.Data.(T)
	if !ok {
		return zero, res, false
	}
	return v, res, true
}

// Jobs lists jobs (params: status, search, page, per_page)
func (r *Resources) Jobs(ctx context.Context, p params.Params) (*models.JobList, error) {
	return read[*models.JobList](ctx, r.cache, cache.JobsList, p)
}

// Job fetches one job
func (r *Resources) Job(ctx context.Context, id int64) (*models.Job, error) {
	return read[*models.Job](ctx, r.cache, cache.JobDetail, IDParams(id))
}

// Candidates lists applications (params: job_id, status, search, page, per_page)
func (r *Resources) Candidates(ctx context.Context, p params.Params) (*models.ApplicationList, error) {
	return read[*models.ApplicationList](ctx, r.cache, cache.CandidatesList, p)
}

// Candidate fetches one application
func (r *Resources) Candidate(ctx context.Context, id int64) (*models.Application, error) {
	return read[*models.Application](ctx, r.cache, cache.CandidateDetail, IDParams(id))
}

// Timeline fetches an application's status history
func (r *Resources) Timeline(ctx context.Context, id int64) ([]models.TimelineEvent, error) {
	return read[[]models.TimelineEvent](ctx, r.cache, cache.CandidateTimeline, IDParams(id))
}

func (r *Resources) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return read[*models.DashboardStats](ctx, r.cache, cache.DashboardStats, nil)
}

func (r *Resources) RecentApplicants(ctx context.Context, limit int) ([]models.RecentApplicant, error) {
	return read[[]models.RecentApplicant](ctx, r.cache, cache.DashboardRecentApplicants, limitParams(limit))
}

func (r *Resources) ActiveJobs(ctx context.Context, limit int) ([]models.ActiveJob, error) {
	return read[[]models.ActiveJob](ctx, r.cache, cache.DashboardActiveJobs, limitParams(limit))
}

func (r *Resources) Quota(ctx context.Context) (*models.Quota, error) {
	return read[*models.Quota](ctx, r.cache, cache.Quota, nil)
}

func (r *Resources) Packages(ctx context.Context) ([]models.Package, error) {
	return read[[]models.Package](ctx, r.cache, cache.Packages, nil)
}

// Payments lists payments (params: status, page)
func (r *Resources) Payments(ctx context.Context, p params.Params) (*models.PaymentList, error) {
	return read[*models.PaymentList](ctx, r.cache, cache.PaymentsList, p)
}

func (r *Resources) Payment(ctx context.Context, id int64) (*models.Payment, error) {
	return read[*models.Payment](ctx, r.cache, cache.PaymentDetail, IDParams(id))
}

// Conversations lists support conversations (param: status)
func (r *Resources) Conversations(ctx context.Context, p params.Params) ([]models.Conversation, error) {
	return read[[]models.Conversation](ctx, r.cache, cache.ChatConversations, p)
}

// Conversation fetches a conversation with its messages
func (r *Resources) Conversation(ctx context.Context, id int64) (*models.Conversation, error) {
	return read[*models.Conversation](ctx, r.cache, cache.ChatMessages, IDParams(id))
}

// Profile fetches the signed-in company's profile
func (r *Resources) Profile(ctx context.Context) (*models.CompanyProfile, error) {
	return read[*models.CompanyProfile](ctx, r.cache, cache.Profile, nil)
}

func limitParams(limit int) params.Params {
	if limit <= 0 {
		return nil
	}
	return params.Params{"limit": limit}
}

// Overview is everything the dashboard shows
type Overview struct {
	Stats            *models.DashboardStats
	RecentApplicants []models.RecentApplicant
	ActiveJobs       []models.ActiveJob
	Quota            *models.Quota
}

// Overview loads the dashboard panels concurrently. The first failure
// cancels the wait for the others.
func (r *Resources) Overview(ctx context.Context, limit int) (*Overview, error) {
	out := &Overview{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Stats, err = r.DashboardStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.RecentApplicants, err = r.RecentApplicants(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		out.ActiveJobs, err = r.ActiveJobs(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		out.Quota, err = r.Quota(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
