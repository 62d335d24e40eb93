package resource_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api/apitest"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/resource"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func setup(t *testing.T) (*apitest.Server, *resource.Resources) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL, nil, staticToken(apitest.Token))
	c := cache.New()
	resource.Register(c, client)
	return srv, resource.New(c)
}

func TestTypedReads(t *testing.T) {
	srv, res := setup(t)
	ctx := context.Background()

	jobs, err := res.Jobs(ctx, params.Params{"status": "active"})
	require.NoError(t, err)
	require.Len(t, jobs.Jobs, 1)

	job, err := res.Job(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Product Designer", job.Title)

	candidate, err := res.Candidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sari Wulandari", candidate.Applicant.FullName)

	timeline, err := res.Timeline(ctx, 1)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, models.StatusSubmitted, timeline[0].Status)

	profile, err := res.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, profile.VerificationStatus)

	packages, err := res.Packages(ctx)
	require.NoError(t, err)
	assert.Len(t, packages, 2)

	// second reads of fresh resources stay in memory
	_, err = res.Job(ctx, 2)
	require.NoError(t, err)
	_, err = res.Packages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("GET /jobs/:id"))
	assert.Equal(t, 1, srv.Hits("GET /company/packages"))
}

func TestNotFoundIsReturned(t *testing.T) {
	_, res := setup(t)
	_, err := res.Job(context.Background(), 404)
	assert.True(t, api.IsNotFound(err))
}

func TestOverviewLoadsAllPanels(t *testing.T) {
	srv, res := setup(t)

	ov, err := res.Overview(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.Stats.ActiveJobs)
	assert.Equal(t, 2, ov.Stats.TotalJobs)
	assert.Len(t, ov.RecentApplicants, 1)
	require.Len(t, ov.ActiveJobs, 1)
	assert.Equal(t, "Backend Engineer", ov.ActiveJobs[0].Title)
	assert.Equal(t, 8, ov.Quota.RemainingFreeQuota)

	assert.Equal(t, 1, srv.Hits("GET /company/dashboard/stats"))
	assert.Equal(t, 1, srv.Hits("GET /company/quota"))
}

func TestOverviewFailsOnFirstError(t *testing.T) {
	srv, res := setup(t)
	srv.FailNext("GET /company/dashboard/stats", http.StatusInternalServerError, "INTERNAL", "database unavailable")

	_, err := res.Overview(context.Background(), 5)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "database unavailable", apiErr.Message)
}

func TestPeekTyped(t *testing.T) {
	_, res := setup(t)
	ctx := context.Background()

	_, _, ok := resource.Peek[*models.Quota](res, cache.Packages, nil)
	assert.False(t, ok)

	_, err := res.Jobs(ctx, nil)
	require.NoError(t, err)
	list, r, ok := resource.Peek[*models.JobList](res, cache.JobsList, nil)
	require.True(t, ok)
	assert.Equal(t, cache.StatusSuccess, r.Status)
	assert.Len(t, list.Jobs, 2)
}

func TestID(t *testing.T) {
	tests := []struct {
		name    string
		p       params.Params
		want    int64
		wantErr bool
	}{
		{"int", params.Params{"id": 5}, 5, false},
		{"int64", params.Params{"id": int64(6)}, 6, false},
		{"float", params.Params{"id": 7.0}, 7, false},
		{"string", params.Params{"id": "8"}, 8, false},
		{"bad string", params.Params{"id": "x"}, 0, true},
		{"missing", params.Params{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resource.ID(tt.p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
