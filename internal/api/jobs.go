package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

// JobAction is a status transition endpoint under /jobs/{id}
type JobAction string

const (
	JobPublish JobAction = "publish"
	JobClose   JobAction = "close"
	JobPause   JobAction = "pause"
	JobReopen  JobAction = "reopen"
)

// ParseJobAction validates a raw action name
func ParseJobAction(s string) (JobAction, error) {
	switch a := JobAction(s); a {
	case JobPublish, JobClose, JobPause, JobReopen:
		return a, nil
	}
	return "", fmt.Errorf("unknown job action %q", s)
}

// ListJobs returns a page of the company's jobs. Recognized params: status,
// search, page, per_page.
func (c *Client) ListJobs(ctx context.Context, p params.Params) (*models.JobList, error) {
	env, err := c.Send(ctx, Request{Method: http.MethodGet, Path: "/jobs", Query: p})
	if err != nil {
		return nil, err
	}
	out := &models.JobList{}
	if err := decodeData(env, &out.Jobs); err != nil {
		return nil, err
	}
	if err := decodeMeta(env, &out.Pagination); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJob fetches a single job
func (c *Client) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	out := &models.Job{}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: jobPath(id)}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateJob creates a draft job
func (c *Client) CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
	out := &models.Job{}
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/jobs", Body: in}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateJob replaces a job's editable fields
func (c *Client) UpdateJob(ctx context.Context, id int64, in models.JobInput) (*models.Job, error) {
	out := &models.Job{}
	if err := c.Do(ctx, Request{Method: http.MethodPut, Path: jobPath(id), Body: in}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteJob removes a job
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: jobPath(id)}, nil)
}

// TransitionJob runs one of the publish/close/pause/reopen endpoints.
// Publishing past the free quota fails with a 402 APIError whose Data holds
// the price.
func (c *Client) TransitionJob(ctx context.Context, id int64, action JobAction) (*models.Job, error) {
	out := &models.Job{}
	path := fmt.Sprintf("%s/%s", jobPath(id), action)
	if err := c.Do(ctx, Request{Method: http.MethodPatch, Path: path}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func jobPath(id int64) string {
	return fmt.Sprintf("/jobs/%d", id)
}
