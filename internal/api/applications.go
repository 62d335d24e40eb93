package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

// ListApplications returns a page of applications to the company's jobs.
// Recognized params: job_id, status, search, page, per_page.
func (c *Client) ListApplications(ctx context.Context, p params.Params) (*models.ApplicationList, error) {
	env, err := c.Send(ctx, Request{Method: http.MethodGet, Path: "/applications/company", Query: p})
	if err != nil {
		return nil, err
	}
	out := &models.ApplicationList{}
	if err := decodeData(env, &out.Applications); err != nil {
		return nil, err
	}
	if err := decodeMeta(env, &out.Pagination); err != nil {
		return nil, err
	}
	return out, nil
}

// GetApplication fetches a single application
func (c *Client) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	out := &models.Application{}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/applications/%d", id)}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Timeline returns an application's status history, oldest first
func (c *Client) Timeline(ctx context.Context, id int64) ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/applications/%d/timeline", id)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateApplicationStatus moves an application to a new pipeline stage
func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, update models.StatusUpdate) (*models.Application, error) {
	out := &models.Application{}
	req := Request{Method: http.MethodPatch, Path: fmt.Sprintf("/applications/%d/status", id), Body: update}
	if err := c.Do(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
