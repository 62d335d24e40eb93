package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

// DashboardStats fetches the dashboard headline numbers
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	out := &models.DashboardStats{}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/company/dashboard/stats"}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentApplicants fetches the dashboard's latest applicants (param: limit)
func (c *Client) RecentApplicants(ctx context.Context, p params.Params) ([]models.RecentApplicant, error) {
	var out []models.RecentApplicant
	req := Request{Method: http.MethodGet, Path: "/company/dashboard/recent-applicants", Query: p}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveJobs fetches the dashboard's active jobs panel (param: limit)
func (c *Client) ActiveJobs(ctx context.Context, p params.Params) ([]models.ActiveJob, error) {
	var out []models.ActiveJob
	req := Request{Method: http.MethodGet, Path: "/company/dashboard/active-jobs", Query: p}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Quota fetches the job-posting quota
func (c *Client) Quota(ctx context.Context) (*models.Quota, error) {
	out := &models.Quota{}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/company/quota"}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Packages lists purchasable credit packages
func (c *Client) Packages(ctx context.Context) ([]models.Package, error) {
	var out []models.Package
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/company/packages"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPayments returns a page of submitted payments (params: status, page)
func (c *Client) ListPayments(ctx context.Context, p params.Params) (*models.PaymentList, error) {
	env, err := c.Send(ctx, Request{Method: http.MethodGet, Path: "/company/payments", Query: p})
	if err != nil {
		return nil, err
	}
	out := &models.PaymentList{}
	if err := decodeData(env, &out.Payments); err != nil {
		return nil, err
	}
	if err := decodeMeta(env, &out.Pagination); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPayment fetches a single payment
func (c *Client) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	out := &models.Payment{}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/company/payments/%d", id)}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitPaymentProof uploads a transfer receipt for admin confirmation
func (c *Client) SubmitPaymentProof(ctx context.Context, proof models.PaymentProof) (*models.Payment, error) {
	fields := map[string]string{
		"amount":     strconv.FormatInt(proof.Amount, 10),
		"package_id": proof.PackageID,
		"note":       proof.Note,
	}
	if proof.JobID != 0 {
		fields["job_id"] = strconv.FormatInt(proof.JobID, 10)
	}
	out := &models.Payment{}
	err := c.Upload(ctx, "/company/payments/proof", fields, FileField{Name: "proof", Path: proof.FilePath}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Invoice downloads the PDF invoice of a confirmed payment
func (c *Client) Invoice(ctx context.Context, paymentID int64) ([]byte, error) {
	data, _, err := c.Download(ctx, "/company/payments/invoice", params.Params{"payment_id": paymentID})
	return data, err
}
