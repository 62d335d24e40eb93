package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

// Login exchanges credentials for a token and the company profile. A
// success response without a token or company is malformed.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	out := &models.AuthResult{}
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: creds, Public: true}, out)
	if err != nil {
		return nil, err
	}
	if err := checkAuthResult(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates a company account and signs it in
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	out := &models.AuthResult{}
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: reg, Public: true}, out)
	if err != nil {
		return nil, err
	}
	if err := checkAuthResult(out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkAuthResult(out *models.AuthResult) error {
	switch {
	case out.AccessToken == "":
		return fmt.Errorf("%w: auth response has no access token", ErrMalformedEnvelope)
	case out.Company.ID == 0 && out.Company.Email == "":
		return fmt.Errorf("%w: auth response has no company", ErrMalformedEnvelope)
	}
	return nil
}

// Logout revokes the current token server-side
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/logout"}, nil)
}

// Me fetches the signed-in company's profile. It returns nil when the
// server answers without a payload.
func (c *Client) Me(ctx context.Context) (*models.CompanyProfile, error) {
	return c.profile(ctx, Request{Method: http.MethodGet, Path: "/auth/me"})
}

// UpdateProfile sends a partial profile update and returns the stored
// profile, or nil when the server answers without one.
func (c *Client) UpdateProfile(ctx context.Context, patch models.CompanyPatch) (*models.CompanyProfile, error) {
	return c.profile(ctx, Request{Method: http.MethodPut, Path: "/auth/profile", Body: patch})
}

func (c *Client) profile(ctx context.Context, req Request) (*models.CompanyProfile, error) {
	env, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return nil, nil
	}
	out := &models.CompanyProfile{}
	if err := decodeData(env, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForgotPassword asks the server to email a reset link
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/forgot-password", Body: body, Public: true}, nil)
}

// ResetPassword sets a new password using a reset token
func (c *Client) ResetPassword(ctx context.Context, reset models.PasswordReset) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/reset-password", Body: reset, Public: true}, nil)
}
