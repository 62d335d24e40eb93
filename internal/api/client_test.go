package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api/apitest"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mutableToken struct {
	mu    sync.Mutex
	value string
}

func (m *mutableToken) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *mutableToken) set(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = v
}

type captured struct {
	mu      sync.Mutex
	headers []http.Header
	queries []string
	bodies  [][]byte
}

func (c *captured) last() (http.Header, string, []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.headers) - 1
	return c.headers[n], c.queries[n], c.bodies[n]
}

// rawServer answers every request with status and body, recording what it saw
func rawServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	rec := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.headers = append(rec.headers, r.Header.Clone())
		rec.queries = append(rec.queries, r.URL.RawQuery)
		rec.bodies = append(rec.bodies, b)
		rec.mu.Unlock()
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestProfileWithoutPayloadIsNil(t *testing.T) {
	for _, tt := range []struct {
		name   string
		status int
		body   string
	}{
		{"no content", http.StatusNoContent, ""},
		{"null data", http.StatusOK, `{"success":true,"data":null}`},
		{"absent data", http.StatusOK, `{"success":true}`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := rawServer(t, tt.status, tt.body)
			client := api.NewClient(srv.URL, nil, nil)

			me, err := client.Me(context.Background())
			require.NoError(t, err)
			assert.Nil(t, me)

			name := "PT Baru"
			updated, err := client.UpdateProfile(context.Background(), models.CompanyPatch{CompanyName: &name})
			require.NoError(t, err)
			assert.Nil(t, updated)
		})
	}
}

func TestAuthResultIsValidated(t *testing.T) {
	for _, tt := range []struct {
		name string
		body string
		ok   bool
	}{
		{"empty", `{"success":true,"data":{}}`, false},
		{"no token", `{"success":true,"data":{"company":{"id":1,"email":"hr@nusantara.test"}}}`, false},
		{"no company", `{"success":true,"data":{"access_token":"t"}}`, false},
		{"complete", `{"success":true,"data":{"access_token":"t","company":{"id":1,"email":"hr@nusantara.test"}}}`, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := rawServer(t, http.StatusOK, tt.body)
			client := api.NewClient(srv.URL, nil, nil)

			out, err := client.Login(context.Background(), models.Credentials{Email: "hr@nusantara.test", Password: "rahasia123"})
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "t", out.AccessToken)
				return
			}
			assert.ErrorIs(t, err, api.ErrMalformedEnvelope)
			assert.Nil(t, out)
		})
	}
}

func TestBearerTokenIsReadOnEveryCall(t *testing.T) {
	srv, rec := rawServer(t, http.StatusOK, `{"success":true,"data":null}`)
	tokens := &mutableToken{value: "first"}
	client := api.NewClient(srv.URL, nil, tokens)
	ctx := context.Background()

	require.NoError(t, client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/company/quota"}, nil))
	h, _, _ := rec.last()
	assert.Equal(t, "Bearer first", h.Get("Authorization"))

	tokens.set("second")
	require.NoError(t, client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/company/quota"}, nil))
	h, _, _ = rec.last()
	assert.Equal(t, "Bearer second", h.Get("Authorization"))

	tokens.set("")
	require.NoError(t, client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/company/quota"}, nil))
	h, _, _ = rec.last()
	assert.Empty(t, h.Get("Authorization"))
	assert.NotEmpty(t, h.Get("X-Request-ID"))
}

func TestQueryOmitsAbsentParams(t *testing.T) {
	srv, rec := rawServer(t, http.StatusOK, `{"success":true,"data":[]}`)
	client := api.NewClient(srv.URL, nil, nil)

	p := params.Params{"status": "active", "search": "", "page": 2, "job_id": nil}
	_, err := client.ListJobs(context.Background(), p)
	require.NoError(t, err)

	_, query, _ := rec.last()
	assert.Equal(t, "page=2&status=active", query)
}

func TestJSONBodyAndContentType(t *testing.T) {
	srv, rec := rawServer(t, http.StatusOK, `{"success":true,"data":{"id":9,"title":"QA Engineer"}}`)
	client := api.NewClient(srv.URL, nil, nil)

	job, err := client.CreateJob(context.Background(), models.JobInput{Title: "QA Engineer"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), job.ID)

	h, _, body := rec.last()
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	var sent map[string]any
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, "QA Engineer", sent["title"])
}

func TestNoContentYieldsNullData(t *testing.T) {
	srv, _ := rawServer(t, http.StatusNoContent, "")
	client := api.NewClient(srv.URL, nil, nil)

	env, err := client.Send(context.Background(), api.Request{Method: http.MethodDelete, Path: "/jobs/1"})
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))

	var out *models.Job
	require.NoError(t, client.Do(context.Background(), api.Request{Method: http.MethodDelete, Path: "/jobs/1"}, &out))
	assert.Nil(t, out)
}

func TestUnauthorizedEndsSession(t *testing.T) {
	srv, _ := rawServer(t, http.StatusUnauthorized, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"token expired"}}`)
	var calls int32
	client := api.NewClient(srv.URL, nil, &mutableToken{value: "stale"},
		api.WithAuthFailureHandler(api.AuthFailureFunc(func() { atomic.AddInt32(&calls, 1) })))

	err := client.Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/auth/me"}, nil)
	require.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, ok := api.AsAPIError(err)
	assert.False(t, ok, "session expiry is not reported as a server error")
}

func TestUnauthorizedOnPublicEndpointIsPlainError(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	var calls int32
	client := api.NewClient(srv.URL, nil, nil,
		api.WithAuthFailureHandler(api.AuthFailureFunc(func() { atomic.AddInt32(&calls, 1) })))

	_, err := client.Login(context.Background(), models.Credentials{Email: apitest.Email, Password: "wrong-password"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, api.ErrSessionExpired)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "email or password is incorrect", apiErr.Message)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{
			name:     "error member",
			status:   http.StatusUnprocessableEntity,
			body:     `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"title is required"}}`,
			wantMsg:  "title is required",
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:    "top level message",
			status:  http.StatusConflict,
			body:    `{"success":false,"message":"job already closed"}`,
			wantMsg: "job already closed",
		},
		{
			name:    "empty body",
			status:  http.StatusInternalServerError,
			body:    "",
			wantMsg: "HTTP 500",
		},
		{
			name:    "not json",
			status:  http.StatusBadGateway,
			body:    "<html>bad gateway</html>",
			wantMsg: "HTTP 502",
		},
		{
			name:    "success false on 200",
			status:  http.StatusOK,
			body:    `{"success":false,"message":"quota check failed"}`,
			wantMsg: "quota check failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := rawServer(t, tt.status, tt.body)
			client := api.NewClient(srv.URL, nil, nil)

			err := client.Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/jobs"}, nil)
			apiErr, ok := api.AsAPIError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestMalformedSuccessBody(t *testing.T) {
	srv, _ := rawServer(t, http.StatusOK, `{"success":tru`)
	client := api.NewClient(srv.URL, nil, nil)

	err := client.Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/jobs"}, nil)
	assert.ErrorIs(t, err, api.ErrMalformedEnvelope)
}

func TestNetworkFailureIsWrapped(t *testing.T) {
	srv, _ := rawServer(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()
	client := api.NewClient(url, nil, nil)

	err := client.Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/jobs"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /jobs")
	_, ok := api.AsAPIError(err)
	assert.False(t, ok)
}

func TestPaymentRequiredPassesDataThrough(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	srv.SetQuota(models.Quota{FreeQuota: 10, UsedFreeQuota: 10, PricePerJob: 30000})
	client := api.NewClient(srv.URL, nil, &mutableToken{value: apitest.Token})

	_, err := client.TransitionJob(context.Background(), 2, api.JobPublish)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.Status)
	assert.Equal(t, api.CodePaymentRequired, apiErr.Code)

	pr, ok := apiErr.PaymentRequired()
	require.True(t, ok)
	assert.Equal(t, int64(30000), pr.Price)
	assert.Equal(t, int64(2), pr.JobID)
	assert.Equal(t, "BCA", pr.BankName)
}

func TestUploadUsesMultipart(t *testing.T) {
	srv, rec := rawServer(t, http.StatusCreated, `{"success":true,"data":{"id":4,"status":"pending","amount":30000}}`)
	client := api.NewClient(srv.URL, nil, &mutableToken{value: "tok"})

	file := filepath.Join(t.TempDir(), "receipt.png")
	require.NoError(t, os.WriteFile(file, []byte("png-bytes"), 0o600))

	payment, err := client.SubmitPaymentProof(context.Background(), models.PaymentProof{
		JobID: 2, Amount: 30000, FilePath: file,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)

	h, _, body := rec.last()
	mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	assert.Equal(t, "Bearer tok", h.Get("Authorization"))
	assert.True(t, strings.Contains(string(body), `name="proof"; filename="receipt.png"`))
	assert.True(t, strings.Contains(string(body), "png-bytes"))
	assert.False(t, strings.Contains(string(body), `name="package_id"`), "empty fields are not sent")
}

func TestUploadMissingFile(t *testing.T) {
	srv, _ := rawServer(t, http.StatusCreated, `{"success":true}`)
	client := api.NewClient(srv.URL, nil, nil)

	err := client.Upload(context.Background(), "/company/chat/conversations/1/upload", nil,
		api.FileField{Name: "file", Path: filepath.Join(t.TempDir(), "missing.pdf")}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestListEndpointsDecodeMeta(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL, nil, &mutableToken{value: apitest.Token})
	ctx := context.Background()

	jobs, err := client.ListJobs(ctx, params.Params{"status": "active"})
	require.NoError(t, err)
	require.Len(t, jobs.Jobs, 1)
	assert.Equal(t, "Backend Engineer", jobs.Jobs[0].Title)
	assert.Equal(t, 1, jobs.Pagination.Total)

	apps, err := client.ListApplications(ctx, nil)
	require.NoError(t, err)
	require.Len(t, apps.Applications, 1)
	assert.Equal(t, models.StatusSubmitted, apps.Applications[0].Status)
}

func TestRevokedTokenTriggersHandlerThroughFakeServer(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	tokens := &mutableToken{value: apitest.Token}
	client := api.NewClient(srv.URL, nil, tokens,
		api.WithAuthFailureHandler(api.AuthFailureFunc(func() { tokens.set("") })))

	_, err := client.Quota(context.Background())
	require.NoError(t, err)

	srv.RevokeTokens()
	_, err = client.Quota(context.Background())
	require.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Empty(t, tokens.Token())
}

func TestInvoiceDownload(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL, nil, &mutableToken{value: apitest.Token})
	ctx := context.Background()

	_, err := client.Invoice(ctx, 42)
	assert.True(t, api.IsNotFound(err))

	file := filepath.Join(t.TempDir(), "proof.jpg")
	require.NoError(t, os.WriteFile(file, []byte("jpg"), 0o600))
	p, err := client.SubmitPaymentProof(ctx, models.PaymentProof{PackageID: "single", Amount: 30000, FilePath: file})
	require.NoError(t, err)

	pdf, err := client.Invoice(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
