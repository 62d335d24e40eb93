// Package apitest runs an in-process fake of the Karir company API for
// tests. It speaks the same envelope as the real server, keeps its state in
// memory and counts hits per route so tests can assert how many network
// calls were made.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/labstack/echo/v4"
)

// Fixed credentials accepted by the fake
const (
	Email    = "hr@nusantara.test"
	Password = "rahasia123"
	Token    = "test-token"
)

type failure struct {
	status int
	code   string
	msg    string
	reply  bool
	data   any
}

// Server is a fake API
type Server struct {
	*httptest.Server
	Echo *echo.Echo

	mu            sync.Mutex
	hits          map[string]int
	failures      map[string][]failure
	tokens        map[string]bool
	company       models.CompanyProfile
	jobs          map[int64]*models.Job
	nextJobID     int64
	applications  map[int64]*models.Application
	timeline      map[int64][]models.TimelineEvent
	quota         models.Quota
	payments      map[int64]*models.Payment
	nextPaymentID int64
	conversations map[int64]*models.Conversation
	nextConvID    int64
	nextMessageID int64
}

// New starts a fake server seeded with one verified company, two jobs and
// one application. Close it with t.Cleanup(srv.Close).
func New() *Server {
	s := &Server{
		hits:          map[string]int{},
		failures:      map[string][]failure{},
		tokens:        map[string]bool{Token: true},
		jobs:          map[int64]*models.Job{},
		applications:  map[int64]*models.Application{},
		timeline:      map[int64][]models.TimelineEvent{},
		payments:      map[int64]*models.Payment{},
		conversations: map[int64]*models.Conversation{},
	}
	s.seed()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record, s.inject, s.authenticate)
	s.routes(e)

	s.Echo = e
	s.Server = httptest.NewServer(e)
	return s
}

// Hits returns how many times a route was called, e.g. "GET /jobs" or
// "PATCH /jobs/:id/close".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// FailNext makes the next call to route answer with status and message
func (s *Server) FailNext(route string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, code: code, msg: message})
}

// RespondNext makes the next call to route answer with a success status
// and data as the envelope payload. A 204 answers with an empty body.
func (s *Server) RespondNext(route string, status int, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, reply: true, data: data})
}

// RevokeTokens invalidates every issued token, so the next authenticated
// call answers 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]bool{}
}

// SetQuota replaces the company's quota
func (s *Server) SetQuota(q models.Quota) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = q
}

// Job returns a copy of a stored job
func (s *Server) Job(id int64) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *j, true
}

func (s *Server) seed() {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	s.company = models.CompanyProfile{
		ID:                 1,
		Email:              Email,
		CompanyName:        "PT Nusantara Teknologi",
		CompanyIndustry:    "Technology",
		CompanySize:        "51-200",
		CompanyLocation:    "Jakarta",
		VerificationStatus: models.VerificationVerified,
		IsVerified:         true,
	}
	s.quota = models.Quota{FreeQuota: 10, UsedFreeQuota: 2, RemainingFreeQuota: 8, PricePerJob: 30000}

	s.jobs[1] = &models.Job{ID: 1, Title: "Backend Engineer", City: "Jakarta", JobType: "full_time",
		ExperienceLevel: "mid", Status: models.JobActive, ApplicationCount: 1, CreatedAt: now, UpdatedAt: now}
	s.jobs[2] = &models.Job{ID: 2, Title: "Product Designer", City: "Bandung", JobType: "contract",
		ExperienceLevel: "senior", Status: models.JobDraft, CreatedAt: now, UpdatedAt: now}
	s.nextJobID = 3

	s.applications[1] = &models.Application{
		ID: 1, JobID: 1, JobTitle: "Backend Engineer",
		Applicant: models.Applicant{ID: 7, FullName: "Sari Wulandari", Email: "sari@example.com"},
		Status:    models.StatusSubmitted, AppliedAt: now, UpdatedAt: now,
	}
	s.timeline[1] = []models.TimelineEvent{{ID: 1, Status: models.StatusSubmitted, CreatedAt: now}}
	s.nextPaymentID = 1
	s.nextConvID = 1
	s.nextMessageID = 1
}

func routeKey(c echo.Context) string {
	return c.Request().Method + " " + c.Path()
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.hits[routeKey(c)]++
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := routeKey(c)
		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()
		switch {
		case f == nil:
		case f.reply && f.status == http.StatusNoContent:
			return c.NoContent(http.StatusNoContent)
		case f.reply:
			return ok(c, f.status, f.data, nil)
		default:
			return fail(c, f.status, f.code, f.msg, nil)
		}
		return next(c)
	}
}

func isPublic(path string) bool {
	switch path {
	case "/auth/login", "/auth/register", "/auth/forgot-password", "/auth/reset-password":
		return true
	}
	return false
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isPublic(c.Path()) {
			return next(c)
		}
		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token", nil)
		}
		return next(c)
	}
}

func (s *Server) routes(e *echo.Echo) {
	e.POST("/auth/login", s.login)
	e.POST("/auth/register", s.register)
	e.POST("/auth/logout", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/auth/me", s.me)
	e.PUT("/auth/profile", s.updateProfile)
	e.POST("/auth/forgot-password", func(c echo.Context) error { return ok(c, http.StatusOK, nil, nil) })
	e.POST("/auth/reset-password", func(c echo.Context) error { return ok(c, http.StatusOK, nil, nil) })

	e.GET("/jobs", s.listJobs)
	e.POST("/jobs", s.createJob)
	e.GET("/jobs/:id", s.getJob)
	e.PUT("/jobs/:id", s.updateJob)
	e.DELETE("/jobs/:id", s.deleteJob)
	e.PATCH("/jobs/:id/:action", s.transitionJob)

	e.GET("/applications/company", s.listApplications)
	e.GET("/applications/:id", s.getApplication)
	e.GET("/applications/:id/timeline", s.getTimeline)
	e.PATCH("/applications/:id/status", s.updateStatus)

	e.GET("/company/dashboard/stats", s.stats)
	e.GET("/company/dashboard/recent-applicants", s.recentApplicants)
	e.GET("/company/dashboard/active-jobs", s.activeJobs)
	e.GET("/company/quota", s.getQuota)
	e.GET("/company/packages", s.packages)
	e.GET("/company/payments", s.listPayments)
	e.GET("/company/payments/invoice", s.invoice)
	e.GET("/company/payments/:id", s.getPayment)
	e.POST("/company/payments/proof", s.submitProof)

	e.GET("/company/chat/conversations", s.listConversations)
	e.POST("/company/chat/conversations", s.createConversation)
	e.GET("/company/chat/conversations/:id", s.getConversation)
	e.POST("/company/chat/conversations/:id/messages", s.sendMessage)
	e.POST("/company/chat/conversations/:id/upload", s.upload)
}

func ok(c echo.Context, status int, data any, meta any) error {
	body := map[string]any{"success": true, "data": data}
	if meta != nil {
		body["meta"] = meta
	}
	return c.JSON(status, body)
}

func fail(c echo.Context, status int, code, message string, data any) error {
	body := map[string]any{
		"success": false,
		"message": message,
		"error":   map[string]string{"code": code, "message": message},
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func idParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func paginate(total int) models.Pagination {
	return models.Pagination{Page: 1, PerPage: 20, Total: total, TotalPages: 1}
}

// Auth

func (s *Server) login(c echo.Context) error {
	var creds models.Credentials
	if err := c.Bind(&creds); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	if creds.Email != Email || creds.Password != Password {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "email or password is incorrect", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[Token] = true
	return ok(c, http.StatusOK, models.AuthResult{AccessToken: Token, Company: s.company}, nil)
}

func (s *Server) register(c echo.Context) error {
	var reg models.Registration
	if err := c.Bind(&reg); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	if reg.Email == Email {
		return fail(c, http.StatusConflict, "EMAIL_TAKEN", "email already registered", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "token-" + reg.Email
	s.tokens[token] = true
	company := models.CompanyProfile{ID: 2, Email: reg.Email, CompanyName: reg.CompanyName,
		Phone: reg.Phone, VerificationStatus: models.VerificationPending}
	return ok(c, http.StatusCreated, models.AuthResult{AccessToken: token, Company: company}, nil)
}

func (s *Server) me(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ok(c, http.StatusOK, s.company, nil)
}

func (s *Server) updateProfile(c echo.Context) error {
	var patch models.CompanyPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	patch.Apply(&s.company)
	return ok(c, http.StatusOK, s.company, nil)
}

// Jobs

func (s *Server) listJobs(c echo.Context) error {
	status := c.QueryParam("status")
	search := strings.ToLower(c.QueryParam("search"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Job{}
	for _, j := range s.sortedJobs() {
		if status != "" && string(j.Status) != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(j.Title), search) {
			continue
		}
		out = append(out, *j)
	}
	return ok(c, http.StatusOK, out, paginate(len(out)))
}

func (s *Server) sortedJobs() []*models.Job {
	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
	return jobs
}

func (s *Server) getJob(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, found := s.jobs[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "job not found", nil)
	}
	return ok(c, http.StatusOK, j, nil)
}

func (s *Server) createJob(c echo.Context) error {
	var in models.JobInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	j := jobFromInput(in)
	j.ID = s.nextJobID
	j.Status = models.JobDraft
	j.CreatedAt, j.UpdatedAt = now, now
	s.nextJobID++
	s.jobs[j.ID] = j
	return ok(c, http.StatusCreated, j, nil)
}

func (s *Server) updateJob(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	var in models.JobInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, found := s.jobs[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "job not found", nil)
	}
	j := jobFromInput(in)
	j.ID, j.Status, j.CreatedAt = old.ID, old.Status, old.CreatedAt
	j.UpdatedAt = time.Now().UTC()
	s.jobs[id] = j
	return ok(c, http.StatusOK, j, nil)
}

func jobFromInput(in models.JobInput) *models.Job {
	return &models.Job{
		Title: in.Title, Description: in.Description, Requirements: in.Requirements,
		Responsibilities: in.Responsibilities, City: in.City, Province: in.Province,
		IsRemote: in.IsRemote, JobType: in.JobType, ExperienceLevel: in.ExperienceLevel,
		SalaryMin: in.SalaryMin, SalaryMax: in.SalaryMax, IsSalaryVisible: in.IsSalaryVisible,
		Skills: in.Skills,
	}
}

func (s *Server) deleteJob(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.jobs[id]; !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "job not found", nil)
	}
	delete(s.jobs, id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) transitionJob(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, found := s.jobs[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "job not found", nil)
	}
	now := time.Now().UTC()
	switch c.Param("action") {
	case "publish":
		switch {
		case s.quota.RemainingFreeQuota > 0:
			s.quota.RemainingFreeQuota--
			s.quota.UsedFreeQuota++
		case s.quota.PaidQuota > 0:
			s.quota.PaidQuota--
		default:
			return fail(c, http.StatusPaymentRequired, "PAYMENT_REQUIRED",
				"free quota exhausted, payment required to publish",
				models.PaymentRequired{Price: s.quota.PricePerJob, JobID: id, BankName: "BCA",
					AccountNo: "1234567890", AccountName: "PT Karir Nusantara"})
		}
		j.Status = models.JobActive
		j.PublishedAt = &now
	case "close":
		j.Status = models.JobClosed
		j.ClosedAt = &now
	case "pause":
		j.Status = models.JobPaused
	case "reopen":
		j.Status = models.JobActive
		j.ClosedAt = nil
	default:
		return fail(c, http.StatusNotFound, "NOT_FOUND", "unknown action", nil)
	}
	j.UpdatedAt = now
	return ok(c, http.StatusOK, j, nil)
}

// Applications

func (s *Server) listApplications(c echo.Context) error {
	status := c.QueryParam("status")
	jobID := c.QueryParam("job_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Application{}
	ids := make([]int64, 0, len(s.applications))
	for id := range s.applications {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	for _, id := range ids {
		a := s.applications[id]
		if status != "" && string(a.Status) != status {
			continue
		}
		if jobID != "" && strconv.FormatInt(a.JobID, 10) != jobID {
			continue
		}
		out = append(out, *a)
	}
	return ok(c, http.StatusOK, out, paginate(len(out)))
}

func (s *Server) getApplication(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.applications[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "application not found", nil)
	}
	return ok(c, http.StatusOK, a, nil)
}

func (s *Server) getTimeline(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ok(c, http.StatusOK, s.timeline[id], nil)
}

func (s *Server) updateStatus(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	var upd models.StatusUpdate
	if err := c.Bind(&upd); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.applications[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "application not found", nil)
	}
	if !models.CanTransition(a.Status, upd.Status) {
		return fail(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION",
			fmt.Sprintf("cannot move from %s to %s", a.Status, upd.Status), nil)
	}
	now := time.Now().UTC()
	a.Status = upd.Status
	a.UpdatedAt = now
	events := s.timeline[id]
	s.timeline[id] = append(events, models.TimelineEvent{
		ID: int64(len(events) + 1), Status: upd.Status, Note: upd.Note, ChangedBy: "company", CreatedAt: now,
	})
	return ok(c, http.StatusOK, a, nil)
}

// Dashboard, quota and payments

func (s *Server) stats(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.DashboardStats{TotalJobs: len(s.jobs), TotalApplicants: len(s.applications)}
	for _, j := range s.jobs {
		if j.Status == models.JobActive {
			st.ActiveJobs++
		}
	}
	for _, a := range s.applications {
		switch a.Status {
		case models.StatusSubmitted:
			st.NewApplicants++
		case models.StatusInterviewScheduled:
			st.InterviewScheduled++
		case models.StatusHired:
			st.Hired++
		}
	}
	return ok(c, http.StatusOK, st, nil)
}

func (s *Server) recentApplicants(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.RecentApplicant{}
	for _, a := range s.applications {
		out = append(out, models.RecentApplicant{ApplicationID: a.ID, ApplicantName: a.Applicant.FullName,
			JobTitle: a.JobTitle, Status: a.Status, AppliedAt: a.AppliedAt})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ApplicationID < out[k].ApplicationID })
	return ok(c, http.StatusOK, out, nil)
}

func (s *Server) activeJobs(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ActiveJob{}
	for _, j := range s.sortedJobs() {
		if j.Status == models.JobActive {
			out = append(out, models.ActiveJob{JobID: j.ID, Title: j.Title,
				ApplicationCount: j.ApplicationCount, ViewsCount: j.ViewsCount})
		}
	}
	return ok(c, http.StatusOK, out, nil)
}

func (s *Server) getQuota(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ok(c, http.StatusOK, s.quota, nil)
}

func (s *Server) packages(c echo.Context) error {
	return ok(c, http.StatusOK, []models.Package{
		{ID: "single", Name: "Single Post", JobCredits: 1, Price: 30000},
		{ID: "bundle-5", Name: "Bundle 5", JobCredits: 5, Price: 125000},
	}, nil)
}

func (s *Server) listPayments(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Payment{}
	for id := int64(1); id < s.nextPaymentID; id++ {
		if p, found := s.payments[id]; found {
			out = append(out, *p)
		}
	}
	return ok(c, http.StatusOK, out, paginate(len(out)))
}

func (s *Server) getPayment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.payments[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "payment not found", nil)
	}
	return ok(c, http.StatusOK, p, nil)
}

func (s *Server) submitProof(c echo.Context) error {
	if _, err := c.FormFile("proof"); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "proof file is required", nil)
	}
	amount, err := strconv.ParseInt(c.FormValue("amount"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "amount is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Payment{ID: s.nextPaymentID, Amount: amount, Status: models.PaymentPending,
		PackageID: c.FormValue("package_id"), Note: c.FormValue("note"), SubmittedAt: time.Now().UTC()}
	if v := c.FormValue("job_id"); v != "" {
		jobID, _ := strconv.ParseInt(v, 10, 64)
		p.JobID = &jobID
	}
	s.nextPaymentID++
	s.payments[p.ID] = p
	return ok(c, http.StatusCreated, p, nil)
}

func (s *Server) invoice(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("payment_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "payment_id is required", nil)
	}
	s.mu.Lock()
	p, found := s.payments[id]
	s.mu.Unlock()
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "payment not found", nil)
	}
	return c.Blob(http.StatusOK, "application/pdf", []byte(fmt.Sprintf("%%PDF-1.4 invoice %d", p.ID)))
}

// Chat

func (s *Server) listConversations(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Conversation{}
	for id := int64(1); id < s.nextConvID; id++ {
		if conv, found := s.conversations[id]; found {
			summary := *conv
			summary.Messages = nil
			out = append(out, summary)
		}
	}
	return ok(c, http.StatusOK, out, nil)
}

func (s *Server) getConversation(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, found := s.conversations[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "conversation not found", nil)
	}
	return ok(c, http.StatusOK, conv, nil)
}

func (s *Server) createConversation(c echo.Context) error {
	var in models.NewConversation
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	conv := &models.Conversation{ID: s.nextConvID, Title: in.Title, Category: in.Category,
		Status: "open", CreatedAt: now}
	s.nextConvID++
	s.conversations[conv.ID] = conv
	s.appendMessage(conv, in.Message, "", now)
	return ok(c, http.StatusCreated, conv, nil)
}

func (s *Server) sendMessage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "invalid body", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, found := s.conversations[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "conversation not found", nil)
	}
	msg := s.appendMessage(conv, body.Message, "", time.Now().UTC())
	return ok(c, http.StatusCreated, msg, nil)
}

func (s *Server) upload(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid id", nil)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", "file is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, found := s.conversations[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "conversation not found", nil)
	}
	msg := s.appendMessage(conv, c.FormValue("message"), "/uploads/"+fh.Filename, time.Now().UTC())
	return ok(c, http.StatusCreated, msg, nil)
}

func (s *Server) appendMessage(conv *models.Conversation, body, attachment string, at time.Time) models.Message {
	msg := models.Message{ID: s.nextMessageID, ConversationID: conv.ID, SenderType: "company",
		Body: body, AttachmentURL: attachment, CreatedAt: at}
	s.nextMessageID++
	conv.Messages = append(conv.Messages, msg)
	conv.LastMessage = body
	conv.LastMessageAt = &at
	return msg
}
