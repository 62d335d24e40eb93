package models

import "time"

// JobStatus is the lifecycle state of a job posting
type JobStatus string

const (
	JobDraft  JobStatus = "draft"
	JobActive JobStatus = "active"
	JobPaused JobStatus = "paused"
	JobClosed JobStatus = "closed"
)

// Job represents a job posting owned by the company
type Job struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Requirements        string     `json:"requirements,omitempty"`
	Responsibilities    string     `json:"responsibilities,omitempty"`
	City                string     `json:"city,omitempty"`
	Province            string     `json:"province,omitempty"`
	IsRemote            bool       `json:"is_remote"`
	JobType             string     `json:"job_type"`         // full_time, part_time, contract, internship, freelance
	ExperienceLevel     string     `json:"experience_level"` // entry, junior, mid, senior, lead, executive
	SalaryMin           *int64     `json:"salary_min,omitempty"`
	SalaryMax           *int64     `json:"salary_max,omitempty"`
	IsSalaryVisible     bool       `json:"is_salary_visible"`
	Skills              []string   `json:"skills,omitempty"`
	Status              JobStatus  `json:"status"`
	ApplicationCount    int        `json:"applications_count"`
	ViewsCount          int        `json:"views_count"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
	ClosedAt            *time.Time `json:"closed_at,omitempty"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// JobInput is the create/update payload for a job posting
type JobInput struct {
	Title            string   `json:"title" validate:"required,min=3,max=200"`
	Description      string   `json:"description" validate:"required,min=20"`
	Requirements     string   `json:"requirements,omitempty"`
	Responsibilities string   `json:"responsibilities,omitempty"`
	City             string   `json:"city" validate:"required"`
	Province         string   `json:"province,omitempty"`
	IsRemote         bool     `json:"is_remote"`
	JobType          string   `json:"job_type" validate:"required,oneof=full_time part_time contract internship freelance"`
	ExperienceLevel  string   `json:"experience_level" validate:"required,oneof=entry junior mid senior lead executive"`
	SalaryMin        *int64   `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax        *int64   `json:"salary_max,omitempty" validate:"omitempty,gtefield=SalaryMin"`
	IsSalaryVisible  bool     `json:"is_salary_visible"`
	Skills           []string `json:"skills,omitempty"`
}

// JobList is a page of job postings
type JobList struct {
	Jobs       []Job      `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

// DashboardStats are the headline numbers on the company dashboard
type DashboardStats struct {
	ActiveJobs         int `json:"active_jobs"`
	TotalJobs          int `json:"total_jobs"`
	TotalApplicants    int `json:"total_applicants"`
	NewApplicants      int `json:"new_applicants"`
	InterviewScheduled int `json:"interview_scheduled"`
	Hired              int `json:"hired"`
}

// RecentApplicant is a row of the dashboard's recent applicants panel
type RecentApplicant struct {
	ApplicationID int64             `json:"application_id"`
	ApplicantName string            `json:"applicant_name"`
	JobTitle      string            `json:"job_title"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"applied_at"`
}

// ActiveJob is a row of the dashboard's active jobs panel
type ActiveJob struct {
	JobID            int64  `json:"job_id"`
	Title            string `json:"title"`
	ApplicationCount int    `json:"applications_count"`
	ViewsCount       int    `json:"views_count"`
}
