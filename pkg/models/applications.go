package models

import (
	"fmt"
	"time"
)

// ApplicationStatus is the recruiting pipeline stage of a candidate.
//
//	submitted ─► viewed ─► shortlisted ─► interview_scheduled ─► interview_completed
//	                                                                  │
//	              assessment ◄──────────────────────────────────────┤
//	                  │                                               ▼
//	                  └──────────────────────────────────────────► offer_sent ─► offer_accepted ─► hired
//
// Any non-terminal stage may move to rejected. hired, rejected and withdrawn
// are terminal. The server is the authority; the table below only drives
// which options the client offers.
type ApplicationStatus string

const (
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusViewed             ApplicationStatus = "viewed"
	StatusShortlisted        ApplicationStatus = "shortlisted"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusInterviewCompleted ApplicationStatus = "interview_completed"
	StatusAssessment         ApplicationStatus = "assessment"
	StatusOfferSent          ApplicationStatus = "offer_sent"
	StatusOfferAccepted      ApplicationStatus = "offer_accepted"
	StatusHired              ApplicationStatus = "hired"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted:          {StatusViewed, StatusShortlisted, StatusRejected},
	StatusViewed:             {StatusShortlisted, StatusRejected},
	StatusShortlisted:        {StatusInterviewScheduled, StatusAssessment, StatusRejected},
	StatusInterviewScheduled: {StatusInterviewCompleted, StatusRejected},
	StatusInterviewCompleted: {StatusAssessment, StatusOfferSent, StatusRejected},
	StatusAssessment:         {StatusInterviewScheduled, StatusOfferSent, StatusRejected},
	StatusOfferSent:          {StatusOfferAccepted, StatusRejected},
	StatusOfferAccepted:      {StatusHired},
}

// ParseStatus converts a raw string to an ApplicationStatus
func ParseStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case StatusSubmitted, StatusViewed, StatusShortlisted, StatusInterviewScheduled,
		StatusInterviewCompleted, StatusAssessment, StatusOfferSent, StatusOfferAccepted,
		StatusHired, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// CanTransition reports whether the client should offer moving from → to
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the stages reachable from s. Terminal stages return nil.
func NextStatuses(s ApplicationStatus) []ApplicationStatus {
	next := allowedTransitions[s]
	if len(next) == 0 {
		return nil
	}
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no further stage can follow s
func IsTerminal(s ApplicationStatus) bool {
	return len(allowedTransitions[s]) == 0
}

// Applicant is the candidate behind an application
type Applicant struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	City     string `json:"city,omitempty"`
	Headline string `json:"headline,omitempty"`
	CVURL    string `json:"cv_url,omitempty"`
}

// Application represents a candidate's application to one of the company's jobs
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	JobTitle    string            `json:"job_title"`
	Applicant   Applicant         `json:"applicant"`
	Status      ApplicationStatus `json:"status"`
	CoverLetter string            `json:"cover_letter,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	AppliedAt   time.Time         `json:"applied_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ApplicationList is a page of applications
type ApplicationList struct {
	Applications []Application `json:"applications"`
	Pagination   Pagination    `json:"pagination"`
}

// StatusUpdate is the PATCH /applications/{id}/status payload
type StatusUpdate struct {
	Status            ApplicationStatus `json:"status" validate:"required"`
	Note              string            `json:"note,omitempty" validate:"max=1000"`
	// Interview details, only meaningful for interview_scheduled
	ScheduledAt       *time.Time        `json:"scheduled_at,omitempty"`
	InterviewType     string            `json:"interview_type,omitempty" validate:"omitempty,oneof=online onsite phone"`
	MeetingLink       string            `json:"meeting_link,omitempty" validate:"omitempty,url"`
	InterviewLocation string            `json:"location,omitempty"`
}

// TimelineEvent is one entry of an application's status history
type TimelineEvent struct {
	ID        int64             `json:"id"`
	Status    ApplicationStatus `json:"status"`
	Note      string            `json:"note,omitempty"`
	ChangedBy string            `json:"changed_by,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
