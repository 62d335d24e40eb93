package mutation

import (
	"context"
	"fmt"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/resource"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

// JobUpdate is the input of UpdateJob
type JobUpdate struct {
	ID    int64
	Input models.JobInput
}

// JobTransition is the input of TransitionJob
type JobTransition struct {
	ID     int64
	Action api.JobAction
}

// StatusChange is the input of UpdateApplicationStatus
type StatusChange struct {
	ApplicationID int64
	Update        models.StatusUpdate
}

// ChatMessage is the input of SendMessage
type ChatMessage struct {
	ConversationID int64
	Body           string
}

// ChatUpload is the input of UploadAttachment
type ChatUpload struct {
	ConversationID int64
	Path           string
	Caption        string
}

func patterns(prefixes ...string) []cache.Pattern {
	out := make([]cache.Pattern, len(prefixes))
	for i, p := range prefixes {
		out[i] = cache.Prefix(p)
	}
	return out
}

func jobSubject(id int64) string { return fmt.Sprintf("job %d", id) }

// CreateJobDescriptor creates a draft job
func CreateJobDescriptor(client *api.Client) Descriptor[models.JobInput, *models.Job] {
	return Descriptor[models.JobInput, *models.Job]{
		Name:    "create-job",
		Execute: client.CreateJob,
		Invalidates: func(models.JobInput, *models.Job) []cache.Pattern {
			return patterns("jobs", "dashboard", "quota")
		},
		Subject: func(in models.JobInput) string { return in.Title },
	}
}

// UpdateJobDescriptor edits a job
func UpdateJobDescriptor(client *api.Client) Descriptor[JobUpdate, *models.Job] {
	return Descriptor[JobUpdate, *models.Job]{
		Name: "update-job",
		Execute: func(ctx context.Context, in JobUpdate) (*models.Job, error) {
			return client.UpdateJob(ctx, in.ID, in.Input)
		},
		Invalidates: func(JobUpdate, *models.Job) []cache.Pattern {
			return patterns("jobs")
		},
		Subject: func(in JobUpdate) string { return jobSubject(in.ID) },
	}
}

// DeleteJobDescriptor removes a job
func DeleteJobDescriptor(client *api.Client) Descriptor[int64, struct{}] {
	return Descriptor[int64, struct{}]{
		Name: "delete-job",
		Execute: func(ctx context.Context, id int64) (struct{}, error) {
			return struct{}{}, client.DeleteJob(ctx, id)
		},
		Invalidates: func(int64, struct{}) []cache.Pattern {
			return patterns("jobs", "dashboard", "quota")
		},
		Subject: jobSubject,
	}
}

// TransitionJobDescriptor publishes, closes, pauses or reopens a job.
// Publishing consumes quota; the other transitions only move the job
// between dashboard panels.
func TransitionJobDescriptor(client *api.Client) Descriptor[JobTransition, *models.Job] {
	return Descriptor[JobTransition, *models.Job]{
		Name: "transition-job",
		Execute: func(ctx context.Context, in JobTransition) (*models.Job, error) {
			return client.TransitionJob(ctx, in.ID, in.Action)
		},
		Invalidates: func(in JobTransition, _ *models.Job) []cache.Pattern {
			if in.Action == api.JobPublish {
				return patterns("jobs", "dashboard", "quota")
			}
			return patterns("jobs", "dashboard")
		},
		Subject: func(in JobTransition) string {
			return fmt.Sprintf("%s %s", in.Action, jobSubject(in.ID))
		},
	}
}

// UpdateApplicationStatusDescriptor moves a candidate along the pipeline
func UpdateApplicationStatusDescriptor(client *api.Client) Descriptor[StatusChange, *models.Application] {
	return Descriptor[StatusChange, *models.Application]{
		Name: "update-application-status",
		Execute: func(ctx context.Context, in StatusChange) (*models.Application, error) {
			return client.UpdateApplicationStatus(ctx, in.ApplicationID, in.Update)
		},
		Invalidates: func(in StatusChange, _ *models.Application) []cache.Pattern {
			id := resource.IDParams(in.ApplicationID)
			return []cache.Pattern{
				cache.Prefix(string(cache.CandidatesList)),
				cache.Exact(cache.CandidateDetail, id),
				cache.Exact(cache.CandidateTimeline, id),
				cache.Prefix("dashboard"),
			}
		},
		Subject: func(in StatusChange) string {
			return fmt.Sprintf("application %d -> %s", in.ApplicationID, in.Update.Status)
		},
	}
}

// SubmitPaymentProofDescriptor uploads a transfer receipt
func SubmitPaymentProofDescriptor(client *api.Client) Descriptor[models.PaymentProof, *models.Payment] {
	return Descriptor[models.PaymentProof, *models.Payment]{
		Name:    "submit-payment-proof",
		Execute: client.SubmitPaymentProof,
		Invalidates: func(models.PaymentProof, *models.Payment) []cache.Pattern {
			return patterns("payments", "quota")
		},
		Subject: func(in models.PaymentProof) string {
			if in.JobID != 0 {
				return jobSubject(in.JobID)
			}
			return "package " + in.PackageID
		},
	}
}

// UpdateProfileDescriptor saves profile fields
func UpdateProfileDescriptor(client *api.Client) Descriptor[models.CompanyPatch, *models.CompanyProfile] {
	return Descriptor[models.CompanyPatch, *models.CompanyProfile]{
		Name:    "update-profile",
		Execute: client.UpdateProfile,
		Invalidates: func(models.CompanyPatch, *models.CompanyProfile) []cache.Pattern {
			return patterns("profile")
		},
	}
}

func conversationPatterns(id int64) []cache.Pattern {
	return []cache.Pattern{
		cache.Exact(cache.ChatMessages, resource.IDParams(id)),
		cache.Prefix(string(cache.ChatConversations)),
	}
}

// SendMessageDescriptor posts a chat message
func SendMessageDescriptor(client *api.Client) Descriptor[ChatMessage, *models.Message] {
	return Descriptor[ChatMessage, *models.Message]{
		Name: "send-message",
		Execute: func(ctx context.Context, in ChatMessage) (*models.Message, error) {
			return client.SendMessage(ctx, in.ConversationID, in.Body)
		},
		Invalidates: func(in ChatMessage, _ *models.Message) []cache.Pattern {
			return conversationPatterns(in.ConversationID)
		},
		Subject: func(in ChatMessage) string { return fmt.Sprintf("conversation %d", in.ConversationID) },
	}
}

// UploadAttachmentDescriptor posts a file into a conversation
func UploadAttachmentDescriptor(client *api.Client) Descriptor[ChatUpload, *models.Message] {
	return Descriptor[ChatUpload, *models.Message]{
		Name: "upload-attachment",
		Execute: func(ctx context.Context, in ChatUpload) (*models.Message, error) {
			return client.UploadAttachment(ctx, in.ConversationID, in.Path, in.Caption)
		},
		Invalidates: func(in ChatUpload, _ *models.Message) []cache.Pattern {
			return conversationPatterns(in.ConversationID)
		},
		Subject: func(in ChatUpload) string { return fmt.Sprintf("conversation %d", in.ConversationID) },
	}
}

// CreateConversationDescriptor opens a support conversation
func CreateConversationDescriptor(client *api.Client) Descriptor[models.NewConversation, *models.Conversation] {
	return Descriptor[models.NewConversation, *models.Conversation]{
		Name:    "create-conversation",
		Execute: client.CreateConversation,
		Invalidates: func(models.NewConversation, *models.Conversation) []cache.Pattern {
			return []cache.Pattern{cache.Prefix(string(cache.ChatConversations))}
		},
		Subject: func(in models.NewConversation) string { return in.Title },
	}
}
