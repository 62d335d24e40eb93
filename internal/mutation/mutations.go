package mutation

import (
	"context"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/rs/zerolog"
)

// Session is the part of the session store mutations drive
type Session interface {
	SetAuth(token string, company *models.CompanyProfile)
	UpdateCompany(patch models.CompanyPatch)
	Logout()
	IsAuthenticated() bool
	Company() (models.CompanyProfile, bool)
}

// Clearer drops all cached data
type Clearer interface {
	Clear()
}

// Cache is what Mutations needs from the resource cache
type Cache interface {
	Invalidator
	Clearer
}

// Mutations is the set of writes the program can perform
type Mutations struct {
	coord   *Coordinator
	client  *api.Client
	session Session
	cache   Cache
	logger  zerolog.Logger
}

// New returns Mutations running through coord
func New(coord *Coordinator, client *api.Client, sess Session, c Cache, logger zerolog.Logger) *Mutations {
	return &Mutations{coord: coord, client: client, session: sess, cache: c, logger: logger}
}

// Login exchanges credentials for a session. The cache is emptied so no
// data of a previous company survives.
func (m *Mutations) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	return Run(ctx, m.coord, Descriptor[models.Credentials, *models.AuthResult]{
		Name:      "login",
		Execute:   m.client.Login,
		OnSuccess: func(_ models.Credentials, out *models.AuthResult) { m.signIn(out) },
		Subject:   func(in models.Credentials) string { return in.Email },
	}, creds)
}

// Register creates an account and signs it in
func (m *Mutations) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	return Run(ctx, m.coord, Descriptor[models.Registration, *models.AuthResult]{
		Name:      "register",
		Execute:   m.client.Register,
		OnSuccess: func(_ models.Registration, out *models.AuthResult) { m.signIn(out) },
		Subject:   func(in models.Registration) string { return in.Email },
	}, reg)
}

func (m *Mutations) signIn(out *models.AuthResult) {
	m.cache.Clear()
	m.session.SetAuth(out.AccessToken, &out.Company)
}

// Logout revokes the token server-side when possible and always ends the
// local session.
func (m *Mutations) Logout(ctx context.Context) {
	if m.session.IsAuthenticated() {
		if err := m.client.Logout(ctx); err != nil {
			m.logger.Debug().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	m.session.Logout()
	m.cache.Clear()
}

// RefreshProfile reloads the company profile into the session
func (m *Mutations) RefreshProfile(ctx context.Context) (*models.CompanyProfile, error) {
	out, err := Run(ctx, m.coord, Descriptor[struct{}, *models.CompanyProfile]{
		Name: "refresh-profile",
		Execute: func(ctx context.Context, _ struct{}) (*models.CompanyProfile, error) {
			return m.client.Me(ctx)
		},
		Invalidates: func(struct{}, *models.CompanyProfile) []cache.Pattern {
			return patterns("profile")
		},
		OnSuccess: func(_ struct{}, out *models.CompanyProfile) {
			if out == nil {
				m.logger.Debug().Msg("profile response had no data, keeping session company")
				return
			}
			m.session.UpdateCompany(models.PatchFromProfile(*out))
		},
	}, struct{}{})
	return m.orSessionCompany(out, err)
}

// orSessionCompany stands in the session's company for an empty profile
// response.
func (m *Mutations) orSessionCompany(out *models.CompanyProfile, err error) (*models.CompanyProfile, error) {
	if err != nil || out != nil {
		return out, err
	}
	company, ok := m.session.Company()
	if !ok {
		return nil, nil
	}
	return &company, nil
}

// ForgotPassword requests a reset email
func (m *Mutations) ForgotPassword(ctx context.Context, email string) error {
	_, err := Run(ctx, m.coord, Descriptor[string, struct{}]{
		Name: "forgot-password",
		Execute: func(ctx context.Context, email string) (struct{}, error) {
			return struct{}{}, m.client.ForgotPassword(ctx, email)
		},
		Subject: func(email string) string { return email },
	}, email)
	return err
}

// ResetPassword sets a new password with a reset token
func (m *Mutations) ResetPassword(ctx context.Context, reset models.PasswordReset) error {
	_, err := Run(ctx, m.coord, Descriptor[models.PasswordReset, struct{}]{
		Name: "reset-password",
		Execute: func(ctx context.Context, in models.PasswordReset) (struct{}, error) {
			return struct{}{}, m.client.ResetPassword(ctx, in)
		},
	}, reset)
	return err
}

func (m *Mutations) CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
	return Run(ctx, m.coord, CreateJobDescriptor(m.client), in)
}

func (m *Mutations) UpdateJob(ctx context.Context, id int64, in models.JobInput) (*models.Job, error) {
	return Run(ctx, m.coord, UpdateJobDescriptor(m.client), JobUpdate{ID: id, Input: in})
}

func (m *Mutations) DeleteJob(ctx context.Context, id int64) error {
	_, err := Run(ctx, m.coord, DeleteJobDescriptor(m.client), id)
	return err
}

// TransitionJob publishes, closes, pauses or reopens a job. Duplicate
// calls are forwarded to the server each time.
func (m *Mutations) TransitionJob(ctx context.Context, id int64, action api.JobAction) (*models.Job, error) {
	return Run(ctx, m.coord, TransitionJobDescriptor(m.client), JobTransition{ID: id, Action: action})
}

func (m *Mutations) UpdateApplicationStatus(ctx context.Context, id int64, update models.StatusUpdate) (*models.Application, error) {
	return Run(ctx, m.coord, UpdateApplicationStatusDescriptor(m.client), StatusChange{ApplicationID: id, Update: update})
}

func (m *Mutations) SubmitPaymentProof(ctx context.Context, proof models.PaymentProof) (*models.Payment, error) {
	return Run(ctx, m.coord, SubmitPaymentProofDescriptor(m.client), proof)
}

// UpdateProfile saves profile fields and merges the stored profile into
// the session. When the server answers without a profile, patch itself is
// merged.
func (m *Mutations) UpdateProfile(ctx context.Context, patch models.CompanyPatch) (*models.CompanyProfile, error) {
	d := UpdateProfileDescriptor(m.client)
	d.OnSuccess = func(in models.CompanyPatch, out *models.CompanyProfile) {
		if out == nil {
			m.session.UpdateCompany(in)
			return
		}
		m.session.UpdateCompany(models.PatchFromProfile(*out))
	}
	return m.orSessionCompany(Run(ctx, m.coord, d, patch))
}

func (m *Mutations) SendMessage(ctx context.Context, conversationID int64, body string) (*models.Message, error) {
	return Run(ctx, m.coord, SendMessageDescriptor(m.client), ChatMessage{ConversationID: conversationID, Body: body})
}

func (m *Mutations) UploadAttachment(ctx context.Context, conversationID int64, path, caption string) (*models.Message, error) {
	in := ChatUpload{ConversationID: conversationID, Path: path, Caption: caption}
	return Run(ctx, m.coord, UploadAttachmentDescriptor(m.client), in)
}

func (m *Mutations) CreateConversation(ctx context.Context, in models.NewConversation) (*models.Conversation, error) {
	return Run(ctx, m.coord, CreateConversationDescriptor(m.client), in)
}
