package models

import "time"

// VerificationStatus is the admin review state of a company account
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationVerified  VerificationStatus = "verified"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationSuspended VerificationStatus = "suspended"
)

// CompanyProfile represents the recruiting company account
type CompanyProfile struct {
	ID                 int64              `json:"id"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	CompanyName        string             `json:"company_name"`
	CompanyIndustry    string             `json:"company_industry,omitempty"`
	CompanySize        string             `json:"company_size,omitempty"`
	CompanyLocation    string             `json:"company_location,omitempty"`
	CompanyWebsite     string             `json:"company_website,omitempty"`
	CompanyDescription string             `json:"company_description,omitempty"`
	CompanyLogoURL     string             `json:"company_logo_url,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	IsVerified         bool               `json:"is_verified"` // legacy flag, prefer VerificationStatus
	// Legal documents
	KTPFounderURL    string     `json:"ktp_founder_url,omitempty"`
	AktaPendirianURL string     `json:"akta_pendirian_url,omitempty"`
	NPWPURL          string     `json:"npwp_url,omitempty"`
	NIBNumber        string     `json:"nib_number,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// Verified reports whether the company may publish jobs. The legacy boolean
// is honored for accounts created before verification_status existed.
func (c *CompanyProfile) Verified() bool {
	if c.VerificationStatus != "" {
		return c.VerificationStatus == VerificationVerified
	}
	return c.IsVerified
}

// DocumentsComplete reports whether every legal document has been provided
func (c *CompanyProfile) DocumentsComplete() bool {
	return c.KTPFounderURL != "" && c.AktaPendirianURL != "" && c.NPWPURL != "" && c.NIBNumber != ""
}

// CompanyPatch is a merge-patch over CompanyProfile. Nil fields are left
// untouched by Apply.
type CompanyPatch struct {
	Email              *string             `json:"email,omitempty"`
	Phone              *string             `json:"phone,omitempty"`
	CompanyName        *string             `json:"company_name,omitempty"`
	CompanyIndustry    *string             `json:"company_industry,omitempty"`
	CompanySize        *string             `json:"company_size,omitempty"`
	CompanyLocation    *string             `json:"company_location,omitempty"`
	CompanyWebsite     *string             `json:"company_website,omitempty"`
	CompanyDescription *string             `json:"company_description,omitempty"`
	CompanyLogoURL     *string             `json:"company_logo_url,omitempty"`
	VerificationStatus *VerificationStatus `json:"verification_status,omitempty"`
	IsVerified         *bool               `json:"is_verified,omitempty"`
	KTPFounderURL      *string             `json:"ktp_founder_url,omitempty"`
	AktaPendirianURL   *string             `json:"akta_pendirian_url,omitempty"`
	NPWPURL            *string             `json:"npwp_url,omitempty"`
	NIBNumber          *string             `json:"nib_number,omitempty"`
}

// Apply merges the non-nil fields of p into c
func (p CompanyPatch) Apply(c *CompanyProfile) {
	setString(&c.Email, p.Email)
	setString(&c.Phone, p.Phone)
	setString(&c.CompanyName, p.CompanyName)
	setString(&c.CompanyIndustry, p.CompanyIndustry)
	setString(&c.CompanySize, p.CompanySize)
	setString(&c.CompanyLocation, p.CompanyLocation)
	setString(&c.CompanyWebsite, p.CompanyWebsite)
	setString(&c.CompanyDescription, p.CompanyDescription)
	setString(&c.CompanyLogoURL, p.CompanyLogoURL)
	if p.VerificationStatus != nil {
		c.VerificationStatus = *p.VerificationStatus
	}
	if p.IsVerified != nil {
		c.IsVerified = *p.IsVerified
	}
	setString(&c.KTPFounderURL, p.KTPFounderURL)
	setString(&c.AktaPendirianURL, p.AktaPendirianURL)
	setString(&c.NPWPURL, p.NPWPURL)
	setString(&c.NIBNumber, p.NIBNumber)
}

// IsEmpty reports whether the patch would change nothing
func (p CompanyPatch) IsEmpty() bool {
	return p == CompanyPatch{}
}

// PatchFromProfile builds a patch carrying every field of c, used when the
// server returns a complete profile.
func PatchFromProfile(c CompanyProfile) CompanyPatch {
	return CompanyPatch{
		Email:              &c.Email,
		Phone:              &c.Phone,
		CompanyName:        &c.CompanyName,
		CompanyIndustry:    &c.CompanyIndustry,
		CompanySize:        &c.CompanySize,
		CompanyLocation:    &c.CompanyLocation,
		CompanyWebsite:     &c.CompanyWebsite,
		CompanyDescription: &c.CompanyDescription,
		CompanyLogoURL:     &c.CompanyLogoURL,
		VerificationStatus: &c.VerificationStatus,
		IsVerified:         &c.IsVerified,
		KTPFounderURL:      &c.KTPFounderURL,
		AktaPendirianURL:   &c.AktaPendirianURL,
		NPWPURL:            &c.NPWPURL,
		NIBNumber:          &c.NIBNumber,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// AuthResult is the payload of a successful login or register exchange
type AuthResult struct {
	AccessToken string         `json:"access_token"`
	Company     CompanyProfile `json:"company"`
}

// Credentials for POST /auth/login
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Registration for POST /auth/register
type Registration struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"required,min=2"`
	Phone       string `json:"phone,omitempty"`
}

// PasswordReset for POST /auth/reset-password
type PasswordReset struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// Pagination is the meta block of paginated list responses
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// MutationEntry is one row of the local mutation journal
type MutationEntry struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Subject     string        `json:"subject,omitempty"`
	Succeeded   bool          `json:"succeeded"`
	Error       string        `json:"error,omitempty"`
	Invalidated []string      `json:"invalidated,omitempty"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"created_at"`
}
