package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCompanyPatchApplyMerges(t *testing.T) {
	company := CompanyProfile{
		ID:              1,
		Email:           "hr@nusantara.test",
		CompanyName:     "PT Lama",
		CompanyLocation: "Jakarta",
		NPWPURL:         "/docs/npwp.pdf",
	}

	patch := CompanyPatch{CompanyName: strPtr("PT Baru"), CompanyWebsite: strPtr("https://baru.id")}
	patch.Apply(&company)

	assert.Equal(t, "PT Baru", company.CompanyName)
	assert.Equal(t, "https://baru.id", company.CompanyWebsite)
	assert.Equal(t, "Jakarta", company.CompanyLocation, "absent fields are preserved")
	assert.Equal(t, "/docs/npwp.pdf", company.NPWPURL)
	assert.Equal(t, int64(1), company.ID)
}

func TestCompanyPatchCanClearField(t *testing.T) {
	company := CompanyProfile{CompanyWebsite: "https://old.id"}
	CompanyPatch{CompanyWebsite: strPtr("")}.Apply(&company)
	assert.Empty(t, company.CompanyWebsite)
}

func TestCompanyPatchJSONOmitsNil(t *testing.T) {
	raw, err := json.Marshal(CompanyPatch{CompanyName: strPtr("PT Baru")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"company_name":"PT Baru"}`, string(raw))

	assert.True(t, CompanyPatch{}.IsEmpty())
	assert.False(t, CompanyPatch{CompanyName: strPtr("")}.IsEmpty())
}

func TestPatchFromProfileRoundTrip(t *testing.T) {
	src := CompanyProfile{
		Email:              "a@b.id",
		CompanyName:        "PT Sumber",
		VerificationStatus: VerificationVerified,
		KTPFounderURL:      "k",
		AktaPendirianURL:   "a",
		NPWPURL:            "n",
		NIBNumber:          "123",
	}
	var dst CompanyProfile
	PatchFromProfile(src).Apply(&dst)
	assert.Equal(t, src, dst)
}

func TestVerified(t *testing.T) {
	tests := []struct {
		name    string
		company CompanyProfile
		want    bool
	}{
		{"verified status", CompanyProfile{VerificationStatus: VerificationVerified}, true},
		{"pending status", CompanyProfile{VerificationStatus: VerificationPending, IsVerified: true}, false},
		{"legacy flag only", CompanyProfile{IsVerified: true}, true},
		{"nothing", CompanyProfile{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.company.Verified())
		})
	}
}

func TestDocumentsComplete(t *testing.T) {
	c := CompanyProfile{KTPFounderURL: "k", AktaPendirianURL: "a", NPWPURL: "n"}
	assert.False(t, c.DocumentsComplete())
	c.NIBNumber = "912"
	assert.True(t, c.DocumentsComplete())
}

func TestApplicationTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusSubmitted, StatusShortlisted))
	assert.True(t, CanTransition(StatusOfferAccepted, StatusHired))
	assert.False(t, CanTransition(StatusHired, StatusRejected))
	assert.False(t, CanTransition(StatusSubmitted, StatusHired))

	for _, s := range []ApplicationStatus{StatusHired, StatusRejected, StatusWithdrawn} {
		assert.True(t, IsTerminal(s), s)
		assert.Nil(t, NextStatuses(s), s)
	}

	next := NextStatuses(StatusSubmitted)
	next[0] = StatusHired
	assert.Equal(t, StatusViewed, NextStatuses(StatusSubmitted)[0], "NextStatuses returns a copy")
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("interview_scheduled")
	require.NoError(t, err)
	assert.Equal(t, StatusInterviewScheduled, s)

	_, err = ParseStatus("ghosted")
	assert.Error(t, err)
}

func TestQuotaCanPublishFree(t *testing.T) {
	assert.True(t, Quota{RemainingFreeQuota: 1}.CanPublishFree())
	assert.True(t, Quota{PaidQuota: 3}.CanPublishFree())
	assert.False(t, Quota{FreeQuota: 10, UsedFreeQuota: 10}.CanPublishFree())
}
