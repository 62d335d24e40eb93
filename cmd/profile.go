package cmd

import (
	"fmt"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and update the company profile",
}

var showProfileCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		profile, err := application.Resources.Profile(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		if profile == nil {
			company, _ := application.Session.Company()
			profile = &company
		}
		printProfile(cmd, profile)
		return nil
	},
}

func printProfile(cmd *cobra.Command, p *models.CompanyProfile) {
	cmd.Println(titleStyle.Render(p.CompanyName))
	rows := []struct{ label, value string }{
		{"Email:", p.Email},
		{"Phone:", p.Phone},
		{"Industry:", p.CompanyIndustry},
		{"Size:", p.CompanySize},
		{"Location:", p.CompanyLocation},
		{"Website:", p.CompanyWebsite},
	}
	for _, r := range rows {
		if r.value != "" {
			cmd.Printf("%s %s\n", labelStyle.Render(r.label), valueStyle.Render(r.value))
		}
	}
	cmd.Printf("%s %s\n", labelStyle.Render("Verification:"), badge(string(p.VerificationStatus)))
	if p.CompanyDescription != "" {
		cmd.Println(labelStyle.Render("\nAbout:"))
		cmd.Println(p.CompanyDescription)
	}

	cmd.Println(labelStyle.Render("\nLegal Documents:"))
	docs := []struct{ label, value string }{
		{"KTP (founder)", p.KTPFounderURL},
		{"Akta Pendirian", p.AktaPendirianURL},
		{"NPWP", p.NPWPURL},
		{"NIB", p.NIBNumber},
	}
	for _, d := range docs {
		mark := successStyle.Render("✓")
		if d.value == "" {
			mark = errorStyle.Render("✗")
		}
		cmd.Printf("  %s %s\n", mark, d.label)
	}
}

var updateProfileCmd = &cobra.Command{
	Use:   "update",
	Short: "Update company profile fields",
	Example: `  karir profile update --website https://majujaya.co.id --size 51-200
  karir profile update --npwp-url https://files.example/npwp.pdf --nib 1234567890123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		field := func(name string) *string {
			v, _ := flags.GetString(name)
			return stringFlag(flags.Changed(name), v)
		}
		patch := models.CompanyPatch{
			Phone:              field("phone"),
			CompanyName:        field("name"),
			CompanyIndustry:    field("industry"),
			CompanySize:        field("size"),
			CompanyLocation:    field("location"),
			CompanyWebsite:     field("website"),
			CompanyDescription: field("description"),
			CompanyLogoURL:     field("logo-url"),
			KTPFounderURL:      field("ktp-url"),
			AktaPendirianURL:   field("akta-url"),
			NPWPURL:            field("npwp-url"),
			NIBNumber:          field("nib"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass at least one field flag")
		}

		profile, err := application.Mutations.UpdateProfile(cmd.Context(), patch)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		cmd.Println("✓ Profile updated")
		printProfile(cmd, profile)
		return nil
	},
}

var refreshProfileCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the profile from the server into the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		profile, err := application.Mutations.RefreshProfile(cmd.Context())
		if err != nil {
			return fmt.Errorf("refresh profile: %w", err)
		}
		cmd.Printf("✓ Session updated for %s (%s)\n", profile.CompanyName, humanize(string(profile.VerificationStatus)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(showProfileCmd, updateProfileCmd, refreshProfileCmd)

	f := updateProfileCmd.Flags()
	f.String("phone", "", "Contact phone")
	f.String("name", "", "Company name")
	f.String("industry", "", "Industry")
	f.String("size", "", "Company size, e.g. 11-50")
	f.String("location", "", "Head office location")
	f.String("website", "", "Company website")
	f.String("description", "", "About the company")
	f.String("logo-url", "", "Logo URL")
	f.String("ktp-url", "", "Founder KTP document URL")
	f.String("akta-url", "", "Akta pendirian document URL")
	f.String("npwp-url", "", "NPWP document URL")
	f.String("nib", "", "NIB number")
}
