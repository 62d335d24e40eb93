package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your company account",
	Example: `  karir login --email hr@company.co.id
  karir login --email hr@company.co.id --password "********"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		reader := bufio.NewReader(os.Stdin)
		if email == "" {
			email = prompt(reader, cmd.OutOrStdout(), "Email: ")
		}
		if password == "" {
			password = prompt(reader, cmd.OutOrStdout(), "Password: ")
		}

		creds := models.Credentials{Email: email, Password: password}
		if err := validateInput(creds); err != nil {
			return err
		}

		result, err := application.Mutations.Login(cmd.Context(), creds)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		cmd.Printf("✓ Logged in as %s\n", result.Company.CompanyName)
		if !result.Company.Verified() {
			cmd.Printf("  %s %s\n", labelStyle.Render("Verification:"), badge(string(result.Company.VerificationStatus)))
			cmd.Println("  Jobs can be published once the company is verified.")
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:     "register",
	Short:   "Create a company account",
	Example: `  karir register --email hr@company.co.id --password "********" --company "PT Maju Jaya" --phone 0812...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		reg := models.Registration{}
		reg.Email, _ = cmd.Flags().GetString("email")
		reg.Password, _ = cmd.Flags().GetString("password")
		reg.CompanyName, _ = cmd.Flags().GetString("company")
		reg.Phone, _ = cmd.Flags().GetString("phone")
		if err := validateInput(reg); err != nil {
			return err
		}

		result, err := application.Mutations.Register(cmd.Context(), reg)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		cmd.Printf("✓ Account created for %s\n", result.Company.CompanyName)
		cmd.Println("Upload your legal documents with 'karir profile update' so the company can be verified.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if !application.Session.IsAuthenticated() {
			cmd.Println("Not logged in.")
			return nil
		}
		application.Mutations.Logout(cmd.Context())
		cmd.Println("✓ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in company",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		company, _ := application.Session.Company()

		cmd.Println(titleStyle.Render(company.CompanyName))
		cmd.Printf("%s %s\n", labelStyle.Render("Email:"), company.Email)
		cmd.Printf("%s %s\n", labelStyle.Render("Verification:"), badge(string(company.VerificationStatus)))
		cmd.Printf("%s %s\n", labelStyle.Render("API:"), application.Client.BaseURL())
		if exp, ok := application.Session.TokenExpiry(); ok {
			left := time.Until(exp).Round(time.Minute)
			if left > 0 {
				cmd.Printf("%s %s (in %s)\n", labelStyle.Render("Session Expires:"), formatDate(exp), left)
			} else {
				cmd.Printf("%s %s\n", labelStyle.Render("Session Expires:"), errorStyle.Render("expired"))
			}
		}
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Recover a forgotten password",
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot <email>",
	Short: "Email a password reset link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		in := struct {
			Email string `validate:"required,email"`
		}{args[0]}
		if err := validateInput(in); err != nil {
			return err
		}
		if err := application.Mutations.ForgotPassword(cmd.Context(), in.Email); err != nil {
			return err
		}
		cmd.Println("✓ If the address is registered, a reset link is on its way.")
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set a new password with the token from the reset email",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		reset := models.PasswordReset{}
		reset.Token, _ = cmd.Flags().GetString("token")
		reset.Password, _ = cmd.Flags().GetString("password")
		if err := validateInput(reset); err != nil {
			return err
		}
		if err := application.Mutations.ResetPassword(cmd.Context(), reset); err != nil {
			return err
		}
		cmd.Println("✓ Password updated. Log in with 'karir login'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, passwordCmd)
	passwordCmd.AddCommand(forgotPasswordCmd, resetPasswordCmd)

	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")

	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("password", "", "Account password (min 8 characters)")
	registerCmd.Flags().String("company", "", "Company name")
	registerCmd.Flags().String("phone", "", "Contact phone")

	resetPasswordCmd.Flags().String("token", "", "Reset token from the email")
	resetPasswordCmd.Flags().String("password", "", "New password (min 8 characters)")
}
