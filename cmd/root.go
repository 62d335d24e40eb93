package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/app"
	"github.com/spf13/cobra"
)

// current is the App built for this invocation, closed by Execute
var current *app.App

var rootCmd = &cobra.Command{
	Use:   "karir",
	Short: "Company recruiting dashboard for Karir Nusantara",
	Long: `Karir is a terminal client for the Karir Nusantara company dashboard.
Post and manage jobs, move candidates through the hiring pipeline, track
posting quota and payments, and talk to platform support.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		// Initialize app with all dependencies
		application, err := app.NewApp(cmd.Context(), verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		current = application

		// Store app in command context
		cmd.SetContext(app.SetAppInContext(cmd.Context(), application))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetContext(ctx)
	err := rootCmd.Execute()

	if current != nil {
		current.Close()
	}
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints err with guidance for the failures a user can act on
func reportError(err error) {
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		fmt.Fprintln(os.Stderr, errorStyle.Render("Your session has expired."))
		fmt.Fprintln(os.Stderr, "Run 'karir login' to sign in again.")
		return
	case errors.Is(err, app.ErrNotAuthenticated):
		fmt.Fprintln(os.Stderr, errorStyle.Render("You are not logged in."))
		fmt.Fprintln(os.Stderr, "Run 'karir login' first.")
		return
	}

	if apiErr, ok := api.AsAPIError(err); ok {
		if pr, ok := apiErr.PaymentRequired(); ok {
			printPaymentRequired(os.Stderr, pr)
			return
		}
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
}

// appFrom returns the App stored in the command context
func appFrom(cmd *cobra.Command) (*app.App, error) {
	application := app.GetAppFromContext(cmd.Context())
	if application == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return application, nil
}

// authedApp is appFrom for commands that need a signed-in company
func authedApp(cmd *cobra.Command) (*app.App, error) {
	application, err := appFrom(cmd)
	if err != nil {
		return nil, err
	}
	if err := application.RequireAuth(); err != nil {
		return nil, err
	}
	return application, nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log API calls and cache activity to stderr")
}
