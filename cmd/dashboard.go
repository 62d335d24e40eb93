package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/app"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/poller"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/resource"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show hiring numbers, recent applicants and active jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		watch, _ := cmd.Flags().GetBool("watch")
		interval, _ := cmd.Flags().GetDuration("interval")

		if !watch {
			ov, err := application.Resources.Overview(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load dashboard: %w", err)
			}
			renderDashboard(cmd, application, ov)
			return nil
		}
		return watchDashboard(cmd, application, limit, interval)
	},
}

func watchDashboard(cmd *cobra.Command, application *app.App, limit int, interval time.Duration) error {
	ctx := cmd.Context()
	errs := make(chan error, 1)

	refresh := poller.Task{
		Name:  "dashboard",
		Every: interval,
		Run: func(ctx context.Context) error {
			application.Cache.Invalidate(cache.Prefix("dashboard"), cache.Prefix(string(cache.Quota)))
			ov, err := application.Resources.Overview(ctx, limit)
			if err != nil {
				select {
				case errs <- err:
				default:
				}
				return err
			}
			cmd.Print("\033[H\033[2J")
			renderDashboard(cmd, application, ov)
			cmd.Println(mutedStyle.Render(fmt.Sprintf("Refreshing every %s, Ctrl+C to stop", interval)))
			return nil
		},
	}
	p := poller.New([]poller.Task{refresh},
		poller.WithGuard(application.Session.IsAuthenticated),
		poller.WithLogger(application.Logger))
	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			if !application.Session.IsAuthenticated() {
				return err
			}
			application.Logger.Warn().Err(err).Msg("dashboard refresh failed")
		}
	}
}

func renderDashboard(cmd *cobra.Command, application *app.App, ov *resource.Overview) {
	company, _ := application.Session.Company()
	if !application.Preferences.Compact() {
		cmd.Println(figure.NewFigure("Karir", "cybermedium", true).String())
	}
	cmd.Println(titleStyle.Render(company.CompanyName))
	if !company.Verified() {
		cmd.Printf("%s %s\n\n", labelStyle.Render("Verification:"), badge(string(company.VerificationStatus)))
	}

	s := ov.Stats
	cmd.Printf("%s %d active / %d total\n", labelStyle.Render("Jobs:"), s.ActiveJobs, s.TotalJobs)
	cmd.Printf("%s %d total, %d new\n", labelStyle.Render("Applicants:"), s.TotalApplicants, s.NewApplicants)
	cmd.Printf("%s %d scheduled\n", labelStyle.Render("Interviews:"), s.InterviewScheduled)
	cmd.Printf("%s %d\n", labelStyle.Render("Hired:"), s.Hired)
	if q := ov.Quota; q != nil {
		cmd.Printf("%s %d free left, %d paid credits\n", labelStyle.Render("Quota:"), q.RemainingFreeQuota, q.PaidQuota)
	}

	cmd.Println(titleStyle.Render("Recent Applicants"))
	if len(ov.RecentApplicants) == 0 {
		cmd.Println(mutedStyle.Render("No applicants yet."))
	}
	for _, a := range ov.RecentApplicants {
		cmd.Printf("%4d  %-26s %-26s %s\n", a.ApplicationID, a.ApplicantName, a.JobTitle, badge(string(a.Status)))
	}

	cmd.Println(titleStyle.Render("Active Jobs"))
	if len(ov.ActiveJobs) == 0 {
		cmd.Println(mutedStyle.Render("No active jobs."))
	}
	for _, j := range ov.ActiveJobs {
		cmd.Printf("%4d  %-36s %3d applicants  %4d views\n", j.JobID, j.Title, j.ApplicationCount, j.ViewsCount)
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().Int("limit", 5, "Rows in the applicant and job panels")
	dashboardCmd.Flags().BoolP("watch", "w", false, "Keep refreshing until interrupted")
	dashboardCmd.Flags().Duration("interval", 30*time.Second, "Refresh interval with --watch")
}
