package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/app"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/resource"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var candidateCmd = &cobra.Command{
	Use:     "candidate",
	Aliases: []string{"candidates", "applicant"},
	Short:   "Review applicants and move them through the pipeline",
}

var listCandidatesCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications",
	Example: `  karir candidate list
  karir candidate list --job 12 --status shortlisted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}

		jobID, _ := cmd.Flags().GetInt64("job")
		status, _ := cmd.Flags().GetString("status")
		page, _ := cmd.Flags().GetInt("page")
		p := params.Params{"status": status}
		if jobID > 0 {
			p["job_id"] = jobID
		}
		if page > 1 {
			p["page"] = page
		}

		list, err := application.Resources.Candidates(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		if len(list.Applications) == 0 {
			cmd.Println("No applications match.")
			return nil
		}

		cmd.Println(titleStyle.Render("Applications"))
		for _, a := range list.Applications {
			cmd.Printf("%4d  %-28s %-28s %s  %s\n", a.ID, a.Applicant.FullName, a.JobTitle,
				badge(string(a.Status)), mutedStyle.Render(a.AppliedAt.Local().Format("Jan 2")))
		}
		return nil
	},
}

var showCandidateCmd = &cobra.Command{
	Use:   "show <application-id>",
	Short: "Show an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "application")
		if err != nil {
			return err
		}

		a, err := application.Resources.Candidate(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch application: %w", err)
		}

		cmd.Println(titleStyle.Render(a.Applicant.FullName))
		if a.Applicant.Headline != "" {
			cmd.Println(mutedStyle.Render(a.Applicant.Headline))
		}
		cmd.Printf("%s %s (ID: %d)\n", labelStyle.Render("Job:"), a.JobTitle, a.JobID)
		cmd.Printf("%s %s\n", labelStyle.Render("Status:"), badge(string(a.Status)))
		cmd.Printf("%s %s\n", labelStyle.Render("Email:"), a.Applicant.Email)
		if a.Applicant.Phone != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Phone:"), a.Applicant.Phone)
		}
		if a.Applicant.City != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("City:"), a.Applicant.City)
		}
		if a.Applicant.CVURL != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("CV:"), a.Applicant.CVURL)
		}
		cmd.Printf("%s %s\n", labelStyle.Render("Applied:"), formatDate(a.AppliedAt))
		if a.CoverLetter != "" {
			cmd.Println(labelStyle.Render("\nCover Letter:"))
			cmd.Println(a.CoverLetter)
		}

		if next := models.NextStatuses(a.Status); len(next) > 0 {
			labels := make([]string, len(next))
			for i, s := range next {
				labels[i] = string(s)
			}
			cmd.Printf("\n%s %s\n", labelStyle.Render("Next:"), strings.Join(labels, ", "))
			cmd.Println(mutedStyle.Render(fmt.Sprintf("Move with 'karir candidate status %d <status>'", a.ID)))
		}
		return nil
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <application-id>",
	Short: "Show the status history of an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "application")
		if err != nil {
			return err
		}

		events, err := application.Resources.Timeline(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch timeline: %w", err)
		}
		cmd.Println(titleStyle.Render("Timeline"))
		for _, ev := range events {
			cmd.Printf("%s  %s", mutedStyle.Render(formatDate(ev.CreatedAt)), badge(string(ev.Status)))
			if ev.ChangedBy != "" {
				cmd.Printf(" by %s", ev.ChangedBy)
			}
			cmd.Println()
			if ev.Note != "" {
				cmd.Printf("    %s\n", ev.Note)
			}
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <application-id> <status>",
	Short: "Move an application to a new pipeline stage",
	Example: `  karir candidate status 42 shortlisted --note "Strong portfolio"
  karir candidate status 42 interview_scheduled --at 2026-11-03T10:00:00+07:00 --type online --link https://meet.example/abc`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "application")
		if err != nil {
			return err
		}
		status, err := models.ParseStatus(args[1])
		if err != nil {
			return err
		}

		update := models.StatusUpdate{Status: status}
		update.Note, _ = cmd.Flags().GetString("note")
		update.InterviewType, _ = cmd.Flags().GetString("type")
		update.MeetingLink, _ = cmd.Flags().GetString("link")
		update.InterviewLocation, _ = cmd.Flags().GetString("location")
		if at, _ := cmd.Flags().GetString("at"); at != "" {
			t, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid --at: use RFC 3339, e.g. 2026-11-03T10:00:00+07:00")
			}
			update.ScheduledAt = &t
		}
		if err := validateInput(update); err != nil {
			return err
		}

		// The server decides; the local table only catches obvious mistakes
		if current, _, ok := peekCandidate(application, id); ok && !models.CanTransition(current.Status, status) {
			cmd.Println(mutedStyle.Render(fmt.Sprintf("Note: %s usually does not follow %s.",
				humanize(string(status)), humanize(string(current.Status)))))
		}

		a, err := application.Mutations.UpdateApplicationStatus(cmd.Context(), id, update)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		cmd.Printf("✓ %s is now %s\n", a.Applicant.FullName, badge(string(a.Status)))
		return nil
	},
}

// peekCandidate returns the cached application, if one was read before
func peekCandidate(application *app.App, id int64) (*models.Application, cache.Result, bool) {
	return resource.Peek[*models.Application](application.Resources, cache.CandidateDetail, resource.IDParams(id))
}

func init() {
	rootCmd.AddCommand(candidateCmd)
	candidateCmd.AddCommand(listCandidatesCmd, showCandidateCmd, timelineCmd, statusCmd)

	listCandidatesCmd.Flags().Int64("job", 0, "Only applications for this job ID")
	listCandidatesCmd.Flags().String("status", "", "Filter by pipeline status")
	listCandidatesCmd.Flags().Int("page", 1, "Page number")

	statusCmd.Flags().String("note", "", "Note shown in the candidate's timeline")
	statusCmd.Flags().String("at", "", "Interview time (RFC 3339)")
	statusCmd.Flags().String("type", "", "Interview type: online, onsite or phone")
	statusCmd.Flags().String("link", "", "Meeting link for online interviews")
	statusCmd.Flags().String("location", "", "Interview location for onsite interviews")
}
