package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/app"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long:  "Browse jobs and candidates interactively and act on them",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		return runTUI(cmd.Context(), application, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// errQuit leaves the TUI from any screen
var errQuit = errors.New("quit")

type tui struct {
	ctx    context.Context
	app    *app.App
	reader *bufio.Reader
	out    io.Writer
}

func runTUI(ctx context.Context, application *app.App, in io.Reader, out io.Writer) error {
	t := &tui{ctx: ctx, app: application, reader: bufio.NewReader(in), out: out}
	err := t.jobList()
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (t *tui) printf(format string, a ...any) {
	fmt.Fprintf(t.out, format, a...)
}

func (t *tui) ask() (string, error) {
	t.printf("\n> ")
	line, err := t.reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", err
	}
	if line == "q" || line == "Q" {
		return "", errQuit
	}
	return line, nil
}

func pick(input string, n int) (int, bool) {
	i, err := strconv.Atoi(input)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func (t *tui) jobList() error {
	for {
		list, err := t.app.Resources.Jobs(t.ctx, nil)
		if err != nil {
			return err
		}
		if len(list.Jobs) == 0 {
			t.printf("No jobs found. Create one with 'karir job create'\n")
			return nil
		}

		t.printf("%s\n", titleStyle.Render("Job Browser"))
		t.printf("Press 'q' to quit, or enter a job number to view details\n\n")
		for i, job := range list.Jobs {
			t.printf("%d. %s %s\n", i+1, job.Title, badge(string(job.Status)))
		}

		input, err := t.ask()
		if err != nil {
			return err
		}
		i, ok := pick(input, len(list.Jobs))
		if !ok {
			t.printf("Invalid selection\n")
			continue
		}
		if err := t.jobDetails(list.Jobs[i].ID); err != nil {
			return err
		}
	}
}

func (t *tui) jobDetails(id int64) error {
	for {
		job, err := t.app.Resources.Job(t.ctx, id)
		if err != nil {
			return err
		}

		t.printf("\n%s\n", strings.Repeat("=", 60))
		t.printf("%s\n", titleStyle.Render(job.Title))
		t.printf("%s %s\n", labelStyle.Render("Status:"), badge(string(job.Status)))
		t.printf("%s %s\n", labelStyle.Render("Location:"), jobLocation(*job))
		t.printf("%s %d\n", labelStyle.Render("Applicants:"), job.ApplicationCount)

		t.printf("\nOptions:\n")
		t.printf("  [c] Candidates\n")
		switch job.Status {
		case models.JobDraft, models.JobPaused:
			t.printf("  [p] Publish\n")
		case models.JobActive:
			t.printf("  [s] Pause\n  [x] Close\n")
		case models.JobClosed:
			t.printf("  [r] Reopen\n")
		}
		t.printf("  [b] Back to list\n")

		choice, err := t.ask()
		if err != nil {
			return err
		}

		var action api.JobAction
		switch strings.ToLower(choice) {
		case "c":
			if err := t.candidates(job.ID); err != nil {
				return err
			}
			continue
		case "p":
			action = api.JobPublish
		case "s":
			action = api.JobPause
		case "x":
			action = api.JobClose
		case "r":
			action = api.JobReopen
		case "b":
			return nil
		default:
			t.printf("Invalid choice\n")
			continue
		}

		updated, err := t.app.Mutations.TransitionJob(t.ctx, job.ID, action)
		if err != nil {
			if apiErr, ok := api.AsAPIError(err); ok {
				if pr, ok := apiErr.PaymentRequired(); ok {
					printPaymentRequired(t.out, pr)
					continue
				}
				t.printf("%s %s\n", errorStyle.Render("Error:"), apiErr.Message)
				continue
			}
			return err
		}
		t.printf("✓ %s is now %s\n", updated.Title, badge(string(updated.Status)))
	}
}

func (t *tui) candidates(jobID int64) error {
	for {
		list, err := t.app.Resources.Candidates(t.ctx, params.Params{"job_id": jobID})
		if err != nil {
			return err
		}
		if len(list.Applications) == 0 {
			t.printf("No applicants yet.\n")
			return nil
		}

		t.printf("%s\n", titleStyle.Render("Candidates"))
		for i, a := range list.Applications {
			t.printf("%d. %s %s\n", i+1, a.Applicant.FullName, badge(string(a.Status)))
		}
		t.printf("Enter a number to change status, or 'b' to go back\n")

		input, err := t.ask()
		if err != nil {
			return err
		}
		if input == "b" {
			return nil
		}
		i, ok := pick(input, len(list.Applications))
		if !ok {
			t.printf("Invalid selection\n")
			continue
		}
		if err := t.moveCandidate(list.Applications[i]); err != nil {
			return err
		}
	}
}

func (t *tui) moveCandidate(a models.Application) error {
	next := models.NextStatuses(a.Status)
	if len(next) == 0 {
		t.printf("%s is %s; no further stages.\n", a.Applicant.FullName, humanize(string(a.Status)))
		return nil
	}
	for i, s := range next {
		t.printf("%d. %s\n", i+1, humanize(string(s)))
	}

	input, err := t.ask()
	if err != nil {
		return err
	}
	i, ok := pick(input, len(next))
	if !ok {
		t.printf("Invalid selection\n")
		return nil
	}

	updated, err := t.app.Mutations.UpdateApplicationStatus(t.ctx, a.ID, models.StatusUpdate{Status: next[i]})
	if err != nil {
		if apiErr, ok := api.AsAPIError(err); ok {
			t.printf("%s %s\n", errorStyle.Render("Error:"), apiErr.Message)
			return nil
		}
		return err
	}
	t.printf("✓ %s is now %s\n", updated.Applicant.FullName, badge(string(updated.Status)))
	return nil
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
