package cmd

import (
	"fmt"
	"strings"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage job postings",
	Long:  "Create, edit, publish and close the company's job postings",
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List job postings",
	Example: `  karir job list
  karir job list --status active --search engineer`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		p := params.Params{"status": status, "search": search}
		if page > 1 {
			p["page"] = page
		}

		list, err := application.Resources.Jobs(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("fetch jobs: %w", err)
		}
		if len(list.Jobs) == 0 {
			cmd.Println("No jobs found. Create one with 'karir job create'")
			return nil
		}

		compact := application.Preferences.Compact()
		cmd.Println(titleStyle.Render("Job Postings"))
		for _, job := range list.Jobs {
			if compact {
				cmd.Printf("%4d  %-40s %s\n", job.ID, job.Title, badge(string(job.Status)))
				continue
			}
			cmd.Printf("\n%s %s %s\n", labelStyle.Render(fmt.Sprintf("%d.", job.ID)), job.Title, badge(string(job.Status)))
			cmd.Printf("   %s %s\n", labelStyle.Render("Location:"), jobLocation(job))
			cmd.Printf("   %s %s, %s\n", labelStyle.Render("Type:"), humanize(job.JobType), humanize(job.ExperienceLevel))
			cmd.Printf("   %s %d applicants, %d views\n", labelStyle.Render("Reach:"), job.ApplicationCount, job.ViewsCount)
		}
		pg := list.Pagination
		if pg.TotalPages > 1 {
			cmd.Println(mutedStyle.Render(fmt.Sprintf("\nPage %d of %d (%d jobs)", pg.Page, pg.TotalPages, pg.Total)))
		}
		return nil
	},
}

func jobLocation(job models.Job) string {
	loc := job.City
	if job.Province != "" {
		loc += ", " + job.Province
	}
	if job.IsRemote {
		loc += " (remote)"
	}
	return loc
}

var showJobCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show details of a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}

		job, err := application.Resources.Job(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch job: %w", err)
		}

		cmd.Println(titleStyle.Render(job.Title))
		cmd.Printf("%s %s\n", labelStyle.Render("Status:"), badge(string(job.Status)))
		cmd.Printf("%s %s\n", labelStyle.Render("Location:"), jobLocation(*job))
		cmd.Printf("%s %s\n", labelStyle.Render("Type:"), humanize(job.JobType))
		cmd.Printf("%s %s\n", labelStyle.Render("Level:"), humanize(job.ExperienceLevel))
		if job.SalaryMin != nil || job.SalaryMax != nil {
			cmd.Printf("%s %s\n", labelStyle.Render("Salary:"), salaryRange(job))
		}
		if len(job.Skills) > 0 {
			cmd.Printf("%s %s\n", labelStyle.Render("Skills:"), strings.Join(job.Skills, ", "))
		}
		cmd.Printf("%s %d applicants, %d views\n", labelStyle.Render("Reach:"), job.ApplicationCount, job.ViewsCount)
		if job.PublishedAt != nil {
			cmd.Printf("%s %s\n", labelStyle.Render("Published:"), formatDate(*job.PublishedAt))
		}
		if job.ClosedAt != nil {
			cmd.Printf("%s %s\n", labelStyle.Render("Closed:"), formatDate(*job.ClosedAt))
		}

		for _, section := range []struct{ label, body string }{
			{"Description:", job.Description},
			{"Requirements:", job.Requirements},
			{"Responsibilities:", job.Responsibilities},
		} {
			if section.body != "" {
				cmd.Println(labelStyle.Render("\n" + section.label))
				cmd.Println(section.body)
			}
		}
		return nil
	},
}

func salaryRange(job *models.Job) string {
	switch {
	case job.SalaryMin != nil && job.SalaryMax != nil:
		return rupiah(*job.SalaryMin) + " - " + rupiah(*job.SalaryMax)
	case job.SalaryMin != nil:
		return "from " + rupiah(*job.SalaryMin)
	default:
		return "up to " + rupiah(*job.SalaryMax)
	}
}

// jobInputFromFlags overlays the changed flags onto base
func jobInputFromFlags(flags *pflag.FlagSet, base models.JobInput) models.JobInput {
	in := base
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("title", &in.Title)
	str("description", &in.Description)
	str("requirements", &in.Requirements)
	str("responsibilities", &in.Responsibilities)
	str("city", &in.City)
	str("province", &in.Province)
	str("type", &in.JobType)
	str("level", &in.ExperienceLevel)
	if flags.Changed("remote") {
		in.IsRemote, _ = flags.GetBool("remote")
	}
	if flags.Changed("show-salary") {
		in.IsSalaryVisible, _ = flags.GetBool("show-salary")
	}
	if flags.Changed("salary-min") {
		v, _ := flags.GetInt64("salary-min")
		in.SalaryMin = &v
	}
	if flags.Changed("salary-max") {
		v, _ := flags.GetInt64("salary-max")
		in.SalaryMax = &v
	}
	if flags.Changed("skills") {
		in.Skills, _ = flags.GetStringSlice("skills")
	}
	return in
}

func inputFromJob(job *models.Job) models.JobInput {
	return models.JobInput{
		Title: job.Title, Description: job.Description, Requirements: job.Requirements,
		Responsibilities: job.Responsibilities, City: job.City, Province: job.Province,
		IsRemote: job.IsRemote, JobType: job.JobType, ExperienceLevel: job.ExperienceLevel,
		SalaryMin: job.SalaryMin, SalaryMax: job.SalaryMax, IsSalaryVisible: job.IsSalaryVisible,
		Skills: job.Skills,
	}
}

var createJobCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft job posting",
	Example: `  karir job create --title "Backend Engineer" --city Jakarta --type full_time --level mid \
    --description "Build and run the services behind our marketplace" --skills go,postgresql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}

		in := jobInputFromFlags(cmd.Flags(), models.JobInput{})
		if err := validateInput(in); err != nil {
			return err
		}

		job, err := application.Mutations.CreateJob(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		cmd.Printf("✓ Draft created: %s (ID: %d)\n", job.Title, job.ID)
		cmd.Printf("Publish it with 'karir job publish %d'\n", job.ID)
		return nil
	},
}

var updateJobCmd = &cobra.Command{
	Use:   "update <job-id>",
	Short: "Edit a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}

		current, err := application.Resources.Job(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch job: %w", err)
		}
		in := jobInputFromFlags(cmd.Flags(), inputFromJob(current))
		if err := validateInput(in); err != nil {
			return err
		}

		job, err := application.Mutations.UpdateJob(cmd.Context(), id, in)
		if err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		cmd.Printf("✓ Job updated: %s\n", job.Title)
		return nil
	},
}

var deleteJobCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := authedApp(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}

		if err := application.Mutations.DeleteJob(cmd.Context(), id); err != nil {
			if api.IsNotFound(err) {
				return fmt.Errorf("job %d not found", id)
			}
			return fmt.Errorf("delete job: %w", err)
		}
		cmd.Printf("✓ Deleted job %d\n", id)
		return nil
	},
}

var transitionVerbs = map[api.JobAction]struct{ short, done string }{
	api.JobPublish: {"Publish a draft or paused job (uses one quota credit)", "Published"},
	api.JobClose:   {"Close a job to new applicants", "Closed"},
	api.JobPause:   {"Pause a job temporarily", "Paused"},
	api.JobReopen:  {"Reopen a closed job", "Reopened"},
}

func transitionCmd(action api.JobAction) *cobra.Command {
	verb := transitionVerbs[action]
	c := &cobra.Command{
		Use:   string(action) + " <job-id>",
		Short: verb.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := authedApp(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}

			if action == api.JobPublish {
				if err := application.RequireVerified(); err != nil {
					if force, _ := cmd.Flags().GetBool("force"); !force {
						return fmt.Errorf("%w; finish verification with 'karir profile update' or pass --force", err)
					}
					cmd.Println(mutedStyle.Render("Note: the company is not verified yet; the server may refuse to publish."))
				}
			}

			job, err := application.Mutations.TransitionJob(cmd.Context(), id, action)
			if err != nil {
				return err
			}
			cmd.Printf("✓ %s: %s %s\n", verb.done, job.Title, badge(string(job.Status)))
			return nil
		},
	}
	if action == api.JobPublish {
		c.Flags().Bool("force", false, "Publish even though the company is not verified")
	}
	return c
}

func addJobFlags(f *pflag.FlagSet) {
	f.String("title", "", "Job title")
	f.String("description", "", "Job description")
	f.String("requirements", "", "Requirements")
	f.String("responsibilities", "", "Responsibilities")
	f.String("city", "", "City")
	f.String("province", "", "Province")
	f.Bool("remote", false, "Remote friendly")
	f.String("type", "", "full_time, part_time, contract, internship or freelance")
	f.String("level", "", "entry, junior, mid, senior, lead or executive")
	f.Int64("salary-min", 0, "Minimum monthly salary in rupiah")
	f.Int64("salary-max", 0, "Maximum monthly salary in rupiah")
	f.Bool("show-salary", false, "Show the salary range to applicants")
	f.StringSlice("skills", nil, "Comma separated skills")
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(listJobsCmd, showJobCmd, createJobCmd, updateJobCmd, deleteJobCmd)
	for _, action := range []api.JobAction{api.JobPublish, api.JobClose, api.JobPause, api.JobReopen} {
		jobCmd.AddCommand(transitionCmd(action))
	}

	listJobsCmd.Flags().String("status", "", "Filter by status: draft, active, paused, closed")
	listJobsCmd.Flags().String("search", "", "Search titles")
	listJobsCmd.Flags().Int("page", 1, "Page number")

	addJobFlags(createJobCmd.Flags())
	addJobFlags(updateJobCmd.Flags())
}
