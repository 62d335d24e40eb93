package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent changes made from this machine",
	Long:  "List the mutations (job edits, status changes, payments, messages) recorded in the local journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if days, _ := cmd.Flags().GetInt("prune"); days > 0 {
			removed, err := application.Journal.Prune(ctx, time.Now().UTC().AddDate(0, 0, -days))
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			cmd.Printf("✓ Removed %d entries older than %d days\n", removed, days)
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := application.Journal.Recent(ctx, limit)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if len(entries) == 0 {
			cmd.Println("No changes recorded yet.")
			return nil
		}

		cmd.Println(titleStyle.Render("History"))
		for _, e := range entries {
			mark := successStyle.Render("✓")
			if !e.Succeeded {
				mark = errorStyle.Render("✗")
			}
			cmd.Printf("%s %s  %-26s %s\n", mark, mutedStyle.Render(formatDate(e.CreatedAt)), humanize(strings.ReplaceAll(e.Name, "-", " ")), e.Subject)
			if e.Error != "" {
				cmd.Printf("    %s\n", errorStyle.Render(e.Error))
			}
			if len(e.Invalidated) > 0 {
				cmd.Printf("    %s\n", mutedStyle.Render("refreshed "+strings.Join(e.Invalidated, ", ")))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Number of entries")
	historyCmd.Flags().Int("prune", 0, "Delete entries older than this many days instead of listing")
}
