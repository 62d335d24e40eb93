package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Display preferences",
}

var compactCmd = &cobra.Command{
	Use:       "compact [on|off|toggle]",
	Short:     "Use compact one-line listings",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		prefs := application.Preferences

		if len(args) == 1 {
			switch args[0] {
			case "on":
				prefs.SetCompact(true)
			case "off":
				prefs.SetCompact(false)
			case "toggle":
				prefs.ToggleCompact()
			default:
				return fmt.Errorf("unknown value %q, use on, off or toggle", args[0])
			}
		}

		state := "off"
		if prefs.Compact() {
			state = "on"
		}
		cmd.Printf("%s %s\n", labelStyle.Render("Compact mode:"), state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(compactCmd)
}
