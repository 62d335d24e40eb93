package cmd

import (
	"fmt"
	"strings"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update configuration settings",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(titleStyle.Render("Configuration"))
		cmd.Printf("%s %s\n", labelStyle.Render("Config File:"), config.GetConfigPath())
		for _, key := range config.Keys() {
			value := config.Get(key)
			if strings.Contains(key, "redis_url") && strings.Contains(value, "@") {
				value = "✓ Configured (contains credentials)"
			}
			cmd.Printf("%s %s\n", labelStyle.Render(key+":"), value)
		}
	},
}

var settableKeys = []string{
	"api_url", "request_timeout", "log_level", "storage_driver", "redis_url", "redis_prefix",
	"cache.gc_after", "poll.chat_interval", "poll.profile_interval",
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a configuration value",
	Example: `  karir config set --key api_url --value https://api.karirnusantara.id/api/v1
  karir config set --key storage_driver --value redis
  karir config set --key cache.ttl.jobs --value 2m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" || value == "" {
			return fmt.Errorf("both --key and --value are required")
		}

		valid := strings.HasPrefix(key, "cache.ttl.")
		for _, k := range settableKeys {
			if k == key {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid key, must be one of: %s or cache.ttl.<resource>", strings.Join(settableKeys, ", "))
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("update config: %w", err)
		}
		cmd.Printf("✓ Configuration updated: %s\n", key)

		// Reload config
		if err := config.Initialize(); err != nil {
			cmd.PrintErrf("Warning: could not reload config: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	// Flags for set command
	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
