package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fcindex/fcindex/internal/config"
)

// newConfigCmd groups the user-config maintenance subcommands: persisting
// an effective configuration as the new user default, listing its
// backups, and restoring one.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage the user configuration file",
	}
	cmd.AddCommand(newConfigSaveCmd())
	cmd.AddCommand(newConfigBackupsCmd())
	cmd.AddCommand(newConfigRestoreCmd())
	return cmd
}

// newConfigSaveCmd resolves the effective configuration for a directory
// (defaults + user config + project config + env overrides) and writes it
// as the new user default, backing up whatever was there first.
func newConfigSaveCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Persist the effective configuration for --dir as the user default",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}

			if backupPath, err := config.BackupUserConfig(); err != nil {
				return fmt.Errorf("backing up existing user config: %w", err)
			} else if backupPath != "" {
				fmt.Printf("[INFO] backed up existing user config to %s\n", backupPath)
			}

			if err := os.MkdirAll(config.GetUserConfigDir(), 0o755); err != nil {
				return fmt.Errorf("creating user config directory: %w", err)
			}
			userPath := config.GetUserConfigPath()
			if err := cfg.WriteYAML(userPath); err != nil {
				return err
			}
			fmt.Printf("[INFO] wrote user config to %s\n", userPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory whose effective config to persist as the user default")
	return cmd
}

// newConfigBackupsCmd lists the timestamped backups BackupUserConfig has
// accumulated, newest first.
func newConfigBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List timestamped backups of the user config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := config.ListUserConfigBackups()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println("[INFO] no backups found")
				return nil
			}
			for _, b := range backups {
				fmt.Println(b)
			}
			return nil
		},
	}
}

// newConfigRestoreCmd restores the user config from a named backup file,
// itself backing up whatever the current user config is first.
func newConfigRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-path>",
		Short: "Restore the user config from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RestoreUserConfig(args[0]); err != nil {
				return err
			}
			fmt.Printf("[INFO] restored user config from %s\n", args[0])
			return nil
		},
	}
}
