package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/setting"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Runtime settings commands",
	}

	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsListCmd())
	return cmd
}

func newSettingsSetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Long:  "Stores a setting that overrides the config file. Keys: " + strings.Join(config.Keys(), ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := setting.Store(gormDB.WithContext(cmd.Context()), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func newSettingsListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List effective settings",
		Long:  "Lists every setting with its effective value and whether it comes from the database or the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			gormDB = gormDB.WithContext(cmd.Context())

			stored, err := setting.List(gormDB)
			if err != nil {
				return err
			}
			effective, err := setting.Load(gormDB, cfg.Settings)
			if err != nil {
				return err
			}
			fromDB := make(map[string]bool, len(stored))
			for _, s := range stored {
				fromDB[s.Key] = true
			}

			values := effective.Values()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
			for _, key := range config.Keys() {
				source := "config"
				if fromDB[key] {
					source = "database"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", key, values[key], source)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}
