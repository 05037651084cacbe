package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/db"
	"golang.org/x/term"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Hangar database",
		Long:  "Migrates all tables and seeds ranks and settings from the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to %s database %s\n", cfg.Database.Driver, databaseLabel(cfg))

	if err := migrateAndSeed(out, gormDB, cfg); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nHangar database initialized successfully.")
	return nil
}

func migrateAndSeed(out io.Writer, gormDB *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedRanks(gormDB, cfg.Ranks); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d ranks:", len(cfg.Ranks))
	for _, r := range cfg.Ranks {
		fmt.Fprintf(out, " %s", r.Name)
	}
	fmt.Fprintln(out)

	if err := db.SeedSettings(gormDB, cfg.Settings); err != nil {
		return err
	}
	fmt.Fprintln(out, "Settings written")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the Hangar database",
		Long: `Drops every Hangar table, then migrates and seeds again from config.

All reports, positions, bids and statistics are lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes || force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt (alias for --yes)")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	label := databaseLabel(cfg)

	if !skipConfirm {
		confirmed, err := confirmReset(cmd, label)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := db.DropAll(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Dropped all tables in %s\n", label)

	if err := migrateAndSeed(out, gormDB, cfg); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nHangar database reset and re-initialized successfully.")
	return nil
}

// confirmReset asks for an explicit "yes". A non-interactive stdin cannot
// confirm; use --yes in scripts.
func confirmReset(cmd *cobra.Command, label string) (bool, error) {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; pass --yes to reset %s", label)
	}

	fmt.Fprintf(out, "WARNING: This will permanently delete all data in %s.\n", label)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes", nil
	}
	return false, nil
}

func databaseLabel(cfg *config.Config) string {
	if cfg.Database.Driver == "sqlite" {
		return cfg.Database.Path
	}
	return fmt.Sprintf("%s@%s:%d", cfg.Database.Name, cfg.Database.Host, cfg.Database.Port)
}
