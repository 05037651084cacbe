package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/hangar/internal/api"
	"github.com/zulandar/hangar/internal/maintenance"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and maintenance scheduler",
		Long: `Starts the report API and the scheduled statistics recalculation.
Both stop cleanly on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "API port (overrides api.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	e, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	if port == 0 {
		port = e.cfg.API.Port
	}

	sched, err := maintenance.New(e.svc, e.cfg.Maintenance.Schedule, e.log)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sched.Enabled() {
		fmt.Fprintf(cmd.OutOrStdout(), "Maintenance scheduled (%s), next run in %s\n",
			e.cfg.Maintenance.Schedule, sched.Next().Round(time.Second))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Start(gctx, api.StartOpts{
			Service: e.svc,
			Port:    port,
			Logger:  e.log,
			Out:     cmd.OutOrStdout(),
		})
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})

	err = g.Wait()
	e.log.Info("hangar stopped", "err", err)
	return err
}
