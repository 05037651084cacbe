package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zulandar/hangar/internal/pilot"
)

func newPilotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pilot",
		Short: "Pilot statistics commands",
	}

	cmd.AddCommand(newPilotShowCmd())
	cmd.AddCommand(newPilotRecalcCmd())
	return cmd
}

func parsePilotID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid pilot id %q", arg)
	}
	return uint(id), nil
}

func newPilotShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <pilot-id>",
		Short: "Show a pilot's statistics and rank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePilotID(args[0])
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			p, err := pilot.Get(gormDB.WithContext(cmd.Context()), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %d\n", p.ID)
			fmt.Fprintf(out, "Name:        %s\n", p.Name)
			fmt.Fprintf(out, "State:       %s\n", p.State)
			fmt.Fprintf(out, "Role:        %s\n", p.Role)
			rankName := "-"
			if p.Rank != nil {
				rankName = p.Rank.Name
			}
			fmt.Fprintf(out, "Rank:        %s\n", rankName)
			fmt.Fprintf(out, "Flights:     %d\n", p.Flights)
			fmt.Fprintf(out, "Flight time: %s\n", formatMinutes(p.FlightTime))
			if p.TransferTime > 0 {
				fmt.Fprintf(out, "Transfer:    %s\n", formatMinutes(p.TransferTime))
			}
			fmt.Fprintf(out, "Location:    %s\n", orDash(p.CurrAirportID))
			if p.LastPirepID != nil {
				fmt.Fprintf(out, "Last report: %s\n", *p.LastPirepID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func newPilotRecalcCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "recalc [pilot-id]",
		Short: "Rebuild pilot statistics and rank from accepted reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			gormDB := e.db.WithContext(cmd.Context())
			policy := e.svc.RankPolicy()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := parsePilotID(args[0])
				if err != nil {
					return err
				}
				p, err := pilot.Recalculate(gormDB, id, policy)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d flights, %s\n", p.Name, p.Flights, formatMinutes(p.FlightTime))
				return nil
			}

			res, err := pilot.RecalculateAll(gormDB, policy, e.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Recalculated %d pilots (%d failed)\n", res.Updated, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}
