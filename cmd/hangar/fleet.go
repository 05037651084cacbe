package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/hangar/internal/aircraft"
	"github.com/zulandar/hangar/internal/logging"
)

func newFleetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Aircraft commands",
	}

	cmd.AddCommand(newFleetShowCmd())
	cmd.AddCommand(newFleetRecalcCmd())
	return cmd
}

func newFleetShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show [aircraft-id]",
		Short: "Show one aircraft, or the whole fleet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			gormDB = gormDB.WithContext(cmd.Context())
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid aircraft id %q", args[0])
				}
				a, err := aircraft.Get(gormDB, uint(id))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "ID:           %d\n", a.ID)
				fmt.Fprintf(out, "Registration: %s\n", a.Registration)
				fmt.Fprintf(out, "Type:         %s\n", orDash(a.ICAO))
				fmt.Fprintf(out, "Location:     %s\n", orDash(a.AirportID))
				fmt.Fprintf(out, "Flight time:  %s\n", formatMinutes(a.FlightTime))
				return nil
			}

			fleet, err := aircraft.List(gormDB)
			if err != nil {
				return err
			}
			if len(fleet) == 0 {
				fmt.Fprintln(out, "No aircraft found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREG\tTYPE\tLOCATION\tHOURS")
			for _, a := range fleet {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.Registration, orDash(a.ICAO), orDash(a.AirportID), formatMinutes(a.FlightTime))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func newFleetRecalcCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "recalc [aircraft-id]",
		Short: "Rebuild aircraft flight time and location from accepted reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			gormDB = gormDB.WithContext(cmd.Context())
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid aircraft id %q", args[0])
				}
				a, err := aircraft.Recalculate(gormDB, uint(id))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s at %s\n", a.Registration, formatMinutes(a.FlightTime), orDash(a.AirportID))
				return nil
			}

			log, closer, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()
			res, err := aircraft.RecalculateAll(gormDB, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Recalculated %d aircraft (%d failed)\n", res.Updated, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}
