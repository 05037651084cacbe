package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/hangar/internal/bid"
)

func newBidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bid",
		Short: "Flight bid commands",
	}

	cmd.AddCommand(newBidAddCmd())
	cmd.AddCommand(newBidRemoveCmd())
	cmd.AddCommand(newBidListCmd())
	return cmd
}

func newBidAddCmd() *cobra.Command {
	var (
		configPath string
		pilotID    uint
	)

	cmd := &cobra.Command{
		Use:   "add <flight-id>",
		Short: "Bid on a scheduled flight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			b, err := bid.Add(gormDB.WithContext(cmd.Context()), pilotID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pilot %d bid on flight %s\n", b.PilotID, b.FlightID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().UintVar(&pilotID, "pilot", 0, "pilot ID (required)")
	cmd.MarkFlagRequired("pilot")
	return cmd
}

func newBidRemoveCmd() *cobra.Command {
	var (
		configPath string
		pilotID    uint
	)

	cmd := &cobra.Command{
		Use:   "remove <flight-id>",
		Short: "Withdraw a bid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := bid.Remove(gormDB.WithContext(cmd.Context()), pilotID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed bid on flight %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().UintVar(&pilotID, "pilot", 0, "pilot ID (required)")
	cmd.MarkFlagRequired("pilot")
	return cmd
}

func newBidListCmd() *cobra.Command {
	var (
		configPath string
		pilotID    uint
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a pilot's bids",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			bids, err := bid.ListForPilot(gormDB.WithContext(cmd.Context()), pilotID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(bids) == 0 {
				fmt.Fprintln(out, "No bids found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FLIGHT\tNUMBER\tDPT\tARR\tSINCE")
			for _, b := range bids {
				number, dpt, arr := "-", "-", "-"
				if b.Flight != nil {
					number, dpt, arr = orDash(b.Flight.FlightNumber), orDash(b.Flight.DptAirportID), orDash(b.Flight.ArrAirportID)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.FlightID, number, dpt, arr, formatTime(&b.CreatedAt))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().UintVar(&pilotID, "pilot", 0, "pilot ID (required)")
	cmd.MarkFlagRequired("pilot")
	return cmd
}
