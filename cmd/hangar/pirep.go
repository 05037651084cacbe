package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/models"
	"github.com/zulandar/hangar/internal/pirep"
)

func newPirepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pirep",
		Short: "Pilot report commands",
	}

	cmd.AddCommand(newPirepCreateCmd())
	cmd.AddCommand(newPirepTransitionCmd("file", "Mark a report as being flown", (*pirep.Service).File))
	cmd.AddCommand(newPirepTransitionCmd("submit", "Submit a report for review", (*pirep.Service).Submit))
	cmd.AddCommand(newPirepTransitionCmd("accept", "Accept a report", (*pirep.Service).Accept))
	cmd.AddCommand(newPirepTransitionCmd("reject", "Reject a report", (*pirep.Service).Reject))
	cmd.AddCommand(newPirepTransitionCmd("cancel", "Cancel a report", (*pirep.Service).Cancel))
	cmd.AddCommand(newPirepStateCmd())
	cmd.AddCommand(newPirepShowCmd())
	cmd.AddCommand(newPirepListCmd())
	cmd.AddCommand(newPirepRouteCmd())
	cmd.AddCommand(newPirepDupeCmd())
	return cmd
}

type pirepCreateFlags struct {
	pilotID         uint
	airlineID       uint
	aircraftID      uint
	flightID        string
	flightNumber    string
	dpt             string
	arr             string
	minutes         int
	distance        float64
	plannedDistance float64
	fuel            float64
	route           string
	notes           string
	start           bool
}

func (f pirepCreateFlags) report() *models.Pirep {
	p := &models.Pirep{
		PilotID:         f.pilotID,
		AirlineID:       f.airlineID,
		FlightNumber:    f.flightNumber,
		DptAirportID:    strings.ToUpper(f.dpt),
		ArrAirportID:    strings.ToUpper(f.arr),
		FlightTime:      f.minutes,
		Distance:        f.distance,
		PlannedDistance: f.plannedDistance,
		FuelUsed:        f.fuel,
		Route:           f.route,
		Notes:           f.notes,
	}
	if f.aircraftID != 0 {
		id := f.aircraftID
		p.AircraftID = &id
	}
	if f.flightID != "" {
		id := f.flightID
		p.FlightID = &id
	}
	return p
}

func newPirepCreateCmd() *cobra.Command {
	var (
		configPath string
		f          pirepCreateFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new report",
		Long:  "Creates a report in the pending state, or in progress with --start. Flight details are copied from --flight when omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPirepCreate(cmd, configPath, f)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().UintVar(&f.pilotID, "pilot", 0, "pilot ID (required)")
	cmd.Flags().UintVar(&f.airlineID, "airline", 0, "airline ID (required)")
	cmd.Flags().UintVar(&f.aircraftID, "aircraft", 0, "aircraft ID")
	cmd.Flags().StringVar(&f.flightID, "flight", "", "scheduled flight ID")
	cmd.Flags().StringVar(&f.flightNumber, "flight-number", "", "flight number")
	cmd.Flags().StringVar(&f.dpt, "dpt", "", "departure airport ICAO")
	cmd.Flags().StringVar(&f.arr, "arr", "", "arrival airport ICAO")
	cmd.Flags().IntVar(&f.minutes, "minutes", 0, "flight time in minutes")
	cmd.Flags().Float64Var(&f.distance, "distance", 0, "flown distance in nautical miles")
	cmd.Flags().Float64Var(&f.plannedDistance, "planned-distance", 0, "planned distance in nautical miles")
	cmd.Flags().Float64Var(&f.fuel, "fuel", 0, "fuel used in pounds")
	cmd.Flags().StringVar(&f.route, "route", "", "space-separated route")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&f.start, "start", false, "create the report in progress (prefile)")
	cmd.MarkFlagRequired("pilot")
	cmd.MarkFlagRequired("airline")
	return cmd
}

func runPirepCreate(cmd *cobra.Command, configPath string, f pirepCreateFlags) error {
	e, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.svc.Create(cmd.Context(), f.report(), pirep.CreateOpts{Start: f.start})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created report %s (%s)\n", p.ID, p.State)
	if p.Route != "" {
		fmt.Fprintf(out, "Route: %s\n", p.Route)
	}
	return nil
}

// newPirepTransitionCmd builds a command that applies one lifecycle
// operation to the report named by its argument.
func newPirepTransitionCmd(use, short string, op func(*pirep.Service, context.Context, string) (*models.Pirep, error)) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			p, err := op(e.svc, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report %s is now %s\n", p.ID, p.State)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func newPirepStateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "state <id> <state>",
		Short: "Move a report to any state the transition table allows",
		Long:  "Valid states: " + stateNames() + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			p, err := e.svc.ChangeState(cmd.Context(), args[0], models.PirepState(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report %s is now %s\n", p.ID, p.State)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func stateNames() string {
	names := make([]string, len(models.PirepStates))
	for i, s := range models.PirepStates {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func newPirepShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show report details",
		Long:  "Displays a report with its planned route and the number of recorded positions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPirepShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func runPirepShow(cmd *cobra.Command, configPath, id string) error {
	e, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	p, err := e.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	route, err := e.svc.Route(ctx, id)
	if err != nil {
		return err
	}
	positions, err := e.svc.Positions(ctx, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", p.ID)
	fmt.Fprintf(out, "State:       %s\n", p.State)
	fmt.Fprintf(out, "Pilot:       %d\n", p.PilotID)
	fmt.Fprintf(out, "Airline:     %d\n", p.AirlineID)
	if p.AircraftID != nil {
		fmt.Fprintf(out, "Aircraft:    %d\n", *p.AircraftID)
	}
	if p.FlightID != nil {
		fmt.Fprintf(out, "Flight:      %s (%s)\n", *p.FlightID, p.FlightNumber)
	} else if p.FlightNumber != "" {
		fmt.Fprintf(out, "Flight:      %s\n", p.FlightNumber)
	}
	fmt.Fprintf(out, "Route:       %s -> %s\n", orDash(p.DptAirportID), orDash(p.ArrAirportID))
	fmt.Fprintf(out, "Flight time: %s\n", formatMinutes(p.FlightTime))
	fmt.Fprintf(out, "Distance:    %.1f nmi (planned %.1f)\n", p.Distance, p.PlannedDistance)
	fmt.Fprintf(out, "Fuel used:   %.1f lbs\n", p.FuelUsed)
	fmt.Fprintf(out, "Created:     %s\n", formatTime(&p.CreatedAt))
	fmt.Fprintf(out, "Submitted:   %s\n", formatTime(p.SubmittedAt))
	if len(route) > 0 {
		fmt.Fprintf(out, "Waypoints:   %s\n", strings.Join(route, " "))
	}
	fmt.Fprintf(out, "Positions:   %d\n", len(positions))
	if p.Notes != "" {
		fmt.Fprintf(out, "\nNotes:\n%s\n", p.Notes)
	}
	return nil
}

func newPirepListCmd() *cobra.Command {
	var (
		configPath string
		pilotID    uint
		state      string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		Long:  "Lists reports newest first. Cancelled and deleted reports are hidden unless --state names them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPirepList(cmd, configPath, pirep.ListFilters{
				PilotID: pilotID,
				State:   models.PirepState(state),
				Limit:   limit,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().UintVar(&pilotID, "pilot", 0, "filter by pilot ID")
	cmd.Flags().StringVar(&state, "state", "", "filter by state")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of reports")
	return cmd
}

func runPirepList(cmd *cobra.Command, configPath string, filters pirep.ListFilters) error {
	e, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	reports, err := e.svc.List(cmd.Context(), filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPILOT\tFLIGHT\tDPT\tARR\tTIME\tSTATE\tCREATED")
	for _, p := range reports {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.PilotID, orDash(p.FlightNumber), orDash(p.DptAirportID), orDash(p.ArrAirportID),
			formatMinutes(p.FlightTime), p.State, formatTime(&p.CreatedAt))
	}
	w.Flush()
	return nil
}

func newPirepRouteCmd() *cobra.Command {
	var (
		configPath string
		set        string
		rebuild    bool
	)

	cmd := &cobra.Command{
		Use:   "route <id>",
		Short: "Show or replace a report's planned route",
		Long: `Without flags, prints the stored route points in order.
--set replaces the route string and its points; --rebuild regenerates the
points from the stored route string.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			var points []string
			switch {
			case cmd.Flags().Changed("set"):
				points, err = e.svc.UpdateRoute(ctx, args[0], set)
			case rebuild:
				points, err = e.svc.SaveRoute(ctx, args[0])
			default:
				points, err = e.svc.Route(ctx, args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(points) == 0 {
				fmt.Fprintln(out, "No route points.")
				return nil
			}
			for i, name := range points {
				fmt.Fprintf(out, "%3d  %s\n", i+1, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	cmd.Flags().StringVar(&set, "set", "", "replace the route with this space-separated string")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "rebuild route points from the stored route")
	return cmd
}

func newPirepDupeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "dupe <id>",
		Short: "Find the most recent report by the same pilot within the duplicate window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			p, err := e.svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			dup, err := e.svc.FindDuplicate(ctx, p)
			if errors.Is(err, apperr.ErrNotFound) {
				fmt.Fprintf(out, "No duplicate within %d minutes.\n", e.svc.Settings().Pireps.DuplicateCheckTime)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Duplicate: %s (%s, created %s)\n", dup.ID, dup.State, formatTime(&dup.CreatedAt))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Hangar config file")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
