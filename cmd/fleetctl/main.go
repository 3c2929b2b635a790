package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-insights/internal/analytics"
	"github.com/ukydev/fleet-insights/internal/models"
	"github.com/ukydev/fleet-insights/internal/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "fleetctl",
		Short: "Fleet insights - driver scores, vehicle health and fuel analytics",
		Long: `A CLI over the fleet analytics engine. Reads vehicles and trips from JSON
files (--vehicles, --trips) or live from the GPS API (--group, credentials
from API_BASE_URL, API_USERNAME and API_PASSWORD).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.vehiclesFile, "vehicles", "", "JSON file with the vehicle list")
	flags.StringVar(&opts.tripsFile, "trips", "", "JSON file with trips annotated with vehicleCode")
	flags.StringVarP(&opts.group, "group", "g", "", "Fleet group code to load from the GPS API")
	flags.StringVar(&opts.from, "from", "", "First day of the period (YYYY-MM-DD, default 6 days before --to)")
	flags.StringVar(&opts.to, "to", "", "Last day of the period (YYYY-MM-DD, default today)")
	flags.StringSliceVar(&opts.vehicleCodes, "vehicle", nil, "Restrict to vehicle codes (repeatable or comma separated)")
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format: table, json or yaml")
	flags.StringVar(&opts.now, "now", "", "Reference time (RFC3339), default the current time")

	rootCmd.AddCommand(groupsCmd(opts))
	rootCmd.AddCommand(driversCmd(opts))
	rootCmd.AddCommand(healthCmd(opts))
	rootCmd.AddCommand(fuelCmd(opts))
	rootCmd.AddCommand(alertsCmd(opts))
	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(economicsCmd(opts))
	rootCmd.AddCommand(positionsCmd(opts))
	rootCmd.AddCommand(digestCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	return rootCmd
}

// groupsCmd lists the fleet groups visible to the API account
func groupsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List fleet groups from the GPS API",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := opts.liveClient().Groups(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, groups, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "CODE\tNAME")
				for _, g := range groups {
					fmt.Fprintf(tw, "%s\t%s\n", g.Code, g.Name)
				}
			})
		},
	}
}

// driversCmd ranks drivers by safety score
func driversCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "Rank drivers by safety score",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			data, err := opts.load(cmd.Context(), now, true)
			if err != nil {
				return err
			}
			stats := analytics.ComputeDriverStats(data.Trips)
			return render(cmd.OutOrStdout(), opts.output, stats, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "RANK\tDRIVER\tVEHICLE\tTRIPS\tKM\tSPEEDING\tIDLE MIN\tFUEL/KM\tSCORE")
				for i, s := range stats {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.1f\t%d\t%d\t%.3f\t%d\n",
						i+1, s.Name, s.VehicleName, s.TotalTrips, s.TotalDistance, s.SpeedingEvents, s.IdleMinutes, s.FuelPerKm, s.Score)
				}
			})
		},
	}
}

// healthCmd scores vehicle health
func healthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Score vehicle health",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			data, err := opts.load(cmd.Context(), now, true)
			if err != nil {
				return err
			}
			health := analytics.ComputeVehicleHealth(data.Vehicles, data.Trips, now)
			summary := analytics.ComputeFleetHealthSummary(health)
			out := struct {
				Summary  models.FleetHealthSummary `json:"summary"`
				Vehicles []models.VehicleHealth    `json:"vehicles"`
			}{summary, health}
			return render(cmd.OutOrStdout(), opts.output, out, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "VEHICLE\tSPZ\tODOMETER\tLAST SEEN\tTRIPS\tL/100KM\tSPEEDING\tSCORE\tSTATUS")
				for _, h := range health {
					fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\t%d\t%.1f\t%d\t%d\t%s\n",
						h.VehicleName, h.VehicleSPZ, h.Odometer, h.LastSeen, h.TotalTrips, h.FuelEfficiency, h.SpeedingEvents, h.HealthScore, h.Status)
				}
				fmt.Fprintf(tw, "\nvehicles %d\tgood %d\twarning %d\tcritical %d\tavg score %.1f\n",
					summary.TotalVehicles, summary.GoodHealth, summary.WarningHealth, summary.CriticalHealth, summary.AvgHealthScore)
			})
		},
	}
}

// fuelCmd summarises fuel and cost
func fuelCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fuel",
		Short: "Summarise fuel consumption and cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			data, err := opts.load(cmd.Context(), now, true)
			if err != nil {
				return err
			}
			summary := analytics.ComputeFuelSummary(data.Trips)
			rows := analytics.ComputeVehicleFuelRows(data.Trips)
			daily := analytics.ComputeDailyFuel(data.Trips)
			out := struct {
				Summary  models.FuelSummary      `json:"summary"`
				Vehicles []models.VehicleFuelRow `json:"vehicles"`
				Daily    []models.DailyFuelPoint `json:"daily"`
			}{summary, rows, daily}
			return render(cmd.OutOrStdout(), opts.output, out, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "VEHICLE\tTRIPS\tFUEL L\tCOST\tKM\tL/100KM")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.0f\t%.1f\t%.1f\n", r.VehicleName, r.Trips, r.Fuel, r.Cost, r.Distance, r.Per100km)
				}
				fmt.Fprintf(tw, "\ntotal\t%d\t%.1f\t%.0f\t%.1f\t%.1f\n",
					summary.TotalTrips, summary.TotalFuel, summary.TotalCost, summary.TotalDistance, summary.AvgPer100km)
			})
		},
	}
}

// alertsCmd lists current vehicle alerts
func alertsCmd(opts *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List current vehicle alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			data, err := opts.load(cmd.Context(), now, false)
			if err != nil {
				return err
			}
			alerts := analytics.GenerateAlerts(data.Vehicles, now)
			if all {
				alerts = analytics.DetectAlerts(data.Vehicles, now)
			}
			return render(cmd.OutOrStdout(), opts.output, alerts, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "SEVERITY\tVEHICLE\tKIND\tMESSAGE\tSEEN")
				for _, a := range alerts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Severity, a.VehicleName, a.Kind, a.Message, a.Time)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Show every alert instead of the first five")
	return cmd
}

// statusCmd counts active, idle and offline vehicles
func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Count active, idle and offline vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			data, err := opts.load(cmd.Context(), now, false)
			if err != nil {
				return err
			}
			counts := analytics.CountStates(data.Vehicles)
			return render(cmd.OutOrStdout(), opts.output, counts, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "VEHICLE\tSTATE\tSPEED\tSEEN")
				for _, v := range data.Vehicles {
					fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\n", v.Name, analytics.Classify(v), analytics.EffectiveSpeed(v), analytics.FormatTimeSince(v.LastPositionTimestamp, now))
				}
				fmt.Fprintf(tw, "\ntotal %d\tactive %d\tidle %d\toffline %d\n", counts.Total, counts.Active, counts.Idle, counts.Offline)
			})
		},
	}
}

// economicsCmd summarises one vehicle
func economicsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "economics <vehicle-code>",
		Short: "Summarise the trips of one vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			v, trips, err := opts.vehicleTrips(cmd.Context(), args[0], now)
			if err != nil {
				return err
			}
			econ := analytics.ComputeVehicleEconomics(v, trips)
			daily := analytics.ComputeDailyUsage(trips)
			out := struct {
				Economics models.VehicleEconomics  `json:"economics"`
				Daily     []models.DailyUsagePoint `json:"daily"`
			}{econ, daily}
			return render(cmd.OutOrStdout(), opts.output, out, func(tw *tabwriter.Writer) {
				per100 := "n/a"
				if econ.FuelPer100km != nil {
					per100 = fmt.Sprintf("%.1f", *econ.FuelPer100km)
				}
				fmt.Fprintf(tw, "vehicle\t%s (%s)\n", econ.VehicleName, econ.VehicleCode)
				fmt.Fprintf(tw, "trips\t%d\n", econ.TotalTrips)
				fmt.Fprintf(tw, "distance km\t%.1f\n", econ.TotalDistance)
				fmt.Fprintf(tw, "fuel l\t%.1f\n", econ.TotalFuel)
				fmt.Fprintf(tw, "l/100km\t%s\n", per100)
				fmt.Fprintf(tw, "cost\t%.0f\n", econ.TotalCost)
				fmt.Fprintf(tw, "cost/km\t%.2f\n", econ.CostPerKm)
				fmt.Fprintf(tw, "drivers\t%s\n", strings.Join(econ.Drivers, ", "))
			})
		},
	}
}

// positionsCmd prints the recorded route of one vehicle
func positionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "positions <vehicle-code>",
		Short: "Show the position history of one vehicle from the GPS API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			period, err := opts.period(now)
			if err != nil {
				return err
			}
			code := args[0]
			history, err := opts.liveClient().PositionHistory(cmd.Context(), []string{code}, period.Start(), period.End())
			if err != nil {
				return err
			}
			var points []models.PositionPoint
			for _, vp := range history {
				if vp.VehicleCode == code {
					points = vp.Positions
				}
			}
			out := struct {
				Period    analytics.Period       `json:"period"`
				Summary   models.RouteSummary    `json:"summary"`
				Positions []models.PositionPoint `json:"positions"`
			}{period, analytics.SummarizeRoute(code, points), analytics.ValidPositions(points)}
			return render(cmd.OutOrStdout(), opts.output, out, func(tw *tabwriter.Writer) {
				s := out.Summary
				fmt.Fprintf(tw, "%s\t%d fixes\t%.1f km\tmax %.0f km/h\tavg %.0f km/h\n", s.VehicleCode, s.Points, s.DistanceKm, s.MaxSpeed, s.AvgSpeed)
				fmt.Fprintln(tw, "TIME\tLAT\tLNG\tSPEED")
				for _, p := range out.Positions {
					fmt.Fprintf(tw, "%s\t%.5f\t%.5f\t%.0f\n", p.Time, p.Lat.Float(), p.Lng.Float(), p.Speed.Float())
				}
			})
		},
	}
}

// digestCmd prints the payload sent to the insights endpoint
func digestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "digest <dashboard|drivers|health|fuel>",
		Short:     "Print the compact payload used for AI insights",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"dashboard", "drivers", "health", "fuel"},
		RunE: func(cmd *cobra.Command, args []string) error {
			module := models.InsightModule(args[0])
			if !models.IsValidInsightModule(module) {
				return fmt.Errorf("unknown module %q", args[0])
			}
			now, err := opts.clock()
			if err != nil {
				return err
			}
			data, err := opts.load(cmd.Context(), now, module != models.InsightDashboard)
			if err != nil {
				return err
			}
			digest := buildDigest(module, data, now)
			format := opts.output
			if format == "table" {
				format = "json"
			}
			return render(cmd.OutOrStdout(), format, digest, nil)
		},
	}
}

func buildDigest(module models.InsightModule, data *fleetData, now time.Time) map[string]any {
	switch module {
	case models.InsightDrivers:
		return analytics.DriversDigest(analytics.ComputeDriverStats(data.Trips))
	case models.InsightHealth:
		health := analytics.ComputeVehicleHealth(data.Vehicles, data.Trips, now)
		return analytics.HealthDigest(analytics.ComputeFleetHealthSummary(health), health)
	case models.InsightFuel:
		return analytics.FuelDigest(analytics.ComputeFuelSummary(data.Trips), analytics.ComputeVehicleFuelRows(data.Trips))
	default:
		return analytics.DashboardDigest(analytics.CountStates(data.Vehicles), analytics.GenerateAlerts(data.Vehicles, now))
	}
}

// exportCmd writes the XLSX workbook
func exportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export drivers, health, fuel and daily sheets to XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			data, err := opts.load(cmd.Context(), now, true)
			if err != nil {
				return err
			}
			f, err := report.Build(report.FromFleet(data.Vehicles, data.Trips, now))
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(args[0]); err != nil {
				return fmt.Errorf("save %s: %w", args[0], err)
			}
			log.WithFields(log.Fields{"file": args[0], "vehicles": len(data.Vehicles), "trips": len(data.Trips)}).Info("Report written")
			return nil
		},
	}
}
