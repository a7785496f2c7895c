package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fleetsmart/internal/alerts"
	"fleetsmart/internal/analytics"
	"fleetsmart/internal/cleaning"
	"fleetsmart/internal/config"
	"fleetsmart/internal/exporter"
	"fleetsmart/internal/infrastructure"
	"fleetsmart/internal/pipeline"
	"fleetsmart/internal/tablestore"
)

func main() {
	configPath := flag.String("config", "fleet.yaml", "path to the YAML configuration file")
	dataDir := flag.String("data", "", "directory of raw table files (overrides config)")
	outputDir := flag.String("out", "", "output directory for report CSVs (overrides config)")
	search := flag.String("search", "", "fuzzy driver name lookup instead of a full report run")
	export := flag.Bool("export", true, "write report CSVs in addition to the console summary")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outputDir != "" {
		cfg.Paths.ReportsDir = *outputDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	windowStart, windowEnd, err := cfg.Analysis.Window()
	if err != nil {
		logger.Error("Invalid analysis window", "error", err)
		os.Exit(1)
	}

	store := tablestore.NewStore(cfg.Paths.DataDir, logger)
	raw := store.LoadAll()
	if len(raw) == 0 {
		logger.Error("No source tables found", "data_dir", cfg.Paths.DataDir)
		os.Exit(1)
	}

	cleaner := cleaning.NewCleaner(logger)
	cleaned, reports := cleaner.CleanAll(raw)
	for name, report := range reports {
		if report.Changed() {
			logger.Info("Table cleaned",
				"table", name,
				"rows_in", report.RowsIn,
				"rows_out", report.RowsOut,
				"imputed_cells", report.ImputedCells,
				"duplicates_removed", report.DuplicatesRemoved)
		}
	}

	pipe := pipeline.New(cleaned, pipeline.Window{Start: windowStart, End: windowEnd}, logger)

	engineCfg := analytics.DefaultConfig()
	engineCfg.MinRouteTrips = cfg.Analysis.MinRouteTrips
	engineCfg.TopN = cfg.Analysis.TopN
	engine := analytics.NewEngine(pipe, engineCfg, logger)

	if *search != "" {
		runSearch(engine, *search)
		return
	}

	printReport(engine)

	feed := alerts.NewAggregator(alerts.DefaultThresholds(), logger).Evaluate(engine)
	printAlerts(feed)

	if *export {
		if err := exportReports(cfg, engine, feed); err != nil {
			logger.Error("Failed to export reports", "error", err)
			os.Exit(1)
		}
		logger.Info("Reports written", "reports_dir", cfg.Paths.ReportsDir)
	}
}

func runSearch(engine *analytics.Engine, query string) {
	matches := engine.SearchDrivers(query)
	if len(matches) == 0 {
		fmt.Printf("No drivers matching %q\n", query)
		return
	}
	fmt.Printf("Drivers matching %q:\n", query)
	for _, m := range matches {
		fmt.Printf("  %-6d %-30s similarity %.2f\n", m.DriverID, m.Name, m.Similarity)
	}
}

func printReport(engine *analytics.Engine) {
	financial := engine.FinancialKPIs()
	fmt.Println("=== Financial ===")
	fmt.Printf("Revenue: $%.2f  Profit: $%.2f  Margin: %.2f%%  Loads: %d\n",
		financial.TotalRevenue, financial.TotalProfit, financial.ProfitMargin, financial.TotalLoads)
	if best, worst, ok := engine.BestAndWorstMonths(); ok {
		fmt.Printf("Best month: %s ($%.2f profit)  Worst month: %s ($%.2f profit)\n",
			best.Month.Format("2006-01"), best.Profit, worst.Month.Format("2006-01"), worst.Profit)
	}

	operational := engine.OperationalKPIs()
	fmt.Println("=== Operations ===")
	fmt.Printf("On-time: %.2f%%  Utilization: %.2f%%  Fleet MPG: %.2f  Idle: %.2f hrs  Trucks: %d\n",
		operational.OnTimeRate, operational.FleetUtilization, operational.FleetMPG,
		operational.AverageIdleHours, operational.UniqueTrucks)

	fmt.Println("=== Top drivers ===")
	for i, s := range engine.TopDrivers() {
		fmt.Printf("%d. %-30s score %.1f (revenue $%.0f, MPG %.1f, incidents %d)\n",
			i+1, s.Name, s.Score, s.Revenue, s.AverageMPG, s.IncidentCount)
	}

	fmt.Println("=== Maintenance risk ===")
	for _, r := range engine.MaintenanceRisk() {
		if r.Risk == analytics.RiskLow {
			continue
		}
		fmt.Printf("%-8s unit %-10s (%.0f miles, %d years)\n",
			r.Risk, r.UnitNumber, r.Odometer, r.Age)
	}
}

func printAlerts(feed []alerts.Alert) {
	fmt.Println("=== Alerts ===")
	if len(feed) == 0 {
		fmt.Println("No active alerts")
		return
	}
	for _, a := range feed {
		fmt.Printf("[%s] %s: %s\n", a.Severity, a.Title, a.Message)
	}
}

func exportReports(cfg *config.Config, engine *analytics.Engine, feed []alerts.Alert) error {
	w := exporter.NewCSVWriter(cfg.Paths.ReportsDir)

	if err := w.WriteAlerts("alerts.csv", feed); err != nil {
		return err
	}
	if err := w.WriteDriverScores("driver_scores.csv", engine.DriverScores()); err != nil {
		return err
	}
	if err := w.WriteRouteProfitability("route_profitability.csv", engine.RouteProfitability()); err != nil {
		return err
	}
	if err := w.WriteTruckRisks("truck_risks.csv", engine.MaintenanceRisk()); err != nil {
		return err
	}
	return w.WriteMonthlyFinancials("monthly_financials.csv", engine.MonthlyFinancials())
}
