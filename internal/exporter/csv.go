// Package exporter writes report tables and the alert feed to CSV.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"fleetsmart/internal/alerts"
	"fleetsmart/internal/analytics"
)

// CSVWriter provides CSV export functionality rooted at the reports
// directory.
type CSVWriter struct {
	reportsDir string
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(reportsDir string) *CSVWriter {
	return &CSVWriter{reportsDir: reportsDir}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(fileName string, options WriteOptions) error {
	fullPath := w.resolvePath(fileName)

	slog.Info("Writing CSV file",
		slog.String("file_name", fileName),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteSimpleCSV writes a simple CSV file with headers and records
func (w *CSVWriter) WriteSimpleCSV(fileName string, headers []string, records [][]string) error {
	return w.WriteCSV(fileName, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteAlerts exports the alert feed, preserving severity order
func (w *CSVWriter) WriteAlerts(fileName string, feed []alerts.Alert) error {
	headers := []string{"id", "severity", "title", "message", "metric", "source", "timestamp"}
	records := make([][]string, 0, len(feed))
	for _, a := range feed {
		records = append(records, []string{
			a.ID,
			string(a.Severity),
			a.Title,
			a.Message,
			a.Metric,
			a.Source,
			a.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	return w.WriteSimpleCSV(fileName, headers, records)
}

// WriteDriverScores exports the driver leaderboard
func (w *CSVWriter) WriteDriverScores(fileName string, scores []analytics.DriverScore) error {
	headers := []string{"driver_id", "name", "score", "revenue", "average_mpg", "on_time_rate", "idle_hours", "incident_count"}
	records := make([][]string, 0, len(scores))
	for _, s := range scores {
		records = append(records, []string{
			strconv.Itoa(s.DriverID),
			s.Name,
			formatFloat(s.Score),
			formatFloat(s.Revenue),
			formatFloat(s.AverageMPG),
			formatFloat(s.OnTimeRate),
			formatFloat(s.IdleHours),
			strconv.Itoa(s.IncidentCount),
		})
	}
	return w.WriteSimpleCSV(fileName, headers, records)
}

// WriteRouteProfitability exports the route financial rollup
func (w *CSVWriter) WriteRouteProfitability(fileName string, routes []analytics.RouteProfitability) error {
	headers := []string{"route_name", "loads", "total_revenue", "total_profit", "profit_margin", "category"}
	records := make([][]string, 0, len(routes))
	for _, r := range routes {
		records = append(records, []string{
			r.RouteName,
			strconv.Itoa(r.Loads),
			formatFloat(r.TotalRevenue),
			formatFloat(r.TotalProfit),
			formatFloat(r.ProfitMargin),
			r.Category,
		})
	}
	return w.WriteSimpleCSV(fileName, headers, records)
}

// WriteTruckRisks exports the maintenance risk board
func (w *CSVWriter) WriteTruckRisks(fileName string, risks []analytics.TruckRisk) error {
	headers := []string{"truck_id", "unit_number", "age", "odometer", "risk"}
	records := make([][]string, 0, len(risks))
	for _, r := range risks {
		records = append(records, []string{
			strconv.Itoa(r.TruckID),
			r.UnitNumber,
			strconv.Itoa(r.Age),
			formatFloat(r.Odometer),
			string(r.Risk),
		})
	}
	return w.WriteSimpleCSV(fileName, headers, records)
}

// WriteMonthlyFinancials exports the revenue-versus-cost trend
func (w *CSVWriter) WriteMonthlyFinancials(fileName string, months []analytics.MonthlyFinancial) error {
	headers := []string{"month", "revenue", "cost", "profit", "loads"}
	records := make([][]string, 0, len(months))
	for _, m := range months {
		records = append(records, []string{
			m.Month.Format("2006-01"),
			formatFloat(m.Revenue),
			formatFloat(m.Cost),
			formatFloat(m.Profit),
			strconv.Itoa(m.Loads),
		})
	}
	return w.WriteSimpleCSV(fileName, headers, records)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// resolvePath anchors relative file names at the reports directory
func (w *CSVWriter) resolvePath(fileName string) string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(w.reportsDir, fileName)
}
