package tablestore

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "fleetsmart/internal/errors"
)

// TableNames is the fixed set of source tables the engine knows about.
// A missing table is tolerated, not fatal.
var TableNames = []string{
	"drivers", "trucks", "trailers", "customers",
	"facilities", "routes", "loads", "trips",
	"fuel_purchases", "maintenance_records",
	"delivery_events", "safety_incidents",
	"driver_monthly_metrics", "truck_utilization_metrics",
}

// Store loads named raw tables from a data directory. Each table is read
// from <name>.csv, falling back to <name>.xlsx.
type Store struct {
	dataDir string
	logger  *slog.Logger
}

// NewStore creates a raw table store rooted at dataDir
func NewStore(dataDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dataDir: dataDir, logger: logger}
}

// LoadAll loads every known table that exists on disk. Absent or unreadable
// tables are logged and skipped; the returned map holds only what loaded.
func (s *Store) LoadAll() map[string]*Table {
	tables := make(map[string]*Table, len(TableNames))

	for _, name := range TableNames {
		table, err := s.Load(name)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrTypeMissingTable) {
				s.logger.Warn("source table not found", "table", name)
			} else {
				s.logger.Warn("failed to load source table", "table", name, "error", err)
			}
			continue
		}
		s.logger.Info("loaded source table",
			"table", name,
			"rows", table.NumRows(),
			"columns", table.NumColumns(),
		)
		tables[name] = table
	}

	return tables
}

// Load reads a single named table from disk
func (s *Store) Load(name string) (*Table, error) {
	csvPath := filepath.Join(s.dataDir, name+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		return s.loadCSV(name, csvPath)
	}

	xlsxPath := filepath.Join(s.dataDir, name+".xlsx")
	if _, err := os.Stat(xlsxPath); err == nil {
		return s.loadXLSX(name, xlsxPath)
	}

	return nil, apperrors.MissingTableError(name)
}

func (s *Store) loadCSV(name, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.ParsingError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.ParsingError(path, err)
	}

	return buildTable(name, records)
}

func (s *Store) loadXLSX(name, path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.ParsingError(path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ParsingError(path, fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.ParsingError(path, err)
	}

	return buildTable(name, rows)
}

// buildTable converts a header row plus data rows into a typed Table.
// Column kinds are inferred: a column whose non-empty cells all parse as
// numbers becomes numeric, everything else stays text. Date columns stay
// textual here; coercion to time is the cleaner's job.
func buildTable(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, apperrors.MissingTableError(name)
	}

	header := records[0]
	data := records[1:]

	columns := make([]Column, len(header))
	for i, h := range header {
		columns[i] = Column{Name: h, Kind: inferKind(data, i)}
	}

	table := &Table{Name: name, Columns: columns, Rows: make([]Row, 0, len(data))}
	for _, record := range data {
		row := make(Row, len(columns))
		for i, col := range columns {
			var cell string
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			row[i] = parseCell(cell, col.Kind)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func inferKind(data [][]string, col int) Kind {
	for _, record := range data {
		if col >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[col])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return KindText
		}
	}
	// A column with no values at all is numeric: an all-null text column
	// would mark every row for the categorical null drop and empty the
	// whole table.
	return KindNumber
}

func parseCell(cell string, kind Kind) Value {
	if cell == "" {
		return NullValue(kind)
	}
	if kind == KindNumber {
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			// Mixed column that inferred numeric; treat the stray cell as null
			return NullValue(KindNumber)
		}
		return NumberValue(f)
	}
	return TextValue(cell)
}
