package cleaning

import (
	"log/slog"
	"strings"
	"time"

	"fleetsmart/internal/tablestore"
)

// dateKeywords mark columns eligible for date coercion. Matching is
// substring-based on the canonicalized (lower-cased) column name.
var dateKeywords = []string{"date", "time", "dt", "timestamp", "datetime", "year"}

// dateLayouts are tried in order when coercing a textual cell to a time
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

// Cleaner normalizes raw tables: canonical column names, date coercion,
// numeric imputation, categorical-null row drops and de-duplication.
// The input table is never mutated; Clean always returns a fresh copy.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a table cleaner
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// CleanAll cleans every table in the mapping. Empty tables are skipped with
// a warning and excluded from the result, matching the loader's tolerance
// for absent tables.
func (c *Cleaner) CleanAll(tables map[string]*tablestore.Table) (map[string]*tablestore.Table, map[string]Report) {
	cleaned := make(map[string]*tablestore.Table, len(tables))
	reports := make(map[string]Report, len(tables))

	for name, table := range tables {
		if table.IsEmpty() {
			c.logger.Warn("skipping empty table", "table", name)
			continue
		}
		out, report := c.Clean(table)
		cleaned[name] = out
		reports[name] = report

		c.logger.Info("cleaned table",
			"table", name,
			"rows_in", report.RowsIn,
			"rows_out", report.RowsOut,
			"imputed", report.ImputedCells,
			"coercion_failures", report.CoercionFailures,
			"text_null_rows_dropped", report.TextNullRowsDropped,
			"duplicates_removed", report.DuplicatesRemoved,
		)
	}

	return cleaned, reports
}

// Clean returns a cleaned copy of the table plus a report of every action
// taken. It never fails on data content: unparseable cells become nulls.
func (c *Cleaner) Clean(table *tablestore.Table) (*tablestore.Table, Report) {
	out := table.Clone()
	report := Report{
		Table:           out.Name,
		RowsIn:          out.NumRows(),
		ImputedByColumn: make(map[string]int),
	}

	canonicalizeColumns(out)
	c.coerceDates(out, &report)
	c.imputeNumerics(out, &report)
	c.dropTextNullRows(out, &report)
	c.dropDuplicates(out, &report)

	report.RowsOut = out.NumRows()
	return out, report
}

// canonicalizeColumns lower-cases, trims and underscores column names
func canonicalizeColumns(t *tablestore.Table) {
	for i := range t.Columns {
		t.Columns[i].Name = CanonicalName(t.Columns[i].Name)
	}
}

// CanonicalName returns the canonical form of a raw column name
func CanonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// coerceDates converts textual date-named columns to time columns. A cell
// that fails every layout becomes a null time cell, never an error.
func (c *Cleaner) coerceDates(t *tablestore.Table, report *Report) {
	for ci := range t.Columns {
		col := &t.Columns[ci]
		if col.Kind != tablestore.KindText || !isDateColumn(col.Name) {
			continue
		}

		col.Kind = tablestore.KindTime
		for ri := range t.Rows {
			cell := t.Rows[ri][ci]
			if cell.Null {
				t.Rows[ri][ci] = tablestore.NullValue(tablestore.KindTime)
				continue
			}
			parsed, ok := parseDate(cell.Text)
			if !ok {
				t.Rows[ri][ci] = tablestore.NullValue(tablestore.KindTime)
				report.CoercionFailures++
				report.Actions = append(report.Actions, Action{
					Table:     t.Name,
					Column:    col.Name,
					Row:       ri,
					Operation: OpCoerceFailure,
					Reason:    "unparseable date " + cell.Text,
				})
				continue
			}
			t.Rows[ri][ci] = tablestore.TimeValue(parsed)
		}
	}
}

func isDateColumn(name string) bool {
	for _, keyword := range dateKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// imputeNumerics replaces nulls in non-identifier numeric columns with the
// column mean over non-null values. Identifier columns (name ends in _id or
// equals id) are never touched. A column with no non-null values keeps its
// nulls: there is no mean to impute from.
func (c *Cleaner) imputeNumerics(t *tablestore.Table, report *Report) {
	for ci, col := range t.Columns {
		if col.Kind != tablestore.KindNumber || isIdentifierColumn(col.Name) {
			continue
		}

		sum := 0.0
		count := 0
		for ri := range t.Rows {
			if cell := t.Rows[ri][ci]; !cell.Null {
				sum += cell.Number
				count++
			}
		}
		if count == 0 || count == t.NumRows() {
			continue
		}

		mean := sum / float64(count)
		for ri := range t.Rows {
			if t.Rows[ri][ci].Null {
				t.Rows[ri][ci] = tablestore.NumberValue(mean)
				report.ImputedCells++
				report.ImputedByColumn[col.Name]++
				report.Actions = append(report.Actions, Action{
					Table:     t.Name,
					Column:    col.Name,
					Row:       ri,
					Operation: OpImputeMean,
					Reason:    "missing numeric value",
				})
			}
		}
	}
}

// isIdentifierColumn reports whether a canonical column name is id-like
func isIdentifierColumn(name string) bool {
	return strings.HasSuffix(name, "_id") || name == "id"
}

// dropTextNullRows removes any row holding a null in any text column.
// Text nulls are never imputed; this is deliberately stricter than the
// numeric handling.
func (c *Cleaner) dropTextNullRows(t *tablestore.Table, report *Report) {
	textCols := make([]int, 0, len(t.Columns))
	for ci, col := range t.Columns {
		if col.Kind == tablestore.KindText {
			textCols = append(textCols, ci)
		}
	}
	if len(textCols) == 0 {
		return
	}

	kept := t.Rows[:0:0]
	for ri, row := range t.Rows {
		drop := false
		for _, ci := range textCols {
			if row[ci].Null {
				drop = true
				report.Actions = append(report.Actions, Action{
					Table:     t.Name,
					Column:    t.Columns[ci].Name,
					Row:       ri,
					Operation: OpDropRow,
					Reason:    "missing categorical value",
				})
				break
			}
		}
		if drop {
			report.TextNullRowsDropped++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
}

// dropDuplicates removes exact duplicate rows, keeping the first occurrence
// and preserving relative order of the remainder.
func (c *Cleaner) dropDuplicates(t *tablestore.Table, report *Report) {
	kept := t.Rows[:0:0]
	for _, row := range t.Rows {
		dup := false
		for _, seen := range kept {
			if tablestore.RowEqual(seen, row) {
				dup = true
				break
			}
		}
		if dup {
			report.DuplicatesRemoved++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
}
