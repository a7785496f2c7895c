package cleaning

// Operation identifies a kind of cleaning action
type Operation string

const (
	// OpCoerceFailure records a cell that failed date coercion and was nulled
	OpCoerceFailure Operation = "coerce_failure"
	// OpImputeMean records a numeric cell filled with the column mean
	OpImputeMean Operation = "impute_mean"
	// OpDropRow records a row removed for a missing categorical value
	OpDropRow Operation = "drop_row"
)

// Action records a single cleaning action against one cell or row
type Action struct {
	Table     string    `json:"table"`
	Column    string    `json:"column"`
	Row       int       `json:"row"` // index in the pre-drop row order
	Operation Operation `json:"operation"`
	Reason    string    `json:"reason"`
}

// Report summarizes everything the cleaner did to one table
type Report struct {
	Table               string         `json:"table"`
	RowsIn              int            `json:"rows_in"`
	RowsOut             int            `json:"rows_out"`
	CoercionFailures    int            `json:"coercion_failures"`
	ImputedCells        int            `json:"imputed_cells"`
	ImputedByColumn     map[string]int `json:"imputed_by_column"`
	TextNullRowsDropped int            `json:"text_null_rows_dropped"`
	DuplicatesRemoved   int            `json:"duplicates_removed"`
	Actions             []Action       `json:"actions,omitempty"`
}

// Changed reports whether the cleaning pass altered the table at all
func (r Report) Changed() bool {
	return r.CoercionFailures > 0 || r.ImputedCells > 0 ||
		r.TextNullRowsDropped > 0 || r.DuplicatesRemoved > 0
}
