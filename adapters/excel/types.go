package excel

// RawRowData represents a row of raw data as header -> cell text
type RawRowData map[string]string

// ExcelData represents the complete dataset of one sheet or CSV file
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
