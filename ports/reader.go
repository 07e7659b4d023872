package ports

// DataReader gives column access to a tabular data file. Empty cells are
// returned as "" for categorical access and NaN for numeric access.
type DataReader interface {
	Headers() []string
	Column(name string) ([]string, error)
	Numeric(name string) ([]float64, error)
	Rows() int
}
