package ports

// SampleSourcePort provides read-only access to tabular sample data so the
// ingestion flow never depends on a concrete file format
type SampleSourcePort interface {
	// Columns lists the header names available in the source
	Columns() ([]string, error)

	// ReadColumn extracts one named numeric column, skipping blank cells
	ReadColumn(name string) ([]float64, error)
}
