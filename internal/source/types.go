package source

// RawReading is one line of a JSONL meter export.
type RawReading struct {
	Type string   `json:"type,omitempty"`
	Day  *int     `json:"day"`
	KWh  *float64 `json:"kwh"`
}

// Format identifies how an export file is encoded.
type Format int

const (
	FormatJSONL Format = iota
	FormatCSV
)

func (f Format) String() string {
	if f == FormatCSV {
		return "csv"
	}
	return "jsonl"
}

// DiscoveredFile is a meter export found during scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}
