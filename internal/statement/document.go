// Package statement builds financial statements from room records and
// renders them as preview JSON, PDF, or spreadsheet. Every render path
// consumes the same PreviewDocument, so the preview always matches the
// exported file.
package statement

import "time"

// Kind selects which statement to build.
type Kind string

const (
	KindExpenseSummary    Kind = "expense_summary"
	KindCollectionSummary Kind = "collection_summary"
	KindMonthly           Kind = "monthly"
	KindYearly            Kind = "yearly"
	KindPersonalReport    Kind = "personal_expense_report"
)

// Valid reports whether k is a known statement kind.
func (k Kind) Valid() bool {
	switch k {
	case KindExpenseSummary, KindCollectionSummary, KindMonthly, KindYearly, KindPersonalReport:
		return true
	}
	return false
}

// Table is one named grid of pre-formatted cells. Amounts are already
// rendered as strings so that every output format shows the same values.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// SummaryLine is a label/value pair printed below the tables.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Bold  bool   `json:"bold,omitempty"`
}

// PreviewDocument is the fully computed statement. Renderers lay it out but
// never recompute or reinterpret its content.
type PreviewDocument struct {
	Kind        Kind          `json:"kind"`
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle"`
	Description string        `json:"description"`
	RoomName    string        `json:"room_name"`
	GeneratedBy string        `json:"generated_by"`
	GeneratedAt time.Time     `json:"generated_at"`
	Tables      []Table       `json:"tables"`
	Summary     []SummaryLine `json:"summary"`

	// FileName is the download name without extension.
	FileName string `json:"file_name"`
}
