package importer

import "fmt"

// ImportKind selects which alias tables, validation rules, dedupe keys,
// and commit strategy apply to a batch run.
type ImportKind string

const (
	KindTeamMember ImportKind = "team_member"
	KindCustomer   ImportKind = "customer"
	KindService    ImportKind = "service"
	KindMaterial   ImportKind = "material"
)

// Kinds returns all import kinds in display order.
func Kinds() []ImportKind {
	return []ImportKind{KindTeamMember, KindCustomer, KindService, KindMaterial}
}

// ParseKind converts a URL or form value into an ImportKind.
func ParseKind(s string) (ImportKind, error) {
	switch ImportKind(s) {
	case KindTeamMember, KindCustomer, KindService, KindMaterial:
		return ImportKind(s), nil
	default:
		return "", fmt.Errorf("unknown import kind: %q", s)
	}
}

// HeaderRows is the number of sheet rows preceding the first data row.
// Reported row numbers are sheet lines: data row i (0-based) is line
// i + HeaderRows + 1 unless the row source recorded the real line.
const HeaderRows = 1

// Row is one parsed data row: its 1-based sheet line and the raw
// header-to-value mapping as delivered by the row source. Rows are never
// mutated by the engine.
type Row struct {
	Line   int
	Values map[string]string
}

// rowLine returns the sheet line to report for the row at position i.
func rowLine(i int, row Row) int {
	if row.Line > 0 {
		return row.Line
	}
	return i + HeaderRows + 1
}
