package rowsource

import (
	"strings"
	"testing"
)

func TestFromCSV(t *testing.T) {
	csvData := `Email,Name,Role
jane@acme.com,Jane Doe,Manager
,,
john@acme.com,"Doe, John",tech
`

	rows, err := FromCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank row skipped)", len(rows))
	}

	if rows[0].Line != 2 {
		t.Errorf("first data row line = %d, want 2", rows[0].Line)
	}
	if rows[0].Values["Email"] != "jane@acme.com" || rows[0].Values["Name"] != "Jane Doe" {
		t.Errorf("first row = %+v", rows[0].Values)
	}

	// The blank record is skipped but its sheet line is not reused.
	if rows[1].Line != 4 {
		t.Errorf("second data row line = %d, want 4", rows[1].Line)
	}
	if rows[1].Values["Name"] != "Doe, John" {
		t.Errorf("quoted field = %q", rows[1].Values["Name"])
	}
}

func TestFromCSVLeadingBlankLines(t *testing.T) {
	csvData := "\n\nName,Phone\nAcme,555-0100\n"

	rows, err := FromCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Values["Name"] != "Acme" {
		t.Errorf("row = %+v", rows[0].Values)
	}
}

func TestFromCSVRaggedRows(t *testing.T) {
	csvData := "Name,Phone,Notes\nAcme,555-0100\nBeta,555-0200,vip,extra\n"

	rows, err := FromCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Values["Notes"] != "" {
		t.Errorf("short row should pad missing cells, got %q", rows[0].Values["Notes"])
	}
	if rows[1].Values["Notes"] != "vip" {
		t.Errorf("long row should keep mapped cells, got %q", rows[1].Values["Notes"])
	}
}

func TestFromCSVEmpty(t *testing.T) {
	if _, err := FromCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := FromCSV(strings.NewReader("\n\n  ,  \n")); err == nil {
		t.Error("expected error for input with no header")
	}
}

func TestFromCSVSizeLimit(t *testing.T) {
	old := MaxFileSize
	MaxFileSize = 64
	defer func() { MaxFileSize = old }()

	big := "Name\n" + strings.Repeat("x", 100)
	if _, err := FromCSV(strings.NewReader(big)); err == nil {
		t.Error("expected size limit error")
	}
}

func TestFromCSVInvalidUTF8(t *testing.T) {
	data := "Name\nCaf\xff Corp\n"

	rows, err := FromCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Values["Name"] != "Caf� Corp" {
		t.Errorf("invalid byte should become the replacement rune, got %q", rows[0].Values["Name"])
	}
}

func TestFromUploadDispatch(t *testing.T) {
	// Unrecognized extensions fall back to CSV.
	rows, err := FromUpload("customers.txt", strings.NewReader("Name\nAcme\n"))
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}

	// A .xlsx name with non-zip content must fail through the XLSX path.
	if _, err := FromUpload("customers.xlsx", strings.NewReader("not a workbook")); err == nil {
		t.Error("expected error for bogus XLSX content")
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Acme", "Acme"},
		{"whitespace", "  Acme  ", "Acme"},
		{"excel text formula", `="00123"`, "00123"},
		{"bare formula prefix", "=A1", "A1"},
		{"stray quotes", `"Acme"`, "Acme"},
		{"single quotes", "'Acme'", "Acme"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
