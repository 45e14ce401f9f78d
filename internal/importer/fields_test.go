package importer

import "testing"

func TestFoldHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase passthrough", "email", "email"},
		{"uppercase", "EMAIL", "email"},
		{"mixed case", "Zip Code", "zip code"},
		{"camel-ish spacing", "zip  code", "zip code"},
		{"surrounding whitespace", "  Phone Number  ", "phone number"},
		{"tabs collapse", "unit\tof\tmeasure", "unit of measure"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := foldHeader(tt.input); got != tt.want {
				t.Errorf("foldHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFoldedRowFirst(t *testing.T) {
	row := Row{Values: map[string]string{
		"E-Mail":      "x@y.com",
		"ZIP Code":    "94110",
		"Phone":       "",
		"Mobile":      "555-0100",
		"Retail":      "12.50",
		"Unit Price":  "99.99",
		"Description": "unused",
	}}
	fr := foldRow(row)

	tests := []struct {
		name    string
		aliases []string
		want    string
	}{
		{"case variant matches", aliasEmail, "x@y.com"},
		{"spacing variant matches", aliasZip, "94110"},
		{"empty alias skipped for later one", aliasPhone, "555-0100"},
		{"declared order wins", aliasRetailPrice, "12.50"},
		{"no alias present", aliasNotes, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fr.first(tt.aliases...); got != tt.want {
				t.Errorf("first(%v) = %q, want %q", tt.aliases, got, tt.want)
			}
		})
	}
}

func TestFoldRowCollisionPrefersNonEmpty(t *testing.T) {
	row := Row{Values: map[string]string{
		"Email":  "",
		"EMAIL ": "x@y.com",
	}}
	fr := foldRow(row)

	if got := fr.first(aliasEmail...); got != "x@y.com" {
		t.Errorf("first(email) = %q, want %q", got, "x@y.com")
	}
}
