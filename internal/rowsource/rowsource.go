// Package rowsource turns uploaded spreadsheet files into the ordered
// header-to-value rows the import engine consumes. It handles CSV and XLSX;
// the engine never sees file formats.
package rowsource

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/fieldops/server/internal/importer"
)

// MaxFileSize is the maximum allowed upload size (20MB).
var MaxFileSize int64 = 20 * 1024 * 1024

// FromUpload parses an uploaded file into rows, dispatching on extension.
// CSV is the default for unrecognized extensions.
func FromUpload(filename string, r io.Reader) ([]importer.Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FromXLSX(r)
	default:
		return FromCSV(r)
	}
}

// FromCSV parses CSV data. The first non-empty record is the header; each
// data row records its 1-based sheet line for error reporting.
func FromCSV(r io.Reader) ([]importer.Row, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("file exceeds %dMB limit", MaxFileSize/(1024*1024))
	}

	cr := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return rowsFromRecords(records)
}

// FromXLSX parses the first sheet of an XLSX workbook.
func FromXLSX(r io.Reader) ([]importer.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rowsFromRecords(records)
}

// rowsFromRecords locates the header and maps each data row by header text.
func rowsFromRecords(records [][]string) ([]importer.Row, error) {
	headerIdx := -1
	for i, rec := range records {
		if !isEmptyRecord(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("empty file")
	}

	header := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		header[i] = CleanCell(h)
	}

	var rows []importer.Row
	for i, rec := range records[headerIdx+1:] {
		if isEmptyRecord(rec) {
			continue
		}

		values := make(map[string]string, len(header))
		for j, h := range header {
			if h == "" {
				continue
			}
			if j < len(rec) {
				values[h] = CleanCell(rec[j])
			} else {
				values[h] = ""
			}
		}

		rows = append(rows, importer.Row{
			Line:   headerIdx + i + 2, // 1-indexed, after the header
			Values: values,
		})
	}

	return rows, nil
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CleanCell removes common spreadsheet artifacts from a cell value: outer
// whitespace, Excel formula prefixes (="value"), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// csv.Reader never chokes on mis-encoded exports.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
