package importer

import "time"

// RowError describes why one row was not imported: the sheet line, the best
// available identifier for the row (email or name), and a message. Duplicate
// skips are reported here too so the caller can show a complete per-row
// account, but they are counted separately from failures.
type RowError struct {
	Row        int    `json:"row"`
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// BatchResult is the engine's only durable output: aggregate counts plus the
// ordered list of per-row error descriptors.
//
// Total always equals the number of input rows. For per-row commit kinds
// Successful + Failed + Duplicates == Total. For the service kind,
// Successful is the size of the final unique-addition set rather than a
// per-row tally.
type BatchResult struct {
	Kind       ImportKind    `json:"kind"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Duplicates int           `json:"duplicates"`
	Errors     []RowError    `json:"errors"`
	Duration   time.Duration `json:"-"`
}

func (r *BatchResult) addError(row int, identifier, message string) {
	r.Errors = append(r.Errors, RowError{Row: row, Identifier: identifier, Message: message})
}
