package importer

import (
	"math"
	"strconv"
	"strings"
)

// Team member roles as stored on invitations.
const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleOfficeStaff = "office_staff"
	RoleFieldTech   = "field_tech"
)

// roleAliases maps spreadsheet role spellings to canonical roles.
var roleAliases = map[string]string{
	"admin":            RoleAdmin,
	"administrator":    RoleAdmin,
	"owner":            RoleAdmin,
	"manager":          RoleManager,
	"office":           RoleOfficeStaff,
	"office staff":     RoleOfficeStaff,
	"dispatcher":       RoleOfficeStaff,
	"field tech":       RoleFieldTech,
	"field technician": RoleFieldTech,
	"technician":       RoleFieldTech,
	"tech":             RoleFieldTech,
}

// normalizeRole maps a raw role value to a canonical role. Unrecognized or
// missing roles fall back to field_tech; role normalization never fails.
func normalizeRole(s string) string {
	if role, ok := roleAliases[foldHeader(s)]; ok {
		return role
	}
	return RoleFieldTech
}

// TeamMember is a validated invitation candidate.
type TeamMember struct {
	Email string
	Name  string
	Phone string
	Role  string
}

// Customer is a validated customer candidate.
type Customer struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	City         string
	State        string
	Zip          string
	Notes        string
	EmailConsent bool
}

// CatalogService is a validated service-catalog candidate.
type CatalogService struct {
	Name     string
	Category string
}

// Material is a validated inventory material candidate.
type Material struct {
	Name            string
	Category        string
	Unit            string
	RetailPrice     float64
	UnitCost        float64
	ReorderPoint    float64
	QuantityInStock float64
	DefaultMarkup   float64
	Active          bool
	Taxable         bool
}

// parseNumber parses a spreadsheet numeric cell, tolerating currency
// symbols and thousands separators. Returns false for anything that does
// not resolve to a finite number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseNumberOrZero coerces an optional numeric cell, treating missing or
// non-numeric input as 0 rather than a validation failure.
func parseNumberOrZero(s string) float64 {
	v, ok := parseNumber(s)
	if !ok {
		return 0
	}
	return v
}

// parseFlag interprets a boolean cell against a fixed vocabulary of truthy
// tokens (true, yes, 1) plus one kind-specific literal such as "active" or
// "taxable". Unset values take the default.
func parseFlag(s, literal string, def bool) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	switch s {
	case "true", "yes", "1", literal:
		return true
	default:
		return false
	}
}

// parseConsent normalizes an email-consent cell: the literal "true" means
// consent, everything else does not.
func parseConsent(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
