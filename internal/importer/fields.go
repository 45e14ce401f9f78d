package importer

import "strings"

// fields.go resolves canonical field values from rows whose headers arrive
// under many spellings ("Zip Code", "zipCode", "POSTAL CODE", ...). Headers
// are folded (lowercased, inner whitespace collapsed) once per row and each
// canonical field consults a static ordered alias list. Lookup performs no
// validation and no trimming; validators trim what they use.

// foldedRow maps folded header text to the raw cell value.
type foldedRow map[string]string

// foldHeader normalizes a raw header for alias lookup.
func foldHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// foldRow builds the folded lookup view of a row. When two raw headers fold
// to the same key, a non-empty value wins over an empty one.
func foldRow(row Row) foldedRow {
	fr := make(foldedRow, len(row.Values))
	for k, v := range row.Values {
		key := foldHeader(k)
		if existing, ok := fr[key]; !ok || existing == "" {
			fr[key] = v
		}
	}
	return fr
}

// first returns the first non-empty value among the aliases, tried in
// declared order. Returns "" (never absent) when no alias matches.
func (fr foldedRow) first(aliases ...string) string {
	for _, a := range aliases {
		if v := fr[a]; v != "" {
			return v
		}
	}
	return ""
}

// Alias lists per canonical field. Aliases are folded forms, so case and
// spacing variants of the same words collapse to one entry; synonyms are
// listed explicitly, most specific first.
var (
	aliasEmail = []string{"email", "email address", "e-mail", "e-mail address", "mail"}
	aliasName  = []string{"name", "full name", "contact name", "customer name"}
	aliasRole  = []string{"role", "user role", "position", "job title", "title"}
	aliasPhone = []string{"phone", "phone number", "mobile", "mobile phone", "cell", "telephone"}

	aliasAddress = []string{"address", "street address", "street", "address 1", "address line 1"}
	aliasCity    = []string{"city", "town"}
	aliasState   = []string{"state", "province", "region"}
	aliasZip     = []string{"zip", "zip code", "zipcode", "postal code", "post code", "postal"}
	aliasNotes   = []string{"notes", "note", "comments", "comment"}
	aliasConsent = []string{"email consent", "marketing consent", "email opt in", "opt in", "consent"}

	aliasServiceName = []string{"service", "service name", "name"}
	aliasCategory    = []string{"category", "service category"}

	aliasMaterialName     = []string{"name", "material name", "item name", "material", "item"}
	aliasMaterialCategory = []string{"category", "material category"}
	aliasUnit             = []string{"unit", "unit of measure", "uom", "units"}
	aliasRetailPrice      = []string{"retail price", "price", "retail", "sell price", "unit price"}
	aliasUnitCost         = []string{"cost", "unit cost", "cost per unit", "our cost"}
	aliasReorderPoint     = []string{"reorder point", "reorder threshold", "reorder level", "min quantity"}
	aliasQuantity         = []string{"quantity in stock", "quantity", "qty", "stock", "on hand"}
	aliasMarkup           = []string{"default markup", "markup", "markup percent", "markup %"}
	aliasActive           = []string{"active", "is active", "status"}
	aliasTaxable          = []string{"taxable", "is taxable", "tax"}
)
