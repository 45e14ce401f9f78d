package importer

import "strings"

// Validation failure messages. Rules are checked in a fixed order per kind
// so a given bad row always yields the same message.
const (
	msgInvalidEmail    = "Invalid or missing email address"
	msgNameRequired    = "Name is required"
	msgCustomerName    = "Customer name is required"
	msgContactRequired = "At least one of email or phone is required"
	msgBadEmail        = "Invalid email address"
	msgServiceName     = "Service name is required"
	msgMaterialName    = "Material name is required"
	msgCategory        = "Category is required"
	msgUnit            = "Unit is required"
	msgRetailPrice     = "Invalid or missing retail price"

	msgAlreadyExists = "Already exists"
	msgUnknownError  = "Unknown error"
)

// validateTeamMember checks an invitation row: email required and must
// contain "@", name required. Role is normalized, never rejected.
func validateTeamMember(line int, fr foldedRow) (TeamMember, *RowError) {
	email := strings.TrimSpace(fr.first(aliasEmail...))
	name := strings.TrimSpace(fr.first(aliasName...))

	if email == "" || !strings.Contains(email, "@") {
		return TeamMember{}, &RowError{Row: line, Identifier: firstNonEmpty(email, name), Message: msgInvalidEmail}
	}
	if name == "" {
		return TeamMember{}, &RowError{Row: line, Identifier: email, Message: msgNameRequired}
	}

	return TeamMember{
		Email: email,
		Name:  name,
		Phone: strings.TrimSpace(fr.first(aliasPhone...)),
		Role:  normalizeRole(fr.first(aliasRole...)),
	}, nil
}

// validateCustomer checks a customer row: name required, at least one of
// email or phone, and any present email must contain "@". Everything else
// is optional and independently trimmed.
func validateCustomer(line int, fr foldedRow) (Customer, *RowError) {
	name := strings.TrimSpace(fr.first(aliasName...))
	email := strings.TrimSpace(fr.first(aliasEmail...))
	phone := strings.TrimSpace(fr.first(aliasPhone...))

	if name == "" {
		return Customer{}, &RowError{Row: line, Identifier: firstNonEmpty(email, phone), Message: msgCustomerName}
	}
	if email == "" && phone == "" {
		return Customer{}, &RowError{Row: line, Identifier: name, Message: msgContactRequired}
	}
	if email != "" && !strings.Contains(email, "@") {
		return Customer{}, &RowError{Row: line, Identifier: name, Message: msgBadEmail}
	}

	return Customer{
		Name:         name,
		Email:        email,
		Phone:        phone,
		Address:      strings.TrimSpace(fr.first(aliasAddress...)),
		City:         strings.TrimSpace(fr.first(aliasCity...)),
		State:        normalizeUSState(fr.first(aliasState...)),
		Zip:          strings.TrimSpace(fr.first(aliasZip...)),
		Notes:        strings.TrimSpace(fr.first(aliasNotes...)),
		EmailConsent: parseConsent(fr.first(aliasConsent...)),
	}, nil
}

// validateService checks a catalog row: service name required, category
// optional and trimmed.
func validateService(line int, fr foldedRow) (CatalogService, *RowError) {
	name := strings.TrimSpace(fr.first(aliasServiceName...))
	if name == "" {
		return CatalogService{}, &RowError{Row: line, Identifier: "", Message: msgServiceName}
	}

	return CatalogService{
		Name:     name,
		Category: strings.TrimSpace(fr.first(aliasCategory...)),
	}, nil
}

// validateMaterial checks an inventory row. Name, category, and unit are
// required; retail price must parse as a finite number. The remaining
// numeric fields tolerate bad input and coerce to 0.
func validateMaterial(line int, fr foldedRow) (Material, *RowError) {
	name := strings.TrimSpace(fr.first(aliasMaterialName...))
	if name == "" {
		return Material{}, &RowError{Row: line, Identifier: "", Message: msgMaterialName}
	}

	category := strings.TrimSpace(fr.first(aliasMaterialCategory...))
	if category == "" {
		return Material{}, &RowError{Row: line, Identifier: name, Message: msgCategory}
	}

	unit := strings.TrimSpace(fr.first(aliasUnit...))
	if unit == "" {
		return Material{}, &RowError{Row: line, Identifier: name, Message: msgUnit}
	}

	price, ok := parseNumber(fr.first(aliasRetailPrice...))
	if !ok {
		return Material{}, &RowError{Row: line, Identifier: name, Message: msgRetailPrice}
	}

	return Material{
		Name:            name,
		Category:        category,
		Unit:            unit,
		RetailPrice:     price,
		UnitCost:        parseNumberOrZero(fr.first(aliasUnitCost...)),
		ReorderPoint:    parseNumberOrZero(fr.first(aliasReorderPoint...)),
		QuantityInStock: parseNumberOrZero(fr.first(aliasQuantity...)),
		DefaultMarkup:   parseNumberOrZero(fr.first(aliasMarkup...)),
		Active:          parseFlag(fr.first(aliasActive...), "active", true),
		Taxable:         parseFlag(fr.first(aliasTaxable...), "taxable", false),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
