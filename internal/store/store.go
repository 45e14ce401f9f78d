// Package store persists import entities in PostgreSQL via pgx. It
// implements importer.Store; duplicate-key violations are translated to
// importer.ErrDuplicate so the engine can classify them without inspecting
// message text.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/server/internal/importer"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// Store is the pgx-backed implementation of importer.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// asDuplicate converts a unique violation into importer.ErrDuplicate,
// keeping the original error in the chain.
func asDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %v", importer.ErrDuplicate, err)
	}
	return err
}

// collectStrings drains a single-column string query.
func collectStrings(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// InvitationEmails returns the emails of all existing invitations for the
// company, used to seed the team-member duplicate index.
func (s *Store) InvitationEmails(ctx context.Context, companyID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT email FROM invitations WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query invitation emails: %w", err)
	}
	return collectStrings(rows)
}

// CreateInvitation inserts one team-member invitation.
func (s *Store) CreateInvitation(ctx context.Context, companyID uuid.UUID, m importer.TeamMember) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invitations (id, company_id, email, name, phone, role)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), companyID, m.Email, m.Name, m.Phone, m.Role)
	if err != nil {
		return asDuplicate(fmt.Errorf("insert invitation: %w", err))
	}
	return nil
}

// CustomerIdentities returns the identity fields of all existing customers
// for the company.
func (s *Store) CustomerIdentities(ctx context.Context, companyID uuid.UUID) ([]importer.CustomerIdentity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT COALESCE(email, ''), name, COALESCE(zip, '')
		 FROM customers WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query customer identities: %w", err)
	}
	defer rows.Close()

	var out []importer.CustomerIdentity
	for rows.Next() {
		var id importer.CustomerIdentity
		if err := rows.Scan(&id.Email, &id.Name, &id.Zip); err != nil {
			return nil, fmt.Errorf("scan customer identity: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CreateCustomer inserts one customer.
func (s *Store) CreateCustomer(ctx context.Context, companyID uuid.UUID, c importer.Customer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO customers
		   (id, company_id, name, email, phone, address, city, state, zip, notes, email_consent)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
		         NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11)`,
		uuid.New(), companyID, c.Name, c.Email, c.Phone, c.Address,
		c.City, c.State, c.Zip, c.Notes, c.EmailConsent)
	if err != nil {
		return asDuplicate(fmt.Errorf("insert customer: %w", err))
	}
	return nil
}

// MaterialNames returns the names of all existing materials for the company.
func (s *Store) MaterialNames(ctx context.Context, companyID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name FROM materials WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query material names: %w", err)
	}
	return collectStrings(rows)
}

// CreateMaterial inserts one inventory material.
func (s *Store) CreateMaterial(ctx context.Context, companyID uuid.UUID, m importer.Material) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO materials
		   (id, company_id, name, category, unit, retail_price, unit_cost,
		    reorder_point, quantity_in_stock, default_markup, is_active, is_taxable)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.New(), companyID, m.Name, m.Category, m.Unit, m.RetailPrice,
		m.UnitCost, m.ReorderPoint, m.QuantityInStock, m.DefaultMarkup,
		m.Active, m.Taxable)
	if err != nil {
		return asDuplicate(fmt.Errorf("insert material: %w", err))
	}
	return nil
}

// ServiceCatalog returns the company's persisted service and category lists.
func (s *Store) ServiceCatalog(ctx context.Context, companyID uuid.UUID) (importer.Catalog, error) {
	var catalog importer.Catalog
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(service_names, '{}'), COALESCE(service_categories, '{}')
		 FROM companies WHERE id = $1`, companyID).
		Scan(&catalog.Services, &catalog.Categories)
	if err != nil {
		return importer.Catalog{}, fmt.Errorf("query service catalog: %w", err)
	}
	return catalog, nil
}

// AppendServiceCatalog appends new names and categories to the company's
// catalog lists in a single update.
func (s *Store) AppendServiceCatalog(ctx context.Context, companyID uuid.UUID, services, categories []string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies
		 SET service_names      = COALESCE(service_names, '{}') || $2::text[],
		     service_categories = COALESCE(service_categories, '{}') || $3::text[]
		 WHERE id = $1`,
		companyID, services, categories)
	if err != nil {
		return fmt.Errorf("append service catalog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("append service catalog: company not found: %s", companyID)
	}
	return nil
}
