package importer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrDuplicate marks a commit rejected because the entity already exists.
// Store implementations wrap it (or return it directly) so the engine can
// reclassify the row as a duplicate skip instead of a failure.
var ErrDuplicate = errors.New("already exists")

// CustomerIdentity carries the persisted identity fields used to seed the
// customer duplicate index.
type CustomerIdentity struct {
	Email string
	Name  string
	Zip   string
}

// Catalog is a company's persisted service catalog.
type Catalog struct {
	Services   []string
	Categories []string
}

// Store is the persistence collaborator: identity lookups to seed duplicate
// indexes, one create operation per per-row kind, and the single aggregate
// catalog update used by the service kind. All operations are scoped to the
// owning company.
type Store interface {
	InvitationEmails(ctx context.Context, companyID uuid.UUID) ([]string, error)
	CustomerIdentities(ctx context.Context, companyID uuid.UUID) ([]CustomerIdentity, error)
	ServiceCatalog(ctx context.Context, companyID uuid.UUID) (Catalog, error)
	MaterialNames(ctx context.Context, companyID uuid.UUID) ([]string, error)

	CreateInvitation(ctx context.Context, companyID uuid.UUID, m TeamMember) error
	CreateCustomer(ctx context.Context, companyID uuid.UUID, c Customer) error
	CreateMaterial(ctx context.Context, companyID uuid.UUID, m Material) error

	// AppendServiceCatalog appends new service names and categories to the
	// company's catalog in a single update.
	AppendServiceCatalog(ctx context.Context, companyID uuid.UUID, services, categories []string) error
}

// duplicatePhrases is the legacy vocabulary for stores that report
// duplicate conflicts as plain text instead of wrapping ErrDuplicate.
var duplicatePhrases = []string{"already exists", "duplicate"}

// IsDuplicate reports whether a commit error means the entity already
// exists. The typed sentinel is authoritative; the phrase match is a
// fallback for stores outside our control.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range duplicatePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
