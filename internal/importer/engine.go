package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Pacing defaults: yield for PaceDelay after every PaceEvery-th row so a
// large batch does not hammer the store with back-to-back writes.
var (
	DefaultPaceEvery = 10
	DefaultPaceDelay = 250 * time.Millisecond
)

// ProgressFunc is invoked after each row with the 1-based count of rows
// processed so far. It is a side channel only; its behavior never affects
// row outcomes.
type ProgressFunc func(processed int)

// Engine runs one import batch at a time against a Store. The zero value is
// not usable; construct with NewEngine.
type Engine struct {
	store Store

	// PaceEvery and PaceDelay control the periodic backpressure pause.
	// PaceEvery <= 0 or PaceDelay <= 0 disables pacing.
	PaceEvery int
	PaceDelay time.Duration
}

// NewEngine creates an Engine with default pacing.
func NewEngine(store Store) *Engine {
	return &Engine{
		store:     store,
		PaceEvery: DefaultPaceEvery,
		PaceDelay: DefaultPaceDelay,
	}
}

// Run processes one batch: for each row, normalize, validate, check the
// duplicate index, commit (or stage, for the service kind), record the
// outcome, and report progress. Rows are processed strictly in order and a
// bad row never aborts the batch. Run returns an error only when the batch
// cannot start at all (unknown kind, identity preload failure).
func (e *Engine) Run(ctx context.Context, companyID uuid.UUID, kind ImportKind, rows []Row, progress ProgressFunc) (*BatchResult, error) {
	start := time.Now()

	var (
		result *BatchResult
		err    error
	)
	switch kind {
	case KindTeamMember:
		result, err = e.runPerRow(ctx, kind, rows, progress, e.teamMemberPlan(companyID))
	case KindCustomer:
		result, err = e.runPerRow(ctx, kind, rows, progress, e.customerPlan(companyID))
	case KindMaterial:
		result, err = e.runPerRow(ctx, kind, rows, progress, e.materialPlan(companyID))
	case KindService:
		result, err = e.runServiceBatch(ctx, companyID, rows, progress)
	default:
		return nil, fmt.Errorf("unknown import kind: %q", kind)
	}
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	slog.Info("import batch finished",
		"kind", kind,
		"total", result.Total,
		"successful", result.Successful,
		"failed", result.Failed,
		"duplicates", result.Duplicates,
		"duration", result.Duration,
	)
	return result, nil
}

// rowPlan binds the per-row commit strategy for one kind: how to seed the
// duplicate index, how to turn a row into a candidate with identity keys,
// and how to commit the candidate.
type rowPlan struct {
	seed     func(ctx context.Context) (keySet, error)
	validate func(line int, fr foldedRow) (rec any, keys []string, identifier string, verr *RowError)
	commit   func(ctx context.Context, rec any) error
}

func (e *Engine) teamMemberPlan(companyID uuid.UUID) rowPlan {
	return rowPlan{
		seed: func(ctx context.Context) (keySet, error) {
			emails, err := e.store.InvitationEmails(ctx, companyID)
			if err != nil {
				return nil, fmt.Errorf("load invitation emails: %w", err)
			}
			index := make(keySet, len(emails))
			for _, email := range emails {
				index.add(emailKey(email))
			}
			return index, nil
		},
		validate: func(line int, fr foldedRow) (any, []string, string, *RowError) {
			m, verr := validateTeamMember(line, fr)
			if verr != nil {
				return nil, nil, "", verr
			}
			return m, []string{emailKey(m.Email)}, m.Email, nil
		},
		commit: func(ctx context.Context, rec any) error {
			return e.store.CreateInvitation(ctx, companyID, rec.(TeamMember))
		},
	}
}

func (e *Engine) customerPlan(companyID uuid.UUID) rowPlan {
	return rowPlan{
		seed: func(ctx context.Context) (keySet, error) {
			identities, err := e.store.CustomerIdentities(ctx, companyID)
			if err != nil {
				return nil, fmt.Errorf("load customer identities: %w", err)
			}
			index := make(keySet, len(identities)*2)
			for _, id := range identities {
				if id.Email != "" {
					index.add(emailKey(id.Email))
				}
				index.add(nameZipKey(id.Name, id.Zip))
			}
			return index, nil
		},
		validate: func(line int, fr foldedRow) (any, []string, string, *RowError) {
			c, verr := validateCustomer(line, fr)
			if verr != nil {
				return nil, nil, "", verr
			}
			return c, customerKeys(c), c.Name, nil
		},
		commit: func(ctx context.Context, rec any) error {
			return e.store.CreateCustomer(ctx, companyID, rec.(Customer))
		},
	}
}

func (e *Engine) materialPlan(companyID uuid.UUID) rowPlan {
	return rowPlan{
		seed: func(ctx context.Context) (keySet, error) {
			names, err := e.store.MaterialNames(ctx, companyID)
			if err != nil {
				return nil, fmt.Errorf("load material names: %w", err)
			}
			index := make(keySet, len(names))
			for _, name := range names {
				index.add(nameKey(name))
			}
			return index, nil
		},
		validate: func(line int, fr foldedRow) (any, []string, string, *RowError) {
			m, verr := validateMaterial(line, fr)
			if verr != nil {
				return nil, nil, "", verr
			}
			return m, []string{nameKey(m.Name)}, m.Name, nil
		},
		commit: func(ctx context.Context, rec any) error {
			return e.store.CreateMaterial(ctx, companyID, rec.(Material))
		},
	}
}

// runPerRow drives the commit-per-row strategy shared by the team member,
// customer, and material kinds.
func (e *Engine) runPerRow(ctx context.Context, kind ImportKind, rows []Row, progress ProgressFunc, plan rowPlan) (*BatchResult, error) {
	index, err := plan.seed(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Kind: kind, Total: len(rows)}
	for i, row := range rows {
		e.processRow(ctx, rowLine(i, row), row, index, plan, result)

		if progress != nil {
			progress(i + 1)
		}
		e.pace(ctx, i+1)
	}

	return result, nil
}

// processRow takes one row to a terminal outcome. Panics and errors are
// contained here so a single bad row cannot take down the batch.
func (e *Engine) processRow(ctx context.Context, line int, row Row, index keySet, plan rowPlan, result *BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			if msg == "" {
				msg = msgUnknownError
			}
			result.Failed++
			result.addError(line, "", msg)
			slog.Error("import row panicked", "row", line, "error", msg)
		}
	}()

	rec, keys, identifier, verr := plan.validate(line, foldRow(row))
	if verr != nil {
		result.Failed++
		result.Errors = append(result.Errors, *verr)
		return
	}

	if index.hasAny(keys) {
		result.Duplicates++
		result.addError(line, identifier, msgAlreadyExists)
		return
	}

	if err := plan.commit(ctx, rec); err != nil {
		if IsDuplicate(err) {
			result.Duplicates++
			result.addError(line, identifier, msgAlreadyExists)
			return
		}
		msg := err.Error()
		if msg == "" {
			msg = msgUnknownError
		}
		result.Failed++
		result.addError(line, identifier, msg)
		return
	}

	index.addAll(keys)
	result.Successful++
}

// runServiceBatch drives the aggregate-then-commit strategy: every valid,
// not-yet-known service name is staged, and the staged additions are written
// with a single catalog update after all rows are processed. Successful is
// the size of the addition set, not a per-row tally.
func (e *Engine) runServiceBatch(ctx context.Context, companyID uuid.UUID, rows []Row, progress ProgressFunc) (*BatchResult, error) {
	catalog, err := e.store.ServiceCatalog(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load service catalog: %w", err)
	}

	known := newKeySet()
	for _, name := range catalog.Services {
		known.add(nameKey(name))
	}
	knownCategories := newKeySet()
	for _, cat := range catalog.Categories {
		knownCategories.add(nameKey(cat))
	}

	result := &BatchResult{Kind: KindService, Total: len(rows)}
	var additions, categoryAdditions []string

	for i, row := range rows {
		line := rowLine(i, row)

		svc, verr := validateService(line, foldRow(row))
		switch {
		case verr != nil:
			result.Failed++
			result.Errors = append(result.Errors, *verr)
		case known.has(nameKey(svc.Name)):
			result.Duplicates++
			result.addError(line, svc.Name, msgAlreadyExists)
		default:
			known.add(nameKey(svc.Name))
			additions = append(additions, svc.Name)
			if svc.Category != "" && !knownCategories.has(nameKey(svc.Category)) {
				knownCategories.add(nameKey(svc.Category))
				categoryAdditions = append(categoryAdditions, svc.Category)
			}
		}

		if progress != nil {
			progress(i + 1)
		}
		e.pace(ctx, i+1)
	}

	if len(additions) > 0 {
		sort.Strings(additions)
		sort.Strings(categoryAdditions)

		if err := e.store.AppendServiceCatalog(ctx, companyID, additions, categoryAdditions); err != nil {
			msg := err.Error()
			if msg == "" {
				msg = msgUnknownError
			}
			result.Failed += len(additions)
			result.addError(0, "service catalog", msg)
			return result, nil
		}
		result.Successful = len(additions)
	}

	return result, nil
}

// pace yields for a short fixed pause after every PaceEvery-th row.
func (e *Engine) pace(ctx context.Context, processed int) {
	if e.PaceEvery <= 0 || e.PaceDelay <= 0 {
		return
	}
	if processed%e.PaceEvery != 0 {
		return
	}

	t := time.NewTimer(e.PaceDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
