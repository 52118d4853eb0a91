// Package repository owns the canonical contract collection. It provides
// validated CRUD writes, filtered/sorted/paginated reads and statistics over
// an in-memory collection that is mirrored synchronously to a durable
// JSON snapshot and announced through a change-notification channel.
//
// Writes are copy-on-write: a mutation builds the next version of the
// collection, persists it, and only then swaps it in. Readers interleaved
// with a pending write therefore always see a complete collection, never a
// partially applied one, and a failed persist leaves memory untouched.
package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/contractreg/contractreg/internal/contract"
	"github.com/google/uuid"
)

// Page size bounds for paginated reads.
var (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Repository is the single owner of the contract collection. Construct one
// per process and pass it by reference; there is no ambient instance.
type Repository struct {
	mu    sync.RWMutex
	store Store

	records []contract.Contract // insertion order
	index   map[string]int      // id -> position in records

	listeners      map[int]Listener
	nextListenerID int

	now   func() time.Time
	newID func() string
}

// Option customizes a Repository, mainly for tests.
type Option func(*Repository)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDFunc replaces the record ID generator.
func WithIDFunc(fn func() string) Option {
	return func(r *Repository) { r.newID = fn }
}

// New builds a Repository backed by store and restores the persisted
// collection. A missing or unreadable snapshot starts the collection empty.
func New(ctx context.Context, store Store, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:     store,
		index:     make(map[string]int),
		listeners: make(map[int]Listener),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	r.records = snap.Records
	r.rebuildIndex()

	return r, nil
}

// Add validates and inserts one record, assigning its ID and timestamps.
// On validation failure nothing is inserted and nothing is persisted.
func (r *Repository) Add(ctx context.Context, c contract.Contract) (contract.Contract, error) {
	normalizeRecord(&c)
	if violations := c.Validate(); len(violations) > 0 {
		return contract.Contract{}, &ValidationError{Violations: violations}
	}

	now := r.now()
	c.ID = r.newID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Source.ImportedAt.IsZero() {
		c.Source.ImportedAt = now
	}

	r.mu.Lock()
	next := append(copyRecords(r.records), c)
	if err := r.persistLocked(ctx, next); err != nil {
		r.mu.Unlock()
		return contract.Contract{}, err
	}
	r.records = next
	r.rebuildIndex()
	r.mu.Unlock()

	r.notify(Event{Type: EventCreated, Records: []contract.Contract{c}})
	return c, nil
}

// FailedRecord pairs a rejected input with the constraints it violated.
type FailedRecord struct {
	Input   contract.Contract    `json:"input"`
	Reasons []contract.Violation `json:"reasons"`
}

// BulkResult is the outcome of a best-effort bulk insert.
type BulkResult struct {
	Inserted []contract.Contract `json:"inserted"`
	Replaced []contract.Contract `json:"replaced"` // existing records overwritten by a re-import
	Failed   []FailedRecord      `json:"failed"`
}

// AddMany inserts records best-effort: invalid records are collected in
// Failed while valid ones are still inserted. Records whose
// (businessId, sheetName) key matches an existing record replace that
// record's content — the later import wins — keeping its ID and CreatedAt.
// The whole batch is persisted as one snapshot write and announced as one
// bulk_imported event.
func (r *Repository) AddMany(ctx context.Context, records []contract.Contract) (BulkResult, error) {
	result := BulkResult{}
	now := r.now()

	r.mu.Lock()
	next := copyRecords(r.records)

	byKey := make(map[string]int, len(next))
	for i, existing := range next {
		byKey[bulkKey(existing)] = i
	}

	for _, c := range records {
		normalizeRecord(&c)
		if violations := c.Validate(); len(violations) > 0 {
			result.Failed = append(result.Failed, FailedRecord{Input: c, Reasons: violations})
			continue
		}

		if pos, exists := byKey[bulkKey(c)]; exists {
			prev := next[pos]
			c.ID = prev.ID
			c.CreatedAt = prev.CreatedAt
			c.UpdatedAt = now
			next[pos] = c
			result.Replaced = append(result.Replaced, c)
			continue
		}

		c.ID = r.newID()
		c.CreatedAt = now
		c.UpdatedAt = now
		if c.Source.ImportedAt.IsZero() {
			c.Source.ImportedAt = now
		}
		byKey[bulkKey(c)] = len(next)
		next = append(next, c)
		result.Inserted = append(result.Inserted, c)
	}

	if len(result.Inserted) == 0 && len(result.Replaced) == 0 {
		r.mu.Unlock()
		return result, nil
	}

	if err := r.persistLocked(ctx, next); err != nil {
		r.mu.Unlock()
		return BulkResult{}, err
	}
	r.records = next
	r.rebuildIndex()
	r.mu.Unlock()

	affected := append(copyRecords(result.Inserted), result.Replaced...)
	r.notify(Event{Type: EventBulkImported, Records: affected})
	return result, nil
}

// Patch holds partial field updates. Nil pointers leave the field
// untouched; for optional fields an empty string clears the value to null.
type Patch struct {
	BusinessID   *string          `json:"businessId,omitempty"`
	Title        *string          `json:"title,omitempty"`
	Location     *string          `json:"location,omitempty"`
	RoomArea     *string          `json:"roomArea,omitempty"`
	EquipmentID  *string          `json:"equipmentId,omitempty"`
	Description  *string          `json:"description,omitempty"`
	SerialNumber *string          `json:"serialNumber,omitempty"`
	Status       *contract.Status `json:"status,omitempty"`
	PlannedStart *string          `json:"plannedStart,omitempty"`
	ReportedDate *string          `json:"reportedDate,omitempty"`
	IsComplete   *bool            `json:"isComplete,omitempty"`
}

// Update merges patch into the record with the given ID, re-validates the
// merged result and refreshes updatedAt. The record's ID, provenance and
// createdAt are immutable.
func (r *Repository) Update(ctx context.Context, id string, patch Patch) (contract.Contract, error) {
	r.mu.Lock()
	pos, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return contract.Contract{}, &NotFoundError{ID: id}
	}

	merged := r.records[pos]
	applyPatch(&merged, patch)
	normalizeRecord(&merged)

	if violations := merged.Validate(); len(violations) > 0 {
		r.mu.Unlock()
		return contract.Contract{}, &ValidationError{Violations: violations}
	}

	merged.UpdatedAt = r.now()

	next := copyRecords(r.records)
	next[pos] = merged
	if err := r.persistLocked(ctx, next); err != nil {
		r.mu.Unlock()
		return contract.Contract{}, err
	}
	r.records = next
	r.mu.Unlock()

	r.notify(Event{Type: EventUpdated, Records: []contract.Contract{merged}})
	return merged, nil
}

// BulkUpdateResult is the outcome of a best-effort bulk update.
type BulkUpdateResult struct {
	Updated []contract.Contract `json:"updated"`
	Failed  []struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	} `json:"failed"`
}

// BulkUpdate applies the same patch to every listed ID, best-effort.
// Successful updates are persisted in one snapshot write and announced as
// one updated event.
func (r *Repository) BulkUpdate(ctx context.Context, ids []string, patch Patch) (BulkUpdateResult, error) {
	result := BulkUpdateResult{}
	now := r.now()

	r.mu.Lock()
	next := copyRecords(r.records)

	for _, id := range ids {
		pos, ok := r.index[id]
		if !ok {
			result.Failed = append(result.Failed, bulkFailure(id, (&NotFoundError{ID: id}).Error()))
			continue
		}

		merged := next[pos]
		applyPatch(&merged, patch)
		normalizeRecord(&merged)

		if violations := merged.Validate(); len(violations) > 0 {
			result.Failed = append(result.Failed, bulkFailure(id, (&ValidationError{Violations: violations}).Error()))
			continue
		}

		merged.UpdatedAt = now
		next[pos] = merged
		result.Updated = append(result.Updated, merged)
	}

	if len(result.Updated) == 0 {
		r.mu.Unlock()
		return result, nil
	}

	if err := r.persistLocked(ctx, next); err != nil {
		r.mu.Unlock()
		return BulkUpdateResult{}, err
	}
	r.records = next
	r.mu.Unlock()

	r.notify(Event{Type: EventUpdated, Records: result.Updated})
	return result, nil
}

// Delete removes the record with the given ID. Within a session, deletion
// is irreversible.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	pos, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return &NotFoundError{ID: id}
	}

	removed := r.records[pos]
	next := make([]contract.Contract, 0, len(r.records)-1)
	next = append(next, r.records[:pos]...)
	next = append(next, r.records[pos+1:]...)

	if err := r.persistLocked(ctx, next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.records = next
	r.rebuildIndex()
	r.mu.Unlock()

	r.notify(Event{Type: EventDeleted, Records: []contract.Contract{removed}})
	return nil
}

// Get returns the record with the given ID.
func (r *Repository) Get(id string) (contract.Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		return contract.Contract{}, false
	}
	return r.records[pos], true
}

// Count returns the number of stored records.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// persistLocked writes the next collection version to the durable store.
// Callers must hold the write lock and only commit the version in memory
// after this returns nil.
func (r *Repository) persistLocked(ctx context.Context, next []contract.Contract) error {
	return r.store.Save(ctx, Snapshot{Records: next, SavedAt: r.now()})
}

func (r *Repository) rebuildIndex() {
	r.index = make(map[string]int, len(r.records))
	for i, c := range r.records {
		r.index[c.ID] = i
	}
}

// normalizeRecord trims descriptive fields and folds empty strings to nil
// so "" never reaches storage.
func normalizeRecord(c *contract.Contract) {
	c.BusinessID = strings.TrimSpace(c.BusinessID)
	c.Title = reOpt(c.Title)
	c.Location = reOpt(c.Location)
	c.RoomArea = reOpt(c.RoomArea)
	c.EquipmentID = reOpt(c.EquipmentID)
	c.Description = reOpt(c.Description)
	c.SerialNumber = reOpt(c.SerialNumber)
	c.PlannedStart = reOpt(c.PlannedStart)
	c.ReportedDate = reOpt(c.ReportedDate)
}

func reOpt(p *string) *string {
	if p == nil {
		return nil
	}
	return contract.OptString(*p)
}

func applyPatch(c *contract.Contract, p Patch) {
	if p.BusinessID != nil {
		c.BusinessID = *p.BusinessID
	}
	if p.Title != nil {
		c.Title = contract.OptString(*p.Title)
	}
	if p.Location != nil {
		c.Location = contract.OptString(*p.Location)
	}
	if p.RoomArea != nil {
		c.RoomArea = contract.OptString(*p.RoomArea)
	}
	if p.EquipmentID != nil {
		c.EquipmentID = contract.OptString(*p.EquipmentID)
	}
	if p.Description != nil {
		c.Description = contract.OptString(*p.Description)
	}
	if p.SerialNumber != nil {
		c.SerialNumber = contract.OptString(*p.SerialNumber)
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.PlannedStart != nil {
		c.PlannedStart = contract.OptString(*p.PlannedStart)
	}
	if p.ReportedDate != nil {
		c.ReportedDate = contract.OptString(*p.ReportedDate)
	}
	if p.IsComplete != nil {
		c.IsComplete = *p.IsComplete
	}
}

func bulkKey(c contract.Contract) string {
	return c.BusinessID + "\x00" + c.Source.SheetName
}

func bulkFailure(id, reason string) struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
} {
	return struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	}{ID: id, Reason: reason}
}

func copyRecords(records []contract.Contract) []contract.Contract {
	out := make([]contract.Contract, len(records))
	copy(out, records)
	return out
}
