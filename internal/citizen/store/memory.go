package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"idcard/internal/citizen/models"
	id "idcard/pkg/domain"
	"idcard/pkg/platform/sentinel"
)

// InMemoryStore keeps citizen records in memory for local runs and tests.
// Records are copied on the way in and out so callers never share state with the store.
type InMemoryStore struct {
	mu        sync.RWMutex
	records   map[id.CitizenID]*models.Citizen
	byCitizen map[string]id.CitizenID
	byKey     map[string]id.CitizenID
	retired   map[string]struct{}
}

// NewInMemory creates an empty in-memory citizen store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		records:   make(map[id.CitizenID]*models.Citizen),
		byCitizen: make(map[string]id.CitizenID),
		byKey:     make(map[string]id.CitizenID),
		retired:   make(map[string]struct{}),
	}
}

func citizenIDKey(citizenID string) string {
	return strings.ToUpper(strings.TrimSpace(citizenID))
}

// Create inserts a new record. citizen_id and the normalised business key are
// unique across live and deleted records.
func (s *InMemoryStore) Create(_ context.Context, c *models.Citizen) error {
	if c == nil {
		return fmt.Errorf("citizen is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cid := citizenIDKey(c.CitizenID)
	if _, ok := s.records[c.ID]; ok {
		return fmt.Errorf("record id already exists: %w", sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.byCitizen[cid]; ok {
		return fmt.Errorf("citizen_id %s already registered: %w", c.CitizenID, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.byKey[c.BusinessKey]; ok {
		return fmt.Errorf("business key %s already registered: %w", c.BusinessKey, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.retired[cid]; ok {
		return fmt.Errorf("citizen_id %s was retired: %w", c.CitizenID, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.retired[c.BusinessKey]; ok {
		return fmt.Errorf("business key %s was retired: %w", c.BusinessKey, sentinel.ErrAlreadyUsed)
	}

	s.records[c.ID] = c.Clone()
	s.byCitizen[cid] = c.ID
	s.byKey[c.BusinessKey] = c.ID
	return nil
}

// FindByID returns a copy of the record.
func (s *InMemoryStore) FindByID(_ context.Context, recordID id.CitizenID) (*models.Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// FindByIDForUpdate is FindByID; per-record serialisation comes from the transaction runner.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, recordID id.CitizenID) (*models.Citizen, error) {
	return s.FindByID(ctx, recordID)
}

// FindByIDs returns the records that exist. Missing ids are absent from the map.
func (s *InMemoryStore) FindByIDs(_ context.Context, ids []id.CitizenID) (map[id.CitizenID]*models.Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.CitizenID]*models.Citizen, len(ids))
	for _, rid := range ids {
		if c, ok := s.records[rid]; ok {
			out[rid] = c.Clone()
		}
	}
	return out, nil
}

// FindByBusinessKey looks a record up by its normalised business key.
func (s *InMemoryStore) FindByBusinessKey(_ context.Context, key string) (*models.Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rid, ok := s.byKey[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.records[rid].Clone(), nil
}

// List returns matching records newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.Filter) ([]*models.Citizen, error) {
	s.mu.RLock()
	matched := make([]*models.Citizen, 0, len(s.records))
	for _, c := range s.records {
		if filter.Matches(c) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	matched = paginate(matched, filter.Offset, filter.Limit)
	out := make([]*models.Citizen, len(matched))
	for i, c := range matched {
		if filter.IncludeBiometrics {
			out[i] = c.Clone()
		} else {
			out[i] = c.WithoutBiometrics()
		}
	}
	return out, nil
}

func paginate(in []*models.Citizen, offset, limit int) []*models.Citizen {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

// Update persists mutable fields with compare-and-swap on Version. On success
// c.Version is advanced to the stored version. History is never written here.
func (s *InMemoryStore) Update(_ context.Context, c *models.Citizen) error {
	if c == nil {
		return fmt.Errorf("citizen is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(c, nil)
}

// UpdateWithHistory is Update plus one appended history entry, applied under
// a single write lock so readers never see the new status without its entry.
func (s *InMemoryStore) UpdateWithHistory(_ context.Context, c *models.Citizen, entry models.HistoryEntry) error {
	if c == nil {
		return fmt.Errorf("citizen is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(c, &entry)
}

func (s *InMemoryStore) updateLocked(c *models.Citizen, entry *models.HistoryEntry) error {
	stored, ok := s.records[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.CitizenID != c.CitizenID || stored.BusinessKey != c.BusinessKey {
		return fmt.Errorf("citizen_id is immutable: %w", sentinel.ErrInvalidState)
	}
	if len(c.StatusHistory) < len(stored.StatusHistory) {
		return fmt.Errorf("status history is append-only: %w", sentinel.ErrInvalidState)
	}
	if stored.Version != c.Version {
		return fmt.Errorf("citizen %s at version %d, caller has %d: %w", c.ID, stored.Version, c.Version, sentinel.ErrConflict)
	}

	next := c.Clone()
	next.StatusHistory = stored.StatusHistory
	if entry != nil {
		history := make([]models.HistoryEntry, len(stored.StatusHistory), len(stored.StatusHistory)+1)
		copy(history, stored.StatusHistory)
		next.StatusHistory = append(history, *entry)
	}
	next.CreatedAt = stored.CreatedAt
	next.RegisteredBy = stored.RegisteredBy
	next.Version = stored.Version + 1
	s.records[c.ID] = next
	c.Version = next.Version
	return nil
}

// Delete removes the record and retires its business identifiers.
func (s *InMemoryStore) Delete(_ context.Context, recordID id.CitizenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cid := citizenIDKey(stored.CitizenID)
	delete(s.records, recordID)
	delete(s.byCitizen, cid)
	delete(s.byKey, stored.BusinessKey)
	s.retired[cid] = struct{}{}
	s.retired[stored.BusinessKey] = struct{}{}
	return nil
}

// CountByStatus aggregates all records into zero-defaulted counts.
func (s *InMemoryStore) CountByStatus(_ context.Context) (models.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := models.NewCounts()
	for _, c := range s.records {
		counts.Add(c.Status, c.PrintStatus)
	}
	return counts, nil
}
