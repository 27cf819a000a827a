package presentations

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryPresentationRepository is an in-memory implementation for
// scaffolding and tests.
type MemoryPresentationRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Presentation

	// versions is consulted on delete so the cascade matches the bun
	// repository's transactional behavior.
	versions *MemoryVersionRepository
}

// NewMemoryPresentationRepository creates an empty in-memory repository.
// Pass the version repository that shares the store so deletes cascade;
// nil is fine when no ledger is involved.
func NewMemoryPresentationRepository(versions *MemoryVersionRepository) *MemoryPresentationRepository {
	return &MemoryPresentationRepository{
		records:  make(map[uuid.UUID]*Presentation),
		versions: versions,
	}
}

func (m *MemoryPresentationRepository) Create(_ context.Context, record *Presentation) (*Presentation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := record.Clone()
	m.records[copied.ID] = copied
	return copied.Clone(), nil
}

func (m *MemoryPresentationRepository) GetByID(_ context.Context, id uuid.UUID) (*Presentation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "presentation", Key: id.String()}
	}
	return rec.Clone(), nil
}

func (m *MemoryPresentationRepository) Update(_ context.Context, record *Presentation) (*Presentation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return nil, &NotFoundError{Resource: "presentation", Key: record.ID.String()}
	}
	copied := record.Clone()
	m.records[copied.ID] = copied
	return copied.Clone(), nil
}

func (m *MemoryPresentationRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	if m.versions != nil {
		m.versions.deleteByPresentation(id)
	}
	return true, nil
}

// MemoryVersionRepository is an in-memory version ledger for tests.
type MemoryVersionRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]*PresentationVersion
}

// NewMemoryVersionRepository creates an empty in-memory version ledger.
func NewMemoryVersionRepository() *MemoryVersionRepository {
	return &MemoryVersionRepository{
		records: make(map[uuid.UUID][]*PresentationVersion),
	}
}

func (m *MemoryVersionRepository) Create(_ context.Context, record *PresentationVersion) (*PresentationVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneVersion(record)
	m.records[copied.PresentationID] = append(m.records[copied.PresentationID], copied)
	return cloneVersion(copied), nil
}

func (m *MemoryVersionRepository) ListByPresentation(_ context.Context, presentationID uuid.UUID) ([]*PresentationVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.records[presentationID]
	out := make([]*PresentationVersion, 0, len(stored))
	for _, rec := range stored {
		out = append(out, cloneVersion(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VersionID > out[j].VersionID
	})
	return out, nil
}

func (m *MemoryVersionRepository) Get(_ context.Context, presentationID uuid.UUID, versionID string) (*PresentationVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records[presentationID] {
		if rec.VersionID == versionID {
			return cloneVersion(rec), nil
		}
	}
	return nil, &NotFoundError{Resource: "version", Key: fmt.Sprintf("%s:%s", presentationID, versionID)}
}

func (m *MemoryVersionRepository) deleteByPresentation(presentationID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, presentationID)
}

func cloneVersion(v *PresentationVersion) *PresentationVersion {
	if v == nil {
		return nil
	}
	clone := *v
	clone.Snapshot.Slides = cloneSlides(v.Snapshot.Slides)
	if v.Snapshot.RestoredFrom != nil {
		restored := *v.Snapshot.RestoredFrom
		clone.Snapshot.RestoredFrom = &restored
	}
	if v.ChangeSummary != nil {
		summary := *v.ChangeSummary
		clone.ChangeSummary = &summary
	}
	return &clone
}

var (
	_ PresentationRepository = (*MemoryPresentationRepository)(nil)
	_ VersionRepository      = (*MemoryVersionRepository)(nil)
)
