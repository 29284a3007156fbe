package lineage

import (
	"context"
	"sort"
	"sync"
)

// Store persists lineage records. Implementations must treat records as
// insert-only and return copies from reads.
type Store interface {
	PutRecommendation(ctx context.Context, rec RecommendationLineage) error
	// PutSynthesis stores the synthesis and any of its recommendations not
	// yet present, atomically.
	PutSynthesis(ctx context.Context, syn SynthesisLineage) error
	GetRecommendation(ctx context.Context, id string) (RecommendationLineage, error)
	GetSynthesis(ctx context.Context, id string) (SynthesisLineage, error)
	// ListSyntheses returns a user's syntheses newest first plus the total
	// number available.
	ListSyntheses(ctx context.Context, userID string, limit, offset int) ([]SynthesisLineage, int, error)
	Close() error
}

// MemoryStore keeps lineage in process memory.
type MemoryStore struct {
	mu              sync.RWMutex
	recommendations map[string]RecommendationLineage
	syntheses       map[string]SynthesisLineage
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recommendations: make(map[string]RecommendationLineage),
		syntheses:       make(map[string]SynthesisLineage),
	}
}

func (m *MemoryStore) PutRecommendation(_ context.Context, rec RecommendationLineage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.recommendations[rec.RecommendationID]; exists {
		return ErrDuplicate
	}
	m.recommendations[rec.RecommendationID] = cloneRecommendation(rec)
	return nil
}

func (m *MemoryStore) PutSynthesis(_ context.Context, syn SynthesisLineage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.syntheses[syn.ID]; exists {
		return ErrDuplicate
	}
	for _, rec := range syn.Recommendations {
		if _, exists := m.recommendations[rec.RecommendationID]; !exists {
			m.recommendations[rec.RecommendationID] = cloneRecommendation(rec)
		}
	}
	stored := cloneSynthesis(syn)
	stored.Recommendations = nil
	m.syntheses[syn.ID] = stored
	return nil
}

func (m *MemoryStore) GetRecommendation(_ context.Context, id string) (RecommendationLineage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recommendations[id]
	if !ok {
		return RecommendationLineage{}, ErrNotFound
	}
	return cloneRecommendation(rec), nil
}

func (m *MemoryStore) GetSynthesis(_ context.Context, id string) (SynthesisLineage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	syn, ok := m.syntheses[id]
	if !ok {
		return SynthesisLineage{}, ErrNotFound
	}
	return m.hydrate(syn), nil
}

func (m *MemoryStore) ListSyntheses(_ context.Context, userID string, limit, offset int) ([]SynthesisLineage, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := make([]SynthesisLineage, 0)
	for _, syn := range m.syntheses {
		if syn.UserID == userID {
			matched = append(matched, syn)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	total := len(matched)
	if offset >= total {
		return []SynthesisLineage{}, total, nil
	}
	end := min(offset+limit, total)
	page := make([]SynthesisLineage, 0, end-offset)
	for _, syn := range matched[offset:end] {
		page = append(page, m.hydrate(syn))
	}
	return page, total, nil
}

func (m *MemoryStore) Close() error { return nil }

// hydrate attaches recommendation records in synthesis order. Callers hold
// the read lock.
func (m *MemoryStore) hydrate(syn SynthesisLineage) SynthesisLineage {
	out := cloneSynthesis(syn)
	for _, id := range syn.RecommendationIDs {
		if rec, ok := m.recommendations[id]; ok {
			out.Recommendations = append(out.Recommendations, cloneRecommendation(rec))
		}
	}
	return out
}
