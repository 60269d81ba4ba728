package service

import (
	"context"
	"sync"

	"github.com/spec-kit/incident-service/internal/domain"
)

// RotationKey identifies one fairness group for round-robin selection. Using
// a typed composite instead of string concatenation rules out key collisions
// between, say, team "a|b" and sub-category "b".
type RotationKey struct {
	TeamID      string
	Tier        domain.TechnicianTier
	SubCategory string
}

// RotationStore persists per-group rotation cursors. The in-memory store is
// process-lifetime state; a multi-instance deployment plugs in the Redis
// store so all instances share cursors.
type RotationStore interface {
	Cursor(ctx context.Context, key RotationKey) (int, error)
	SetCursor(ctx context.Context, key RotationKey, position int) error
}

type memoryRotationStore struct {
	mu      sync.Mutex
	cursors map[RotationKey]int
}

// NewMemoryRotationStore creates an in-process cursor store. Cursors reset on
// restart.
func NewMemoryRotationStore() RotationStore {
	return &memoryRotationStore{cursors: make(map[RotationKey]int)}
}

func (s *memoryRotationStore) Cursor(_ context.Context, key RotationKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[key], nil
}

func (s *memoryRotationStore) SetCursor(_ context.Context, key RotationKey, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[key] = position
	return nil
}

// RotationSelector picks the next technician with spare capacity from a
// skill-filtered candidate list, in round-robin order per rotation key.
type RotationSelector struct {
	store RotationStore
	gate  *WorkloadGate
}

// NewRotationSelector constructs the selector.
func NewRotationSelector(store RotationStore, gate *WorkloadGate) *RotationSelector {
	return &RotationSelector{store: store, gate: gate}
}

// Select returns the chosen technician or nil when every candidate is at
// capacity. A nil result is not an error: it is the signal to escalate or
// queue. On success the cursor advances to the position after the selected
// candidate so the next assignment in this group starts past it; on failure
// the cursor is left unchanged.
func (s *RotationSelector) Select(ctx context.Context, key RotationKey, candidates []domain.Technician) (*domain.Technician, error) {
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		ok, err := s.gate.HasCapacity(ctx, candidates[0].ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return &candidates[0], nil
	}

	cursor, err := s.store.Cursor(ctx, key)
	if err != nil {
		return nil, err
	}
	if cursor < 0 || cursor >= len(candidates) {
		cursor = 0
	}

	for offset := 0; offset < len(candidates); offset++ {
		idx := (cursor + offset) % len(candidates)
		ok, err := s.gate.HasCapacity(ctx, candidates[idx].ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := s.store.SetCursor(ctx, key, (idx+1)%len(candidates)); err != nil {
			return nil, err
		}
		return &candidates[idx], nil
	}
	return nil, nil
}
