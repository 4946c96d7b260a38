package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pulsefeed/autopub/internal/domain"
)

// MockPostStore is a hand-written, in-memory implementation of PostStore
// used in unit tests. No mock-generation library needed.
//
// Now is injectable so tests control created_at ordering deterministically.
type MockPostStore struct {
	mu     sync.RWMutex
	posts  map[int64]*domain.Post
	nextID int64

	Now func() time.Time

	// Optional error overrides — set in tests to simulate failure paths.
	EnqueueErr      error
	DequeueNextErr  error
	UpdateStatusErr error
	SetResultErr    error
}

func NewMockPostStore() *MockPostStore {
	return &MockPostStore{
		posts:  make(map[int64]*domain.Post),
		nextID: 1,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *MockPostStore) Enqueue(_ context.Context, p *domain.Post) error {
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	p.ID = m.nextID
	m.nextID++
	p.Status = domain.StatusPending
	p.CreatedAt = now
	p.UpdatedAt = now

	clone := *p
	m.posts[p.ID] = &clone
	return nil
}

func (m *MockPostStore) DequeueNext(_ context.Context) (*domain.Post, error) {
	if m.DequeueNextErr != nil {
		return nil, m.DequeueNextErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var oldest *domain.Post
	for _, p := range m.posts {
		if p.Status != domain.StatusPending {
			continue
		}
		if oldest == nil || p.CreatedAt.Before(oldest.CreatedAt) ||
			(p.CreatedAt.Equal(oldest.CreatedAt) && p.ID < oldest.ID) {
			oldest = p
		}
	}
	if oldest == nil {
		return nil, domain.ErrNoPending
	}
	clone := *oldest
	return &clone, nil
}

func (m *MockPostStore) UpdateStatus(_ context.Context, id int64, status domain.Status) error {
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = m.Now()
	return nil
}

func (m *MockPostStore) SetResult(_ context.Context, id int64, status domain.Status, externalRef, errMsg *string) error {
	if m.SetResultErr != nil {
		return m.SetResultErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.ExternalRef = externalRef
	p.ErrorMessage = errMsg
	p.UpdatedAt = m.Now()
	return nil
}

func (m *MockPostStore) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *MockPostStore) List(_ context.Context, f domain.ListFilter) ([]*domain.Post, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.Post
	for _, p := range m.posts {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Platform != nil && p.Platform != *f.Platform {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (m *MockPostStore) Stats(_ context.Context) (*domain.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats domain.Stats
	for _, p := range m.posts {
		switch p.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusProcessing:
			stats.Processing++
		case domain.StatusDone:
			stats.Done++
		case domain.StatusFailed:
			stats.Failed++
		}
		stats.Total++
	}
	return &stats, nil
}
