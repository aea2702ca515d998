package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/danuwira/duitbot/internal/common"
	"github.com/danuwira/duitbot/internal/model"
)

// MockStore is an in-memory Store implementation for testing. Each method
// can be overridden with a func field to inject failures.
type MockStore struct {
	AppendFunc func(ctx context.Context, tx model.Transaction) error
	ListFunc   func(ctx context.Context) ([]model.Transaction, error)
	UpdateFunc func(ctx context.Context, ordinal int, tx model.Transaction) error
	DeleteFunc func(ctx context.Context, ordinal int) error

	Rows []model.Transaction

	EnsureHeaderCalls int
	AppendCalls       int
	ListCalls         int
	UpdateCalls       int
	DeleteCalls       int

	mu sync.Mutex
}

// NewMockStore creates a mock ledger seeded with the given rows.
func NewMockStore(rows ...model.Transaction) *MockStore {
	return &MockStore{Rows: rows}
}

// EnsureHeader implements Store.
func (m *MockStore) EnsureHeader(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureHeaderCalls++
	return nil
}

// Append implements Store.
func (m *MockStore) Append(ctx context.Context, tx model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls++
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx)
	}
	m.Rows = append(m.Rows, tx)
	return nil
}

// List implements Store.
func (m *MockStore) List(ctx context.Context) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	out := make([]model.Transaction, len(m.Rows))
	copy(out, m.Rows)
	return out, nil
}

// Update implements Store.
func (m *MockStore) Update(ctx context.Context, ordinal int, tx model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ordinal, tx)
	}
	if err := ValidateOrdinal(ordinal, len(m.Rows)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	m.Rows[ordinal-1] = tx
	return nil
}

// Delete implements Store.
func (m *MockStore) Delete(ctx context.Context, ordinal int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ordinal)
	}
	if err := ValidateOrdinal(ordinal, len(m.Rows)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	}
	m.Rows = append(m.Rows[:ordinal-1], m.Rows[ordinal:]...)
	return nil
}
