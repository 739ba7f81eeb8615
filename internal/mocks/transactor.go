package mocks

import (
	"context"
	"sync/atomic"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// MockTransactor runs the function with a nil transaction. The in-memory
// stores ignore the transaction handle, so nothing is rolled back.
type MockTransactor struct {
	WithinTxFn func(ctx context.Context, fn store.TxFn) error

	calls atomic.Int64
}

var _ store.Transactor = (*MockTransactor)(nil)

// WithinTx implements store.Transactor.
func (m *MockTransactor) WithinTx(ctx context.Context, fn store.TxFn) error {
	m.calls.Add(1)
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return fn(ctx, nil)
}

// Calls returns how many transactions were started.
func (m *MockTransactor) Calls() int {
	return int(m.calls.Load())
}
