// Package mocks provides in-memory fakes and test doubles shared by the
// service and API tests.
//
// The store fakes keep real state behind a mutex so tests can exercise
// uniqueness, not-found and version-conflict paths without a database. Each
// fake also exposes function fields that, when set, replace the default
// behavior of a single method:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, errors.New("boom")
//	}
package mocks
