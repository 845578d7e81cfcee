// Package loader batches and caches lookups of referenced users within a
// single request. One loader instance lives exactly as long as its inbound
// request; nothing is shared across requests.
package loader

import (
	"context"
	"sync"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/model"
)

// maxBatchKeys caps the IN-list size of one batch fetch; larger batches are
// split into multiple statements.
const maxBatchKeys = 1000

// UserFetcher is the multi-key fetch primitive the loader batches over.
type UserFetcher interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

// Thunk resolves to the loaded user once the batch completes. A nil user
// with a nil error means the identifier is unknown.
type Thunk func() (*model.User, error)

// UserLoader coalesces Load calls issued before the first thunk runs into
// one underlying fetch, and caches each identifier's result for the
// lifetime of the loader.
type UserLoader struct {
	fetcher UserFetcher

	// BatchHook, when set, observes each dispatched batch and its unique
	// key count. Used for metrics.
	BatchHook func(keyCount int)

	mu      sync.Mutex
	pending *batch
	cache   map[string]*model.User
	// cached identifiers that resolved, including explicit not-found
	settled map[string]struct{}
}

type batch struct {
	ids  []string
	seen map[string]struct{}

	once    sync.Once
	done    chan struct{}
	results map[string]*model.User
	err     error
}

// NewUserLoader builds a loader for one request's resolution phase.
func NewUserLoader(fetcher UserFetcher) *UserLoader {
	return &UserLoader{
		fetcher: fetcher,
		cache:   make(map[string]*model.User),
		settled: make(map[string]struct{}),
	}
}

// Load registers an identifier for the current batch and returns a thunk.
// All identifiers registered before any thunk is invoked are fetched in one
// multi-key query. Identifiers already resolved during this request are
// answered from cache without a new fetch.
func (l *UserLoader) Load(ctx context.Context, id string) Thunk {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.settled[id]; ok {
		user := l.cache[id]
		return func() (*model.User, error) { return user, nil }
	}

	if l.pending == nil {
		l.pending = &batch{
			seen: make(map[string]struct{}),
			done: make(chan struct{}),
		}
	}
	b := l.pending
	if _, ok := b.seen[id]; !ok {
		b.seen[id] = struct{}{}
		b.ids = append(b.ids, id)
	}

	return func() (*model.User, error) {
		l.dispatch(ctx, b)
		<-b.done
		if b.err != nil {
			return nil, b.err
		}
		return b.results[id], nil
	}
}

// dispatch runs the batch fetch exactly once. The first thunk to run closes
// the batch: Load calls arriving afterwards start a new one.
func (l *UserLoader) dispatch(ctx context.Context, b *batch) {
	b.once.Do(func() {
		l.mu.Lock()
		if l.pending == b {
			l.pending = nil
		}
		ids := b.ids
		l.mu.Unlock()

		if l.BatchHook != nil {
			l.BatchHook(len(ids))
		}

		results := make(map[string]*model.User, len(ids))
		for start := 0; start < len(ids); start += maxBatchKeys {
			end := start + maxBatchKeys
			if end > len(ids) {
				end = len(ids)
			}
			chunk, err := l.fetcher.GetUsersByIDs(ctx, ids[start:end])
			if err != nil {
				// Every pending caller observes the same failure; the
				// batch never partially succeeds.
				b.err = apperrors.Upstream("failed to batch load users", err)
				close(b.done)
				return
			}
			for id, user := range chunk {
				results[id] = user
			}
		}
		b.results = results

		l.mu.Lock()
		for _, id := range ids {
			l.cache[id] = results[id]
			l.settled[id] = struct{}{}
		}
		l.mu.Unlock()

		close(b.done)
	})
}

type loaderContextKey struct{}

// WithLoader injects a request-scoped loader into the context.
func WithLoader(ctx context.Context, l *UserLoader) context.Context {
	return context.WithValue(ctx, loaderContextKey{}, l)
}

// FromContext retrieves the request's loader.
func FromContext(ctx context.Context) (*UserLoader, bool) {
	l, ok := ctx.Value(loaderContextKey{}).(*UserLoader)
	return l, ok
}
