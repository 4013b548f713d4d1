package syncer

import (
	"context"
	"sync"

	"khawater/store"
)

// Config parameterizes one synchronized collection: scope, order and the
// mapping from raw documents to local records.
type Config[T any] struct {
	Collection string
	Filters    []store.Filter
	Sort       store.Sort
	// Transform re-maps the full snapshot to local records. It runs on
	// every change batch; consumers always receive the complete ordered
	// result, never incremental diffs.
	Transform func(ctx context.Context, docs []store.Document) []T
}

// Syncer keeps a local ordered view of one remote collection. Close is
// idempotent and tears the underlying subscription down exactly once.
type Syncer[T any] struct {
	sub  *store.Subscription
	out  chan []T
	once sync.Once
}

func New[T any](ctx context.Context, st store.Store, cfg Config[T]) (*Syncer[T], error) {
	sub, err := st.Subscribe(ctx, cfg.Collection, cfg.Filters, cfg.Sort)
	if err != nil {
		return nil, err
	}

	s := &Syncer[T]{sub: sub, out: make(chan []T, 8)}
	go func() {
		defer close(s.out)
		for snap := range sub.Snapshots() {
			s.publish(cfg.Transform(ctx, snap))
		}
	}()
	return s, nil
}

// Updates delivers the full re-mapped collection after every change batch.
// The channel closes after Close.
func (s *Syncer[T]) Updates() <-chan []T {
	return s.out
}

func (s *Syncer[T]) Close() {
	s.once.Do(s.sub.Cancel)
}

// publish never blocks; if the consumer lags the oldest snapshot is
// replaced so the latest state wins.
func (s *Syncer[T]) publish(items []T) {
	select {
	case s.out <- items:
		return
	default:
	}
	select {
	case <-s.out:
	default:
	}
	select {
	case s.out <- items:
	default:
	}
}
