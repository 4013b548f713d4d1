package store

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is the raw, loosely-typed record shape exchanged with the store.
// Typed mapping happens once at the models boundary.
type Document = bson.M

var ErrNotFound = errors.New("store: document not found")

// serverTimestamp is the sentinel resolved by the store's own clock when a
// document is created or mutated.
type serverTimestamp struct{}

var ServerTimestamp serverTimestamp

func isServerTimestamp(v interface{}) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

type FilterOp int

const (
	// Eq matches documents whose field equals the value.
	Eq FilterOp = iota
	// Contains matches documents whose array field contains the value.
	Contains
	// Prefix matches documents whose string field starts with the value.
	Prefix
)

type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

func Where(field string, value interface{}) Filter {
	return Filter{Field: field, Op: Eq, Value: value}
}

func WhereContains(field string, value interface{}) Filter {
	return Filter{Field: field, Op: Contains, Value: value}
}

func WherePrefix(field, value string) Filter {
	return Filter{Field: field, Op: Prefix, Value: value}
}

type Sort struct {
	Field string
	Desc  bool
}

// Update is one partial document mutation. All operators in a single Update
// are applied atomically with respect to the target document.
type Update struct {
	Set      Document
	AddToSet Document
	Pull     Document
	Inc      map[string]int64
}

func (u Update) empty() bool {
	return len(u.Set) == 0 && len(u.AddToSet) == 0 && len(u.Pull) == 0 && len(u.Inc) == 0
}

// Store is the document store consumed by the sync layer. Implementations:
// MongoStore (change streams) and MemStore (in-memory, tests and bootstrap).
type Store interface {
	Subscribe(ctx context.Context, collection string, filters []Filter, sort Sort) (*Subscription, error)
	GetOne(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, filters []Filter, sort Sort, limit int64) ([]Document, error)
	Create(ctx context.Context, collection string, fields Document) (string, error)
	Mutate(ctx context.Context, collection, id string, update Update) error
	Delete(ctx context.Context, collection, id string) error
}

// Subscription delivers full ordered snapshots of a filtered collection.
// Cancel is idempotent: the teardown runs exactly once.
type Subscription struct {
	ch     chan []Document
	cancel func()
	once   sync.Once
}

func newSubscription(ch chan []Document, cancel func()) *Subscription {
	return &Subscription{ch: ch, cancel: cancel}
}

// Snapshots returns the snapshot stream. The channel is closed after Cancel
// or when the owning context ends.
func (s *Subscription) Snapshots() <-chan []Document {
	return s.ch
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// sendLatest pushes a snapshot without blocking; if the consumer lags, the
// oldest queued snapshot is dropped so the latest state always wins.
func sendLatest(ch chan []Document, snap []Document) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
