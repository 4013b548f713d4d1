package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const subscriptionBuffer = 64

// MemStore is an in-memory Store with the same semantics as MongoStore:
// last-write-wins per field, atomic per-document mutations, full-snapshot
// subscriptions. Used by tests and local bootstrap.
type MemStore struct {
	mu    sync.Mutex
	colls map[string]*memCollection
	subs  []*memSub
	now   func() int64
}

type memCollection struct {
	docs  map[string]Document
	order []string // insertion order, stable tie-break for equal sort keys
}

type memSub struct {
	collection string
	filters    []Filter
	sort       Sort
	ch         chan []Document
	closed     bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		colls: make(map[string]*memCollection),
		now:   func() int64 { return time.Now().Unix() },
	}
}

// SetClock overrides the server-timestamp clock. Tests only.
func (m *MemStore) SetClock(now func() int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemStore) coll(name string) *memCollection {
	c, ok := m.colls[name]
	if !ok {
		c = &memCollection{docs: make(map[string]Document)}
		m.colls[name] = c
	}
	return c
}

func (m *MemStore) Subscribe(ctx context.Context, collection string, filters []Filter, srt Sort) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ms := &memSub{
		collection: collection,
		filters:    filters,
		sort:       srt,
		ch:         make(chan []Document, subscriptionBuffer),
	}
	m.subs = append(m.subs, ms)

	sub := newSubscription(ms.ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !ms.closed {
			ms.closed = true
			close(ms.ch)
		}
	})

	// Initial snapshot so consumers start from current state.
	sendLatest(ms.ch, m.snapshotLocked(collection, filters, srt, 0))

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Cancel()
		}()
	}
	return sub, nil
}

func (m *MemStore) GetOne(ctx context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.coll(collection).docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *MemStore) Query(ctx context.Context, collection string, filters []Filter, srt Sort, limit int64) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(collection, filters, srt, limit), nil
}

func (m *MemStore) Create(ctx context.Context, collection string, fields Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := cloneDoc(fields)
	id, _ := doc["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		doc["_id"] = id
	}
	for k, v := range doc {
		if isServerTimestamp(v) {
			doc[k] = m.now()
		}
	}

	c := m.coll(collection)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
	m.notifyLocked(collection)
	return id, nil
}

func (m *MemStore) Mutate(ctx context.Context, collection, id string, update Update) error {
	if update.empty() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	applyUpdate(doc, update, m.now())
	m.notifyLocked(collection)
	return nil
}

func (m *MemStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	m.notifyLocked(collection)
	return nil
}

func (m *MemStore) notifyLocked(collection string) {
	for _, s := range m.subs {
		if s.closed || s.collection != collection {
			continue
		}
		sendLatest(s.ch, m.snapshotLocked(collection, s.filters, s.sort, 0))
	}
}

func (m *MemStore) snapshotLocked(collection string, filters []Filter, srt Sort, limit int64) []Document {
	c := m.coll(collection)
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if matches(doc, filters) {
			out = append(out, cloneDoc(doc))
		}
	}
	if srt.Field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			if srt.Desc {
				return lessValue(out[j][srt.Field], out[i][srt.Field])
			}
			return lessValue(out[i][srt.Field], out[j][srt.Field])
		})
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		switch f.Op {
		case Eq:
			if !reflect.DeepEqual(doc[f.Field], f.Value) {
				return false
			}
		case Contains:
			found := false
			for _, e := range toSlice(doc[f.Field]) {
				if reflect.DeepEqual(e, f.Value) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case Prefix:
			s, ok := doc[f.Field].(string)
			p, pok := f.Value.(string)
			if !ok || !pok || !strings.HasPrefix(s, p) {
				return false
			}
		}
	}
	return true
}

func applyUpdate(doc Document, u Update, now int64) {
	for k, v := range u.Set {
		if isServerTimestamp(v) {
			v = now
		}
		doc[k] = v
	}
	for k, v := range u.Inc {
		doc[k] = toInt64(doc[k]) + v
	}
	for k, v := range u.AddToSet {
		arr := toSlice(doc[k])
		exists := false
		for _, e := range arr {
			if reflect.DeepEqual(e, v) {
				exists = true
				break
			}
		}
		if !exists {
			arr = append(arr, v)
		}
		doc[k] = arr
	}
	for k, v := range u.Pull {
		arr := toSlice(doc[k])
		kept := arr[:0]
		for _, e := range arr {
			if !reflect.DeepEqual(e, v) {
				kept = append(kept, e)
			}
		}
		doc[k] = append([]interface{}(nil), kept...)
	}
}

func toSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return append([]interface{}(nil), s...)
	case bson.A:
		return append([]interface{}(nil), s...)
	case []string:
		out := make([]interface{}, 0, len(s))
		for _, e := range s {
			out = append(out, e)
		}
		return out
	default:
		return nil
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func lessValue(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return as < bs
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func cloneDoc(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		switch s := v.(type) {
		case []interface{}:
			out[k] = append([]interface{}(nil), s...)
		case bson.A:
			out[k] = append(bson.A(nil), s...)
		case []string:
			out[k] = append([]string(nil), s...)
		case map[string]string:
			cp := make(map[string]string, len(s))
			for mk, mv := range s {
				cp[mk] = mv
			}
			out[k] = cp
		case Document:
			out[k] = cloneDoc(s)
		default:
			out[k] = v
		}
	}
	return out
}
