// Package memstore is an in-process document store implementing the
// store contracts. Collections are safe for concurrent use.
package memstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"jsonapi/store"

	"github.com/google/uuid"
)

type shared struct {
	mu   sync.RWMutex
	docs []store.Document
}

// Collection is a named set of documents.
type Collection struct {
	name    string
	schema  store.Schema
	idField string
	disc    *store.Discriminator
	refs    store.Refs
	data    *shared
}

type Option func(*Collection)

// WithIDField sets the identifier field, "_id" by default.
func WithIDField(field string) Option {
	return func(c *Collection) { c.idField = field }
}

// WithRefs declares populatable paths.
func WithRefs(refs store.Refs) Option {
	return func(c *Collection) { c.refs = refs }
}

func New(name string, schema store.Schema, opts ...Option) *Collection {
	c := &Collection{
		name:    name,
		schema:  schema,
		idField: "_id",
		data:    &shared{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discriminate returns a model sharing c's documents but scoped to those
// stamped with d.
func (c *Collection) Discriminate(name string, schema store.Schema, d store.Discriminator) *Collection {
	return &Collection{
		name:    name,
		schema:  schema,
		idField: c.idField,
		disc:    &d,
		refs:    c.refs,
		data:    c.data,
	}
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Schema() store.Schema { return c.schema }

// Insert seeds documents, assigning ids where missing.
func (c *Collection) Insert(docs ...store.Document) {
	c.data.mu.Lock()
	defer c.data.mu.Unlock()
	for _, d := range docs {
		cp := d.Clone()
		c.disc.Stamp(cp)
		if _, ok := cp[c.idField]; !ok {
			cp[c.idField] = uuid.NewString()
		}
		c.data.docs = append(c.data.docs, cp)
	}
}

func (c *Collection) Find(crit store.Criteria) store.Query {
	return &query{c: c, crit: c.disc.Scope(crit)}
}

func (c *Collection) FindOne(crit store.Criteria) store.Query {
	return &query{c: c, crit: c.disc.Scope(crit), one: true}
}

func (c *Collection) Create(ctx context.Context, attrs store.Document) (*store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := attrs.Clone()
	if doc == nil {
		doc = store.Document{}
	}
	c.disc.Stamp(doc)
	if _, ok := doc[c.idField]; !ok {
		doc[c.idField] = uuid.NewString()
	}

	c.data.mu.Lock()
	defer c.data.mu.Unlock()
	for _, d := range c.data.docs {
		if store.Equal(d[c.idField], doc[c.idField]) {
			return nil, fmt.Errorf("%s: duplicate %s %v", c.name, c.idField, doc[c.idField])
		}
	}
	c.data.docs = append(c.data.docs, doc.Clone())

	return store.NewRecord(doc, saver{c}), nil
}

type saver struct {
	c *Collection
}

func (s saver) Save(ctx context.Context, doc store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, ok := doc[s.c.idField]
	if !ok {
		return fmt.Errorf("%s: document has no %s", s.c.name, s.c.idField)
	}
	s.c.disc.Stamp(doc)

	s.c.data.mu.Lock()
	defer s.c.data.mu.Unlock()
	for i, d := range s.c.data.docs {
		if store.Equal(d[s.c.idField], id) {
			s.c.data.docs[i] = doc.Clone()
			return nil
		}
	}
	return fmt.Errorf("%s: no document with %s=%v", s.c.name, s.c.idField, id)
}

type sortKey struct {
	field string
	order store.Order
}

type query struct {
	c        *Collection
	crit     store.Criteria
	one      bool
	sorts    []sortKey
	skip     int
	limit    int
	populate []string
}

func (q *query) Sort(field string, order store.Order) store.Query {
	q.sorts = append(q.sorts, sortKey{field: field, order: order})
	return q
}

func (q *query) Skip(n int) store.Query {
	q.skip = n
	return q
}

func (q *query) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q *query) Populate(paths ...string) store.Query {
	q.populate = append(q.populate, paths...)
	return q
}

func (q *query) matching() []store.Document {
	q.c.data.mu.RLock()
	defer q.c.data.mu.RUnlock()

	var out []store.Document
	for _, d := range q.c.data.docs {
		if matchAll(d, q.crit.Predicates()) {
			out = append(out, d.Clone())
		}
	}
	return out
}

func (q *query) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(q.matching()), nil
}

func (q *query) All(ctx context.Context) ([]*store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := q.matching()
	if len(q.sorts) > 0 {
		sort.SliceStable(docs, func(i, j int) bool {
			for _, k := range q.sorts {
				a, _ := docs[i].Get(k.field)
				b, _ := docs[j].Get(k.field)
				cmp := store.Compare(a, b)
				if cmp == 0 {
					continue
				}
				if k.order == store.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if q.skip > 0 {
		if q.skip >= len(docs) {
			docs = nil
		} else {
			docs = docs[q.skip:]
		}
	}
	if q.limit > 0 && len(docs) > q.limit {
		docs = docs[:q.limit]
	}
	if q.one && len(docs) > 1 {
		docs = docs[:1]
	}

	if err := store.Populate(ctx, docs, q.c.refs, q.populate); err != nil {
		return nil, err
	}

	recs := make([]*store.Record, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, store.NewRecord(d, saver{q.c}))
	}
	return recs, nil
}

func (q *query) One(ctx context.Context) (*store.Record, error) {
	q.one = true
	recs, err := q.All(ctx)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func matchAll(doc store.Document, preds []store.Predicate) bool {
	for _, p := range preds {
		if !match(doc, p) {
			return false
		}
	}
	return true
}

func match(doc store.Document, p store.Predicate) bool {
	switch t := p.(type) {
	case store.Eq:
		return matchValue(doc, t.Field, func(v any) bool { return store.Equal(v, t.Value) })
	case store.In:
		return matchValue(doc, t.Field, func(v any) bool {
			for _, want := range t.Values {
				if store.Equal(v, want) {
					return true
				}
			}
			return false
		})
	case store.Match:
		res := make([]*regexp.Regexp, 0, len(t.Patterns))
		for _, p := range t.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				continue
			}
			res = append(res, re)
		}
		return matchValue(doc, t.Field, func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			for _, re := range res {
				if re.MatchString(s) {
					return true
				}
			}
			return false
		})
	case store.Or:
		for _, sub := range t {
			if match(doc, sub) {
				return true
			}
		}
		return false
	case store.And:
		return matchAll(doc, t)
	default:
		return false
	}
}

// matchValue applies fn to the field value, or to each element when the
// value is an array.
func matchValue(doc store.Document, field string, fn func(any) bool) bool {
	v, ok := doc.Get(field)
	if !ok {
		return fn(nil)
	}
	if arr, ok := v.([]any); ok {
		for _, e := range arr {
			if fn(e) {
				return true
			}
		}
		return false
	}
	return fn(v)
}
