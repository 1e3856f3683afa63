// Package mongostore keeps documents in MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"jsonapi/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is a model backed by a MongoDB collection.
type Collection struct {
	coll    *mongo.Collection
	name    string
	schema  store.Schema
	idField string
	disc    *store.Discriminator
	refs    store.Refs
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

func New(coll *mongo.Collection, name string, schema store.Schema, opts ...Option) *Collection {
	c := &Collection{
		coll:    coll,
		name:    name,
		schema:  schema,
		idField: "_id",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discriminate returns a model stored in c's collection but scoped to
// documents stamped with d.
func (c *Collection) Discriminate(name string, schema store.Schema, d store.Discriminator) *Collection {
	cp := *c
	cp.name = name
	cp.schema = schema
	cp.disc = &d
	return &cp
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Schema() store.Schema { return c.schema }

func (c *Collection) Find(crit store.Criteria) store.Query {
	return &query{c: c, crit: c.disc.Scope(crit)}
}

func (c *Collection) FindOne(crit store.Criteria) store.Query {
	return &query{c: c, crit: c.disc.Scope(crit), one: true}
}

func (c *Collection) Create(ctx context.Context, attrs store.Document) (*store.Record, error) {
	doc := attrs.Clone()
	if doc == nil {
		doc = store.Document{}
	}
	c.disc.Stamp(doc)
	if _, ok := doc[c.idField]; !ok {
		doc[c.idField] = primitive.NewObjectID()
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert %s: %w", c.name, err)
	}
	return store.NewRecord(doc, saver{c}), nil
}

type saver struct {
	c *Collection
}

func (s saver) Save(ctx context.Context, doc store.Document) error {
	id, ok := doc[s.c.idField]
	if !ok {
		return fmt.Errorf("%s: document has no %s", s.c.name, s.c.idField)
	}
	s.c.disc.Stamp(doc)
	res, err := s.c.coll.ReplaceOne(ctx, bson.M{s.c.idField: id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s: %w", s.c.name, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: no document with %s=%v", s.c.name, s.c.idField, id)
	}
	return nil
}

type query struct {
	c        *Collection
	crit     store.Criteria
	one      bool
	sort     bson.D
	skip     int
	limit    int
	populate []string
}

func (q *query) Sort(field string, order store.Order) store.Query {
	dir := 1
	if order == store.Desc {
		dir = -1
	}
	q.sort = append(q.sort, bson.E{Key: field, Value: dir})
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

func (q *query) Count(ctx context.Context) (int, error) {
	f, err := filter(q.crit, q.c.idField)
	if err != nil {
		return 0, err
	}
	n, err := q.c.coll.CountDocuments(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.c.name, err)
	}
	return int(n), nil
}

func (q *query) findOptions() *options.FindOptions {
	opts := options.Find()
	if len(q.sort) > 0 {
		opts.SetSort(q.sort)
	}
	if q.skip > 0 {
		opts.SetSkip(int64(q.skip))
	}
	switch {
	case q.one:
		opts.SetLimit(1)
	case q.limit > 0:
		opts.SetLimit(int64(q.limit))
	}
	return opts
}

func (q *query) All(ctx context.Context) ([]*store.Record, error) {
	f, err := filter(q.crit, q.c.idField)
	if err != nil {
		return nil, err
	}
	cur, err := q.c.coll.Find(ctx, f, q.findOptions())
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", q.c.name, err)
	}
	defer cur.Close(ctx)

	results := make([]bson.M, 0)
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode %s: %w", q.c.name, err)
	}

	docs := make([]store.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, toDocument(r))
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
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}
