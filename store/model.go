// Package store declares the data store contracts the request pipeline
// drives: models that build queries from criteria, queries that sort,
// page and execute, and records that can save themselves.
package store

import (
	"context"
	"errors"
)

// ErrDetached is returned when saving a record that no model owns.
var ErrDetached = errors.New("record is not attached to a model")

// Order is a sort direction.
type Order int

const (
	Asc Order = iota
	Desc
)

// Model is a collection of documents.
type Model interface {
	Name() string
	Schema() Schema
	Find(c Criteria) Query
	FindOne(c Criteria) Query
	Create(ctx context.Context, attrs Document) (*Record, error)
}

// Query is an in-flight query. Builder methods return the receiver so
// calls can be chained.
type Query interface {
	Sort(field string, order Order) Query
	Skip(n int) Query
	Limit(n int) Query
	Populate(paths ...string) Query

	// Count returns the number of documents matching the criteria,
	// ignoring skip and limit.
	Count(ctx context.Context) (int, error)
	All(ctx context.Context) ([]*Record, error)

	// One returns the first match, or nil without error when nothing
	// matches.
	One(ctx context.Context) (*Record, error)
}

// Saver persists a document for a record.
type Saver interface {
	Save(ctx context.Context, doc Document) error
}

// SaverFunc adapts a func to [Saver].
type SaverFunc func(ctx context.Context, doc Document) error

func (f SaverFunc) Save(ctx context.Context, doc Document) error {
	return f(ctx, doc)
}

// Record is a fetched document bound to the model it came from.
type Record struct {
	Doc   Document
	saver Saver
}

func NewRecord(doc Document, s Saver) *Record {
	return &Record{Doc: doc, saver: s}
}

// Save persists the current document.
func (r *Record) Save(ctx context.Context) error {
	if r == nil || r.saver == nil {
		return ErrDetached
	}
	return r.saver.Save(ctx, r.Doc)
}

// Object returns a deep copy of the document.
func (r *Record) Object() Document {
	if r == nil {
		return nil
	}
	return r.Doc.Clone()
}

// Discriminator scopes a model to documents carrying Key=Value, letting
// several models share one collection.
type Discriminator struct {
	Key   string
	Value any
}

// Scope narrows c to the discriminated documents.
func (d *Discriminator) Scope(c Criteria) Criteria {
	if d == nil || d.Key == "" {
		return c
	}
	return c.With(Eq{Field: d.Key, Value: d.Value})
}

// Stamp marks doc as belonging to the discriminated model.
func (d *Discriminator) Stamp(doc Document) {
	if d == nil || d.Key == "" {
		return
	}
	doc[d.Key] = d.Value
}
