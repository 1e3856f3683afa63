package pipeline

import (
	"context"
	"net/url"
	"testing"

	"jsonapi/store"
	"jsonapi/store/memstore"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	code  int
	body  any
	calls int
}

func (r *recorder) JSON(code int, obj any) {
	r.code = code
	r.body = obj
	r.calls++
}

func (r *recorder) response(t *testing.T) Response {
	t.Helper()
	resp, ok := r.body.(Response)
	require.True(t, ok, "renderer got %T", r.body)
	return resp
}

var userSchema = store.NewSchema(
	store.Field{Path: "username", Kind: store.String},
	store.Field{Path: "first-name", Kind: store.String},
	store.Field{Path: "last-name", Kind: store.String},
	store.Field{Path: "age", Kind: store.Number},
	store.Field{Path: "address.city", Kind: store.String},
)

func users() *memstore.Collection {
	c := memstore.New("users", userSchema)
	c.Insert(
		store.Document{"_id": "u1", "username": "sergeybrin", "first-name": "Sergey", "last-name": "Brin", "age": 51, "address": store.Document{"city": "Moscow"}},
		store.Document{"_id": "u2", "username": "markzuckerberg", "first-name": "Mark", "last-name": "Zuckerberg", "age": 40, "address": store.Document{"city": "White Plains"}},
		store.Document{"_id": "u3", "username": "elonmusk", "first-name": "Elon", "last-name": "Musk", "age": 53, "address": store.Document{"city": "Pretoria"}},
		store.Document{"_id": "u4", "username": "neilarmstrong", "first-name": "Neil", "last-name": "Armstrong", "age": 82, "address": store.Document{"city": "Wapakoneta"}},
		store.Document{"_id": "u5", "username": "adalovelace", "first-name": "Ada", "last-name": "Lovelace", "age": 36, "address": store.Document{"city": "London"}},
	)
	return c
}

func listState(m store.Model) *State {
	return &State{
		Archetype: GetList,
		ID:        "_id",
		Model:     m,
		Limit:     20,
		Search:    SearchConfig{Active: true, Fields: []string{"first-name", "last-name"}},
	}
}

func oneState(a Archetype, m store.Model) *State {
	return &State{Archetype: a, ID: "_id", Model: m, Limit: 20}
}

func query(raw string) url.Values {
	v, err := url.ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func runArchetype(t *testing.T, a Archetype, st *State, req *Request) error {
	t.Helper()
	p, ok := Lookup(a)
	require.True(t, ok)
	return Run(context.Background(), p, st, req)
}

func lastNames(t *testing.T, data any) []string {
	t.Helper()
	items, ok := data.([]any)
	require.True(t, ok, "data is %T", data)
	out := make([]string, 0, len(items))
	for _, it := range items {
		doc, ok := it.(store.Document)
		require.True(t, ok, "item is %T", it)
		out = append(out, doc["last-name"].(string))
	}
	return out
}

// countingModel wraps a model and counts store access.
type countingModel struct {
	store.Model
	calls int
}

func (m *countingModel) Find(c store.Criteria) store.Query {
	m.calls++
	return m.Model.Find(c)
}

func (m *countingModel) FindOne(c store.Criteria) store.Query {
	m.calls++
	return m.Model.FindOne(c)
}

func (m *countingModel) Create(ctx context.Context, attrs store.Document) (*store.Record, error) {
	m.calls++
	return m.Model.Create(ctx, attrs)
}
