package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentGetDottedPath(t *testing.T) {
	doc := Document{
		"first-name": "Ada",
		"address":    map[string]any{"city": "London"},
	}

	v, ok := doc.Get("address.city")
	require.True(t, ok)
	assert.Equal(t, "London", v)

	v, ok = doc.Get("first-name")
	require.True(t, ok)
	assert.Equal(t, "Ada", v)

	_, ok = doc.Get("address.postcode")
	assert.False(t, ok)
}

func TestDocumentSetCreatesParents(t *testing.T) {
	doc := Document{}
	doc.Set("address.city", "Paris")

	v, ok := doc.Get("address.city")
	require.True(t, ok)
	assert.Equal(t, "Paris", v)
}

func TestMergeSubmittedLeavesWin(t *testing.T) {
	dst := Document{
		"first-name": "Ada",
		"address":    Document{"city": "London", "country": "UK"},
		"tags":       []any{"a", "b"},
	}
	src := Document{
		"first-name": "Grace",
		"address":    map[string]any{"city": "Arlington"},
		"tags":       []any{"c"},
	}

	out := Merge(dst, src)

	assert.Equal(t, "Grace", out["first-name"])
	addr, _ := out["address"].(Document)
	assert.Equal(t, "Arlington", addr["city"])
	assert.Equal(t, "UK", addr["country"])
	assert.Equal(t, []any{"c"}, out["tags"])
}

func TestCloneIsDeep(t *testing.T) {
	doc := Document{"address": Document{"city": "London"}}
	cp := doc.Clone()
	cp.Set("address.city", "Paris")

	v, _ := doc.Get("address.city")
	assert.Equal(t, "London", v)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(nil, "a"))
	assert.Equal(t, -1, Compare(2, 10))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, 0, Compare(int64(3), 3.0))
}

func TestEqualAcrossTypes(t *testing.T) {
	assert.True(t, Equal(30, "30"))
	assert.True(t, Equal("elonmusk", "elonmusk"))
	assert.False(t, Equal(nil, ""))
}

func TestCriteriaWithDoesNotAlias(t *testing.T) {
	base := Where(Eq{Field: "role", Value: "Admin"})
	a := base.With(Eq{Field: "x", Value: 1})
	b := base.With(Eq{Field: "y", Value: 2})

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, Eq{Field: "x", Value: 1}, a.Predicates()[1])
	assert.Equal(t, Eq{Field: "y", Value: 2}, b.Predicates()[1])
}

func TestSchemaPathsIncludeParents(t *testing.T) {
	s := NewSchema(Field{Path: "address.city", Kind: String}, Field{Path: "age", Kind: Number})

	assert.True(t, s.Path("address"))
	assert.True(t, s.Path("address.city"))
	assert.False(t, s.Path("password"))

	v, err := s.Cast("age", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = s.Cast("age", "old")
	assert.Error(t, err)
}
