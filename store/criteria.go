package store

// Predicate is one clause of a query criteria.
type Predicate interface {
	isPredicate()
}

// Eq matches documents whose field equals Value.
type Eq struct {
	Field string
	Value any
}

// In matches documents whose field equals any of Values.
type In struct {
	Field  string
	Values []any
}

// Match matches documents whose field matches any of Patterns. Patterns are
// regular expressions evaluated case-insensitively; callers escape literal
// input before building one.
type Match struct {
	Field    string
	Patterns []string
}

// Or matches when any of its predicates match.
type Or []Predicate

// And matches when all of its predicates match.
type And []Predicate

func (Eq) isPredicate()    {}
func (In) isPredicate()    {}
func (Match) isPredicate() {}
func (Or) isPredicate()    {}
func (And) isPredicate()   {}

// Criteria is a conjunction of predicates. The zero value matches every
// document. Predicates can only be added.
type Criteria struct {
	preds []Predicate
}

// Where builds a criteria from the given predicates.
func Where(preds ...Predicate) Criteria {
	var c Criteria
	c.Add(preds...)
	return c
}

// Add appends predicates, skipping nil ones.
func (c *Criteria) Add(preds ...Predicate) {
	for _, p := range preds {
		if p != nil {
			c.preds = append(c.preds, p)
		}
	}
}

// With returns a new criteria holding c's predicates followed by preds.
// c is left untouched.
func (c Criteria) With(preds ...Predicate) Criteria {
	out := Criteria{preds: make([]Predicate, 0, len(c.preds)+len(preds))}
	out.preds = append(out.preds, c.preds...)
	out.Add(preds...)
	return out
}

// Predicates returns a copy of the predicates in insertion order.
func (c Criteria) Predicates() []Predicate {
	out := make([]Predicate, len(c.preds))
	copy(out, c.preds)
	return out
}

// Len returns the number of top level predicates.
func (c Criteria) Len() int { return len(c.preds) }

// Empty reports whether c matches every document.
func (c Criteria) Empty() bool { return len(c.preds) == 0 }
