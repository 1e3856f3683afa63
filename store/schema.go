package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schema answers whether a field path exists on a model.
type Schema interface {
	Path(name string) bool
}

// Caster is implemented by schemas that can convert raw query string
// values into the stored type of a field.
type Caster interface {
	Cast(path, raw string) (any, error)
}

// Kind is the stored type of a schema field.
type Kind int

const (
	Any Kind = iota
	String
	Number
	Bool
	Date
)

// Field declares one schema path. Nested paths use dots: "address.city".
type Field struct {
	Path string
	Kind Kind
}

// Fields is a static Schema built from declared paths.
type Fields struct {
	kinds map[string]Kind
}

// NewSchema declares a schema. Declaring "address.city" also declares
// "address".
func NewSchema(fields ...Field) *Fields {
	s := &Fields{kinds: make(map[string]Kind, len(fields))}
	for _, f := range fields {
		s.kinds[f.Path] = f.Kind
		parts := strings.Split(f.Path, ".")
		for i := 1; i < len(parts); i++ {
			parent := strings.Join(parts[:i], ".")
			if _, ok := s.kinds[parent]; !ok {
				s.kinds[parent] = Any
			}
		}
	}
	return s
}

// Paths is shorthand for a schema whose fields are all strings.
func Paths(paths ...string) *Fields {
	fields := make([]Field, 0, len(paths))
	for _, p := range paths {
		fields = append(fields, Field{Path: p, Kind: String})
	}
	return NewSchema(fields...)
}

func (s *Fields) Path(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.kinds[name]
	return ok
}

func (s *Fields) Cast(path, raw string) (any, error) {
	switch s.kinds[path] {
	case Number:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("cast %s: %w", path, err)
		}
		return f, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("cast %s: %w", path, err)
		}
		return b, nil
	case Date:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("cast %s: %w", path, err)
		}
		return t, nil
	default:
		return raw, nil
	}
}
