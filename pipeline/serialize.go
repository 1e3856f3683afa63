package pipeline

import (
	"context"

	"jsonapi/store"
)

var Serialize Stage = StageFunc(serialize)

// serialize turns fetched records into response data, through the route
// mapper when one is configured. Non-lean routes hand copies of the stored
// documents to the response.
func serialize(_ context.Context, st *State, _ *Request) error {
	conv := func(rec *store.Record) any {
		doc := rec.Doc
		if !st.Lean {
			doc = rec.Object()
		}
		if st.Mapper != nil {
			return st.Mapper.Serialize(doc)
		}
		return doc
	}

	switch {
	case st.Records != nil:
		out := make([]any, 0, len(st.Records))
		for _, rec := range st.Records {
			out = append(out, conv(rec))
		}
		st.Resources = out
	case st.Record != nil:
		st.Resource = conv(st.Record)
	}
	return nil
}
