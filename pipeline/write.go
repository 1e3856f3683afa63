package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"jsonapi/domain"
	"jsonapi/sanitizer"
	"jsonapi/store"

	"github.com/rs/zerolog"
)

var (
	ValidateUpdate Stage = StageFunc(validateUpdate)
	ValidateCreate Stage = StageFunc(validateCreate)
	Sanitize       Stage = StageFunc(sanitize)
	Find           Stage = StageFunc(find)
	Update         Stage = StageFunc(update)
	Create         Stage = StageFunc(create)
)

func validateUpdate(_ context.Context, _ *State, req *Request) error {
	if err := validatePayload(req); err != nil {
		return err
	}
	if id := req.Body.Data.ID; id == nil || id == "" {
		return domain.ValidationError{Field: "data.id", Msg: "request failed validation"}
	}
	return nil
}

func validateCreate(_ context.Context, _ *State, req *Request) error {
	return validatePayload(req)
}

func validatePayload(req *Request) error {
	if req == nil || req.Body == nil || req.Body.Data == nil {
		return domain.ValidationError{Field: "data", Msg: "request failed validation"}
	}
	if len(req.Body.Data.Attributes) == 0 {
		return domain.ValidationError{Field: "data.attributes", Msg: "request failed validation"}
	}
	return nil
}

// sanitize escapes the configured attributes in place so that everything
// persisted afterwards is already safe.
func sanitize(ctx context.Context, st *State, req *Request) error {
	attrs := req.Attributes()
	if attrs == nil {
		return domain.ValidationError{Field: "data.attributes", Msg: "request failed validation"}
	}
	cfg := st.Sanitize
	if !cfg.Active {
		return nil
	}
	s := cfg.Sanitizer
	if s == nil {
		s = sanitizer.HTML
	}

	var n int
	for _, field := range attrs.Keys() {
		if cfg.Fields != nil && !slices.Contains(cfg.Fields, field) {
			continue
		}
		attrs[field] = s.Sanitize(attrs[field])
		n++
	}
	zerolog.Ctx(ctx).Debug().Int("fields", n).Msg("sanitized attributes")
	return nil
}

func find(ctx context.Context, st *State, req *Request) error {
	if st.Model == nil {
		return domain.ModelNotFoundError{}
	}
	id := req.Param(st.ID)
	if st.ID == "" || id == "" {
		return domain.InvalidParameterError{Param: st.ID}
	}

	zerolog.Ctx(ctx).Debug().Str("field", st.ID).Str("id", id).Msg("finding resource")
	rec, err := st.Model.FindOne(st.Criteria.With(store.Eq{Field: st.ID, Value: id})).One(ctx)
	if err != nil {
		return domain.InternalError{Msg: "failed to find record", Err: err}
	}
	if rec == nil {
		return domain.NotFoundError{Resource: "record"}
	}
	st.Record = rec
	return nil
}

// update merges the submitted attributes into the found record and saves
// it. The identifier field cannot be changed through attributes.
func update(ctx context.Context, st *State, req *Request) error {
	if st.Record == nil {
		return domain.NotFoundError{Resource: "record"}
	}
	attrs := req.Attributes().Clone()
	delete(attrs, st.ID)

	st.Record.Doc = store.Merge(st.Record.Doc, attrs)
	if err := st.Record.Save(ctx); err != nil {
		return domain.SaveError{Resource: modelName(st), Err: err}
	}
	return reload(ctx, st)
}

func create(ctx context.Context, st *State, req *Request) error {
	if st.Model == nil {
		return domain.ModelNotFoundError{}
	}
	rec, err := st.Model.Create(ctx, req.Attributes())
	if err != nil {
		return domain.SaveError{Resource: modelName(st), Err: err}
	}
	st.Record = rec
	return reload(ctx, st)
}

// reload fetches the saved record again with populated references. A
// failure here is a failed write: the caller asked for populated data.
func reload(ctx context.Context, st *State) error {
	if len(st.Populate) == 0 || st.Model == nil {
		return nil
	}
	id, ok := st.Record.Doc[st.ID]
	if !ok {
		return domain.SaveError{Resource: modelName(st), Err: fmt.Errorf("saved record has no %s", st.ID)}
	}
	rec, err := st.Model.FindOne(store.Where(store.Eq{Field: st.ID, Value: id})).
		Populate(st.Populate...).
		One(ctx)
	if err != nil {
		return domain.SaveError{Resource: modelName(st), Err: fmt.Errorf("populate after save: %w", err)}
	}
	if rec == nil {
		return domain.SaveError{Resource: modelName(st), Err: errors.New("record vanished after save")}
	}
	st.Record = rec
	return nil
}

func modelName(st *State) string {
	if st.Model == nil {
		return ""
	}
	return st.Model.Name()
}
