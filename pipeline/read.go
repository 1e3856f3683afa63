package pipeline

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"jsonapi/domain"
	"jsonapi/store"

	"github.com/rs/zerolog"
)

var (
	Search      Stage = StageFunc(search)
	Filter      Stage = StageFunc(filter)
	QueryList   Stage = StageFunc(queryList)
	QueryOne    Stage = StageFunc(queryOne)
	Sort        Stage = StageFunc(sortQuery)
	Paginate    Stage = StageFunc(paginate)
	ExecuteList Stage = StageFunc(executeList)
	ExecuteOne  Stage = StageFunc(executeOne)
	RenderList  Stage = StageFunc(renderList)
	RenderOne   Stage = StageFunc(renderOne)
)

// search ORs a case-insensitive substring match of every whitespace
// separated term across the configured fields.
func search(ctx context.Context, st *State, req *Request) error {
	if st.Model == nil {
		return domain.ModelNotFoundError{}
	}
	term := req.SearchTerm()
	if !st.Search.Active || term == "" {
		return nil
	}

	tokens := strings.Fields(term)
	patterns := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		patterns = append(patterns, regexp.QuoteMeta(tok))
	}
	if len(patterns) == 0 {
		return nil
	}

	var clause store.Or
	for _, field := range st.Search.Fields {
		clause = append(clause, store.Match{Field: field, Patterns: patterns})
	}
	if len(clause) == 0 {
		return nil
	}
	st.Criteria.Add(clause)

	zerolog.Ctx(ctx).Debug().
		Strs("fields", st.Search.Fields).
		Strs("terms", tokens).
		Msg("setting search criteria")
	return nil
}

// filter ANDs an equality (or membership, for comma separated values)
// clause for every filter[field] naming a schema field.
func filter(ctx context.Context, st *State, req *Request) error {
	if st.Model == nil || st.Model.Schema() == nil {
		return domain.ModelNotFoundError{}
	}
	schema := st.Model.Schema()
	caster, _ := schema.(store.Caster)

	cast := func(field, raw string) (any, error) {
		if caster == nil {
			return raw, nil
		}
		v, err := caster.Cast(field, raw)
		if err != nil {
			return nil, domain.InvalidParameterError{Param: "filter[" + field + "]", Err: err}
		}
		return v, nil
	}

	var clause store.And
	for _, f := range req.Filters() {
		if !schema.Path(f.Field) {
			continue
		}
		if !strings.Contains(f.Value, ",") {
			v, err := cast(f.Field, f.Value)
			if err != nil {
				return err
			}
			clause = append(clause, store.Eq{Field: f.Field, Value: v})
			continue
		}
		parts := strings.Split(f.Value, ",")
		values := make([]any, 0, len(parts))
		for _, p := range parts {
			v, err := cast(f.Field, p)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		clause = append(clause, store.In{Field: f.Field, Values: values})
	}
	if len(clause) == 0 {
		return nil
	}
	st.Criteria.Add(clause)

	zerolog.Ctx(ctx).Debug().Int("clauses", len(clause)).Msg("setting filter criteria")
	return nil
}

func queryList(ctx context.Context, st *State, _ *Request) error {
	if st.Model == nil {
		return domain.ModelNotFoundError{}
	}
	st.Query = st.Model.Find(st.Criteria)
	if len(st.Populate) > 0 {
		zerolog.Ctx(ctx).Debug().Strs("paths", st.Populate).Msg("populating model")
		st.Query = st.Query.Populate(st.Populate...)
	}
	return nil
}

func queryOne(ctx context.Context, st *State, req *Request) error {
	if st.Model == nil {
		return domain.ModelNotFoundError{}
	}
	id := req.Param(st.ID)
	if st.ID == "" || id == "" {
		return domain.InvalidParameterError{Param: st.ID}
	}
	st.Query = st.Model.FindOne(st.Criteria.With(store.Eq{Field: st.ID, Value: id}))
	if len(st.Populate) > 0 {
		st.Query = st.Query.Populate(st.Populate...)
	}
	zerolog.Ctx(ctx).Debug().Str("field", st.ID).Str("id", id).Msg("finding resource")
	return nil
}

// sortQuery applies sort tokens left to right; "-field" sorts descending.
func sortQuery(ctx context.Context, st *State, req *Request) error {
	if st.Model == nil || st.Model.Schema() == nil {
		return domain.ModelNotFoundError{}
	}
	if st.Query == nil {
		return domain.QueryNotFoundError{Stage: "sort"}
	}
	schema := st.Model.Schema()
	for _, tok := range req.SortTokens() {
		field := strings.TrimLeft(tok, "-")
		if !schema.Path(field) {
			continue
		}
		order := store.Asc
		if strings.HasPrefix(tok, "-") {
			order = store.Desc
		}
		zerolog.Ctx(ctx).Debug().Str("sort", tok).Msg("applying sort")
		st.Query = st.Query.Sort(field, order)
	}
	return nil
}

// paginate counts the criteria matches, then applies offset and limit to
// the same query.
func paginate(ctx context.Context, st *State, req *Request) error {
	if st.Query == nil {
		return domain.QueryNotFoundError{Stage: "page"}
	}

	// missing offset parses as 0
	offset, _ := req.PageParam("offset")
	limit, ok := req.PageParam("limit")
	if !ok || limit == 0 || (st.Limit > 0 && limit > st.Limit) {
		limit = st.Limit
	}

	total, err := st.Query.Count(ctx)
	if err != nil {
		return domain.InternalError{Msg: "failed to count resources", Err: err}
	}
	st.Page = &Page{Total: total, Limit: limit, Offset: offset}

	zerolog.Ctx(ctx).Debug().Int("offset", offset).Int("limit", limit).Int("total", total).Msg("applying page")
	st.Query = st.Query.Skip(offset).Limit(limit)
	return nil
}

func executeList(ctx context.Context, st *State, _ *Request) error {
	if st.Query == nil {
		return domain.QueryNotFoundError{Stage: "execute"}
	}
	recs, err := st.Query.All(ctx)
	if err != nil {
		return domain.InternalError{Msg: "failed to fetch resources", Err: err}
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	st.Records = recs
	return nil
}

func executeOne(ctx context.Context, st *State, _ *Request) error {
	if st.Query == nil {
		return domain.QueryNotFoundError{Stage: "execute"}
	}
	rec, err := st.Query.One(ctx)
	if err != nil {
		return domain.InternalError{Msg: "failed to fetch resource", Err: err}
	}
	if rec == nil {
		return domain.NotFoundError{Resource: "resource"}
	}
	st.Record = rec
	return nil
}

func renderList(_ context.Context, st *State, req *Request) error {
	if st.Resources == nil {
		return domain.NothingToRenderError{}
	}
	return write(req, Response{Meta: Meta{Page: st.Page}, Data: st.Resources})
}

func renderOne(_ context.Context, st *State, req *Request) error {
	if st.Resource == nil {
		return domain.NothingToRenderError{}
	}
	return write(req, Response{
		Meta: Meta{Page: &Page{Total: 1, Limit: 1, Offset: 1}},
		Data: st.Resource,
	})
}

func write(req *Request, resp Response) error {
	if req == nil || req.Renderer == nil {
		return domain.InternalError{Msg: "no renderer for response"}
	}
	req.Renderer.JSON(http.StatusOK, resp)
	return nil
}
