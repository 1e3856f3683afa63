package route

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jsonapi/middleware"
	"jsonapi/pipeline"
	"jsonapi/store"
	"jsonapi/store/memstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newUsers() *memstore.Collection {
	c := memstore.New("users", store.Paths("username", "first-name", "last-name"))
	c.Insert(
		store.Document{"_id": "u1", "username": "adalovelace", "first-name": "Ada", "last-name": "Lovelace"},
		store.Document{"_id": "u2", "username": "alanturing", "first-name": "Alan", "last-name": "Turing"},
		store.Document{"_id": "u3", "username": "gracehopper", "first-name": "Grace", "last-name": "Hopper"},
	)
	return c
}

func newEngine(t *testing.T, cfgs ...Config) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(middleware.RequestID())
	New().Bind(r.Group("/api"), cfgs...)
	return r
}

func usersConfig(m store.Model) Config {
	return Config{
		Endpoint: "/users",
		Model:    m,
		Search:   pipeline.SearchConfig{Active: true, Fields: []string{"first-name", "last-name"}},
		Sanitize: pipeline.SanitizeConfig{Active: true, Fields: []string{"first-name"}},
		Methods:  Methods(pipeline.GetList, pipeline.Get, pipeline.Patch, pipeline.Post),
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type listBody struct {
	Meta struct {
		Page pipeline.Page `json:"page"`
	} `json:"meta"`
	Data []map[string]any `json:"data"`
}

type oneBody struct {
	Data map[string]any `json:"data"`
}

func TestBindRegistersArchetypeRoutes(t *testing.T) {
	r := newEngine(t, usersConfig(newUsers()))

	var got []string
	for _, rt := range r.Routes() {
		got = append(got, rt.Method+" "+rt.Path)
	}
	assert.ElementsMatch(t, []string{
		"GET /api/users",
		"GET /api/users/:_id",
		"PATCH /api/users/:_id",
		"POST /api/users",
	}, got)
}

func TestBindIgnoresUnknownArchetypes(t *testing.T) {
	cfg := usersConfig(newUsers())
	cfg.Methods = map[pipeline.Archetype]pipeline.Pipeline{pipeline.Get: nil, "delete": nil}
	r := newEngine(t, cfg)

	require.Len(t, r.Routes(), 1)
	assert.Equal(t, "/api/users/:_id", r.Routes()[0].Path)
}

func TestGetListOverHTTP(t *testing.T) {
	r := newEngine(t, usersConfig(newUsers()))

	w := do(r, http.MethodGet, "/api/users?q=a&sort=-last-name&page[limit]=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, pipeline.Page{Total: 3, Limit: 2, Offset: 0}, body.Meta.Page)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Turing", body.Data[0]["last-name"])
}

func TestGetMissingIsNotFound(t *testing.T) {
	r := newEngine(t, usersConfig(newUsers()))

	w := do(r, http.MethodGet, "/api/users/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Code)
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, body.RequestID, w.Header().Get("X-Request-ID"))
}

func TestPatchWithoutIDIsBadRequest(t *testing.T) {
	r := newEngine(t, usersConfig(newUsers()))

	w := do(r, http.MethodPatch, "/api/users/u1", `{"data":{"attributes":{"first-name":"Augusta"}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/users/u1", `{"data":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchSanitizesWhitelistedFields(t *testing.T) {
	m := newUsers()
	r := newEngine(t, usersConfig(m))

	w := do(r, http.MethodPatch, "/api/users/u1",
		`{"data":{"id":"u1","attributes":{"first-name":"<b>Ada</b>","last-name":"<i>L</i>"}}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body oneBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "&lt;b>Ada&lt;/b>", body.Data["first-name"])
	assert.Equal(t, "<i>L</i>", body.Data["last-name"])

	rec, err := m.FindOne(store.Where(store.Eq{Field: "_id", Value: "u1"})).One(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "&lt;b>Ada&lt;/b>", rec.Doc["first-name"])
}

func TestPostCreates(t *testing.T) {
	m := newUsers()
	r := newEngine(t, usersConfig(m))

	w := do(r, http.MethodPost, "/api/users", `{"data":{"attributes":{"username":"katherine"}}}`)
	require.Equal(t, http.StatusOK, w.Code)

	n, err := m.Find(store.Criteria{}).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMethodOverrideReplacesPipeline(t *testing.T) {
	cfg := usersConfig(newUsers())
	deny := pipeline.StageFunc(func(context.Context, *pipeline.State, *pipeline.Request) error {
		return errDenied
	})
	cfg.Methods = map[pipeline.Archetype]pipeline.Pipeline{
		pipeline.GetList: {{Name: "deny", Stage: deny}},
	}
	r := newEngine(t, cfg)

	w := do(r, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "internal_error", body.Code)
	assert.NotContains(t, w.Body.String(), "denied")
}

func TestClientErrorsKeepMessage(t *testing.T) {
	r := newEngine(t, usersConfig(newUsers()))

	w := do(r, http.MethodPost, "/api/users", `{"data":{}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "data.attributes")
}

func TestPostDuplicateIDFailsSave(t *testing.T) {
	m := newUsers()
	r := newEngine(t, usersConfig(m))

	w := do(r, http.MethodPost, "/api/users", `{"data":{"attributes":{"_id":"u1","first-name":"Evil","last-name":"Twin"}}}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "save_failed", body.Code)

	w = do(r, http.MethodGet, "/api/users?filter[last-name]=Lovelace,Twin", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Meta.Page.Total)
	assert.Equal(t, "Lovelace", list.Data[0]["last-name"])
}

var errDenied = &deniedError{}

type deniedError struct{}

func (*deniedError) Error() string { return "denied" }

func TestStateCopiesConfig(t *testing.T) {
	cfg := usersConfig(newUsers())
	cfg.Populate = []string{"company"}
	cfg.Metadata = map[string]any{"resource": "users"}

	st := cfg.state(pipeline.GetList)
	st.Populate[0] = "changed"
	st.Search.Fields[0] = "changed"
	st.Metadata["resource"] = "changed"

	assert.Equal(t, "company", cfg.Populate[0])
	assert.Equal(t, "first-name", cfg.Search.Fields[0])
	assert.Equal(t, "users", cfg.Metadata["resource"])
	assert.Equal(t, DefaultLimit, st.Limit)
	assert.Equal(t, DefaultID, st.ID)
}

func TestObserverSeesStages(t *testing.T) {
	obs := &countingObserver{}
	r := gin.New()
	New(WithObserver(obs)).Bind(r, usersConfig(newUsers()))

	w := do(r, http.MethodGet, "/users/u2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, obs.n)
}

type countingObserver struct {
	n int
}

func (o *countingObserver) ObserveStage(pipeline.Archetype, string, time.Duration, error) {
	o.n++
}
