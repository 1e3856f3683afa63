package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	intconfig "jsonapi/internal/config"
	"jsonapi/internal/models"
	"jsonapi/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	obs, err := metrics.New(metrics.Config{Registry: reg})
	require.NoError(t, err)

	env := intconfig.Env{StoreDriver: intconfig.DriverMemory, RouteLimit: 20, CORSOrigins: []string{"https://app.example"}}
	return NewRouter(env, Deps{
		Models:   models.Memory(),
		Logger:   zerolog.Nop(),
		Observer: obs,
		Gatherer: reg,
	})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndDBCheck(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, get(r, "/api/health").Code)

	w := get(r, "/api/db-check")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"driver":"memory"`)
}

func TestUsersAreMappedAndPopulated(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/users/u1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			FullName string         `json:"full-name"`
			Company  map[string]any `json:"company"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ada Lovelace", body.Data.FullName)
	assert.Equal(t, "Analytical Engines", body.Data.Company["name"])
}

func TestAdminsOnlyListAdmins(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/admins")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Contains(t, w.Body.String(), "Hamilton")
}

func TestManagersServeOnlyPatch(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/managers").Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/managers/a1",
		strings.NewReader(`{"data":{"id":"a1","attributes":{"last-name":"<b>H</b>"}}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "<b>H</b>", body.Data["last-name"])
}

func TestMetricsEndpointExposesStages(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, get(r, "/api/users").Code)

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jsonapi_pipeline_stage_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutesListing(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/routes")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"path":"/api/users/:_id"`)
}

func TestAdminPatchCannotChangeRole(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admins/a1",
		strings.NewReader(`{"data":{"id":"a1","attributes":{"role":"User","first-name":"Peggy"}}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Admin", body.Data["role"])
	assert.Equal(t, "Peggy", body.Data["first-name"])

	w = get(r, "/api/admins")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Contains(t, w.Body.String(), "Peggy")
}
