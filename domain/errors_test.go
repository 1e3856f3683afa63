package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"model", ModelNotFoundError{}, http.StatusInternalServerError, "model_not_found"},
		{"param", InvalidParameterError{Param: "_id"}, http.StatusBadRequest, "invalid_parameter"},
		{"validation", ValidationError{Msg: "bad"}, http.StatusBadRequest, "validation_error"},
		{"not found", NotFoundError{Resource: "user"}, http.StatusNotFound, "not_found"},
		{"query", QueryNotFoundError{Stage: "sort"}, http.StatusInternalServerError, "query_not_found"},
		{"save", SaveError{Err: errors.New("disk")}, http.StatusInternalServerError, "save_failed"},
		{"render", NothingToRenderError{}, http.StatusInternalServerError, "nothing_to_render"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, StatusCode(tc.err))
			assert.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestStatusCodeWrapped(t *testing.T) {
	err := fmt.Errorf("get: %w", NotFoundError{Resource: "resource"})
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestSaveErrorMessage(t *testing.T) {
	err := SaveError{Resource: "users", Err: errors.New("duplicate key")}
	assert.Equal(t, "error on users save: duplicate key", err.Error())
	assert.ErrorIs(t, err, err.Err)
}
