package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ModelNotFoundError means the route was bound without a target model.
type ModelNotFoundError struct {
	Err error
}

func (e ModelNotFoundError) Error() string { return "target model not found" }

func (e ModelNotFoundError) Unwrap() error { return e.Err }

// InvalidParameterError means a required path parameter is missing.
type InvalidParameterError struct {
	Param string
	Err   error
}

func (e InvalidParameterError) Error() string {
	if e.Param == "" {
		return "incorrect parameter"
	}
	return fmt.Sprintf("incorrect parameter: %s", e.Param)
}

func (e InvalidParameterError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "request failed validation"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// QueryNotFoundError means a stage needed an in-flight query that no
// earlier stage established. It points at a pipeline ordering mistake.
type QueryNotFoundError struct {
	Stage string
}

func (e QueryNotFoundError) Error() string {
	if e.Stage == "" {
		return "query not found"
	}
	return fmt.Sprintf("query not found before %s", e.Stage)
}

type SaveError struct {
	Resource string
	Err      error
}

func (e SaveError) Error() string {
	msg := "error on model save"
	if e.Resource != "" {
		msg = fmt.Sprintf("error on %s save", e.Resource)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e SaveError) Unwrap() error { return e.Err }

// NothingToRenderError means render was reached without a result.
type NothingToRenderError struct{}

func (e NothingToRenderError) Error() string { return "nothing to render" }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsModelNotFound(err error) bool {
	var target ModelNotFoundError
	return errors.As(err, &target)
}

func IsInvalidParameter(err error) bool {
	var target InvalidParameterError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsQueryNotFound(err error) bool {
	var target QueryNotFoundError
	return errors.As(err, &target)
}

func IsSave(err error) bool {
	var target SaveError
	return errors.As(err, &target)
}

func IsNothingToRender(err error) bool {
	var target NothingToRenderError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// StatusCode maps an error to the HTTP status it should be rendered with.
// Unknown errors are internal.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsInvalidParameter(err), IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a short machine readable code for err.
func Code(err error) string {
	switch {
	case IsModelNotFound(err):
		return "model_not_found"
	case IsInvalidParameter(err):
		return "invalid_parameter"
	case IsValidation(err):
		return "validation_error"
	case IsNotFound(err):
		return "not_found"
	case IsQueryNotFound(err):
		return "query_not_found"
	case IsSave(err):
		return "save_failed"
	case IsNothingToRender(err):
		return "nothing_to_render"
	default:
		return "internal_error"
	}
}
