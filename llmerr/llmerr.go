// Package llmerr defines the error taxonomy shared by every stage of the
// request pipeline. There is no class-registration framework here — a
// single tagged-variant struct carries a Kind plus whatever context that
// kind needs (status code, body snippet, missing capabilities, field
// errors). Pipeline stages return these directly; nothing retries.
package llmerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure. Values are abstract labels, not
// Go types — callers branch on Kind, not on a type switch over subclasses.
type Kind string

// Error kinds per the taxonomy. Names mirror spec vocabulary exactly so
// that error-kind assertions in tests read as documentation.
const (
	InvalidParameter    Kind = "invalid_parameter"
	InvalidProvider     Kind = "invalid_provider"
	InvalidCapability   Kind = "invalid_capability"
	InvalidModelSpec    Kind = "invalid_model_spec"
	ModelNotFound       Kind = "model_not_found"
	APIRequest          Kind = "api_request"
	APIResponse         Kind = "api_response"
	APIStream           Kind = "api_stream"
	APISchemaValidation Kind = "api_schema_validation"
	APIJsonParse        Kind = "api_json_parse"
	ValidationError     Kind = "validation_error"
	Unknown             Kind = "unknown"
)

// FieldError is a single schema-validation failure against one field path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is the single error type returned anywhere in the pipeline.
type Error struct {
	Kind    Kind
	Message string

	// Status and Body are populated for APIRequest/APIResponse errors.
	Status int
	Body   string

	// Missing lists capabilities absent from the model for InvalidCapability.
	Missing []string

	// Fields carries structured validation failures for APISchemaValidation.
	Fields []FieldError

	// Context carries arbitrary diagnostic key/values (e.g. the offending
	// model spec string, or the fixture name).
	Context map[string]any

	// Wrapped is the underlying error, if any (e.g. a transport failure).
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind) + ": " + e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	return msg
}

// Unwrap exposes the underlying error for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// New builds a bare Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a bare Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an underlying error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Wrapped: err}
}

// WithContext returns a shallow copy of e with a context key/value set.
func (e *Error) WithContext(key string, value any) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

// Is reports whether err is an *Error of the given kind. It allows callers
// to write `llmerr.Is(err, llmerr.ModelNotFound)` instead of a type assertion.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// APIRequestError builds an APIRequest error carrying the HTTP status and
// response body snippet, per spec: authentication failures surface as
// APIRequest(401, body); rate limiting as APIRequest(429, body).
func APIRequestError(status int, body string) *Error {
	return &Error{
		Kind:    APIRequest,
		Message: fmt.Sprintf("upstream request failed with status %d", status),
		Status:  status,
		Body:    body,
	}
}
