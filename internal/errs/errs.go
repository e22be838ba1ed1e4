// Package errs defines the error taxonomy shared by the core services.
// The HTTP layer maps tags to status codes; the core never picks codes itself.
package errs

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

var (
	TagNotFound      = goerr.NewTag("not_found")
	TagInvalidState  = goerr.NewTag("invalid_state")
	TagInvalidAction = goerr.NewTag("invalid_action")
	TagTransport     = goerr.NewTag("transport_failure")
	TagTemplate      = goerr.NewTag("template_failure")
)

func NotFound(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagNotFound))...)
}

func InvalidState(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagInvalidState))...)
}

func InvalidAction(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagInvalidAction))...)
}

func Transport(err error, msg string, options ...goerr.Option) error {
	return goerr.Wrap(err, msg, append(options, goerr.T(TagTransport))...)
}

func Template(msg string, options ...goerr.Option) error {
	return goerr.New(msg, append(options, goerr.T(TagTemplate))...)
}

// Is reports whether err carries the given tag. Declared as a variable bound
// to goerr.HasTag because goerr's tag type is unexported and cannot be named
// in a function signature.
var Is = goerr.HasTag

// HTTPStatus translates a tagged error into a response status. Used only at
// the HTTP boundary.
func HTTPStatus(err error) int {
	switch {
	case goerr.HasTag(err, TagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, TagInvalidState):
		return http.StatusConflict
	case goerr.HasTag(err, TagInvalidAction):
		return http.StatusBadRequest
	case goerr.HasTag(err, TagTransport):
		return http.StatusBadGateway
	case goerr.HasTag(err, TagTemplate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for the HTTP error envelope.
func Code(err error) string {
	switch {
	case goerr.HasTag(err, TagNotFound):
		return "NOT_FOUND"
	case goerr.HasTag(err, TagInvalidState):
		return "INVALID_STATE"
	case goerr.HasTag(err, TagInvalidAction):
		return "INVALID_ACTION"
	case goerr.HasTag(err, TagTransport):
		return "TRANSPORT_FAILURE"
	case goerr.HasTag(err, TagTemplate):
		return "TEMPLATE_FAILURE"
	default:
		return "INTERNAL_ERROR"
	}
}
