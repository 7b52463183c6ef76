package apperr

import "net/http"

// Code classifies an error for transport mapping and retry policy.
type Code int

const (
	OK              Code = iota
	InvalidArgument      // malformed or missing input
	NotFound             // referenced record does not exist
	Conflict             // definitive business rule violation, never retried
	Forbidden            // actor mismatch
	Internal             // storage or programming error
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// HTTPCode maps an error code to its HTTP status.
func (c Code) HTTPCode() int {
	switch c {
	case OK:
		return http.StatusOK
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
