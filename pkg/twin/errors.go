package twin

import "fmt"

// ValidationError rejects a malformed command argument before any I/O.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a missing profile or live instance by name.
type NotFoundError struct {
	Kind string // "twin" or "instance"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// ConflictError reports a spawn request for a name that is already live.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("twin %q is already spawned", e.Name)
}

// NetworkError wraps a transport-level failure (unreachable, timeout,
// non-2xx status) from the remote twin service.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FormatError reports a remote response that arrived but is missing required
// fields or is not decodable.
type FormatError struct {
	Op     string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}

// ResourceError reports a local entity construction failure.
type ResourceError struct {
	Reason string
	Err    error
}

func (e *ResourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ResourceError) Unwrap() error { return e.Err }
