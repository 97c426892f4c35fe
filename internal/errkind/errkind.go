// Package errkind provides tagged fatal errors for the pipeline. Error()
// returns only a user-facing message; the cause is available via Unwrap()
// for a Details line. The CLI maps Kind to an exit code, so no package below
// cmd ever calls os.Exit.
package errkind

import "errors"

// Kind classifies a fatal error for exit-code mapping.
type Kind int

const (
	// Precondition errors are detected before any remote call: not a git
	// repository, missing API token, no staged changes, unknown model.
	Precondition Kind = iota
	// Remote errors are generation-service failures (transport or HTTP),
	// whether for a partial chunk or the final request.
	Remote
	// Service errors are payloads the generation service returned that are
	// themselves structured error objects.
	Service
)

// Err holds a kind, a user-facing message, and an optional cause.
type Err struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error returns the user-facing message only.
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

// Unwrap returns the underlying error for Details or logging.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an error of the given kind with a user-facing message.
// If err is non-nil it is available via Unwrap().
func New(kind Kind, msg string, err error) error {
	return &Err{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind of err when err (or anything it wraps) is an *Err.
func KindOf(err error) (Kind, bool) {
	var e *Err
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
