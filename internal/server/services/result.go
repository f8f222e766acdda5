package services

import "time"

// Submission is a raw, unvalidated signup/login input. It is never
// persisted.
type Submission struct {
	Name     string
	Email    string
	Password string
}

// Result is the structured outcome of a signup/login/logout operation.
// Exactly one of the three shapes applies:
//   - OK: the operation succeeded and a session was established.
//   - Errors: per-field validation or credential errors, keyed by the
//     input field, so the caller can redisplay them next to the input.
//   - Message: a generic, non-field failure (infrastructure). Internal
//     error detail is logged server-side and never surfaces here.
type Result struct {
	OK      bool                `json:"ok"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

// SessionTransport is the client-bound channel holding the current session
// token. It treats the token as an opaque string; implementations live at
// the HTTP boundary (cookie) and in tests (in-memory fake).
type SessionTransport interface {
	// Store places the token in the channel with the given expiry.
	Store(token string, expires time.Time)

	// Read retrieves the token for the current request, if any.
	Read() (token string, ok bool)

	// Clear removes the token from the channel; always succeeds.
	Clear()
}

func okResult() Result {
	return Result{OK: true}
}

func fieldResult(errs map[string][]string) Result {
	return Result{Errors: errs}
}

func failResult(message string) Result {
	return Result{Message: message}
}
