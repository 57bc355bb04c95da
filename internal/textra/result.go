package textra

import "time"

// Result is the outcome of one translation call. Exactly one of Text and
// Failure is meaningful: Failure is nil on success.
type Result struct {
	Text       string
	URL        string
	StatusCode int
	Latency    time.Duration
	Failure    *Error
}

// OK reports whether the call produced translated text.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Kind returns the failure kind, or FailureNone on success.
func (r Result) Kind() FailureKind {
	if r.Failure == nil {
		return FailureNone
	}
	return r.Failure.Kind
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func failed(kind FailureKind, op string, err error) Result {
	return Result{Failure: &Error{Kind: kind, Op: op, Err: err}}
}
