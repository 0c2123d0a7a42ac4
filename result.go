package kdlt

// Result is the accumulate-and-continue carrier used across the template
// engine and the builder: a best-effort value plus every issue recorded
// while producing it. A Result either holds a usable value (possibly with
// issues) or only issues; nothing is ever dropped on the way out.
type Result[T any] struct {
	value  T
	valid  bool
	issues Issues
}

// OK returns a successful result.
func OK[T any](v T) Result[T] { return Result[T]{value: v, valid: true} }

// Partial returns a usable value together with the issues found while
// building it.
func Partial[T any](v T, iss Issues) Result[T] {
	return Result[T]{value: v, valid: true, issues: iss}
}

// Fail returns a result with no usable value.
func Fail[T any](iss ...Issue) Result[T] { return Result[T]{issues: Issues(iss)} }

// FailWith returns a result with no usable value carrying existing issues.
func FailWith[T any](iss Issues) Result[T] { return Result[T]{issues: iss} }

// HasValue reports whether a usable value was constructed.
func (r Result[T]) HasValue() bool { return r.valid }

// Value returns the best-effort value; the zero value when none exists.
func (r Result[T]) Value() T { return r.value }

// Issues returns the recorded issues in first-detection order.
func (r Result[T]) Issues() Issues { return r.issues }

// WithIssues returns a copy with additional issues appended.
func (r Result[T]) WithIssues(iss Issues) Result[T] {
	r.issues = append(r.issues, iss...)
	return r
}

// Unwrap seals the result into Go's (value, error) shape. The error is
// non-nil whenever any issue was recorded; the value is still the
// best-effort one, so a caller that ignores the error gets it when one
// exists.
func (r Result[T]) Unwrap() (T, error) {
	if len(r.issues) > 0 {
		return r.value, r.issues
	}
	return r.value, nil
}

// Combine merges two results, preferring the left value when present.
// Issues concatenate, left first.
func Combine[T any](a, b Result[T]) Result[T] {
	out := a
	if !a.valid && b.valid {
		out.value = b.value
		out.valid = true
	}
	out.issues = append(append(Issues{}, a.issues...), b.issues...)
	return out
}

// Collect folds many results into one, never short-circuiting: every input
// is visited, all issues merge in order, and the collection holds every
// value that was usable.
func Collect[T any](rs []Result[T]) Result[[]T] {
	out := make([]T, 0, len(rs))
	var iss Issues
	for _, r := range rs {
		if r.valid {
			out = append(out, r.value)
		}
		iss = append(iss, r.issues...)
	}
	return Result[[]T]{value: out, valid: true, issues: iss}
}

// Sink accumulates issues while a pass keeps going after local failures.
// The zero value is ready to use.
type Sink struct {
	issues Issues
}

// Add records issues.
func (s *Sink) Add(iss ...Issue) { s.issues = append(s.issues, iss...) }

// Extend records a batch of issues.
func (s *Sink) Extend(iss Issues) { s.issues = append(s.issues, iss...) }

// OK converts an error into recorded issues and reports whether the
// operation succeeded; the caller keeps going either way.
func (s *Sink) OK(err error) bool {
	if err == nil {
		return true
	}
	if iss, ok := AsIssues(err); ok {
		s.issues = append(s.issues, iss...)
	} else {
		s.issues = append(s.issues, Issue{Code: CodeParseError, Message: err.Error(), Cause: err})
	}
	return false
}

// Len returns the number of recorded issues.
func (s *Sink) Len() int { return len(s.issues) }

// Issues returns everything recorded so far.
func (s *Sink) Issues() Issues { return s.issues }

// Keep records a partial result's issues and returns its value and whether
// the value is usable, for callers that continue after a local failure.
func Keep[T any](s *Sink, r Result[T]) (T, bool) {
	s.Extend(r.issues)
	return r.value, r.valid
}

// Seal wraps a value with everything the sink recorded.
func Seal[T any](s *Sink, v T) Result[T] {
	return Result[T]{value: v, valid: true, issues: s.issues}
}

// SealFail wraps a failure with everything the sink recorded.
func SealFail[T any](s *Sink) Result[T] {
	return Result[T]{issues: s.issues}
}
