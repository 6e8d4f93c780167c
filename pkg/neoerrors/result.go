package neoerrors

// Result is the two-variant outcome type used instead of exceptions on
// expected failure paths. A Result is either Ok (carrying data) or Fail
// (carrying an *AppError); the zero value is a failure with a nil error and
// should not be constructed directly.
type Result[T any] struct {
	success bool
	data    T
	err     *AppError
}

// Ok builds a success Result carrying data.
func Ok[T any](data T) Result[T] {
	return Result[T]{success: true, data: data}
}

// Fail builds a failure Result carrying err.
func Fail[T any](err *AppError) Result[T] {
	return Result[T]{err: err}
}

// IsSuccess reports whether the result holds data.
func (r Result[T]) IsSuccess() bool {
	return r.success
}

// IsFailure reports whether the result holds an error.
func (r Result[T]) IsFailure() bool {
	return !r.success
}

// Data returns the carried data and whether it is valid.
func (r Result[T]) Data() (T, bool) {
	return r.data, r.success
}

// Err returns the carried error, nil for a success.
func (r Result[T]) Err() *AppError {
	if r.success {
		return nil
	}
	return r.err
}

// MustData returns the carried data, panicking on a failure result. For use
// in tests and after an explicit IsSuccess check.
func (r Result[T]) MustData() T {
	if !r.success {
		// A zero-value Result is a failure carrying no error.
		if r.err == nil {
			panic("neoerrors: MustData on failure result")
		}
		panic("neoerrors: MustData on failure result: " + r.err.Error())
	}
	return r.data
}

// Unit is the data type for results that carry no payload.
type Unit struct{}

// OkUnit builds a success Result with no payload.
func OkUnit() Result[Unit] {
	return Ok(Unit{})
}
