package network

import "fmt"

type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "loading"
	}
}

// Result is the outcome of a backend call: Success with data, Error with a
// message and an optional HTTP code, or Loading.
type Result[T any] struct {
	status  Status
	data    T
	message string
	code    int
}

func Success[T any](data T) Result[T] {
	return Result[T]{status: StatusSuccess, data: data}
}

// Failure builds an Error result. A code of 0 means no HTTP status is known.
func Failure[T any](message string, code int) Result[T] {
	return Result[T]{status: StatusError, message: message, code: code}
}

func Loading[T any]() Result[T] {
	return Result[T]{status: StatusLoading}
}

func (r Result[T]) Status() Status { return r.status }

func (r Result[T]) IsSuccess() bool { return r.status == StatusSuccess }

func (r Result[T]) IsError() bool { return r.status == StatusError }

func (r Result[T]) IsLoading() bool { return r.status == StatusLoading }

// Data returns the payload of a Success result. For any other variant it
// returns the zero value and false.
func (r Result[T]) Data() (T, bool) {
	if r.status != StatusSuccess {
		var zero T
		return zero, false
	}
	return r.data, true
}

// ErrorMessage returns the message of an Error result.
func (r Result[T]) ErrorMessage() (string, bool) {
	if r.status != StatusError {
		return "", false
	}
	return r.message, true
}

// Code returns the HTTP status attached to an Error result, if any.
func (r Result[T]) Code() (int, bool) {
	if r.status != StatusError || r.code == 0 {
		return 0, false
	}
	return r.code, true
}

func (r Result[T]) OnSuccess(action func(T)) Result[T] {
	if r.status == StatusSuccess {
		action(r.data)
	}
	return r
}

func (r Result[T]) OnError(action func(message string, code int)) Result[T] {
	if r.status == StatusError {
		action(r.message, r.code)
	}
	return r
}

// Err converts an Error result into a Go error. Success and Loading yield nil.
func (r Result[T]) Err() error {
	if r.status != StatusError {
		return nil
	}
	return &Error{Message: r.message, Code: r.code}
}

func (r Result[T]) String() string {
	switch r.status {
	case StatusSuccess:
		return fmt.Sprintf("Success(%v)", r.data)
	case StatusError:
		if r.code != 0 {
			return fmt.Sprintf("Error(%s, %d)", r.message, r.code)
		}
		return fmt.Sprintf("Error(%s)", r.message)
	default:
		return "Loading"
	}
}

// Map transforms the payload of a Success result. Error and Loading pass
// through unchanged.
func Map[T, R any](r Result[T], transform func(T) R) Result[R] {
	switch r.status {
	case StatusSuccess:
		return Success(transform(r.data))
	case StatusError:
		return Failure[R](r.message, r.code)
	default:
		return Loading[R]()
	}
}

// Error is the Go error form of an Error result.
type Error struct {
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
	}
	return e.Message
}
