// Package retry provides application-level retries for node services.
//
// The workflow engine never retries a failed unit: a service error aborts
// the run. Services that call flaky collaborators wrap those calls with Do
// or DoValue instead, classifying failures as transient or permanent.
//
//	err := retry.Do(ctx, retry.DefaultPolicy, func(ctx context.Context) error {
//	    resp, err := client.Fetch(ctx, id)
//	    if err != nil {
//	        return retry.Transient(err, "fetch")
//	    }
//	    ...
//	})
package retry

import (
	"context"
	"errors"
	"fmt"
)

// Category says whether another attempt could succeed.
type Category int

const (
	CategoryPermanent Category = iota
	CategoryTransient
)

func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// CategorizedError is an error tagged with its Category. Do and DoValue
// return failures in this form, with Attempts filled in.
type CategorizedError struct {
	Err      error
	Category Category
	Attempts int
	// Op names the operation, or why the loop stopped.
	Op string
}

func (e *CategorizedError) Error() string {
	msg := fmt.Sprintf("%v (%s, attempts: %d)", e.Err, e.Category, e.Attempts)
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *CategorizedError) Unwrap() error { return e.Err }

// Transient marks err as worth retrying.
func Transient(err error, op string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryTransient, Op: op}
}

// Permanent marks err as not worth retrying.
func Permanent(err error, op string) *CategorizedError {
	return &CategorizedError{Err: err, Category: CategoryPermanent, Op: op}
}

// StatusError carries a status code from a remote call (HTTP or similar).
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Categorize classifies err. Timeouts, 408, 429 and 5xx statuses are
// transient; context errors and anything unrecognised are permanent. An
// explicit CategorizedError in the chain wins.
func Categorize(err error) Category {
	var (
		catErr    *CategorizedError
		statusErr *StatusError
		timeout   interface{ Timeout() bool }
	)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryPermanent
	case errors.As(err, &catErr):
		return catErr.Category
	case errors.As(err, &statusErr):
		if c := statusErr.StatusCode; c == 408 || c == 429 || c >= 500 {
			return CategoryTransient
		}
		return CategoryPermanent
	case errors.As(err, &timeout) && timeout.Timeout():
		return CategoryTransient
	}
	return CategoryPermanent
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}
