package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/foxseedlab/otoshin/internal/fetcher"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrFetchInProgress = errors.New("download already in progress")
)

type FailureKind int

const (
	FailureFetch FailureKind = iota
	FailureTooLarge
	FailureDelivery
	FailureCanceled
	FailureInternal
)

func (k FailureKind) String() string {
	switch k {
	case FailureFetch:
		return "fetch_failed"
	case FailureTooLarge:
		return "file_too_large"
	case FailureDelivery:
		return "delivery_failed"
	case FailureCanceled:
		return "canceled"
	default:
		return "internal_error"
	}
}

// Failure is the tagged terminal outcome of a failed download session.
type Failure struct {
	Kind      FailureKind
	Err       error
	SizeBytes int64
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return f.Kind.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func classifyFailure(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	if errors.Is(err, context.Canceled) {
		return &Failure{Kind: FailureCanceled, Err: err}
	}
	if errors.Is(err, fetcher.ErrUnavailable) {
		return &Failure{Kind: FailureFetch, Err: err}
	}
	return &Failure{Kind: FailureInternal, Err: err}
}
