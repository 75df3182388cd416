package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProbe         = errors.New("probe error")
	ErrPlan          = errors.New("plan error")
	ErrSpawn         = errors.New("spawn error")
	ErrSegment       = errors.New("segment execution error")
	ErrMerge         = errors.New("merge error")
	ErrIO            = errors.New("io error")
	ErrCanceled      = errors.New("canceled")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureKind maps an error to a short label used in logs and batch history.
// Cancellation wins over other markers because a killed transcoder also exits
// non-zero.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrSpawn):
		return "spawn"
	case errors.Is(err, ErrMerge):
		return "merge"
	case errors.Is(err, ErrSegment):
		return "segment"
	case errors.Is(err, ErrPlan):
		return "plan"
	case errors.Is(err, ErrProbe):
		return "probe"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return "validation"
	default:
		return "io"
	}
}

// IsBatchFatal reports whether err should abort a batch before any task is
// dispatched.
func IsBatchFatal(err error) bool {
	return errors.Is(err, ErrSpawn) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
