package sdk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common pipeline error conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates the provided configuration is invalid or
	// incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPersistenceFailed indicates the graph batch could not be written.
	// The store rolled the batch back; the document must be retried whole.
	ErrPersistenceFailed = errors.New("graph persistence failed")
)

// Error kinds categorize errors by pipeline stage.
const (
	// KindPersistence represents graph store errors.
	KindPersistence = "persistence"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindTimeout represents operation timeouts.
	KindTimeout = "timeout"

	// KindInternal represents internal pipeline errors.
	KindInternal = "internal"
)

// PipelineError is a structured error type that wraps underlying errors
// with the pipeline operation that failed and the category of failure.
//
// PipelineError implements the error interface and supports error
// unwrapping, making it compatible with errors.Is() and errors.As().
type PipelineError struct {
	// Op is the operation that failed (e.g., "Pipeline.Ingest").
	Op string

	// Kind categorizes the error (e.g., KindPersistence, KindTimeout).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional),
	// such as document IDs or clause markers.
	Context map[string]any
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("covergraph: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("covergraph: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("covergraph: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and
// errors.As() to work correctly with wrapped errors.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is implements error matching for PipelineError, allowing comparison
// based on the underlying error or on a kind-only PipelineError target.
func (e *PipelineError) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*PipelineError); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a new PipelineError with the provided context
// added.
func (e *PipelineError) WithContext(ctx map[string]any) *PipelineError {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewPersistenceError creates a new PipelineError with KindPersistence.
func NewPersistenceError(op string, err error) *PipelineError {
	return &PipelineError{Op: op, Kind: KindPersistence, Err: err}
}

// NewConfigurationError creates a new PipelineError with
// KindConfiguration.
func NewConfigurationError(op string, err error) *PipelineError {
	return &PipelineError{Op: op, Kind: KindConfiguration, Err: err}
}

// NewTimeoutError creates a new PipelineError with KindTimeout.
func NewTimeoutError(op string, err error) *PipelineError {
	return &PipelineError{Op: op, Kind: KindTimeout, Err: err}
}

// NewInternalError creates a new PipelineError with KindInternal.
func NewInternalError(op string, err error) *PipelineError {
	return &PipelineError{Op: op, Kind: KindInternal, Err: err}
}

// CloseWithLog attempts to close the provided resource and logs any
// error at warning level. Intended for use in defer statements so
// cleanup errors are not silently ignored.
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
