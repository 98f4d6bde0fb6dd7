package crackerrors

import (
	"context"
	"errors"

	"github.com/unclesp1d3r/containercrack/runstate"
)

// Notifier receives handled errors, e.g. to count them or feed a progress display.
type Notifier func(target string, info Info)

// Handler provides unified logging for classified errors.
type Handler struct {
	// Notify is called for every handled error that is not a cancellation.
	// If nil, errors are only logged.
	Notify Notifier
}

// Options configures how an error should be handled.
type Options struct {
	// Message is the context message to log with the error.
	Message string
	// Target is the container path the error belongs to, if any.
	Target string
}

// Handle logs err according to its classification and returns it for chaining.
// Cancellation errors are logged at debug level and never notified.
func (h *Handler) Handle(err error, opts Options) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		runstate.Logger.Debug(opts.Message, "target", opts.Target, "error", err)
		return err
	}

	info := ClassifyError(err)
	keyvals := []any{"kind", info.Kind.String(), "error", err}
	if opts.Target != "" {
		keyvals = append([]any{"target", opts.Target}, keyvals...)
	}

	switch info.Severity {
	case SeverityInfo:
		runstate.Logger.Info(opts.Message, keyvals...)
	case SeverityWarning:
		runstate.Logger.Warn(opts.Message, keyvals...)
	default:
		runstate.ErrorLogger.Error(opts.Message, keyvals...)
	}

	if h.Notify != nil {
		h.Notify(opts.Target, info)
	}

	return err
}

// LogOnly logs an error without notifying.
func (h *Handler) LogOnly(err error, message string) error {
	quiet := &Handler{}
	return quiet.Handle(err, Options{Message: message})
}
