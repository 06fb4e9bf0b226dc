package fault

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Options struct {
	Severity Severity
	// Context is attached to the log record.
	Context map[string]any
	// UserMessage is safe to show to the user in place of the raw error.
	UserMessage   string
	SkipAnalytics bool
}

// Handler observes every reported error.
type Handler func(ctx context.Context, err error, opts Options)

// ErrorTracker receives error events for analytics.
type ErrorTracker interface {
	TrackError(ctx context.Context, description string, fatal bool)
}

// Error carries the message shown to users alongside the underlying error.
type Error struct {
	Err         error
	UserMessage string
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the first user-facing message wrapped in err, or "".
func UserMessage(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.UserMessage
	}
	return ""
}

// Reporter is the shared error reporting point: it logs, forwards to
// analytics, and fans out to registered handlers.
type Reporter struct {
	tracker ErrorTracker

	mu       sync.RWMutex
	handlers []Handler
}

// NewReporter returns a reporter. tracker may be nil.
func NewReporter(tracker ErrorTracker) *Reporter {
	return &Reporter{tracker: tracker}
}

func (r *Reporter) Register(h Handler) {
	r.mu.Lock()
	r.handlers = append(r.handlers, h)
	r.mu.Unlock()
}

func (r *Reporter) Handle(ctx context.Context, err error, opts Options) {
	if err == nil {
		return
	}
	if opts.Severity == "" {
		opts.Severity = SeverityMedium
	}

	attrs := []any{"error", err, "severity", string(opts.Severity)}
	for k, v := range opts.Context {
		attrs = append(attrs, k, v)
	}
	if opts.Severity == SeverityHigh || opts.Severity == SeverityCritical {
		slog.ErrorContext(ctx, "error reported", attrs...)
	} else {
		slog.WarnContext(ctx, "error reported", attrs...)
	}

	if !opts.SkipAnalytics && r.tracker != nil {
		r.tracker.TrackError(ctx, err.Error(), opts.Severity == SeverityCritical)
	}

	r.mu.RLock()
	handlers := append([]Handler(nil), r.handlers...)
	r.mu.RUnlock()
	for _, h := range handlers {
		r.invoke(ctx, h, err, opts)
	}
}

func (r *Reporter) invoke(ctx context.Context, h Handler, err error, opts Options) {
	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "error handler panicked", "panic", p)
		}
	}()
	h(ctx, err, opts)
}

// Wrap reports err and returns it for the caller to propagate, carrying
// opts.UserMessage when one is set. A nil err stays nil.
func (r *Reporter) Wrap(ctx context.Context, err error, opts Options) error {
	if err == nil {
		return nil
	}
	r.Handle(ctx, err, opts)
	if opts.UserMessage == "" {
		return err
	}
	return &Error{Err: err, UserMessage: opts.UserMessage}
}
