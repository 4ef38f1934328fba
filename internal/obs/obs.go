package obs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kuitang/notekeeper/internal/logutil"
)

type correlationContextKey struct{}

// Correlation carries per-session correlation identifiers.
type Correlation struct {
	SessionID string
	Command   string
	Line      int
}

// Options selects the handler used by the global logger.
type Options struct {
	Level  slog.Level
	Format string // "json" or "text"
}

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
	options  = Options{Level: slog.LevelInfo, Format: "json"}
)

// Init configures the global structured logger. Later calls are no-ops.
func Init(opts Options) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		return
	}
	options = opts
	logger = newLogger(os.Stderr, opts)
	slog.SetDefault(logger)
}

// SetOutputForTests overrides the global logger output for tests.
func SetOutputForTests(w io.Writer) func() {
	loggerMu.Lock()
	prev := logger
	logger = newLogger(w, Options{Level: slog.LevelDebug, Format: "json"})
	slog.SetDefault(logger)
	loggerMu.Unlock()

	return func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		if prev != nil {
			logger = prev
		} else {
			logger = newLogger(os.Stderr, options)
		}
		slog.SetDefault(logger)
	}
}

// ParseLevel converts a LOG_LEVEL value into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return level, nil
}

func newLogger(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: opts.Level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				t, ok := attr.Value.Any().(time.Time)
				if ok {
					return slog.String(slog.TimeKey, t.UTC().Format(time.RFC3339Nano))
				}
			}
			return logutil.RedactAttr(groups, attr)
		},
	}
	if opts.Format == "text" {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

func globalLogger() *slog.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(options)
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Pkg returns a logger tagged with package name.
func Pkg(pkg string) *slog.Logger {
	return globalLogger().With("pkg", pkg)
}

// From returns a logger with correlation fields from context.
func From(ctx context.Context) *slog.Logger {
	l := globalLogger()
	attrs := correlationAttrs(CorrelationFromContext(ctx))
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

// NewSession returns a context tagged with a fresh session id.
func NewSession(ctx context.Context) context.Context {
	return WithCorrelation(ctx, Correlation{SessionID: newSessionID()})
}

// WithCorrelation stores correlation fields in context, keeping existing
// values for fields left empty.
func WithCorrelation(ctx context.Context, corr Correlation) context.Context {
	existing := CorrelationFromContext(ctx)
	if corr.SessionID != "" {
		existing.SessionID = corr.SessionID
	}
	if corr.Command != "" {
		existing.Command = corr.Command
	}
	if corr.Line != 0 {
		existing.Line = corr.Line
	}
	return context.WithValue(ctx, correlationContextKey{}, existing)
}

// CorrelationFromContext returns correlation fields from context.
func CorrelationFromContext(ctx context.Context) Correlation {
	if ctx == nil {
		return Correlation{}
	}
	corr, ok := ctx.Value(correlationContextKey{}).(Correlation)
	if !ok {
		return Correlation{}
	}
	return corr
}

func correlationAttrs(corr Correlation) []any {
	attrs := make([]any, 0, 6)
	if corr.SessionID != "" {
		attrs = append(attrs, "session_id", corr.SessionID)
	}
	if corr.Command != "" {
		attrs = append(attrs, "command", corr.Command)
	}
	if corr.Line != 0 {
		attrs = append(attrs, "line", corr.Line)
	}
	return attrs
}

func newSessionID() string {
	return "sess-" + uuid.NewString()
}
