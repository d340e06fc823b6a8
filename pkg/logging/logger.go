package logging

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/logx-go/gcloud/pkg/logging/model"
)

// EntryWriter sends entries to the service. *Client implements it.
type EntryWriter interface {
	WriteEntries(ctx context.Context, entries []*Entry, opts WriteOptions) error
}

var _ EntryWriter = (*Client)(nil)

// Logger is a leveled logger on top of WriteEntries. Every message becomes one
// entry of logName with the logger's resource and labels, written synchronously.
type Logger struct {
	writer    EntryWriter
	formatter *Formatter
	logName   string
	resource  model.MonitoredResource
	labels    map[string]string
	level     atomic.Int64
}

// NewLogger returns a Logger with threshold LevelDebug.
func NewLogger(writer EntryWriter, logName string, resource model.MonitoredResource, labels map[string]string) *Logger {
	return &Logger{
		writer:    writer,
		formatter: NewFormatter(),
		logName:   logName,
		resource:  resource,
		labels:    labels,
	}
}

// SetFormatter sets the formatter AddFields builds entries with.
func (l *Logger) SetFormatter(f *Formatter) {
	if f != nil {
		l.formatter = f
	}
}

func (l *Logger) LogName() string {
	return l.logName
}

func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// SetLevel sets the threshold. Messages below it are dropped.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int64(level))
}

// SetLevelName sets the threshold by name and fails with ErrInvalidLevel for unknown names.
func (l *Logger) SetLevelName(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.SetLevel(level)
	return nil
}

func (l *Logger) enabled(level Level) bool {
	return level >= l.Level()
}

func (l *Logger) DebugEnabled() bool { return l.enabled(LevelDebug) }
func (l *Logger) InfoEnabled() bool  { return l.enabled(LevelInfo) }
func (l *Logger) WarnEnabled() bool  { return l.enabled(LevelWarn) }
func (l *Logger) ErrorEnabled() bool { return l.enabled(LevelError) }
func (l *Logger) FatalEnabled() bool { return l.enabled(LevelFatal) }

// Add writes message at level. Below the threshold nothing is sent and nil is
// returned. Levels past LevelUnknown are written with SeverityDefault.
func (l *Logger) Add(ctx context.Context, level Level, message any) error {
	if !l.enabled(level) {
		return nil
	}
	return l.write(ctx, &Entry{
		Severity: level.Severity(),
		Payload:  NewPayload(message),
	})
}

// AddNamed is Add with a level name. Unrecognized names log at LevelUnknown.
func (l *Logger) AddNamed(ctx context.Context, name string, message any) error {
	level, err := ParseLevel(name)
	if err != nil {
		level = LevelUnknown
	}
	return l.Add(ctx, level, message)
}

// AddFields writes message together with logx style fields, see Formatter.Entry.
func (l *Logger) AddFields(ctx context.Context, level Level, message string, fields map[string]any) error {
	if !l.enabled(level) {
		return nil
	}
	entry := l.formatter.Entry(message, fields)
	entry.Severity = level.Severity()
	return l.write(ctx, entry)
}

func (l *Logger) Debug(ctx context.Context, message any) error {
	return l.Add(ctx, LevelDebug, message)
}

func (l *Logger) Info(ctx context.Context, message any) error {
	return l.Add(ctx, LevelInfo, message)
}

func (l *Logger) Warn(ctx context.Context, message any) error {
	return l.Add(ctx, LevelWarn, message)
}

func (l *Logger) Error(ctx context.Context, message any) error {
	return l.Add(ctx, LevelError, message)
}

func (l *Logger) Fatal(ctx context.Context, message any) error {
	return l.Add(ctx, LevelFatal, message)
}

// Unknown writes at LevelUnknown, which passes every threshold.
func (l *Logger) Unknown(ctx context.Context, message any) error {
	return l.Add(ctx, LevelUnknown, message)
}

func (l *Logger) write(ctx context.Context, entry *Entry) error {
	if entry.InsertID == "" {
		entry.InsertID = uuid.NewString()
	}
	return l.writer.WriteEntries(ctx, []*Entry{entry}, WriteOptions{
		LogName:  l.logName,
		Resource: l.resource,
		Labels:   l.labels,
	})
}
