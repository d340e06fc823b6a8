package logging

import (
	"time"

	"github.com/logx-go/gcloud/pkg/logging/model"
)

// timestampLayout is the form the API accepts for entry timestamps.
const timestampLayout = "2006-01-02T15:04:05Z"

// Entry is an individual entry in a log. The zero value is an empty entry.
type Entry struct {
	// LogName is the resource name of the log, projects/<project-id>/logs/<log-id>.
	LogName string

	// Timestamp is when the event occurred. When zero, TimestampText is sent
	// verbatim, and when both are empty the service uses the write time.
	Timestamp     time.Time
	TimestampText string

	// Severity defaults to DEFAULT on the service side when empty.
	Severity Severity

	// InsertID deduplicates entries within the same log.
	InsertID string

	Labels map[string]string

	Payload Payload

	Resource       model.MonitoredResource
	HTTPRequest    model.HttpRequest
	Operation      model.Operation
	SourceLocation model.SourceLocation

	Trace        string
	SpanID       string
	TraceSampled bool
}

func (e *Entry) IsDefault() bool   { return e.Severity == SeverityDefault }
func (e *Entry) IsDebug() bool     { return e.Severity == SeverityDebug }
func (e *Entry) IsInfo() bool      { return e.Severity == SeverityInfo }
func (e *Entry) IsNotice() bool    { return e.Severity == SeverityNotice }
func (e *Entry) IsWarning() bool   { return e.Severity == SeverityWarning }
func (e *Entry) IsError() bool     { return e.Severity == SeverityError }
func (e *Entry) IsCritical() bool  { return e.Severity == SeverityCritical }
func (e *Entry) IsAlert() bool     { return e.Severity == SeverityAlert }
func (e *Entry) IsEmergency() bool { return e.Severity == SeverityEmergency }

// IsEmpty reports whether the entry serializes to an empty object.
func (e *Entry) IsEmpty() bool {
	w := e.ToWire()
	return w.LogName == "" && w.Timestamp == "" && w.Severity == "" && w.InsertId == "" &&
		w.Labels == nil && w.ProtoPayload == nil && w.JsonPayload == nil && w.TextPayload == "" &&
		w.Resource == nil && w.HttpRequest == nil && w.Operation == nil &&
		w.Trace == "" && w.SpanId == "" && !w.TraceSampled && w.SourceLocation == nil
}

// FormattedTimestamp returns the timestamp as sent on the wire.
func (e *Entry) FormattedTimestamp() string {
	if !e.Timestamp.IsZero() {
		return e.Timestamp.UTC().Format(timestampLayout)
	}
	return e.TimestampText
}

// ToWire exports the entry. Empty fields are left out of the encoded object.
func (e *Entry) ToWire() model.LogEntry {
	w := model.LogEntry{
		LogName:      e.LogName,
		Timestamp:    e.FormattedTimestamp(),
		Severity:     string(e.Severity),
		InsertId:     e.InsertID,
		Trace:        e.Trace,
		SpanId:       e.SpanID,
		TraceSampled: e.TraceSampled,
	}
	if len(e.Labels) > 0 {
		w.Labels = e.Labels
	}

	switch e.Payload.Kind() {
	case PayloadProto:
		if len(e.Payload.Fields()) > 0 {
			w.ProtoPayload = e.Payload.Fields()
		}
	case PayloadStructured:
		if len(e.Payload.Fields()) > 0 {
			w.JsonPayload = e.Payload.Fields()
		}
	case PayloadText:
		w.TextPayload = e.Payload.Text()
	}

	if !e.Resource.IsEmpty() {
		res := e.Resource
		w.Resource = &res
	}
	if !e.HTTPRequest.IsEmpty() {
		req := e.HTTPRequest
		w.HttpRequest = &req
	}
	if !e.Operation.IsEmpty() {
		op := e.Operation
		w.Operation = &op
	}
	if !e.SourceLocation.IsEmpty() {
		loc := e.SourceLocation
		w.SourceLocation = &loc
	}

	return w
}

// EntryFromWire builds an Entry from a decoded LogEntry. The payload is read
// with the same precedence used for encoding: proto, then JSON, then text.
func EntryFromWire(w model.LogEntry) *Entry {
	e := &Entry{
		LogName:      w.LogName,
		Severity:     Severity(w.Severity),
		InsertID:     w.InsertId,
		Labels:       w.Labels,
		Trace:        w.Trace,
		SpanID:       w.SpanId,
		TraceSampled: w.TraceSampled,
	}

	if w.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, w.Timestamp); err == nil {
			e.Timestamp = ts
		} else {
			e.TimestampText = w.Timestamp
		}
	}

	switch {
	case w.ProtoPayload != nil:
		e.Payload = ProtoPayload(w.ProtoPayload)
	case w.JsonPayload != nil:
		e.Payload = StructuredPayload(w.JsonPayload)
	case w.TextPayload != "":
		e.Payload = TextPayload(w.TextPayload)
	}

	if w.Resource != nil {
		e.Resource = *w.Resource
	}
	if w.HttpRequest != nil {
		e.HTTPRequest = *w.HttpRequest
	}
	if w.Operation != nil {
		e.Operation = *w.Operation
	}
	if w.SourceLocation != nil {
		e.SourceLocation = *w.SourceLocation
	}

	return e
}
