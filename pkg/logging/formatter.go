package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/logx-go/commons/pkg/commons"
	"github.com/logx-go/contract/pkg/logx"
	"github.com/logx-go/gcloud/pkg/logging/model"
)

var _ logx.Formatter = (*Formatter)(nil)

// Special keys of the structured logging format understood by the logging agents.
const (
	structuredKeyInsertId       = "logging.googleapis.com/insertId"
	structuredKeyLabels         = "logging.googleapis.com/labels"
	structuredKeyOperation      = "logging.googleapis.com/operation"
	structuredKeySourceLocation = "logging.googleapis.com/sourceLocation"
	structuredKeySpanId         = "logging.googleapis.com/spanId"
	structuredKeyTrace          = "logging.googleapis.com/trace"
	structuredKeyTraceSampled   = "logging.googleapis.com/trace_sampled"
)

// payloadSkipFields are consumed by the formatter and never copied into the payload.
var payloadSkipFields = []string{
	logx.FieldNameCallerFile,
	logx.FieldNameCallerLine,
	logx.FieldNameCallerFunc,
	logx.FieldNameLogLevel,
	logx.FieldNameMessage,
	logx.FieldNameTimestamp,
	logx.FieldNameHTTPRequest,
	logx.FieldNameHTTPResponse,
	FieldNameLogName,
	FieldNameTraceId,
	FieldNameTraceEnabled,
	FieldNameTraceSpanId,
	FieldNameServerIp,
	FieldNameCacheLookup,
	FieldNameCacheHit,
	FieldNameCacheValidatedWithOriginServer,
	FieldNameCacheFillBytes,
	FieldNameLatency,
	FieldNameInsertId,
	FieldNameLabels,
	FieldNameOperationId,
	FieldNameOperationProducer,
	FieldNameOperationFirst,
	FieldNameOperationLast,
}

// NewFormatter returns a formatter mapping logx fields onto log entries.
func NewFormatter() *Formatter {
	return &Formatter{
		logLevelToSeverityMap: map[int]Severity{
			logx.LogLevelDebug:   SeverityDebug,
			logx.LogLevelInfo:    SeverityInfo,
			logx.LogLevelNotice:  SeverityNotice,
			logx.LogLevelWarning: SeverityWarning,
			logx.LogLevelError:   SeverityError,
			logx.LogLevelFatal:   SeverityAlert,
			logx.LogLevelPanic:   SeverityEmergency,
		},
		logLevelDefault: logx.LogLevelInfo,
		now:             time.Now,
	}
}

// Formatter builds an Entry out of a logx message and its fields. Format
// renders that entry in the structured JSON format read by the logging agents,
// Entry hands it to a Client.
type Formatter struct {
	logLevelToSeverityMap map[int]Severity
	logLevelDefault       int
	projectID             string
	now                   func() time.Time
}

func (f *Formatter) clone() *Formatter {
	return &Formatter{
		logLevelToSeverityMap: f.logLevelToSeverityMap,
		logLevelDefault:       f.logLevelDefault,
		projectID:             f.projectID,
		now:                   f.now,
	}
}

func (f *Formatter) WithLogLevelToSeverityMap(m map[int]Severity) *Formatter {
	c := f.clone()
	c.logLevelToSeverityMap = m

	return c
}

func (f *Formatter) WithLogLevelDefault(l int) *Formatter {
	c := f.clone()
	c.logLevelDefault = l

	return c
}

// WithProjectID enables trace extraction from the X-Cloud-Trace-Context request header.
func (f *Formatter) WithProjectID(p string) *Formatter {
	c := f.clone()
	c.projectID = p

	return c
}

// Format implements logx.Formatter.
func (f *Formatter) Format(message string, fields map[string]any) string {
	enc, err := json.Marshal(structuredRecord(f.Entry(message, fields)))
	if err != nil {
		return message
	}

	return string(enc)
}

// Entry builds the log entry described by message and fields. An empty message
// is read from the logx message field. When fields hold anything besides the
// well-known ones the payload is structured and carries the message under
// "message", otherwise it is the message text.
func (f *Formatter) Entry(message string, fields map[string]any) *Entry {
	if message == "" {
		message = commons.GetFieldAsStringOrElse(logx.FieldNameMessage, fields, "")
	}

	e := &Entry{
		LogName:      commons.GetFieldAsStringOrElse(FieldNameLogName, fields, ""),
		Severity:     f.formatSeverity(fields),
		InsertID:     commons.GetFieldAsStringOrElse(FieldNameInsertId, fields, ""),
		Trace:        commons.GetFieldAsStringOrElse(FieldNameTraceId, fields, ""),
		TraceSampled: commons.GetFieldAsBoolOrElse(FieldNameTraceEnabled, fields, false),
		SpanID:       commons.GetFieldAsStringOrElse(FieldNameTraceSpanId, fields, ""),
		Labels:       commons.GetFieldAsStringMapOrElse(FieldNameLabels, fields, nil),
		Timestamp:    commons.GetFieldAsTimeOrElse(logx.FieldNameTimestamp, fields, f.now()),
		Operation:    f.formatOperation(fields),
		HTTPRequest:  f.formatHttpRequest(fields),
		SourceLocation: model.SourceLocation{
			File:     commons.GetFieldAsStringOrElse(logx.FieldNameCallerFile, fields, ""),
			Line:     commons.GetFieldAsStringOrElse(logx.FieldNameCallerLine, fields, ""),
			Function: commons.GetFieldAsStringOrElse(logx.FieldNameCallerFunc, fields, ""),
		},
	}

	if payload := f.formatPayload(fields); payload != nil {
		if message != "" {
			payload[payloadMessageKey] = message
		}
		e.Payload = StructuredPayload(payload)
	} else if message != "" {
		e.Payload = TextPayload(message)
	}

	f.formatTracing(fields, e)

	return e
}

func (f *Formatter) formatTracing(fields map[string]any, e *Entry) {
	if e.Trace != "" || f.projectID == "" {
		return
	}

	req := commons.GetFieldAsRequestPtrOrElse(logx.FieldNameHTTPRequest, fields, nil)
	if req == nil {
		return
	}

	traceID, spanID, sampled := parseTraceContext(req.Header.Get(traceContextHeader))
	if traceID == "" {
		return
	}

	e.Trace = fmt.Sprintf(`projects/%s/traces/%s`, f.projectID, traceID)
	e.SpanID = spanID
	e.TraceSampled = sampled
}

// parseTraceContext splits TRACE_ID/SPAN_ID;o=OPTIONS. The span and options are optional.
func parseTraceContext(header string) (traceID, spanID string, sampled bool) {
	if header == "" {
		return "", "", false
	}

	traceID, rest, _ := strings.Cut(header, "/")
	spanID, options, _ := strings.Cut(rest, ";")

	return traceID, spanID, options == "o=1"
}

func (f *Formatter) formatPayload(fields map[string]any) map[string]any {
	payload := make(map[string]any)
	for name, value := range fields {
		if commons.Contains(payloadSkipFields, name) {
			continue
		}

		if _, err := json.Marshal(value); err == nil {
			payload[name] = value
		}
	}

	if len(payload) == 0 {
		return nil
	}

	return payload
}

func (f *Formatter) formatOperation(fields map[string]any) model.Operation {
	op := model.Operation{
		Id:       commons.GetFieldAsStringOrElse(FieldNameOperationId, fields, ""),
		Producer: commons.GetFieldAsStringOrElse(FieldNameOperationProducer, fields, ""),
	}

	if op.Id == "" && op.Producer == "" {
		return model.Operation{}
	}

	op.First = commons.GetFieldAsBoolOrElse(FieldNameOperationFirst, fields, false)
	op.Last = commons.GetFieldAsBoolOrElse(FieldNameOperationLast, fields, false)

	return op
}

func (f *Formatter) formatHttpRequest(fields map[string]any) model.HttpRequest {
	req := commons.GetFieldAsRequestPtrOrElse(logx.FieldNameHTTPRequest, fields, nil)
	if req == nil {
		return model.HttpRequest{}
	}

	result := model.HttpRequest{
		RequestMethod:                  req.Method,
		RequestUrl:                     requestURL(req),
		RequestSize:                    requestSize(req),
		UserAgent:                      req.UserAgent(),
		RemoteIp:                       req.RemoteAddr,
		ServerIp:                       commons.GetFieldAsStringOrElse(FieldNameServerIp, fields, ""),
		Protocol:                       req.Proto,
		Referer:                        req.Referer(),
		CacheLookup:                    commons.GetFieldAsBoolOrElse(FieldNameCacheLookup, fields, false),
		CacheHit:                       commons.GetFieldAsBoolOrElse(FieldNameCacheHit, fields, false),
		CacheValidatedWithOriginServer: commons.GetFieldAsBoolOrElse(FieldNameCacheValidatedWithOriginServer, fields, false),
		CacheFillBytes:                 commons.GetFieldAsStringOrElse(FieldNameCacheFillBytes, fields, ""),
		Latency:                        commons.GetFieldAsStringOrElse(FieldNameLatency, fields, ""),
	}

	res := commons.GetFieldAsResponsePtrOrElse(logx.FieldNameHTTPResponse, fields, nil)
	if res == nil {
		return result
	}

	result.Status = res.StatusCode
	result.ResponseSize = responseSize(res)

	return result
}

func (f *Formatter) formatSeverity(fields map[string]any) Severity {
	lvl := commons.GetFieldAsIntOrElse(logx.FieldNameLogLevel, fields, f.logLevelDefault)

	if s, ok := f.logLevelToSeverityMap[lvl]; ok {
		return s
	}

	return SeverityDefault
}

// requestURL prefers the raw request target of server requests over the parsed URL of client ones.
func requestURL(req *http.Request) string {
	if req.RequestURI != "" {
		return req.RequestURI
	}
	if req.URL != nil {
		return req.URL.String()
	}
	return ""
}

func requestSize(req *http.Request) string {
	target := ""
	if req.URL != nil {
		target = req.URL.String()
	}
	size := int64(len(req.Method)+len(target)+len(req.Proto)) + 4 // 2 spaces + CRLF
	size += headersSize(req.Header)

	body, n, ok := measureBody(req.Body)
	if !ok {
		return ""
	}
	req.Body = body

	return fmt.Sprintf(`%d`, size+n)
}

func responseSize(res *http.Response) string {
	size := int64(len(res.Proto)+len(res.Status)) + 5 // space + status code + CRLF
	size += headersSize(res.Header)

	body, n, ok := measureBody(res.Body)
	if !ok {
		return ""
	}
	res.Body = body

	return fmt.Sprintf(`%d`, size+n)
}

func headersSize(h http.Header) int64 {
	var size int64
	for k, v := range h {
		for _, value := range v {
			size += int64(len(k)+len(value)) + 4 // ": " + CRLF
		}
	}
	return size + 2 // final CRLF
}

// measureBody reads body fully and returns a replacement reader over the same bytes.
func measureBody(body io.ReadCloser) (io.ReadCloser, int64, bool) {
	if body == nil || body == http.NoBody {
		return body, 0, true
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return body, 0, false
	}
	_ = body.Close()

	return io.NopCloser(bytes.NewReader(buf.Bytes())), int64(buf.Len()), true
}

// structuredRecord flattens an entry into the single-line JSON form the logging
// agents parse from stdout: payload fields at the top level next to the
// special logging.googleapis.com/* keys.
func structuredRecord(e *Entry) map[string]any {
	w := e.ToWire()
	record := make(map[string]any, len(w.JsonPayload)+8)

	for k, v := range w.JsonPayload {
		record[k] = v
	}
	for k, v := range w.ProtoPayload {
		record[k] = v
	}
	if w.TextPayload != "" {
		record[payloadMessageKey] = w.TextPayload
	}

	if w.Severity != "" {
		record["severity"] = w.Severity
	}
	if !e.Timestamp.IsZero() {
		record["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	} else if w.Timestamp != "" {
		record["timestamp"] = w.Timestamp
	}
	if w.HttpRequest != nil {
		record["httpRequest"] = w.HttpRequest
	}
	if w.InsertId != "" {
		record[structuredKeyInsertId] = w.InsertId
	}
	if w.Labels != nil {
		record[structuredKeyLabels] = w.Labels
	}
	if w.Operation != nil {
		record[structuredKeyOperation] = w.Operation
	}
	if w.SourceLocation != nil {
		record[structuredKeySourceLocation] = w.SourceLocation
	}
	if w.Trace != "" {
		record[structuredKeyTrace] = w.Trace
	}
	if w.SpanId != "" {
		record[structuredKeySpanId] = w.SpanId
	}
	if w.TraceSampled {
		record[structuredKeyTraceSampled] = true
	}

	return record
}
