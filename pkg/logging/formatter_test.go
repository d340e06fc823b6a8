package logging

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/logx-go/contract/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter().WithProjectID("test")

	req, err := http.NewRequest("GET", "https://example.com", nil)
	require.NoError(t, err)
	req.Header.Set("X-Cloud-Trace-Context", "1c7886eaa2474d5da4da8c4f4bf6fdeb/1234567890;o=1")

	ts := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	fields := map[string]any{
		"foo":                     "bar",
		logx.FieldNameHTTPRequest: req,
		logx.FieldNameCallerFile:  "file",
		logx.FieldNameCallerFunc:  "func",
		logx.FieldNameCallerLine:  "123",
		logx.FieldNameTimestamp:   ts,
	}

	out := f.Format("test", fields)

	assert.JSONEq(t, `{
		"foo": "bar",
		"message": "test",
		"severity": "INFO",
		"timestamp": "2024-01-02T03:04:05.000006Z",
		"httpRequest": {"requestMethod": "GET", "requestUrl": "https://example.com", "requestSize": "108", "protocol": "HTTP/1.1"},
		"logging.googleapis.com/sourceLocation": {"file": "file", "line": "123", "function": "func"},
		"logging.googleapis.com/trace": "projects/test/traces/1c7886eaa2474d5da4da8c4f4bf6fdeb",
		"logging.googleapis.com/spanId": "1234567890",
		"logging.googleapis.com/trace_sampled": true
	}`, out)
	assert.Len(t, fields, 6)
}

func TestFormatter_Format_TextOnly(t *testing.T) {
	f := NewFormatter()
	f.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	out := f.Format("started", map[string]any{
		logx.FieldNameLogLevel: logx.LogLevelNotice,
		FieldNameInsertId:      "id-1",
		FieldNameLabels:        map[string]string{"env": "dev"},
	})

	assert.JSONEq(t, `{
		"message": "started",
		"severity": "NOTICE",
		"timestamp": "2024-01-02T03:04:05Z",
		"logging.googleapis.com/insertId": "id-1",
		"logging.googleapis.com/labels": {"env": "dev"}
	}`, out)
}

func TestFormatter_Format_MessageFromFields(t *testing.T) {
	f := NewFormatter()
	f.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	out := f.Format("", map[string]any{logx.FieldNameMessage: "from fields"})
	assert.JSONEq(t, `{
		"message": "from fields",
		"severity": "INFO",
		"timestamp": "2024-01-02T03:04:05Z"
	}`, out)

	out = f.Format("", nil)
	assert.JSONEq(t, `{"severity": "INFO", "timestamp": "2024-01-02T03:04:05Z"}`, out)

	e := f.Entry("", map[string]any{logx.FieldNameMessage: "from fields"})
	assert.Equal(t, TextPayload("from fields"), e.Payload)
}

func TestFormatter_ImplementsContract(t *testing.T) {
	var formatter logx.Formatter = NewFormatter()
	assert.NotEmpty(t, formatter.Format("hello", nil))
}

func TestFormatter_Entry(t *testing.T) {
	f := NewFormatter()

	e := f.Entry("done", map[string]any{
		logx.FieldNameLogLevel:     logx.LogLevelPanic,
		FieldNameLogName:           "jobs",
		FieldNameOperationId:       "op-7",
		FieldNameOperationProducer: "batch",
		FieldNameOperationLast:     true,
	})

	assert.True(t, e.IsEmergency())
	assert.Equal(t, "jobs", e.LogName)
	assert.Equal(t, "op-7", e.Operation.Id)
	assert.Equal(t, "batch", e.Operation.Producer)
	assert.True(t, e.Operation.Last)
	assert.False(t, e.Operation.First)
	assert.Equal(t, TextPayload("done"), e.Payload)
	assert.True(t, e.SourceLocation.IsEmpty())
	assert.True(t, e.HTTPRequest.IsEmpty())
}

func TestFormatter_SeverityMapping(t *testing.T) {
	f := NewFormatter()

	for lvl, want := range map[int]Severity{
		logx.LogLevelDebug:   SeverityDebug,
		logx.LogLevelInfo:    SeverityInfo,
		logx.LogLevelNotice:  SeverityNotice,
		logx.LogLevelWarning: SeverityWarning,
		logx.LogLevelError:   SeverityError,
		logx.LogLevelFatal:   SeverityAlert,
		logx.LogLevelPanic:   SeverityEmergency,
	} {
		assert.Equal(t, want, f.formatSeverity(map[string]any{logx.FieldNameLogLevel: lvl}))
	}

	assert.Equal(t, SeverityDefault, f.formatSeverity(map[string]any{logx.FieldNameLogLevel: 1000}))
	assert.Equal(t, SeverityWarning, f.WithLogLevelDefault(logx.LogLevelWarning).formatSeverity(nil))
	assert.Equal(t, SeverityCritical, f.WithLogLevelToSeverityMap(map[int]Severity{
		logx.LogLevelError: SeverityCritical,
	}).formatSeverity(map[string]any{logx.FieldNameLogLevel: logx.LogLevelError}))
}

func TestFormatter_ExplicitTraceWins(t *testing.T) {
	f := NewFormatter().WithProjectID("test")

	req, err := http.NewRequest("GET", "https://example.com", nil)
	require.NoError(t, err)
	req.Header.Set("X-Cloud-Trace-Context", "aaa/1;o=1")

	e := f.Entry("", map[string]any{
		logx.FieldNameHTTPRequest: req,
		FieldNameTraceId:          "projects/test/traces/bbb",
	})
	assert.Equal(t, "projects/test/traces/bbb", e.Trace)
	assert.Empty(t, e.SpanID)
}

func TestFormatter_HttpResponse(t *testing.T) {
	f := NewFormatter()

	req, err := http.NewRequest("POST", "https://example.com/upload", strings.NewReader("payload"))
	require.NoError(t, err)
	res := &http.Response{
		Proto:      "HTTP/1.1",
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"text/plain"}},
		Body:       io.NopCloser(strings.NewReader("hello")),
	}

	e := f.Entry("", map[string]any{
		logx.FieldNameHTTPRequest:  req,
		logx.FieldNameHTTPResponse: res,
		FieldNameLatency:           "0.25s",
		FieldNameCacheFillBytes:    "512",
	})

	assert.Equal(t, http.StatusOK, e.HTTPRequest.Status)
	assert.Equal(t, "52", e.HTTPRequest.ResponseSize)
	assert.Equal(t, "0.25s", e.HTTPRequest.Latency)
	assert.Equal(t, "512", e.HTTPRequest.CacheFillBytes)

	// 4 + 26 + 8 + 4 request line, 2 final CRLF, 7 body bytes
	assert.Equal(t, "51", e.HTTPRequest.RequestSize)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	body, err = io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}

func TestParseTraceContext(t *testing.T) {
	tests := []struct {
		header  string
		trace   string
		span    string
		sampled bool
	}{
		{"105445aa7843bc8bf206b12000100000/1;o=1", "105445aa7843bc8bf206b12000100000", "1", true},
		{"105445aa7843bc8bf206b12000100000/1;o=0", "105445aa7843bc8bf206b12000100000", "1", false},
		{"105445aa7843bc8bf206b12000100000/1", "105445aa7843bc8bf206b12000100000", "1", false},
		{"105445aa7843bc8bf206b12000100000", "105445aa7843bc8bf206b12000100000", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		trace, span, sampled := parseTraceContext(tt.header)
		assert.Equal(t, tt.trace, trace, tt.header)
		assert.Equal(t, tt.span, span, tt.header)
		assert.Equal(t, tt.sampled, sampled, tt.header)
	}
}
