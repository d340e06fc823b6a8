package model

// LogEntry is the JSON shape of https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry
// as sent to entries:write and returned by entries:list. At most one payload field is set.
type LogEntry struct {
	LogName        string             `json:"logName,omitempty"`
	Resource       *MonitoredResource `json:"resource,omitempty"`
	Timestamp      string             `json:"timestamp,omitempty"`
	Severity       string             `json:"severity,omitempty"`
	InsertId       string             `json:"insertId,omitempty"`
	Labels         map[string]string  `json:"labels,omitempty"`
	ProtoPayload   map[string]any     `json:"protoPayload,omitempty"`
	JsonPayload    map[string]any     `json:"jsonPayload,omitempty"`
	TextPayload    string             `json:"textPayload,omitempty"`
	HttpRequest    *HttpRequest       `json:"httpRequest,omitempty"`
	Operation      *Operation         `json:"operation,omitempty"`
	Trace          string             `json:"trace,omitempty"`
	SpanId         string             `json:"spanId,omitempty"`
	TraceSampled   bool               `json:"traceSampled,omitempty"`
	SourceLocation *SourceLocation    `json:"sourceLocation,omitempty"`
}

// MonitoredResource identifies the entity a log entry pertains to, e.g. {"type":"gce_instance"}.
type MonitoredResource struct {
	Type   string            `json:"type,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// IsEmpty reports whether the resource carries no data and should be omitted.
func (r *MonitoredResource) IsEmpty() bool {
	return r == nil || (r.Type == "" && len(r.Labels) == 0)
}
