package logging

// Field names read by the Formatter in addition to the logx ones. Fields not
// listed here end up in the structured payload.
const (
	FieldNameLogName                        string = "gcp:log_name"
	FieldNameInsertId                       string = "gcp:insert_id"
	FieldNameOperationId                    string = "gcp:operation_id"
	FieldNameOperationProducer              string = "gcp:operation_producer"
	FieldNameOperationFirst                 string = "gcp:operation_first"
	FieldNameOperationLast                  string = "gcp:operation_last"
	FieldNameLabels                         string = "gcp:labels"
	FieldNameCacheLookup                    string = "gcp:cache:lookup"
	FieldNameCacheHit                       string = "gcp:cache:hit"
	FieldNameCacheValidatedWithOriginServer string = "gcp:cache:validation_with_origin_header"
	FieldNameCacheFillBytes                 string = "gcp:cache:fill_bytes"
	FieldNameServerIp                       string = "gcp:server_ip"
	FieldNameLatency                        string = "gcp:latency"
	FieldNameTraceId                        string = "gcp:trace:id"
	FieldNameTraceSpanId                    string = "gcp:trace:span_id"
	FieldNameTraceEnabled                   string = "gcp:trace:enabled"
)

// traceContextHeader carries TRACE_ID/SPAN_ID;o=OPTIONS on requests routed by Google front ends.
const traceContextHeader = "X-Cloud-Trace-Context"

// payloadMessageKey holds the message inside a structured payload.
const payloadMessageKey = "message"
