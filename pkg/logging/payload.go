package logging

import (
	"fmt"
	"reflect"
)

// PayloadKind tells which of the three LogEntry payload fields a Payload maps to.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadText
	PayloadStructured
	PayloadProto
)

// Payload is the body of an entry: text, a structured (JSON) object or a
// protocol buffer in its JSON form (an object carrying "@type").
type Payload struct {
	kind   PayloadKind
	text   string
	fields map[string]any
}

// ProtoMessage is implemented by values that encode as protoPayload.
type ProtoMessage interface {
	ProtoPayload() map[string]any
}

// StructuredMessage is implemented by values that encode as jsonPayload.
type StructuredMessage interface {
	StructuredPayload() map[string]any
}

func TextPayload(text string) Payload {
	return Payload{kind: PayloadText, text: text}
}

func StructuredPayload(fields map[string]any) Payload {
	return Payload{kind: PayloadStructured, fields: fields}
}

func ProtoPayload(message map[string]any) Payload {
	return Payload{kind: PayloadProto, fields: message}
}

// NewPayload picks the encoding of v once, with the precedence
// proto > structured > text. Any map keyed by strings is structured. Anything
// else is encoded through fmt.Sprint.
func NewPayload(v any) Payload {
	switch value := v.(type) {
	case nil:
		return Payload{}
	case Payload:
		return value
	case ProtoMessage:
		return ProtoPayload(value.ProtoPayload())
	case StructuredMessage:
		return StructuredPayload(value.StructuredPayload())
	case map[string]any:
		return StructuredPayload(value)
	}

	if fields, ok := stringKeyedMap(v); ok {
		return StructuredPayload(fields)
	}

	switch value := v.(type) {
	case string:
		return TextPayload(value)
	case error:
		return TextPayload(value.Error())
	case fmt.Stringer:
		return TextPayload(value.String())
	default:
		return TextPayload(fmt.Sprint(value))
	}
}

// stringKeyedMap copies a map whose key kind is string into a map[string]any.
func stringKeyedMap(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	fields := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fields[iter.Key().String()] = iter.Value().Interface()
	}

	return fields, true
}

func (p Payload) Kind() PayloadKind {
	return p.kind
}

func (p Payload) IsZero() bool {
	return p.kind == PayloadNone
}

// Text returns the text of a text payload.
func (p Payload) Text() string {
	return p.text
}

// Fields returns the object of a structured or proto payload.
func (p Payload) Fields() map[string]any {
	return p.fields
}

// Value returns the payload regardless of its kind: a string for text, a map
// otherwise, nil when unset.
func (p Payload) Value() any {
	switch p.kind {
	case PayloadText:
		return p.text
	case PayloadStructured, PayloadProto:
		return p.fields
	default:
		return nil
	}
}

func (p Payload) String() string {
	if p.kind == PayloadText {
		return p.text
	}
	if p.kind == PayloadNone {
		return ""
	}
	return fmt.Sprint(p.fields)
}
