package pubsub

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyMessage is returned when publishing a message with neither data nor attributes.
var ErrEmptyMessage = errors.New("pubsub: message must have data or attributes")

// Message is a Pub/Sub message. ID and PublishTime are assigned by the service
// and are never sent.
type Message struct {
	Data        []byte
	Attributes  map[string]string
	ID          string
	PublishTime time.Time
}

func NewMessage(data []byte, attributes map[string]string) *Message {
	return &Message{Data: data, Attributes: attributes}
}

// messageWire encodes Data as base64, the representation the API expects.
type messageWire struct {
	Data        []byte            `json:"data,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	MessageId   string            `json:"messageId,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
}

func (m *Message) toWire() messageWire {
	return messageWire{Data: m.Data, Attributes: m.Attributes}
}

func messageFromWire(w messageWire) *Message {
	m := &Message{
		Data:       w.Data,
		Attributes: w.Attributes,
		ID:         w.MessageId,
	}
	if w.PublishTime != "" {
		if ts, err := time.Parse(time.RFC3339Nano, w.PublishTime); err == nil {
			m.PublishTime = ts
		}
	}
	return m
}

// ReceivedMessage is a message pulled from a subscription together with the
// id needed to acknowledge it.
type ReceivedMessage struct {
	AckID   string
	Message *Message

	subscription *Subscription
}

type receivedMessageWire struct {
	AckId   string      `json:"ackId"`
	Message messageWire `json:"message"`
}

// Acknowledge acknowledges the message on the subscription it was pulled from.
func (r *ReceivedMessage) Acknowledge(ctx context.Context) error {
	return r.subscription.Acknowledge(ctx, r.AckID)
}

// Delay sets a new ack deadline for the message. Zero makes it available for redelivery.
func (r *ReceivedMessage) Delay(ctx context.Context, seconds int) error {
	return r.subscription.ModifyAckDeadline(ctx, seconds, r.AckID)
}
