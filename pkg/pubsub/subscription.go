package pubsub

import (
	"context"
	"fmt"

	"github.com/logx-go/gcloud/pkg/gapi"
)

// defaultPullMax is the number of messages requested when PullOptions.Max is zero.
const defaultPullMax = 100

// Subscription is a handle on a subscription. Attributes of a lazy handle are
// unknown until Reload.
type Subscription struct {
	name         string
	topic        string
	ackDeadline  int
	pushEndpoint string

	client *Client
	state  gapi.State
}

type pushConfigWire struct {
	PushEndpoint string `json:"pushEndpoint,omitempty"`
}

type subscriptionWire struct {
	Name               string          `json:"name,omitempty"`
	Topic              string          `json:"topic,omitempty"`
	AckDeadlineSeconds int             `json:"ackDeadlineSeconds,omitempty"`
	PushConfig         *pushConfigWire `json:"pushConfig,omitempty"`
}

func (c *Client) subscriptionFromWire(w subscriptionWire) *Subscription {
	s := &Subscription{client: c, state: gapi.Resolved()}
	s.apply(w)
	return s
}

func (s *Subscription) apply(w subscriptionWire) {
	if w.Name != "" {
		s.name = w.Name
	}
	if w.Topic != "" {
		s.topic = w.Topic
	}
	s.ackDeadline = w.AckDeadlineSeconds
	s.pushEndpoint = ""
	if w.PushConfig != nil {
		s.pushEndpoint = w.PushConfig.PushEndpoint
	}
}

func (c *Client) createSubscription(ctx context.Context, name, topic string, opts SubscribeOptions) (*Subscription, error) {
	body := subscriptionWire{Topic: topic, AckDeadlineSeconds: opts.AckDeadline}
	if opts.PushEndpoint != "" {
		body.PushConfig = &pushConfigWire{PushEndpoint: opts.PushEndpoint}
	}
	resp, err := c.conn.Put(ctx, name, body)
	if err != nil {
		return nil, err
	}
	var w subscriptionWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	if w.Name == "" {
		w.Name = name
	}
	if w.Topic == "" {
		w.Topic = topic
	}
	return c.subscriptionFromWire(w), nil
}

// Name returns the full resource name, projects/<project>/subscriptions/<name>.
func (s *Subscription) Name() string {
	return s.name
}

// ID returns the short subscription name.
func (s *Subscription) ID() string {
	return shortName(s.name)
}

// Topic returns the full name of the subscribed topic, empty when unknown.
func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) AckDeadlineSeconds() int {
	return s.ackDeadline
}

// PushEndpoint is empty for pull subscriptions.
func (s *Subscription) PushEndpoint() string {
	return s.pushEndpoint
}

func (s *Subscription) IsLazy() bool {
	return s.state.IsLazy()
}

// create provisions a lazy subscription. Without a known topic there is nothing
// to create it on, so nil is returned and not-found errors surface unchanged.
func (s *Subscription) create() func(ctx context.Context) error {
	if s.topic == "" {
		return nil
	}
	return func(ctx context.Context) error {
		created, err := s.client.createSubscription(ctx, s.name, s.topic, SubscribeOptions{})
		if err != nil {
			return err
		}
		s.ackDeadline = created.ackDeadline
		s.pushEndpoint = created.pushEndpoint
		return nil
	}
}

// PullOptions controls a Pull call.
type PullOptions struct {
	// Max caps the number of messages returned, 100 when zero.
	Max int
	// Immediate returns at once when no message is available instead of waiting.
	Immediate bool
}

type pullRequest struct {
	ReturnImmediately bool `json:"returnImmediately"`
	MaxMessages       int  `json:"maxMessages"`
}

type pullResponse struct {
	ReceivedMessages []receivedMessageWire `json:"receivedMessages"`
}

// Pull fetches available messages. They must be acknowledged before their ack deadline.
func (s *Subscription) Pull(ctx context.Context, opts PullOptions) ([]*ReceivedMessage, error) {
	req := pullRequest{ReturnImmediately: opts.Immediate, MaxMessages: opts.Max}
	if req.MaxMessages <= 0 {
		req.MaxMessages = defaultPullMax
	}

	var out pullResponse
	err := s.state.Do(ctx, func(ctx context.Context) error {
		resp, err := s.client.conn.Post(ctx, s.name+":pull", req)
		if err != nil {
			return err
		}
		return resp.Decode(&out)
	}, s.create())
	if err != nil {
		return nil, fmt.Errorf("failed to pull from %s: %w", s.name, err)
	}

	received := make([]*ReceivedMessage, 0, len(out.ReceivedMessages))
	for _, w := range out.ReceivedMessages {
		received = append(received, &ReceivedMessage{
			AckID:        w.AckId,
			Message:      messageFromWire(w.Message),
			subscription: s,
		})
	}
	return received, nil
}

type acknowledgeRequest struct {
	AckIds []string `json:"ackIds"`
}

// Acknowledge acknowledges received messages so they are not redelivered.
func (s *Subscription) Acknowledge(ctx context.Context, ackIDs ...string) error {
	if len(ackIDs) == 0 {
		return nil
	}
	if _, err := s.client.conn.Post(ctx, s.name+":acknowledge", acknowledgeRequest{AckIds: ackIDs}); err != nil {
		return fmt.Errorf("failed to acknowledge on %s: %w", s.name, err)
	}
	return nil
}

type modifyAckDeadlineRequest struct {
	AckIds             []string `json:"ackIds"`
	AckDeadlineSeconds int      `json:"ackDeadlineSeconds"`
}

// ModifyAckDeadline sets a new deadline, counted from now, for received messages.
func (s *Subscription) ModifyAckDeadline(ctx context.Context, seconds int, ackIDs ...string) error {
	if len(ackIDs) == 0 {
		return nil
	}
	req := modifyAckDeadlineRequest{AckIds: ackIDs, AckDeadlineSeconds: seconds}
	if _, err := s.client.conn.Post(ctx, s.name+":modifyAckDeadline", req); err != nil {
		return fmt.Errorf("failed to modify ack deadline on %s: %w", s.name, err)
	}
	return nil
}

// Exists asks the service whether the subscription exists. A positive answer
// resolves the handle and loads its attributes.
func (s *Subscription) Exists(ctx context.Context) (bool, error) {
	err := s.Reload(ctx)
	if gapi.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Reload reads the subscription attributes from the service.
func (s *Subscription) Reload(ctx context.Context) error {
	resp, err := s.client.conn.Get(ctx, s.name, nil)
	if err != nil {
		return fmt.Errorf("failed to get subscription %s: %w", s.name, err)
	}
	var w subscriptionWire
	if err := resp.Decode(&w); err != nil {
		return err
	}
	s.apply(w)
	s.state.Resolve()
	return nil
}

// Delete deletes the subscription. Pending messages are dropped.
func (s *Subscription) Delete(ctx context.Context) error {
	if _, err := s.client.conn.Delete(ctx, s.name); err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", s.name, err)
	}
	return nil
}
