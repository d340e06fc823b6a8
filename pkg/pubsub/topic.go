package pubsub

import (
	"context"
	"fmt"

	"github.com/logx-go/gcloud/pkg/gapi"
)

// Topic is a handle on a topic. Handles from LazyTopic are lazy until an
// operation confirms the topic exists.
type Topic struct {
	name   string
	client *Client
	state  gapi.State
}

type topicWire struct {
	Name string `json:"name"`
}

func (c *Client) topicFromWire(w topicWire) *Topic {
	return &Topic{name: w.Name, client: c, state: gapi.Resolved()}
}

// Name returns the full resource name, projects/<project>/topics/<name>.
func (t *Topic) Name() string {
	return t.name
}

// ID returns the short topic name.
func (t *Topic) ID() string {
	return shortName(t.name)
}

func (t *Topic) IsLazy() bool {
	return t.state.IsLazy()
}

func (t *Topic) Autocreate() bool {
	return t.state.Autocreate()
}

func (t *Topic) create(ctx context.Context) error {
	_, err := t.client.conn.Put(ctx, t.name, struct{}{})
	return err
}

type publishRequest struct {
	Messages []messageWire `json:"messages"`
}

type publishResponse struct {
	MessageIds []string `json:"messageIds"`
}

// Publish sends msgs in one call and returns them with their service assigned ids.
// A lazy topic with autocreate is created when the service reports it missing.
func (t *Topic) Publish(ctx context.Context, msgs ...*Message) ([]*Message, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	req := publishRequest{Messages: make([]messageWire, 0, len(msgs))}
	for _, m := range msgs {
		if len(m.Data) == 0 && len(m.Attributes) == 0 {
			return nil, ErrEmptyMessage
		}
		req.Messages = append(req.Messages, m.toWire())
	}

	var out publishResponse
	err := t.state.Do(ctx, func(ctx context.Context) error {
		resp, err := t.client.conn.Post(ctx, t.name+":publish", req)
		if err != nil {
			return err
		}
		return resp.Decode(&out)
	}, t.create)
	if err != nil {
		return nil, fmt.Errorf("failed to publish to %s: %w", t.name, err)
	}

	published := make([]*Message, len(msgs))
	for i, m := range msgs {
		p := *m
		if i < len(out.MessageIds) {
			p.ID = out.MessageIds[i]
		}
		published[i] = &p
	}
	return published, nil
}

// SubscribeOptions are the optional attributes of a new subscription.
type SubscribeOptions struct {
	// AckDeadline in seconds, the service default applies when zero.
	AckDeadline  int
	PushEndpoint string
}

// Subscribe creates a subscription on the topic.
func (t *Topic) Subscribe(ctx context.Context, name string, opts SubscribeOptions) (*Subscription, error) {
	var sub *Subscription
	err := t.state.Do(ctx, func(ctx context.Context) error {
		var err error
		sub, err = t.client.createSubscription(ctx, SubscriptionPath(t.client.projectID, name), t.name, opts)
		return err
	}, t.create)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe %s to %s: %w", name, t.name, err)
	}
	return sub, nil
}

// Subscriptions lists the subscriptions attached to the topic. The service
// only returns names, so the handles are lazy.
func (t *Topic) Subscriptions(ctx context.Context, opts ListOptions) (*gapi.List[*Subscription], error) {
	path := t.name + "/subscriptions"
	page := func(ctx context.Context, token string) (*gapi.Response, error) {
		return t.client.conn.Get(ctx, path, gapi.PageQuery(token, opts.Max, gapi.ParamPageSize))
	}
	resp, err := page(ctx, opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions of %s: %w", t.name, err)
	}
	return gapi.FromResponse(resp, "subscriptions", t.lazySubscription, page)
}

func (t *Topic) lazySubscription(name string) *Subscription {
	return &Subscription{
		name:   name,
		topic:  t.name,
		client: t.client,
		state:  gapi.Lazy(false),
	}
}

// Exists asks the service whether the topic exists. A positive answer resolves the handle.
func (t *Topic) Exists(ctx context.Context) (bool, error) {
	_, err := t.client.conn.Get(ctx, t.name, nil)
	if gapi.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get topic %s: %w", t.name, err)
	}
	t.state.Resolve()
	return true, nil
}

// Delete deletes the topic. Its subscriptions are kept but stop receiving messages.
func (t *Topic) Delete(ctx context.Context) error {
	if _, err := t.client.conn.Delete(ctx, t.name); err != nil {
		return fmt.Errorf("failed to delete topic %s: %w", t.name, err)
	}
	return nil
}
