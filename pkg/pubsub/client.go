package pubsub

import (
	"context"
	"fmt"
	"strings"

	"github.com/logx-go/gcloud/pkg/gapi"
)

// DefaultEndpoint is the REST root of the Pub/Sub API.
const DefaultEndpoint = "https://pubsub.googleapis.com/v1"

// ListOptions selects a page of a list call. Max is sent as pageSize.
type ListOptions = gapi.ListOptions

// Client is the Pub/Sub accessor of one project.
type Client struct {
	projectID string
	conn      *gapi.Connection
}

func NewClient(projectID string, conn *gapi.Connection) *Client {
	return &Client{projectID: projectID, conn: conn}
}

func (c *Client) ProjectID() string {
	return c.projectID
}

// TopicPath returns projects/<project>/topics/<name>. Full names are returned unchanged.
func TopicPath(project, name string) string {
	return resourcePath(project, "topics", name)
}

// SubscriptionPath returns projects/<project>/subscriptions/<name>. Full names are returned unchanged.
func SubscriptionPath(project, name string) string {
	return resourcePath(project, "subscriptions", name)
}

func resourcePath(project, collection, name string) string {
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return "projects/" + project + "/" + collection + "/" + name
}

// shortName returns the last segment of a resource name.
func shortName(name string) string {
	return name[strings.LastIndex(name, "/")+1:]
}

type handleOptions struct {
	project    string
	autocreate bool
	topic      string
}

// HandleOption configures a lazy handle.
type HandleOption func(*handleOptions)

// WithProject builds the handle in another project than the client's.
func WithProject(project string) HandleOption {
	return func(o *handleOptions) {
		o.project = project
	}
}

// WithAutocreate sets whether the handle creates its resource when an
// operation finds it missing. Lazy handles autocreate by default.
func WithAutocreate(autocreate bool) HandleOption {
	return func(o *handleOptions) {
		o.autocreate = autocreate
	}
}

// WithTopic names the topic of a lazy subscription, which is what makes
// autocreating it possible.
func WithTopic(topic string) HandleOption {
	return func(o *handleOptions) {
		o.topic = topic
	}
}

func (c *Client) handleOptions(opts []HandleOption) handleOptions {
	o := handleOptions{project: c.projectID, autocreate: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CreateTopic creates a topic and returns its resolved handle.
func (c *Client) CreateTopic(ctx context.Context, name string) (*Topic, error) {
	path := TopicPath(c.projectID, name)
	resp, err := c.conn.Put(ctx, path, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to create topic %s: %w", name, err)
	}
	var w topicWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	if w.Name == "" {
		w.Name = path
	}
	return c.topicFromWire(w), nil
}

// Topic looks a topic up. It returns nil, nil when the topic does not exist.
func (c *Client) Topic(ctx context.Context, name string) (*Topic, error) {
	resp, err := c.conn.Get(ctx, TopicPath(c.projectID, name), nil)
	if gapi.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic %s: %w", name, err)
	}
	var w topicWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return c.topicFromWire(w), nil
}

// LazyTopic returns a handle without calling the service.
func (c *Client) LazyTopic(name string, opts ...HandleOption) *Topic {
	o := c.handleOptions(opts)
	return &Topic{
		name:   TopicPath(o.project, name),
		client: c,
		state:  gapi.Lazy(o.autocreate),
	}
}

// Topics lists the topics of the project.
func (c *Client) Topics(ctx context.Context, opts ListOptions) (*gapi.List[*Topic], error) {
	path := "projects/" + c.projectID + "/topics"
	page := func(ctx context.Context, token string) (*gapi.Response, error) {
		return c.conn.Get(ctx, path, gapi.PageQuery(token, opts.Max, gapi.ParamPageSize))
	}
	resp, err := page(ctx, opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return gapi.FromResponse(resp, "topics", c.topicFromWire, page)
}

// Subscription looks a subscription up. It returns nil, nil when it does not exist.
func (c *Client) Subscription(ctx context.Context, name string) (*Subscription, error) {
	resp, err := c.conn.Get(ctx, SubscriptionPath(c.projectID, name), nil)
	if gapi.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription %s: %w", name, err)
	}
	var w subscriptionWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return c.subscriptionFromWire(w), nil
}

// LazySubscription returns a handle without calling the service. It can only
// autocreate when its topic is given with WithTopic.
func (c *Client) LazySubscription(name string, opts ...HandleOption) *Subscription {
	o := c.handleOptions(opts)
	s := &Subscription{
		name:   SubscriptionPath(o.project, name),
		client: c,
		state:  gapi.Lazy(o.autocreate),
	}
	if o.topic != "" {
		s.topic = TopicPath(o.project, o.topic)
	}
	return s
}

// Subscriptions lists the subscriptions of the project.
func (c *Client) Subscriptions(ctx context.Context, opts ListOptions) (*gapi.List[*Subscription], error) {
	path := "projects/" + c.projectID + "/subscriptions"
	page := func(ctx context.Context, token string) (*gapi.Response, error) {
		return c.conn.Get(ctx, path, gapi.PageQuery(token, opts.Max, gapi.ParamPageSize))
	}
	resp, err := page(ctx, opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return gapi.FromResponse(resp, "subscriptions", c.subscriptionFromWire, page)
}
