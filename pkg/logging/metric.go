package logging

import (
	"context"
	"fmt"
	"net/url"

	"github.com/logx-go/gcloud/pkg/gapi"
)

// Metric is a logs-based metric: a count of the entries matching Filter.
type Metric struct {
	Name        string
	Description string
	Filter      string

	client *Client
}

type metricWire struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Filter      string `json:"filter,omitempty"`
}

func (m *Metric) toWire() metricWire {
	return metricWire{Name: m.Name, Description: m.Description, Filter: m.Filter}
}

func (c *Client) metricFromWire(w metricWire) *Metric {
	return &Metric{Name: w.Name, Description: w.Description, Filter: w.Filter, client: c}
}

func (c *Client) metricPath(name string) string {
	return c.projectPath("metrics", url.PathEscape(name))
}

// Metrics lists the logs-based metrics of the project.
func (c *Client) Metrics(ctx context.Context, opts ListOptions) (*gapi.List[*Metric], error) {
	resp, page, err := c.list(ctx, c.projectPath("metrics"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	return gapi.FromResponse(resp, "metrics", c.metricFromWire, page)
}

// Metric fetches a metric by name. It returns nil, nil when the metric does not exist.
func (c *Client) Metric(ctx context.Context, name string) (*Metric, error) {
	resp, err := c.conn.Get(ctx, c.metricPath(name), nil)
	if gapi.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metric %s: %w", name, err)
	}
	var w metricWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return c.metricFromWire(w), nil
}

// MetricOptions are the optional attributes of a new metric.
type MetricOptions struct {
	Description string
	Filter      string
}

// CreateMetric creates a metric. Empty description and filter are not sent.
func (c *Client) CreateMetric(ctx context.Context, name string, opts MetricOptions) (*Metric, error) {
	body := metricWire{Name: name, Description: opts.Description, Filter: opts.Filter}
	resp, err := c.conn.Post(ctx, c.projectPath("metrics"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric %s: %w", name, err)
	}
	var w metricWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return c.metricFromWire(w), nil
}

// Save updates the metric with its current description and filter.
func (m *Metric) Save(ctx context.Context) error {
	resp, err := m.client.conn.Put(ctx, m.client.metricPath(m.Name), m.toWire())
	if err != nil {
		return fmt.Errorf("failed to save metric %s: %w", m.Name, err)
	}
	return m.refresh(resp)
}

// Reload reads the metric back from the service.
func (m *Metric) Reload(ctx context.Context) error {
	resp, err := m.client.conn.Get(ctx, m.client.metricPath(m.Name), nil)
	if err != nil {
		return fmt.Errorf("failed to reload metric %s: %w", m.Name, err)
	}
	return m.refresh(resp)
}

func (m *Metric) Delete(ctx context.Context) error {
	if _, err := m.client.conn.Delete(ctx, m.client.metricPath(m.Name)); err != nil {
		return fmt.Errorf("failed to delete metric %s: %w", m.Name, err)
	}
	return nil
}

func (m *Metric) refresh(resp *gapi.Response) error {
	if len(resp.Body) == 0 {
		return nil
	}
	var w metricWire
	if err := resp.Decode(&w); err != nil {
		return err
	}
	if w.Name != "" {
		m.Name = w.Name
	}
	m.Description = w.Description
	m.Filter = w.Filter
	return nil
}
