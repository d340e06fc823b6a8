package logging

import (
	"context"
	"fmt"
	"net/url"

	"github.com/logx-go/gcloud/pkg/gapi"
)

// Sink exports the entries matching Filter to Destination, e.g.
// storage.googleapis.com/<bucket>.
type Sink struct {
	Name        string
	Destination string
	Filter      string
	// Version is the entry format of exported entries, V2 or V1.
	Version string

	client *Client
}

type sinkWire struct {
	Name                string `json:"name,omitempty"`
	Destination         string `json:"destination,omitempty"`
	Filter              string `json:"filter,omitempty"`
	OutputVersionFormat string `json:"outputVersionFormat,omitempty"`
}

// SinkOptions are the optional attributes of a new sink.
type SinkOptions struct {
	Filter  string
	Version string
}

func (s *Sink) toWire() sinkWire {
	return sinkWire{Name: s.Name, Destination: s.Destination, Filter: s.Filter, OutputVersionFormat: s.Version}
}

func (c *Client) sinkFromWire(w sinkWire) *Sink {
	return &Sink{
		Name:        w.Name,
		Destination: w.Destination,
		Filter:      w.Filter,
		Version:     w.OutputVersionFormat,
		client:      c,
	}
}

func (c *Client) sinkPath(name string) string {
	return c.projectPath("sinks", url.PathEscape(name))
}

func (c *Client) Sinks(ctx context.Context, opts ListOptions) (*gapi.List[*Sink], error) {
	resp, page, err := c.list(ctx, c.projectPath("sinks"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sinks: %w", err)
	}
	return gapi.FromResponse(resp, "sinks", c.sinkFromWire, page)
}

// Sink fetches a sink by name. It returns nil, nil when the sink does not exist.
func (c *Client) Sink(ctx context.Context, name string) (*Sink, error) {
	resp, err := c.conn.Get(ctx, c.sinkPath(name), nil)
	if gapi.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sink %s: %w", name, err)
	}
	var w sinkWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return c.sinkFromWire(w), nil
}

func (c *Client) CreateSink(ctx context.Context, name, destination string, opts SinkOptions) (*Sink, error) {
	body := sinkWire{Name: name, Destination: destination, Filter: opts.Filter, OutputVersionFormat: opts.Version}
	resp, err := c.conn.Post(ctx, c.projectPath("sinks"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create sink %s: %w", name, err)
	}
	var w sinkWire
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return c.sinkFromWire(w), nil
}

func (s *Sink) Save(ctx context.Context) error {
	resp, err := s.client.conn.Put(ctx, s.client.sinkPath(s.Name), s.toWire())
	if err != nil {
		return fmt.Errorf("failed to save sink %s: %w", s.Name, err)
	}
	return s.refresh(resp)
}

func (s *Sink) Reload(ctx context.Context) error {
	resp, err := s.client.conn.Get(ctx, s.client.sinkPath(s.Name), nil)
	if err != nil {
		return fmt.Errorf("failed to reload sink %s: %w", s.Name, err)
	}
	return s.refresh(resp)
}

func (s *Sink) Delete(ctx context.Context) error {
	if _, err := s.client.conn.Delete(ctx, s.client.sinkPath(s.Name)); err != nil {
		return fmt.Errorf("failed to delete sink %s: %w", s.Name, err)
	}
	return nil
}

func (s *Sink) refresh(resp *gapi.Response) error {
	if len(resp.Body) == 0 {
		return nil
	}
	var w sinkWire
	if err := resp.Decode(&w); err != nil {
		return err
	}
	if w.Name != "" {
		s.Name = w.Name
	}
	s.Destination = w.Destination
	s.Filter = w.Filter
	s.Version = w.OutputVersionFormat
	return nil
}
