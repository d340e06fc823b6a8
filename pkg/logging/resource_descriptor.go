package logging

import (
	"context"
	"fmt"

	"github.com/logx-go/gcloud/pkg/gapi"
)

// ResourceDescriptor describes a monitored resource type that entries can be written against.
type ResourceDescriptor struct {
	Type        string            `json:"type"`
	DisplayName string            `json:"displayName,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      []LabelDescriptor `json:"labels,omitempty"`
}

// LabelDescriptor is one label of a resource type. ValueType is STRING, BOOL or INT64.
type LabelDescriptor struct {
	Key         string `json:"key"`
	ValueType   string `json:"valueType,omitempty"`
	Description string `json:"description,omitempty"`
}

func resourceDescriptorFromWire(d ResourceDescriptor) ResourceDescriptor {
	return d
}

// ResourceDescriptors lists the monitored resource types known to the service.
func (c *Client) ResourceDescriptors(ctx context.Context, opts ListOptions) (*gapi.List[ResourceDescriptor], error) {
	resp, page, err := c.list(ctx, "monitoredResourceDescriptors", opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource descriptors: %w", err)
	}
	return gapi.FromResponse(resp, "resourceDescriptors", resourceDescriptorFromWire, page)
}
