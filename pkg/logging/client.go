package logging

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/logx-go/gcloud/pkg/gapi"
	"github.com/logx-go/gcloud/pkg/logging/model"
)

// DefaultEndpoint is the REST root of the Cloud Logging API.
const DefaultEndpoint = "https://logging.googleapis.com/v2beta1"

// ListOptions selects a page of a list call. Max is sent as maxResults.
type ListOptions = gapi.ListOptions

// Client is the Cloud Logging accessor of one project.
type Client struct {
	projectID string
	conn      *gapi.Connection
}

// NewClient returns a Client for projectID issuing requests through conn.
func NewClient(projectID string, conn *gapi.Connection) *Client {
	return &Client{projectID: projectID, conn: conn}
}

func (c *Client) ProjectID() string {
	return c.projectID
}

// LogPath returns projects/<project>/logs/<id> with the id URL-encoded.
// Names that already are full resource names are returned unchanged.
func LogPath(project, id string) string {
	if strings.HasPrefix(id, "projects/") {
		return id
	}
	return "projects/" + project + "/logs/" + url.PathEscape(id)
}

func (c *Client) projectPath(parts ...string) string {
	return "projects/" + c.projectID + "/" + strings.Join(parts, "/")
}

// EntriesOptions selects log entries. Projects defaults to the client project.
type EntriesOptions struct {
	Projects []string
	Filter   string
	OrderBy  string
	Token    string
	Max      int
}

type listEntriesRequest struct {
	ProjectIds []string `json:"projectIds,omitempty"`
	Filter     string   `json:"filter,omitempty"`
	OrderBy    string   `json:"orderBy,omitempty"`
	PageToken  string   `json:"pageToken,omitempty"`
	PageSize   int      `json:"pageSize,omitempty"`
}

// Entries lists log entries. The query travels in the POST body, so the token
// of each following page is substituted there.
func (c *Client) Entries(ctx context.Context, opts EntriesOptions) (*gapi.List[*Entry], error) {
	projects := opts.Projects
	if len(projects) == 0 {
		projects = []string{c.projectID}
	}

	page := func(ctx context.Context, token string) (*gapi.Response, error) {
		return c.conn.Post(ctx, "entries:list", listEntriesRequest{
			ProjectIds: projects,
			Filter:     opts.Filter,
			OrderBy:    opts.OrderBy,
			PageToken:  token,
			PageSize:   opts.Max,
		})
	}

	resp, err := page(ctx, opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return gapi.FromResponse(resp, "entries", EntryFromWire, page)
}

// WriteOptions are applied to every entry of a WriteEntries call that does not set them.
type WriteOptions struct {
	LogName  string
	Resource model.MonitoredResource
	Labels   map[string]string
}

type writeEntriesRequest struct {
	LogName  string                   `json:"logName,omitempty"`
	Resource *model.MonitoredResource `json:"resource,omitempty"`
	Labels   map[string]string        `json:"labels,omitempty"`
	Entries  []model.LogEntry         `json:"entries"`
}

// WriteEntries sends entries in one entries:write call.
func (c *Client) WriteEntries(ctx context.Context, entries []*Entry, opts WriteOptions) error {
	req := writeEntriesRequest{
		Entries: make([]model.LogEntry, 0, len(entries)),
	}
	if opts.LogName != "" {
		req.LogName = LogPath(c.projectID, opts.LogName)
	}
	if !opts.Resource.IsEmpty() {
		res := opts.Resource
		req.Resource = &res
	}
	if len(opts.Labels) > 0 {
		req.Labels = opts.Labels
	}
	for _, e := range entries {
		w := e.ToWire()
		if w.LogName != "" {
			w.LogName = LogPath(c.projectID, w.LogName)
		}
		req.Entries = append(req.Entries, w)
	}

	if _, err := c.conn.Post(ctx, "entries:write", req); err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	return nil
}

// DeleteLog deletes a log and all its entries.
func (c *Client) DeleteLog(ctx context.Context, name string) error {
	if _, err := c.conn.Delete(ctx, LogPath(c.projectID, name)); err != nil {
		return fmt.Errorf("failed to delete log %s: %w", name, err)
	}
	return nil
}

// Logger returns a leveled logger writing to logName with the given resource and labels.
func (c *Client) Logger(logName string, resource model.MonitoredResource, labels map[string]string) *Logger {
	l := NewLogger(c, logName, resource, labels)
	l.SetFormatter(NewFormatter().WithProjectID(c.projectID))
	return l
}

// list issues a GET list call against a project collection with maxResults paging.
func (c *Client) list(ctx context.Context, path string, opts ListOptions) (*gapi.Response, gapi.PageFunc, error) {
	page := func(ctx context.Context, token string) (*gapi.Response, error) {
		return c.conn.Get(ctx, path, gapi.PageQuery(token, opts.Max, gapi.ParamMaxResults))
	}
	resp, err := page(ctx, opts.Token)
	return resp, page, err
}
