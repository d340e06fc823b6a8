// Package gcloud wires the Logging and Pub/Sub clients of one project from a Config.
package gcloud

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/compute/metadata"
	"github.com/logx-go/gcloud/pkg/gapi"
	"github.com/logx-go/gcloud/pkg/logging"
	"github.com/logx-go/gcloud/pkg/logging/model"
	"github.com/logx-go/gcloud/pkg/pubsub"
	"go.uber.org/zap"
)

// detectProjectID asks the metadata server for the project when running on GCE.
var detectProjectID = func(ctx context.Context) (string, error) {
	if !metadata.OnGCE() {
		return "", nil
	}
	return metadata.ProjectIDWithContext(ctx)
}

// Gcloud holds the service clients of one project.
type Gcloud struct {
	cfg     Config
	logging *logging.Client
	pubsub  *pubsub.Client
}

type options struct {
	httpClient *http.Client
}

type Option func(*options)

// WithHTTPClient replaces the authenticated client of both services.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// New validates cfg and builds the clients. A missing project id is detected
// from the metadata server. The Pub/Sub emulator is reached without credentials.
func New(ctx context.Context, cfg Config, logger *zap.Logger, opts ...Option) (*Gcloud, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.ProjectID == "" {
		projectID, err := detectProjectID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to detect project id: %w", err)
		}
		cfg.ProjectID = projectID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loggingHTTP := o.httpClient
	pubsubHTTP := o.httpClient
	if loggingHTTP == nil {
		client, err := gapi.NewHTTPClient(gapi.ClientOptions{
			CredentialsFile: cfg.CredentialsFile,
			Timeout:         cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		loggingHTTP = client
		pubsubHTTP = client
	}
	if o.httpClient == nil && cfg.PubsubEmulatorHost != "" {
		client, err := gapi.NewHTTPClient(gapi.ClientOptions{Timeout: cfg.Timeout, Insecure: true})
		if err != nil {
			return nil, err
		}
		pubsubHTTP = client
	}

	connOpts := func(client *http.Client, service string) []gapi.Option {
		return []gapi.Option{
			gapi.WithHTTPClient(client),
			gapi.WithLogger(logger.With(zap.String("service", service))),
			gapi.WithRateLimit(cfg.RequestsPerSecond, 1),
			gapi.WithGzip(cfg.GzipRequests),
		}
	}

	logger.Debug("gcloud configured",
		zap.String("project", cfg.ProjectID),
		zap.String("logging_endpoint", cfg.LoggingEndpoint),
		zap.String("pubsub_endpoint", cfg.pubsubEndpoint()))

	return &Gcloud{
		cfg: cfg,
		logging: logging.NewClient(cfg.ProjectID,
			gapi.NewConnection("logging", cfg.LoggingEndpoint, connOpts(loggingHTTP, "logging")...)),
		pubsub: pubsub.NewClient(cfg.ProjectID,
			gapi.NewConnection("pubsub", cfg.pubsubEndpoint(), connOpts(pubsubHTTP, "pubsub")...)),
	}, nil
}

func (g *Gcloud) ProjectID() string {
	return g.cfg.ProjectID
}

func (g *Gcloud) Logging() *logging.Client {
	return g.logging
}

func (g *Gcloud) Pubsub() *pubsub.Client {
	return g.pubsub
}

// Logger returns a Logger on logName with the configured threshold.
func (g *Gcloud) Logger(logName string, resource model.MonitoredResource, labels map[string]string) *logging.Logger {
	l := g.logging.Logger(logName, resource, labels)
	l.SetLevel(g.cfg.LoggerLevel)
	return l
}
