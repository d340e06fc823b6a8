package gapi

import (
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/auth/httptransport"
)

// Scopes requested for the Logging and Pub/Sub REST APIs.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/logging.admin",
	"https://www.googleapis.com/auth/pubsub",
}

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	CredentialsFile string
	Timeout         time.Duration
	// Insecure skips authentication, for emulators and tests.
	Insecure bool
}

// NewHTTPClient returns an *http.Client that attaches credentials to every
// request. Without a credentials file Application Default Credentials are used.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	if opts.Insecure {
		return &http.Client{Timeout: opts.Timeout}, nil
	}

	client, err := httptransport.NewClient(&httptransport.Options{
		DetectOpts: &credentials.DetectOptions{
			Scopes:          Scopes,
			CredentialsFile: opts.CredentialsFile,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %w", err)
	}
	client.Timeout = opts.Timeout

	return client, nil
}
