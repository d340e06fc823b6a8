package gcloud

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/logx-go/gcloud/pkg/logging"
	"github.com/logx-go/gcloud/pkg/pubsub"
	"gopkg.in/yaml.v3"
)

// ErrMissingProject is returned when no project id is configured or detected.
var ErrMissingProject = errors.New("gcloud: project id is required")

// Config contains the connection options of both services.
type Config struct {
	ProjectID          string        `yaml:"project_id"`
	CredentialsFile    string        `yaml:"credentials_file"`
	LoggingEndpoint    string        `yaml:"logging_endpoint"`
	PubsubEndpoint     string        `yaml:"pubsub_endpoint"`
	PubsubEmulatorHost string        `yaml:"pubsub_emulator_host"`
	Timeout            time.Duration `yaml:"timeout"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	GzipRequests       bool          `yaml:"gzip_requests"`
	LoggerLevel        logging.Level `yaml:"logger_level"`
}

// DefaultConfig returns the production endpoints and a 30s timeout.
func DefaultConfig() Config {
	return Config{
		LoggingEndpoint: logging.DefaultEndpoint,
		PubsubEndpoint:  pubsub.DefaultEndpoint,
		Timeout:         30 * time.Second,
		LoggerLevel:     logging.LevelDebug,
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies the
// environment. An empty path loads the environment only.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ProjectID = getString("GCLOUD_PROJECT", getString("GOOGLE_CLOUD_PROJECT", c.ProjectID))
	c.CredentialsFile = getString("GOOGLE_APPLICATION_CREDENTIALS", c.CredentialsFile)
	c.LoggingEndpoint = getString("GCLOUD_LOGGING_ENDPOINT", c.LoggingEndpoint)
	c.PubsubEndpoint = getString("GCLOUD_PUBSUB_ENDPOINT", c.PubsubEndpoint)
	c.PubsubEmulatorHost = getString("PUBSUB_EMULATOR_HOST", c.PubsubEmulatorHost)
	c.Timeout = getDuration("GCLOUD_TIMEOUT", c.Timeout)
	c.RequestsPerSecond = getFloat("GCLOUD_REQUESTS_PER_SECOND", c.RequestsPerSecond)
}

// pubsubEndpoint is the emulator root when an emulator host is set.
func (c *Config) pubsubEndpoint() string {
	if c.PubsubEmulatorHost != "" {
		return "http://" + c.PubsubEmulatorHost + "/v1"
	}
	return c.PubsubEndpoint
}

// Validate checks the options New depends on.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return ErrMissingProject
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0, got %v", c.RequestsPerSecond)
	}
	for name, endpoint := range map[string]string{
		"logging_endpoint": c.LoggingEndpoint,
		"pubsub_endpoint":  c.pubsubEndpoint(),
	} {
		u, err := url.Parse(endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, endpoint)
		}
	}
	return nil
}

func getString(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
