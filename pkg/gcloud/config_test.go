package gcloud

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/logx-go/gcloud/pkg/logging"
	"github.com/logx-go/gcloud/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"GCLOUD_PROJECT",
	"GOOGLE_CLOUD_PROJECT",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"GCLOUD_LOGGING_ENDPOINT",
	"GCLOUD_PUBSUB_ENDPOINT",
	"PUBSUB_EMULATOR_HOST",
	"GCLOUD_TIMEOUT",
	"GCLOUD_REQUESTS_PER_SECOND",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gcloud.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, logging.DefaultEndpoint, cfg.LoggingEndpoint)
	assert.Equal(t, pubsub.DefaultEndpoint, cfg.PubsubEndpoint)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(writeConfig(t, `
project_id: my-project
credentials_file: /etc/keys/sa.json
timeout: 5s
requests_per_second: 20
gzip_requests: true
logger_level: warn
`))
	require.NoError(t, err)
	assert.Equal(t, "my-project", cfg.ProjectID)
	assert.Equal(t, "/etc/keys/sa.json", cfg.CredentialsFile)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, float64(20), cfg.RequestsPerSecond)
	assert.True(t, cfg.GzipRequests)
	assert.Equal(t, logging.LevelWarn, cfg.LoggerLevel)
	assert.Equal(t, logging.DefaultEndpoint, cfg.LoggingEndpoint)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "from-google-env")
	t.Setenv("GCLOUD_TIMEOUT", "1m")
	t.Setenv("GCLOUD_LOGGING_ENDPOINT", "http://localhost:9000/v2beta1")
	t.Setenv("PUBSUB_EMULATOR_HOST", "localhost:8085")

	cfg, err := LoadConfig(writeConfig(t, "project_id: from-file\ntimeout: 5s\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-google-env", cfg.ProjectID)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, "http://localhost:9000/v2beta1", cfg.LoggingEndpoint)
	assert.Equal(t, "http://localhost:8085/v1", cfg.pubsubEndpoint())

	t.Setenv("GCLOUD_PROJECT", "from-gcloud-env")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-gcloud-env", cfg.ProjectID)
}

func TestLoadConfig_InvalidEnvKeepsValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("GCLOUD_TIMEOUT", "soon")
	t.Setenv("GCLOUD_REQUESTS_PER_SECOND", "many")

	cfg, err := LoadConfig(writeConfig(t, "timeout: 5s\nrequests_per_second: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, float64(2), cfg.RequestsPerSecond)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "logger_level: chatty\n"))
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)

	_, err = LoadConfig(writeConfig(t, "timeout: [1, 2]\n"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	valid.ProjectID = "test"
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"missing project":   func(c *Config) { c.ProjectID = "" },
		"negative timeout":  func(c *Config) { c.Timeout = -time.Second },
		"negative rate":     func(c *Config) { c.RequestsPerSecond = -1 },
		"relative endpoint": func(c *Config) { c.LoggingEndpoint = "logging/v2beta1" },
		"empty endpoint":    func(c *Config) { c.PubsubEndpoint = "" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := valid
	cfg.ProjectID = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingProject)
}
