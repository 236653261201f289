package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("OUTPUT_BUCKET", "out-bkt")
	t.Setenv("SEARCH_ENDPOINT", "http://search:9200")
	t.Setenv("STREAM_NAME", "docrepo")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out-bkt", cfg.Output.Bucket)
	assert.Equal(t, "http://search:9200", cfg.Search.Endpoint)
	assert.Equal(t, "docrepo", cfg.Stream.Name)
	assert.Equal(t, "docrepo/document", cfg.Search.IndexPath)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "minio", cfg.Storage.Provider)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Tracing.Endpoint)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SEARCH_INDEX_PATH", "idx/doc")
	t.Setenv("EXTRACT_MAX_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "idx/doc", cfg.Search.IndexPath)
	assert.Equal(t, int64(1024), cfg.Extract.MaxBytes)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("OUTPUT_BUCKET", "")
	t.Setenv("SEARCH_ENDPOINT", "http://search:9200")
	t.Setenv("STREAM_NAME", "")
	os.Unsetenv("STREAM_NAME")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ElementsMatch(t, []string{"OUTPUT_BUCKET", "STREAM_NAME"}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "missing required values")
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("OUTPUT_BUCKET", "out-bkt")
	t.Setenv("SEARCH_ENDPOINT", "http://search:9200")
	t.Setenv("STREAM_NAME", "")
	os.Unsetenv("STREAM_NAME")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STREAM_NAME=from-file\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Stream.Name)
}
