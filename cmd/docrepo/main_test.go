package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/your-org/docrepo/pkg/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "invoke")
}

func TestInvoke_MissingConfig(t *testing.T) {
	t.Setenv("OUTPUT_BUCKET", "")
	t.Setenv("SEARCH_ENDPOINT", "")
	t.Setenv("STREAM_NAME", "")

	root := newRootCmd()
	root.SetIn(strings.NewReader(`{"namespace":"ns1","bucketName":"in-bkt","resourceName":"doc1.txt"}`))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"invoke"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)

	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestReadEvent(t *testing.T) {
	raw, err := readEvent(strings.NewReader("stdin-event"), "-")
	require.NoError(t, err)
	assert.Equal(t, "stdin-event", string(raw))

	path := t.TempDir() + "/event.json"
	require.NoError(t, os.WriteFile(path, []byte("file-event"), 0o644))
	raw, err = readEvent(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "file-event", string(raw))
}

func TestNewApp_ObjectStoreFailureShutsDownTracing(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	t.Setenv("OUTPUT_BUCKET", "out-bkt")
	t.Setenv("SEARCH_ENDPOINT", "http://search.invalid")
	t.Setenv("STREAM_NAME", "docrepo")
	t.Setenv("STORAGE_PROVIDER", "ftp")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "1")

	_, err := newApp(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init object store")

	// a provider that was shut down hands out non-recording tracers
	_, span := otel.Tracer("docrepo-after-init-failure").Start(context.Background(), "check")
	defer span.End()
	assert.False(t, span.IsRecording())
}
