package main

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/platform/postgres/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogGooseLoggerRedacts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := &slogGooseLogger{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	l.Printf("applied %s", "00001_create_users.sql")
	l.Fatalf("failed to connect to postgres://admin:hunter2@db:5432/tasks")

	out := buf.String()
	assert.Contains(t, out, "00001_create_users.sql")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "level=ERROR")
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, name := range files {
		raw, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		body := string(raw)
		assert.True(t, strings.Contains(body, "-- +goose Up"), name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), name)
	}
}

func TestRunMigrationsUnknownCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	err := runMigrations(context.Background(), cfg, logger, "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
