package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunPipeline_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := runPipeline(context.Background(), runnerFunc(func(context.Context) error {
		return errors.New("extract: connection refused")
	}), logger)

	require.Error(t, err)
	assert.Contains(t, buf.String(), `msg="pipeline error"`)
	assert.Contains(t, buf.String(), "connection refused")
}

func TestRunPipeline_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, runPipeline(context.Background(), runnerFunc(func(context.Context) error { return nil }), logger))
	assert.Empty(t, buf.String())
}
