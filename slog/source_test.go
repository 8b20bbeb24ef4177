package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/mock"
	boothslog "github.com/fwojciec/boothcrawl/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSourceService(t *testing.T) {
	t.Parallel()

	t.Run("logs acquire conflicts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SourceService{
			AcquireSourceFn: func(context.Context, string) (*boothcrawl.Source, error) {
				return nil, boothcrawl.Errorf(boothcrawl.ECONFLICT, "source is already running")
			},
		}

		_, err := boothslog.NewLoggingSourceService(inner, logger).AcquireSource(context.Background(), "src-1")

		assert.Equal(t, boothcrawl.ECONFLICT, boothcrawl.ErrorCode(err))
		output := buf.String()
		assert.Contains(t, output, "acquire source")
		assert.Contains(t, output, "id=src-1")
		assert.Contains(t, output, "code=ECONFLICT")
	})

	t.Run("logs run results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SourceService{
			RecordRunResultFn: func(context.Context, string, boothcrawl.RunResult) error { return nil },
		}

		err := boothslog.NewLoggingSourceService(inner, logger).RecordRunResult(context.Background(), "src-1", boothcrawl.RunResult{
			Status: boothcrawl.SourcePartial,
			Found:  3,
			Added:  2,
		})

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "record run result")
		assert.Contains(t, output, "status=partial")
		assert.Contains(t, output, "found=3")
		assert.Contains(t, output, "added=2")
	})

	t.Run("delegates other calls without logging", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SourceService{
			FindSourceByIDFn: func(_ context.Context, id string) (*boothcrawl.Source, error) {
				return &boothcrawl.Source{ID: id}, nil
			},
		}

		source, err := boothslog.NewLoggingSourceService(inner, logger).FindSourceByID(context.Background(), "src-1")

		require.NoError(t, err)
		assert.Equal(t, "src-1", source.ID)
		assert.Empty(t, buf.String())
	})
}
