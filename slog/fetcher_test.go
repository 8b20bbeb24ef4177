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

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		html    string
		err     error
		want    []string
		notWant []string
	}{
		{
			name:    "success logs size at info",
			html:    "<html>content</html>",
			want:    []string{"level=INFO", "msg=fetch", "url=https://venues.example/list", "bytes=20", "duration="},
			notWant: []string{"code="},
		},
		{
			name:    "failure logs code at warn",
			err:     boothcrawl.Errorf(boothcrawl.ETRANSIENT, "status 503"),
			want:    []string{"level=WARN", `msg="fetch failed"`, "code=ETRANSIENT", "status 503"},
			notWant: []string{"bytes="},
		},
		{
			name: "cancellation logs at debug",
			err:  context.Canceled,
			want: []string{"level=DEBUG", `msg="fetch interrupted"`, "context canceled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			inner := &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					return tt.html, tt.err
				},
			}

			html, err := boothslog.NewLoggingFetcher(inner, logger).Fetch(context.Background(), "https://venues.example/list")

			assert.Equal(t, tt.html, html)
			assert.ErrorIs(t, err, tt.err)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	closed := false
	inner := &mock.Fetcher{
		CloseFn: func() error {
			closed = true
			return nil
		},
	}

	require.NoError(t, boothslog.NewLoggingFetcher(inner, slog.New(slog.DiscardHandler)).Close())
	assert.True(t, closed)
}
