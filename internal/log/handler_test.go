package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testTime = time.Date(2023, time.September, 17, 06, 44, 13, 0, time.UTC)

func TestLevelOutput(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{name: "debug", level: slog.LevelDebug, want: "2023-09-17T06:44:13Z DEBUG fetched page"},
		{name: "info", level: slog.LevelInfo, want: "2023-09-17T06:44:13Z INFO fetched page"},
		{name: "warn", level: slog.LevelWarn, want: "2023-09-17T06:44:13Z WARN fetched page"},
		{name: "error", level: slog.LevelError, want: "2023-09-17T06:44:13Z ERROR fetched page"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logLevel := &slog.LevelVar{}
			logLevel.Set(tt.level)
			logger := slog.New(logtimeHandler{testTime, New(&buf, &slog.HandlerOptions{Level: logLevel})})
			logger.Log(context.Background(), tt.level, "fetched page")
			assert.Equal(tt.want, strings.TrimSuffix(buf.String(), "\n"))
		})
	}
}

func TestLevelBelowThresholdIsDropped(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer

	logger := slog.New(logtimeHandler{testTime, New(&buf, nil)})
	logger.Debug("fetched page")
	assert.Empty(buf.String())
}

func TestOutputWithAttr(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer

	logger := slog.New(logtimeHandler{testTime, New(&buf, nil)})
	attr := []slog.Attr{slog.String("bucket", "pages"), slog.Int("status", 200)}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "fetched page", attr...)

	expected := "2023-09-17T06:44:13Z INFO fetched page bucket=pages status=200\n"
	assert.Equal(expected, buf.String())
}

func TestOutputQuotesStringsWithSpaces(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer

	logger := slog.New(logtimeHandler{testTime, New(&buf, nil)})
	logger.Info("fetch failed", "error", "Access Denied", "key", "")

	expected := `2023-09-17T06:44:13Z INFO fetch failed error="Access Denied" key=""` + "\n"
	assert.Equal(expected, buf.String())
}

func TestOutputWithGroup(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer

	logger := slog.New(logtimeHandler{testTime, New(&buf, nil)})
	attr := []slog.Attr{
		slog.String("t", "test"),
		slog.Group("g", slog.Int("a", 1), slog.Int("b", 2)),
		slog.Bool("b", true),
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "fetched page", attr...)

	expected := "2023-09-17T06:44:13Z INFO fetched page t=test g.a=1 g.b=2 b=true\n"
	assert.Equal(expected, buf.String())
}

func TestWithAttrsAndGroup(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer

	logger := slog.New(logtimeHandler{testTime, New(&buf, nil)})
	logger.With("bucket", "pages").WithGroup("req").Info("fetched page", "key", "index.html")

	expected := "2023-09-17T06:44:13Z INFO fetched page bucket=pages req.key=index.html\n"
	assert.Equal(expected, buf.String())
}

type logtimeHandler struct {
	t time.Time
	h slog.Handler
}

func (h logtimeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h logtimeHandler) WithGroup(name string) slog.Handler {
	return logtimeHandler{h.t, h.h.WithGroup(name)}
}

func (h logtimeHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Time = h.t
	return h.h.Handle(ctx, r)
}

func (h logtimeHandler) WithAttrs(as []slog.Attr) slog.Handler {
	return logtimeHandler{h.t, h.h.WithAttrs(as)}
}
