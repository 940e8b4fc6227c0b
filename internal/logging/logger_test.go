package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestWithHelpersAddAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.NewJSONHandler(&buf, nil))

	l.WithImage(640, 480).WithJob("knee").Info("extracted")

	out := buf.String()
	assert.Contains(t, out, `"width":640`)
	assert.Contains(t, out, `"height":480`)
	assert.Contains(t, out, `"job":"knee"`)
}

func TestNoopDiscards(t *testing.T) {
	l := Noop()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
