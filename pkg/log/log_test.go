package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	fitErrors "github.com/YuminosukeSato/fitrank/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("fit finished", FormKey, "linear", SamplesKey, 10, R2ScoreKey, 0.98)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "fit finished", entries[0]["message"])
	assert.Equal(t, "linear", entries[0][FormKey])
	assert.Equal(t, 10.0, entries[0][SamplesKey])
	assert.InDelta(t, 0.98, entries[0][R2ScoreKey], 1e-12)
}

func TestZerologLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ComponentKey, "fitting")

	logger.Debug("solving", FormKey, "exponential")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "fitting", entries[0][ComponentKey])
	assert.Equal(t, "exponential", entries[0][FormKey])
}

func TestZerologLoggerErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := fitErrors.NewNotFoundError("form", "cubic")
	logger.Error("lookup failed", err, FormKey, "cubic")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, err.Error(), entries[0][ErrorKey])
	assert.Contains(t, entries[0][ErrorTypeKey], "NotFoundError")
	assert.NotEmpty(t, entries[0][StacktraceKey])
}

func TestZerologLoggerNonFinite(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	logger.Info("degenerate", R2ScoreKey, math.NaN(), "odd")
	assert.Contains(t, buf.String(), "NaN")
	assert.Contains(t, buf.String(), "!BADKEY")
}

func TestEnabled(t *testing.T) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelWarn)
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelWarn))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, "debug"))
	defer func() {
		fitErrors.SetZerologWarnFunc(nil)
		SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelWarn))
	}()

	fitErrors.Warn(fitErrors.NewUndefinedMetricWarning("r_squared", "zero total sum of squares", math.NaN()))
	assert.Contains(t, buf.String(), `"type":"UndefinedMetricWarning"`)

	GetLoggerWithName("fitting").Info("hello")
	assert.Contains(t, buf.String(), `"fit.component":"fitting"`)

	assert.Error(t, SetupLogger(&buf, "loud"))
}

func TestProviderSetLevel(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelError)
	p.GetLogger().Info("dropped")
	assert.Empty(t, buf.String())

	p.SetLevel(LevelInfo)
	p.GetLoggerWithName("solver").Info("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestProviderSetLevelAffectsExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelWarn)
	logger := p.GetLoggerWithName("solver").With(FormKey, "linear")

	logger.Debug("before")
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.Empty(t, buf.String())

	p.SetLevel(LevelDebug)
	assert.True(t, logger.Enabled(context.Background(), LevelDebug))
	logger.Debug("after")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "after", lines[0]["message"])
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "linear", lines[0][FormKey])

	p.SetLevel(LevelError)
	logger.Warn("muted")
	assert.NotContains(t, buf.String(), "muted")
}

func TestTestLogger(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)
	scoped := logger.With(ComponentKey, "fitting")

	scoped.Debug("hidden")
	scoped.Info("ranked", FormKey, "linear", R2ScoreKey, math.Inf(-1))
	scoped.Warn("skipped", fmt.Errorf("boom"))

	assert.NotContains(t, buffer.String(), "hidden")
	assert.True(t, logger.ContainsMessage("ranked"))
	assert.True(t, logger.ContainsField(ComponentKey, "fitting"))
	assert.True(t, logger.ContainsField(R2ScoreKey, "-Inf"))
	assert.True(t, logger.ContainsField(ErrorKey, "boom"))

	entries, err := logger.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	logger.Clear()
	assert.Empty(t, buffer.String())
}

func TestTestLoggerConcurrent(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.With(WorkerIDKey, i).Info("worker")
		}(i)
	}
	wg.Wait()

	entries, err := logger.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}
