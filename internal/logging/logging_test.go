package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()

	assert.Equal(t, "tmbliss.log", filepath.Base(path))
	assert.Equal(t, "logs", filepath.Base(filepath.Dir(path)))
	assert.Equal(t, ".tmbliss", filepath.Base(filepath.Dir(filepath.Dir(path))))
}

func TestDefaultAndDebugConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.True(t, cfg.WriteToStderr)

	assert.Equal(t, "debug", DebugConfig().Level)
}

func TestConfigFor(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		level     string
		wantLevel string
		wantFile  bool
	}{
		{name: "debug flag", debug: true, wantLevel: "debug", wantFile: true},
		{name: "debug wins over level", debug: true, level: "error", wantLevel: "debug", wantFile: true},
		{name: "level from config", level: "info", wantLevel: "info", wantFile: true},
		{name: "nothing requested", wantLevel: "warn", wantFile: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConfigFor(tt.debug, tt.level)
			assert.Equal(t, tt.wantLevel, cfg.Level)
			assert.Equal(t, tt.wantFile, cfg.FilePath != "")
		})
	}
}

func TestSetup_FileAndStderr(t *testing.T) {
	// Given: a file config tee'd to a buffer standing in for stderr
	logPath := filepath.Join(t.TempDir(), "nested", "tmbliss.log")
	var stderr bytes.Buffer
	cfg := Config{Level: "debug", FilePath: logPath, MaxSizeMB: 1, MaxFiles: 2, WriteToStderr: true}

	// When: a record is logged
	logger, cleanup, err := setup(cfg, &stderr)
	require.NoError(t, err)
	logger.Debug("marked", slog.String("path", "/tmp/x"))
	cleanup()

	// Then: both sinks receive the JSON record
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"marked"`)
	assert.Contains(t, string(content), `"path":"/tmp/x"`)
	assert.Equal(t, string(content), stderr.String())
}

func TestSetup_QuietDropsBelowWarn(t *testing.T) {
	var stderr bytes.Buffer

	logger, cleanup, err := setup(QuietConfig(), &stderr)
	require.NoError(t, err)
	defer cleanup()

	logger.Info("hidden")
	logger.Warn("override unreadable", slog.String("dir", "/w"))

	out := stderr.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "dir=/w")
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, LevelFromString(in), in)
	}

	assert.True(t, ValidLevel("Warn"))
	assert.False(t, ValidLevel("verbose"))
}

func TestFindLogFile(t *testing.T) {
	t.Run("explicit path exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.log")
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

		got, err := FindLogFile(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := FindLogFile(filepath.Join(t.TempDir(), "missing.log"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log file not found")
	})
}

func TestEnsureLogDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "tmbliss.log")

	require.NoError(t, EnsureLogDir(path))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// ============================================================================
// RotatingWriter
// ============================================================================

func TestRotatingWriter_WritesAreVisibleImmediately(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	line := []byte(`{"level":"INFO","msg":"test"}` + "\n")
	n, err := w.Write(line)
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, string(line), string(content))
}

func TestRotatingWriter_Rotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	w.SetSync(false)

	chunk := bytes.Repeat([]byte("a"), 600*1024)
	_, err = w.Write(chunk)
	require.NoError(t, err)
	_, err = w.Write(bytes.Repeat([]byte("b"), 600*1024))
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	rotated, err := os.ReadFile(logPath + ".1")
	require.NoError(t, err)
	assert.Equal(t, chunk, rotated)

	current, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Len(t, current, 600*1024)
	assert.Equal(t, byte('b'), current[0])
}

func TestRotatingWriter_MaxFilesLimit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(logPath, 1, 2)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	w.SetSync(false)

	for i := 0; i < 5; i++ {
		_, err := w.Write(bytes.Repeat([]byte{byte('0' + i)}, 600*1024))
		require.NoError(t, err)
	}

	assert.FileExists(t, logPath)
	assert.FileExists(t, logPath+".1")
	assert.FileExists(t, logPath+".2")
	assert.NoFileExists(t, logPath+".3")

	newest, err := os.ReadFile(logPath + ".1")
	require.NoError(t, err)
	assert.Equal(t, byte('3'), newest[0])
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "test.log"), 1, 1)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.NoError(t, w.Sync())

	_, err = w.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	w.SetSync(false)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = fmt.Fprintf(w, "g%d line %d\n", g, i)
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(content)), "\n"), 400)
}

// ============================================================================
// Viewer
// ============================================================================

const sampleLog = `{"time":"2026-03-01T10:00:00.000Z","level":"DEBUG","msg":"scan","dir":"/a"}
{"time":"2026-03-01T10:00:01.000Z","level":"INFO","msg":"started"}
not json at all
{"time":"2026-03-01T10:00:02.000Z","level":"WARN","msg":"override unreadable","dir":"/b"}
{"time":"2026-03-01T10:00:03.000Z","level":"ERROR","msg":"store failed"}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tmbliss.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func TestViewer_Tail(t *testing.T) {
	path := writeSample(t)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	entries, err := v.Tail(path, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.False(t, entries[0].IsValid)
	assert.Equal(t, "not json at all", entries[0].Raw)
	assert.Equal(t, "override unreadable", entries[1].Msg)
	assert.Equal(t, "/b", entries[1].Attrs["dir"])
	assert.Equal(t, "ERROR", entries[2].Level)
}

func TestViewer_Tail_Filters(t *testing.T) {
	path := writeSample(t)

	t.Run("level", func(t *testing.T) {
		v := NewViewer(ViewerConfig{Level: "warn", NoColor: true}, &bytes.Buffer{})
		entries, err := v.Tail(path, 100)
		require.NoError(t, err)

		var msgs []string
		for _, e := range entries {
			msgs = append(msgs, e.Raw)
		}
		// unparseable lines have no level and are always shown
		assert.Len(t, entries, 3)
		assert.Contains(t, msgs, "not json at all")
	})

	t.Run("pattern", func(t *testing.T) {
		v := NewViewer(ViewerConfig{Pattern: regexp.MustCompile(`dir`), NoColor: true}, &bytes.Buffer{})
		entries, err := v.Tail(path, 100)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "scan", entries[0].Msg)
	})
}

func TestViewer_Tail_MissingFile(t *testing.T) {
	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})

	_, err := v.Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}

func TestViewer_FormatAndPrint(t *testing.T) {
	var out bytes.Buffer
	v := NewViewer(ViewerConfig{NoColor: true}, &out)

	entry := v.parseLine(`{"time":"2026-03-01T10:00:02.5Z","level":"WARNING","msg":"hi","z":1,"a":"x"}`)
	raw := v.parseLine("plain text")

	assert.Equal(t, "10:00:02.500 WARNI hi a=x z=1", v.FormatEntry(entry))
	assert.Equal(t, "plain text", v.FormatEntry(raw))

	v.Print([]LogEntry{entry, raw})
	assert.Equal(t, "10:00:02.500 WARNI hi a=x z=1\nplain text\n", out.String())
}

func TestViewer_Follow(t *testing.T) {
	path := writeSample(t)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entries := make(chan LogEntry, 16)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, entries) }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	// Follow starts at the end of the file, so keep appending until one arrives.
	var got LogEntry
	require.Eventually(t, func() bool {
		_, _ = f.WriteString(`{"time":"2026-03-01T10:00:04Z","level":"INFO","msg":"appended"}` + "\n")
		select {
		case got = <-entries:
			return true
		default:
			return false
		}
	}, 5*time.Second, 150*time.Millisecond)

	assert.Equal(t, "appended", got.Msg)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}
