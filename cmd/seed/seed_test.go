package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/memory"
	"github.com/syssam/assoc/social"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	t.Run("Defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseArgs(nil, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("FileThenFlags", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"dialect: postgres\n"+
				"dsn: postgres://localhost/social\n"+
				"recreate: false\n"+
				"log_level: warn\n"+
				"stats: true\n"+
				"slow_threshold: 250ms\n",
		), 0o600))

		cfg, err := ParseArgs([]string{"-config", path, "-debug", "-log-level", "debug"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, dialect.Postgres, cfg.Dialect)
		assert.Equal(t, "postgres://localhost/social", cfg.DSN)
		assert.False(t, cfg.Recreate)
		assert.True(t, cfg.Stats)
		assert.True(t, cfg.Debug)
		assert.Equal(t, 250*time.Millisecond, cfg.SlowThreshold)
		level, err := cfg.Level()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, level)
	})

	tests := []struct {
		name string
		args []string
	}{
		{"UnknownDialect", []string{"-dialect", "oracle"}},
		{"EmptyDSN", []string{"-dsn", ""}},
		{"InvalidLevel", []string{"-log-level", "loud"}},
		{"NegativeSlow", []string{"-slow", "-1s"}},
		{"MissingFile", []string{"-config", "missing.yaml"}},
		{"UnknownFlag", []string{"-force"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseArgs(tt.args, io.Discard)
			require.Error(t, err)
		})
	}

	t.Run("MemoryWithoutDSN", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseArgs([]string{"-dialect", "memory", "-dsn", ""}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, dialect.Memory, cfg.Dialect)
	})
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: [sqlite\n"), 0o600))
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := social.NewClient(memory.New())
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Sync(ctx))
	require.NoError(t, Seed(ctx, c, logger))

	for name, count := range map[string]func(context.Context) (int, error){
		"users":    func(ctx context.Context) (int, error) { return c.User.Count(ctx, nil) },
		"posts":    func(ctx context.Context) (int, error) { return c.Post.Count(ctx, nil) },
		"comments": func(ctx context.Context) (int, error) { return c.Comment.Count(ctx, nil) },
		"likes":    func(ctx context.Context) (int, error) { return c.Like.Count(ctx, nil) },
		"profiles": func(ctx context.Context) (int, error) { return c.Profile.Count(ctx, nil) },
	} {
		n, err := count(ctx)
		require.NoError(t, err, name)
		assert.Equal(t, 5, n, name)
	}

	var names []string
	for u, err := range c.User.FindAll(ctx, nil) {
		require.NoError(t, err)
		names = append(names, u.Username())
	}
	assert.ElementsMatch(t, []string{"john_doe", "jane_doe", "bob_smith", "alice_wonderland", "tom_jones"}, names)

	n, err := c.Post.Count(ctx, map[string]any{"createdAt": "2022-03-15T10:30:00.000Z"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Dialect = dialect.Memory
	cfg.DSN = ""
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(context.Background(), cfg, logger))

	cfg.Dialect = dialect.SQLite
	cfg.DSN = "file:" + filepath.Join(t.TempDir(), "social.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	cfg.Stats = true
	cfg.Debug = true
	require.NoError(t, run(context.Background(), cfg, logger))
}
