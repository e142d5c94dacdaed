package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/launchtree/internal/config"
	"github.com/aretw0/launchtree/internal/logging"
	"github.com/aretw0/launchtree/internal/presentation"
	"github.com/aretw0/launchtree/internal/testutils"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoLaunch = `<launch>
  <arg name="robot" default="r1" description="Robot name"/>
  <arg name="mode" default="fast">
    <choice value="fast"/>
    <choice value="slow"/>
  </arg>
  <node pkg="demo" exec="talker" name="talker" namespace="$(var robot)"/>
</launch>`

func launchFile(t *testing.T) string {
	t.Helper()
	return testutils.WriteFile(t, t.TempDir(), "demo.launch.xml", demoLaunch)
}

func ptr[T any](v T) *T { return &v }

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analyze:\n  format: yaml\n  max_depth: 8\n"), 0o644))

	cfg, used, err := LoadConfig(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "yaml", cfg.Analyze.Format)
	assert.False(t, cfg.Cache.Enabled)

	cfg, _, err = LoadConfig(path, Overrides{
		Format:   ptr("tree"),
		Generic:  ptr(true),
		CacheDir: ptr("/tmp/lt"),
	})
	require.NoError(t, err)
	assert.Equal(t, "tree", cfg.Analyze.Format)
	assert.Equal(t, 8, cfg.Analyze.MaxDepth)
	assert.True(t, cfg.Analyze.Generic)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/lt", cfg.Cache.Dir)

	_, _, err = LoadConfig(path, Overrides{Format: ptr("dot")})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, config.Log{Level: "warn", Format: "json"})
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "error", "boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "boom", line["err"])

	_, err = NewLogger(&buf, config.Log{Level: "loud"})
	assert.Error(t, err)
}

func TestInvocation(t *testing.T) {
	tests := []struct {
		words []string
		want  string
	}{
		{[]string{"ros2 launch demo a.launch.xml"}, "ros2 launch demo a.launch.xml"},
		{[]string{"demo", "a.launch.xml", "x:=1"}, "demo a.launch.xml 'x:=1'"},
		{[]string{"/ws/a b.launch.xml", "msg:=hello world"}, `'/ws/a b.launch.xml' 'msg:=hello world'`},
	}
	for _, tt := range tests {
		got, err := Invocation(tt.words)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func newEnv(t *testing.T, cfg *config.Config, metrics bool) *Env {
	t.Helper()
	env, err := NewEnv(cfg, logging.NewNop(), metrics)
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}

func TestRunAnalyze(t *testing.T) {
	path := launchFile(t)
	cfg := config.Default()
	env := newEnv(t, &cfg, false)
	ctx := context.Background()

	var buf bytes.Buffer
	out := Output{Format: presentation.FormatTree, Profile: termenv.Ascii}
	require.NoError(t, RunAnalyze(ctx, env.Analyzer, &buf, []string{path, "robot:=r2"}, out))
	assert.Equal(t, "[include] include "+path+"\n└── [node] /r2/talker (demo/talker)\n", buf.String())

	t.Run("single quoted invocation", func(t *testing.T) {
		buf.Reset()
		out := Output{Format: presentation.FormatJSON}
		require.NoError(t, RunAnalyze(ctx, env.Analyzer, &buf, []string{"launch " + path}, out))
		var tree map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &tree))
		assert.Equal(t, "IncludeLaunchDescription", tree["type"])
	})

	t.Run("package invocation", func(t *testing.T) {
		prefix := t.TempDir()
		testutils.InstallPackage(t, prefix, "demo", map[string]string{"launch/robot.launch.xml": demoLaunch})
		cfg := config.Default()
		cfg.Discovery.Prefixes = []string{prefix}
		env := newEnv(t, &cfg, false)

		buf.Reset()
		require.NoError(t, RunAnalyze(ctx, env.Analyzer, &buf, []string{"demo", "robot.launch.xml"}, out))
		assert.Contains(t, buf.String(), "[node] /r1/talker (demo/talker)")

		err := RunAnalyze(ctx, env.Analyzer, &buf, []string{"nope", "robot.launch.xml"}, out)
		assert.Error(t, err)
	})

	t.Run("malformed invocation", func(t *testing.T) {
		buf.Reset()
		err := RunAnalyze(ctx, env.Analyzer, &buf, []string{"ros2 launch"}, out)
		assert.Error(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestNewEnv_FileCacheAndMetrics(t *testing.T) {
	path := launchFile(t)
	cfg := config.Default()
	cfg.Cache.Enabled, cfg.Cache.Dir = true, t.TempDir()
	env := newEnv(t, &cfg, true)
	ctx := context.Background()

	first, err := env.Analyzer.AnalyzeArgs(ctx, []string{path})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	second, err := env.Analyzer.AnalyzeArgs(ctx, []string{path})
	require.NoError(t, err)
	assert.True(t, second.Cached)

	entries, err := os.ReadDir(cfg.Cache.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	families, err := env.Registry.Gather()
	require.NoError(t, err)
	var builds float64
	for _, f := range families {
		if f.GetName() == "launchtree_builds_total" {
			for _, m := range f.GetMetric() {
				builds += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), builds, "the cached analysis does not build")
}

func TestNewEnv_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	path := launchFile(t)
	cfg := config.Default()
	cfg.Cache.Enabled, cfg.Cache.RedisURL = true, "redis://"+mr.Addr()
	env := newEnv(t, &cfg, false)

	_, err := env.Analyzer.AnalyzeArgs(context.Background(), []string{path})
	require.NoError(t, err)
	res, err := env.Analyzer.AnalyzeArgs(context.Background(), []string{path})
	require.NoError(t, err)
	assert.True(t, res.Cached)

	var cached int
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "launchtree:cache:") {
			cached++
		}
	}
	assert.Positive(t, cached)

	t.Run("bad url", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Enabled, cfg.Cache.RedisURL = true, "http://nope"
		_, err := NewEnv(&cfg, logging.NewNop(), false)
		assert.Error(t, err)
	})
}

func TestRunArgs(t *testing.T) {
	path := launchFile(t)
	cfg := config.Default()
	env := newEnv(t, &cfg, false)

	var buf bytes.Buffer
	require.NoError(t, RunArgs(context.Background(), env.Analyzer, &buf, path, false))
	assert.Equal(t, "robot := r1\n    Robot name\nmode := fast [fast|slow]\n", buf.String())

	buf.Reset()
	require.NoError(t, RunArgs(context.Background(), env.Analyzer, &buf, path, true))
	var args []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &args))
	require.Len(t, args, 2)
	assert.Equal(t, "robot", args[0]["name"])
}

func TestRunWatch(t *testing.T) {
	path := launchFile(t)
	cfg := config.Default()
	env := newEnv(t, &cfg, false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out, status bytes.Buffer
	renders := 0
	w := writerFunc(func(p []byte) (int, error) {
		renders++
		if renders == 1 {
			go func() {
				time.Sleep(100 * time.Millisecond)
				os.WriteFile(path, []byte(`<launch><node pkg="demo" exec="listener"/></launch>`), 0o644) //nolint:errcheck
			}()
		} else {
			cancel()
		}
		return out.Write(p)
	})

	err := RunWatch(ctx, env.Analyzer, w, &status, []string{path}, 20*time.Millisecond,
		Output{Format: presentation.FormatMermaid})
	require.NoError(t, err)
	assert.Equal(t, 2, renders)
	assert.Equal(t, 2, strings.Count(out.String(), "graph TD"))
	assert.Contains(t, status.String(), "0 added, 0 removed, 1 changed")
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestServe(t *testing.T) {
	cfg := config.Default()
	env := newEnv(t, &cfg, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, env, ln, cfg.Server, time.Millisecond) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, err = http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	cfg := config.Default()
	env := newEnv(t, &cfg, false)
	err := ServeMCP(context.Background(), env, config.MCP{Transport: "ws"}, time.Second)
	assert.ErrorContains(t, err, "unknown transport")
}
