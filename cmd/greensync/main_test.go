package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/manifest"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// packServer serves a manifest, its files and a registry pointing at it.
func packServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/files/mods/c.jar":       "jar content",
		"/files/config/opts.toml": "x = 1",
	}

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := manifest.NewDirectory()
	dir.Child("mods").AddFile("c.jar", digest.FromBytes([]byte(files["/files/mods/c.jar"])), srv.URL+"/files/mods/c.jar")
	dir.Child("config").AddFile("opts.toml", digest.FromBytes([]byte(files["/files/config/opts.toml"])), srv.URL+"/files/config/opts.toml")
	manifestText, err := json.Marshal(dir)
	require.NoError(t, err)

	registry, err := json.Marshal(map[string]interface{}{
		"version": "1.0.0",
		"packs": map[string]interface{}{
			"main": map[string]string{
				"display_name": "Main Pack",
				"manifest_url": srv.URL + "/manifest.json",
				"manifest_sha": digest.FromBytes(manifestText),
			},
			"other": map[string]string{
				"display_name": "Other Pack",
				"manifest_url": srv.URL + "/manifest.json",
				"manifest_sha": digest.FromBytes([]byte("stale")),
			},
		},
		"featured_pack": "main",
	})
	require.NoError(t, err)

	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write(manifestText) })
	mux.HandleFunc("/packs.json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write(registry) })
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		content, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(content))
	})
	return srv
}

func TestSync(t *testing.T) {
	srv := packServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "options.txt"), []byte("mine"), 0o644))
	metricsFile := filepath.Join(t.TempDir(), "greensync.prom")

	stdout, stderr, err := execute(t, "sync",
		"--dir", dir,
		"--manifest", srv.URL+"/manifest.json",
		"--metrics-file", metricsFile,
		"--log-level", "warn",
	)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "2 downloaded, 0 unchanged, 0 removed")
	assert.Contains(t, stderr, "downloaded 2/2")

	got, err := os.ReadFile(filepath.Join(dir, "mods", "c.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar content", string(got))
	got, err = os.ReadFile(filepath.Join(dir, "options.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(got))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `greensync_runs_total{result="success"} 1`)

	stdout, _, err = execute(t, "sync", "--quiet", "--dir", dir, "--manifest", srv.URL+"/manifest.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 downloaded, 2 unchanged, 0 removed")
}

func TestSync_Directory(t *testing.T) {
	srv := packServer(t)
	missing := filepath.Join(t.TempDir(), "new", ".minecraft")

	_, _, err := execute(t, "sync", "-q", "--dir", missing, "--manifest", srv.URL+"/manifest.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--create")

	_, _, err = execute(t, "sync", "-q", "--create", "--dir", missing, "--manifest", srv.URL+"/manifest.json")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(missing, "config", "opts.toml"))
	assert.NoError(t, err)
}

func TestSync_Errors(t *testing.T) {
	srv := packServer(t)

	_, _, err := execute(t, "sync", "--dir", t.TempDir())
	assert.EqualError(t, err, "--manifest is required")

	_, _, err = execute(t, "sync", "-q", "--dir", t.TempDir(), "--manifest", srv.URL+"/nope.json")
	assert.Error(t, err)

	_, _, err = execute(t, "sync", "--log-level", "loud", "--manifest", "x")
	assert.EqualError(t, err, `invalid --log-level "loud"`)

	_, _, err = execute(t, "sync", "--log-format", "xml", "--manifest", "x")
	assert.EqualError(t, err, `invalid --log-format "xml"`)

	_, _, err = execute(t, "sync", "--max-retries", "-1", "--manifest", "x")
	assert.Error(t, err)
}

func TestPacksList(t *testing.T) {
	srv := packServer(t)

	stdout, _, err := execute(t, "packs", "list", "--registry", srv.URL+"/packs.json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "main")
	assert.Contains(t, lines[1], "Main Pack")
	assert.True(t, strings.HasSuffix(lines[1], "*"))
	assert.Contains(t, lines[2], "other")

	_, _, err = execute(t, "packs", "list")
	assert.EqualError(t, err, "--registry is required")
}

func TestPacksInstall(t *testing.T) {
	srv := packServer(t)
	registry := srv.URL + "/packs.json"

	t.Run("featured", func(t *testing.T) {
		dir := t.TempDir()
		_, _, err := execute(t, "packs", "install", "-q", "--registry", registry, "--dir", dir)
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "mods", "c.jar"))
		assert.NoError(t, err)
	})

	t.Run("digest mismatch", func(t *testing.T) {
		dir := t.TempDir()
		_, _, err := execute(t, "packs", "install", "other", "-q", "--registry", registry, "--dir", dir)
		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "mods"))
		assert.True(t, os.IsNotExist(statErr), "nothing is touched when the manifest is rejected")
	})

	t.Run("unknown pack", func(t *testing.T) {
		_, _, err := execute(t, "packs", "install", "nope", "--registry", registry, "--dir", t.TempDir())
		assert.EqualError(t, err, `pack "nope" is not in the registry`)
	})
}

func TestPath(t *testing.T) {
	stdout, _, err := execute(t, "path")
	require.NoError(t, err)
	assert.Contains(t, stdout, "minecraft")
}

func TestManifestBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mods"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mods", "c.jar"), []byte("jar"), 0o644))
	out := filepath.Join(t.TempDir(), "manifest.json")

	_, _, err := execute(t, "manifest", "build", "--dir", dir, "--base-url", "https://cdn.example.com/pack", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	d, err := manifest.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, manifest.File{
		Digest: digest.FromBytes([]byte("jar")),
		Source: "https://cdn.example.com/pack/mods/c.jar",
	}, d.Children["mods"].Files["c.jar"])

	_, _, err = execute(t, "manifest", "build", "--dir", dir)
	assert.EqualError(t, err, "--base-url is required")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "debug", "json")
	require.NoError(t, err)
	logger.Debug("hello", "path", "a.txt")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "a.txt", entry["path"])

	buf.Reset()
	logger, err = newLogger(&buf, "WARN", "TEXT")
	require.NoError(t, err)
	logger.Info("dropped")
	assert.Empty(t, buf.String())
}
