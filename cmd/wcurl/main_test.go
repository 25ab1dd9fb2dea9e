package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wcurl/wcurl/internal/config"
	"github.com/wcurl/wcurl/internal/report"
	"github.com/wcurl/wcurl/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func dryRunLines(stdout string) []string {
	return strings.Split(strings.TrimSpace(stdout), "\n")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, config.Version+"\n", stdout)

	code, stdout, _ = runCLI(t, "-V")
	assert.Equal(t, 0, code)
	assert.Equal(t, config.Version+"\n", stdout)
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage: wcurl <URL>...")
	assert.Contains(t, stdout, "--curl-options")
	assert.Contains(t, stdout, "--no-decode-filename")
	assert.NotContains(t, stdout, "remote-name")
}

func TestRun_UnknownOption(t *testing.T) {
	code, _, stderr := runCLI(t, "--bogus", "https://example.com/a")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "bogus")
}

func TestRun_NoURLs(t *testing.T) {
	code, _, stderr := runCLI(t, "--dry-run")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "you must provide at least one URL to download")
}

func TestRun_DryRunRepeatedURL(t *testing.T) {
	dir := t.TempDir()
	u := "http://127.0.0.1:9080/1.txt"

	code, stdout, _ := runCLI(t, "--dry-run", "--dir", dir, u, u)
	require.Equal(t, 0, code)

	lines := dryRunLines(stdout)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "curl "))
	assert.Contains(t, lines[0], "--output "+filepath.Join(dir, "1.txt")+" ")
	assert.Contains(t, lines[1], "--output "+filepath.Join(dir, "1.txt.1")+" ")
	assert.True(t, strings.HasSuffix(lines[0], u))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run writes nothing")
}

func TestRun_DryRunDefaultArguments(t *testing.T) {
	code, stdout, _ := runCLI(t, "--dry-run", "--dir", t.TempDir(), "https://example.com/a.txt")
	require.Equal(t, 0, code)

	line := dryRunLines(stdout)[0]
	for _, arg := range []string{"--fail", "--globoff", "--location", "--proto-default https", "--remote-time", "--retry 5"} {
		assert.Contains(t, line, arg)
	}
	assert.Contains(t, line, "'User-Agent: wcurl/"+config.Version+"'")
}

func TestRun_CurlOptionsPassthrough(t *testing.T) {
	code, stdout, _ := runCLI(t,
		"--dry-run", "--dir", t.TempDir(),
		"--curl-options", "--limit-rate=1k",
		"--curl-options=--insecure",
		"https://example.com/a.txt",
	)
	require.Equal(t, 0, code)

	line := dryRunLines(stdout)[0]
	assert.True(t, strings.HasSuffix(line, "--limit-rate=1k --insecure https://example.com/a.txt"), line)
}

func TestRun_OutputAliases(t *testing.T) {
	dir := t.TempDir()
	for _, flag := range []string{"-o", "-O", "--output"} {
		code, stdout, _ := runCLI(t, "--dry-run", "--dir", dir, flag, "out.bin", "https://example.com/a", "https://example.com/b")
		require.Equal(t, 0, code, flag)

		lines := dryRunLines(stdout)
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "--output "+filepath.Join(dir, "out.bin")+" ", flag)
		assert.Contains(t, lines[1], "--output "+filepath.Join(dir, "out.bin.1")+" ", flag)
	}
}

func TestRun_NoDecodeFilename(t *testing.T) {
	dir := t.TempDir()
	u := "https://example.com/a%20b.txt"

	_, decoded, _ := runCLI(t, "--dry-run", "--dir", dir, u)
	_, raw, _ := runCLI(t, "--dry-run", "--dir", dir, "--no-decode-filename", u)

	assert.Contains(t, decoded, "'"+filepath.Join(dir, "a b.txt")+"'")
	assert.Contains(t, raw, filepath.Join(dir, "a%20b.txt"))
}

func TestRun_DoubleDashEndsOptions(t *testing.T) {
	code, stdout, _ := runCLI(t, "--dry-run", "--dir", t.TempDir(), "--", "--not-an-option")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasSuffix(dryRunLines(stdout)[0], " --not-an-option"))
}

func TestRun_EnvOverridesRetry(t *testing.T) {
	t.Setenv("WCURL_DOWNLOAD_RETRY", "2")

	code, stdout, _ := runCLI(t, "--dry-run", "--dir", t.TempDir(), "https://example.com/a")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "--retry 2 ")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wcurl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("download:\n  retry: 0\ntransport:\n  user_agent: custom/1.0\n"), 0644))

	code, stdout, _ := runCLI(t, "--dry-run", "--config", cfgPath, "--dir", dir, "https://example.com/a")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "--retry 0 ")
	assert.Contains(t, stdout, "'User-Agent: custom/1.0'")
}

func TestRun_FlagBeatsEnv(t *testing.T) {
	t.Setenv("WCURL_DOWNLOAD_RETRY", "2")

	code, stdout, _ := runCLI(t, "--dry-run", "--retry", "7", "--dir", t.TempDir(), "https://example.com/a")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "--retry 7 ")
}

func TestRun_DryRunReport(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.yaml")

	code, _, _ := runCLI(t, "--dry-run", "--dir", dir, "--report", reportPath, "https://example.com/a", "https://example.com/a")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.True(t, doc.DryRun)
	require.Len(t, doc.Downloads, 2)
	assert.Equal(t, "planned", doc.Downloads[0].Status)
	assert.Equal(t, filepath.Join(dir, "a.1"), doc.Downloads[1].Path)
}

func TestRun_AbsoluteOutputKeptAsIs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out.bin")

	code, stdout, _ := runCLI(t, "--dry-run", "-o", out, "https://example.com/a", "https://example.com/b")
	require.Equal(t, 0, code)

	lines := dryRunLines(stdout)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "--output "+out+" ")
	assert.Contains(t, lines[1], "--output "+out+".1 ")
}

func TestRun_ReportPathNeverUsedForDownload(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "a.txt")

	code, stdout, _ := runCLI(t, "--dry-run", "--dir", dir, "--report", reportPath, "https://example.com/a.txt")
	require.Equal(t, 0, code)

	assert.Contains(t, dryRunLines(stdout)[0], "--output "+filepath.Join(dir, "a.txt.1")+" ")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Downloads, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt.1"), doc.Downloads[0].Path)
}

func TestRun_MissingCurl(t *testing.T) {
	code, _, stderr := runCLI(t, "--curl", "/nonexistent/curl", "--dir", t.TempDir(), "https://example.com/a")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "transport binary not found")
}

func TestRun_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "wcurl.env")
	require.NoError(t, os.WriteFile(envPath, []byte("WCURL_TRANSPORT_USER_AGENT=from-env-file/2\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("WCURL_TRANSPORT_USER_AGENT") })

	code, stdout, _ := runCLI(t, "--dry-run", "--env-file", envPath, "--dir", dir, "https://example.com/a")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "'User-Agent: from-env-file/2'")
}

func TestRun_DownloadWithCurl(t *testing.T) {
	testutil.RequireCurl(t)
	srv := testutil.FileServer(t, map[string]string{"/1.txt": "one\n"})
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "run.yaml")

	code, _, stderr := runCLI(t,
		"--dir", dir, "--retry", "0", "-P", "2", "--report", reportPath,
		srv.URL+"/1.txt", srv.URL+"/1.txt", srv.URL+"/missing",
	)
	assert.NotEqual(t, 0, code)
	assert.Contains(t, stderr, "2 succeeded, 1 failed, 0 canceled")

	for _, name := range []string{"1.txt", "1.txt.1"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "one\n", string(data))
	}
	assert.NoFileExists(t, filepath.Join(dir, "missing"))
	assert.FileExists(t, reportPath)
}
