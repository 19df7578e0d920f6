package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yashh-d/chainpulse/internal/config"
)

// setupTestConfig points the config package at a temp file and returns its path.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// execConfig creates the config command, wires up output buffers, runs with the
// given args, and returns what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSet_DefaultNetwork(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "default-network", "avalanche")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"avalanche"`) {
		t.Errorf("expected confirmation with network name, got: %s", stdout)
	}

	// Verify it was persisted.
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.DefaultNetwork != "avalanche" {
		t.Errorf("expected DefaultNetwork %q, got %q", "avalanche", cfg.DefaultNetwork)
	}
}

func TestSet_DefaultNetwork_Unknown(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "default-network", "dogechain")

	if !strings.Contains(stderr, "unknown network") {
		t.Errorf("expected 'unknown network' error, got: %s", stderr)
	}
}

func TestSet_DefaultNetwork_CaseInsensitive(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "default-network", "ETHEREUM")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"ethereum"`) {
		t.Errorf("expected normalized network name, got: %s", stdout)
	}
}

func TestSet_DefaultRange_Canonicalized(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "default-range", "30d")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"30D"`) {
		t.Errorf("expected canonical range token, got: %s", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.DefaultRange != "30D" {
		t.Errorf("expected DefaultRange %q, got %q", "30D", cfg.DefaultRange)
	}
}

func TestSet_DefaultRange_UnknownToken(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "default-range", "2W")

	if !strings.Contains(stderr, "unknown range token") {
		t.Errorf("expected 'unknown range token' error, got: %s", stderr)
	}
}

func TestSet_SupabaseURL_KeptVerbatim(t *testing.T) {
	setupTestConfig(t)

	url := "https://MyProject.supabase.co"
	stdout, stderr := execConfig(t, "set", "supabase-url", url)

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, url) {
		t.Errorf("expected URL kept verbatim, got: %s", stdout)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "bogus-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}
