//go:build integration

package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var binaryPath string

// TestMain builds the binary before running tests
func TestMain(m *testing.M) {
	binaryPath = filepath.Join(os.TempDir(), "tubeboard-test")
	build := exec.Command("go", "build", "-o", binaryPath, ".")
	if err := build.Run(); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	_ = os.Remove(binaryPath)
	os.Exit(code)
}

func runBinary(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "XDG_CACHE_HOME="+t.TempDir(), "XDG_CONFIG_HOME="+t.TempDir())

	stdout, err := cmd.Output()
	stderr := ""
	exitCode := 0

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			stderr = string(exitErr.Stderr)
		}
	}

	return string(stdout), stderr, exitCode
}

func TestBinary_Version(t *testing.T) {
	stdout, _, exitCode := runBinary(t, "--version")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "tubeboard version") {
		t.Errorf("Expected version output, got: %s", stdout)
	}
}

func TestBinary_MissingStation(t *testing.T) {
	_, stderr, exitCode := runBinary(t, "arrivals")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for missing station")
	}
	if !strings.Contains(stderr, "station.name") {
		t.Errorf("Expected validation error, got: %s", stderr)
	}
}

func TestBinary_InvalidDirectionFallsBack(t *testing.T) {
	stdout, _, exitCode := runBinary(t, "config", "--direction", "sideways")

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "direction: inbound") {
		t.Errorf("Expected inbound direction in config, got: %s", stdout)
	}
}

func TestBinary_InvalidDirectionResolvesInbound_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping API call in short mode")
	}

	stdout, stderr, exitCode := runBinary(t, "resolve", "Aldgate East", "--direction", "sideways", "--json")
	if exitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", exitCode, stderr)
	}

	var st struct {
		Direction string `json:"direction"`
	}
	if err := json.Unmarshal([]byte(stdout), &st); err != nil {
		t.Fatalf("Expected valid JSON, got error: %v", err)
	}
	if st.Direction != "inbound" {
		t.Errorf("Expected inbound, got %q", st.Direction)
	}
}

func TestBinary_Resolve_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping API call in short mode")
	}

	stdout, stderr, exitCode := runBinary(t, "resolve", "Aldgate East", "--json")
	if exitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", exitCode, stderr)
	}

	var st struct {
		ID    string   `json:"id"`
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal([]byte(stdout), &st); err != nil {
		t.Fatalf("Expected valid JSON, got error: %v", err)
	}
	if st.ID != "940GZZLUADE" {
		t.Errorf("Expected 940GZZLUADE, got %q", st.ID)
	}
	if len(st.Lines) == 0 {
		t.Error("Expected at least one line")
	}
}

func TestBinary_Arrivals_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping API call in short mode")
	}

	stdout, stderr, exitCode := runBinary(t, "arrivals", "Bank", "--json")
	if exitCode != 0 {
		t.Fatalf("Expected exit code 0, got %d: %s", exitCode, stderr)
	}

	var got struct {
		Arrivals []json.RawMessage `json:"arrivals"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Errorf("Expected valid JSON, got error: %v", err)
	}
}

func TestBinary_Probe_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping network call in short mode")
	}

	stdout, _, exitCode := runBinary(t, "probe")
	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "online") {
		t.Errorf("Expected online, got: %s", stdout)
	}
}
