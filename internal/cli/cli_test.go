package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("data_path = %q\n", filepath.Join(dir, "tasks.csv"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAddPrintsStoredTask(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "add", "--config", cfgPath,
		"--when", "2026-03-05 09:00",
		"--outcome", "write report",
		"--impact", "review ready",
		"--bucket", "economic")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("add output is not JSON: %v\n%s", err, out)
	}
	if got["trigger"] != "2026-03-05 09:00:00" {
		t.Errorf("trigger = %v, want canonical form", got["trigger"])
	}
	if got["outcome"] != "write report" || got["bucket"] != "economic" {
		t.Errorf("output = %v", got)
	}
}

func TestAddRejectsBadTimestamp(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "add", "--config", cfgPath,
		"--when", "whenever", "--outcome", "x", "--impact", "y")
	if err == nil {
		t.Error("add with unparseable timestamp succeeded, want error")
	}
}

func TestListShowsStoredTasks(t *testing.T) {
	cfgPath := writeTestConfig(t)
	for _, args := range [][]string{
		{"add", "--config", cfgPath, "--when", "2026-03-05 09:00", "--outcome", "alpha", "--impact", "a"},
		{"add", "--config", cfgPath, "--when", "2026-03-06 09:00", "--outcome", "beta", "--impact", "b"},
	} {
		if _, err := runCommand(t, args...); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	out, err := runCommand(t, "list", "--config", cfgPath, "--range", "all")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "beta") {
		t.Errorf("list output missing tasks:\n%s", out)
	}

	out, err = runCommand(t, "list", "--config", cfgPath, "--range", "all", "--keyword", "alpha")
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if !strings.Contains(out, "alpha") || strings.Contains(out, "beta") {
		t.Errorf("keyword filter not applied:\n%s", out)
	}
}

func TestListRejectsUnknownRange(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCommand(t, "list", "--config", cfgPath, "--range", "fortnight")
	if err == nil {
		t.Error("list with unknown range succeeded, want error")
	}
}

func TestAskRequiresAPIKey(t *testing.T) {
	cfgPath := writeTestConfig(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := runCommand(t, "ask", "--config", cfgPath, "what do I have today")
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("ask without key = %v, want missing-key error before any network use", err)
	}
}

func TestVersionOutput(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "tcal") {
		t.Errorf("version output = %q", out)
	}
}
