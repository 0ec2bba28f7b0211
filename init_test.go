package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikeger/Pecker/internal/config"
)

// TestGenerateConfigRoundTrip verifies that both starter formats load back
// into the default configuration.
func TestGenerateConfigRoundTrip(t *testing.T) {
	t.Parallel()

	for _, asTOML := range []bool{false, true} {
		content, err := generateConfig(asTOML)
		if err != nil {
			t.Fatalf("generateConfig(%v): %v", asTOML, err)
		}
		f, err := config.Parse([]byte(content), asTOML)
		if err != nil {
			t.Fatalf("Parse(toml=%v): %v\n%s", asTOML, err, content)
		}
		cfg, err := config.FromFile(f)
		if err != nil {
			t.Fatalf("FromFile(toml=%v): %v", asTOML, err)
		}
		got := strings.Join(cfg.Rules.Names(), ",")
		want := strings.Join(config.Default().Rules.Names(), ",")
		if got != want {
			t.Errorf("toml=%v: rules = %s, want %s", asTOML, got, want)
		}
		if cfg.Reporter != config.DefaultReporter {
			t.Errorf("toml=%v: reporter = %q", asTOML, cfg.Reporter)
		}
		if !strings.HasPrefix(content, "# Pecker configuration.") {
			t.Errorf("toml=%v: missing header:\n%s", asTOML, content)
		}
	}
}

// TestInitCreatesFile verifies that runInit writes .pecker.yml into a
// directory argument.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	path := filepath.Join(dir, ".pecker.yml")
	if _, err := config.Load(path); err != nil {
		t.Fatalf("written file does not load: %v", err)
	}
	if !strings.Contains(stderr.String(), "wrote") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// TestInitTOML verifies that a .toml path gets TOML content.
func TestInitTOML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".pecker.toml")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `reporter = "xcode"`) {
		t.Errorf("not TOML:\n%s", data)
	}
}

// TestInitRefusesOverwrite verifies that an existing file is kept unless
// -force is given.
func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, ".pecker.yml")
	existing := "rules: [comment]\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := runInit([]string{path}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != existing {
		t.Error("existing file must not change")
	}

	if err := runInit([]string{"-force", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit -force: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) == existing {
		t.Error("-force should overwrite")
	}
}

// TestInitDryRun verifies that --dry-run prints the file and writes nothing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".pecker.yml")); err == nil {
		t.Error("--dry-run should not create the file")
	}
	out := stdout.String()
	for _, want := range []string{"rules:", "skip_public", "IBAction", "reporter: xcode"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
}

// TestInitViaRun verifies the subcommand is dispatched from run.
func TestInitViaRun(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "-dry-run"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "superclass") {
		t.Errorf("header should list known rules:\n%s", stdout.String())
	}
}
