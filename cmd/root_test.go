package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quocvuong92/johnathan-agent/internal/config"
)

func executeRoot(t *testing.T, app *App, args ...string) error {
	t.Helper()
	root := app.newRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestRoot_OneShot(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvAPIKey, "sk-env")
	stdout, _ := captureOutput(t)

	mock := &MockCompleter{}
	mock.AddAnswer("42")
	app := newTestApp(mock)
	app.cfg = config.NewConfig()

	if err := executeRoot(t, app, "--max-rounds", "3", "-m", "flag-model", "what is the answer?"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if app.cfg.MaxToolRounds != 3 || app.cfg.Model != "flag-model" {
		t.Errorf("cfg = %+v", app.cfg)
	}
	if mock.requests[0].Model != "flag-model" {
		t.Errorf("request model = %q", mock.requests[0].Model)
	}
	if !strings.Contains(stdout.String(), "42") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestRoot_RequiresQuery(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvAPIKey, "sk-env")
	captureOutput(t)

	app := newTestApp(&MockCompleter{})
	app.cfg = config.NewConfig()

	if err := executeRoot(t, app); !errors.Is(err, errUsage) {
		t.Errorf("Execute() error = %v, want errUsage", err)
	}
}

func TestRoot_MissingAPIKey(t *testing.T) {
	isolateEnv(t)
	captureOutput(t)

	app := newTestApp(&MockCompleter{})
	app.cfg = config.NewConfig()

	if err := executeRoot(t, app, "hello"); !errors.Is(err, config.ErrAPIKeyNotFound) {
		t.Errorf("Execute() error = %v, want ErrAPIKeyNotFound", err)
	}
}

func TestRoot_ExplicitStreamFlagBeatsConfigFile(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv(config.EnvAPIKey, "sk-env")
	captureOutput(t)
	if err := os.Mkdir(filepath.Join(dir, config.ProjectConfigDir), 0755); err != nil {
		t.Fatal(err)
	}
	createTestFile(t, filepath.Join(dir, config.ProjectConfigDir), config.ConfigFileName,
		"defaults:\n  stream: false\n  render: false\n")

	mock := &MockCompleter{}
	mock.AddAnswer("ok")
	app := newTestApp(mock)
	app.cfg = config.NewConfig()

	if err := executeRoot(t, app, "--stream=true", "hi"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !app.cfg.Stream {
		t.Error("explicit --stream was overridden by the config file")
	}
}

func TestRoot_ListModels(t *testing.T) {
	isolateEnv(t)
	stdout, _ := captureOutput(t)

	app := newTestApp(&MockCompleter{})
	app.cfg = config.NewConfig()

	if err := executeRoot(t, app, "--list-models"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "* claude-sonnet-4-20250514") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestConfigCmd_InitAndShow(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvAPIKey, "sk-ant-secret9876")
	stdout, _ := captureOutput(t)

	app := newTestApp(&MockCompleter{})
	app.cfg = config.NewConfig()

	if err := executeRoot(t, app, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Created") {
		t.Errorf("init output = %q", stdout.String())
	}

	stdout.Reset()
	if err := executeRoot(t, app, "config", "show"); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "********9876") || strings.Contains(out, "secret") {
		t.Errorf("show output = %q, want masked key", out)
	}
	if !strings.Contains(out, "https://api.anthropic.com/v1/messages") {
		t.Errorf("show output = %q, want endpoint", out)
	}
}
