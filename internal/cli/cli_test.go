package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/sequence"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{
		"import", "validate", "layout", "compile",
		"generate", "render", "state", "serve", "completion",
	}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRenderOutput(t *testing.T) {
	out := &sequence.Output{
		Sequence: []sequence.Step{
			{Step: 1, ID: "node-1", Role: "system", Label: "System", Content: "Be brief."},
		},
		StructuredPrompt: "[1] SYSTEM\nBe brief.",
	}

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "text", format: "text", want: "[1] SYSTEM\nBe brief.\n"},
		{name: "markdown", format: "markdown", want: "# Generated Prompt"},
		{name: "json", format: "json", want: `"structuredPrompt"`},
		{name: "unknown", format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderOutput(out, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Errorf("error code = %v, want INVALID_FORMAT", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("renderOutput() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("renderOutput() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestReadInputFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("[system]\n1 Be brief."), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readInput([]string{path})
	if err != nil {
		t.Fatalf("readInput() error = %v", err)
	}
	if got != "[system]\n1 Be brief." {
		t.Errorf("readInput() = %q", got)
	}
}

func TestReadInputMissingFile(t *testing.T) {
	if _, err := readInput([]string{filepath.Join(t.TempDir(), "nope.txt")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestErrUnknownBackend(t *testing.T) {
	err := errUnknownBackend("cassandra")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error code = %v, want UNSUPPORTED", errors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "cassandra") {
		t.Errorf("error should name the backend: %v", err)
	}
}

func TestCacheDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error = %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}
