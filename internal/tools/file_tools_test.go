package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func args(t *testing.T, v map[string]interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	return data
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	content := "Hello, World!"
	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	tool := NewReadFile()
	ctx := context.Background()

	t.Run("read existing file", func(t *testing.T) {
		got, err := tool.Execute(ctx, args(t, map[string]interface{}{"path": testFile}))
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got != content {
			t.Errorf("Execute() = %q, want %q", got, content)
		}
	})

	t.Run("read non-existent file", func(t *testing.T) {
		_, err := tool.Execute(ctx, args(t, map[string]interface{}{"path": "/nonexistent/file.txt"}))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Execute() error = %v, want not found", err)
		}
	})

	t.Run("read directory", func(t *testing.T) {
		_, err := tool.Execute(ctx, args(t, map[string]interface{}{"path": tmpDir}))
		if err == nil || !strings.Contains(err.Error(), "directory") {
			t.Errorf("Execute() error = %v, want directory error", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := tool.Execute(ctx, json.RawMessage(`{}`)); err == nil {
			t.Error("Execute() should fail without a path")
		}
	})

	t.Run("malformed input", func(t *testing.T) {
		if _, err := tool.Execute(ctx, json.RawMessage(`{"path":3}`)); err == nil {
			t.Error("Execute() should reject a non-string path")
		}
	})
}

func TestReadFileTruncation(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "large.txt")
	largeContent := strings.Repeat("x", MaxFileSize+1000)
	if err := os.WriteFile(testFile, []byte(largeContent), 0644); err != nil {
		t.Fatalf("Failed to create large test file: %v", err)
	}

	got, err := NewReadFile().Execute(context.Background(), args(t, map[string]interface{}{"path": testFile}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(got, strings.Repeat("x", MaxFileSize)+"\n") {
		t.Error("expected exactly MaxFileSize bytes of content before the note")
	}
	if !strings.Contains(got, fmt.Sprintf("file is %d bytes", MaxFileSize+1000)) {
		t.Error("expected truncation message in output")
	}
}

func TestListDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "file1.txt"), []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "subdir", "deep"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "subdir", "inner.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	tool := NewListDirectory()
	ctx := context.Background()

	tests := []struct {
		name      string
		recursive bool
		want      string
	}{
		{"flat", false, "file1.txt\nsubdir/"},
		{"recursive", true, "file1.txt\nsubdir/\nsubdir/deep/\nsubdir/inner.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Execute(ctx, args(t, map[string]interface{}{"path": tmpDir, "recursive": tt.recursive}))
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("empty directory", func(t *testing.T) {
		got, err := tool.Execute(ctx, args(t, map[string]interface{}{"path": filepath.Join(tmpDir, "subdir", "deep")}))
		if err != nil || got != "(empty directory)" {
			t.Errorf("Execute() = %q, %v", got, err)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := tool.Execute(ctx, args(t, map[string]interface{}{"path": "/nonexistent/dir"})); err == nil {
			t.Error("Execute() should fail for non-existent directory")
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		if _, err := tool.Execute(ctx, args(t, map[string]interface{}{"path": filepath.Join(tmpDir, "file1.txt")})); err == nil {
			t.Error("Execute() should fail for a file")
		}
	})
}

func TestListDirectoryTruncation(t *testing.T) {
	tmpDir := t.TempDir()
	for i := 0; i < MaxListEntries+5; i++ {
		if err := os.WriteFile(filepath.Join(tmpDir, fmt.Sprintf("f%04d", i)), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := NewListDirectory().Execute(context.Background(), args(t, map[string]interface{}{"path": tmpDir}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(got, "[Truncated") {
		t.Error("expected truncation note")
	}
	if n := strings.Count(got, "\n"); n != MaxListEntries {
		t.Errorf("got %d newlines, want %d", n, MaxListEntries)
	}
}
