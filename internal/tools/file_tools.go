package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quocvuong92/johnathan-agent/internal/api"
)

// MaxFileSize is the maximum file size for read operations (512KB)
const MaxFileSize = 512 * 1024

// MaxListEntries limits list_directory output to prevent flooding
const MaxListEntries = 500

// ReadFile returns the contents of a file, truncated at MaxFileSize.
type ReadFile struct{}

// NewReadFile creates the read_file tool.
func NewReadFile() *ReadFile { return &ReadFile{} }

func (ReadFile) Name() string { return "read_file" }

func (r ReadFile) Definition() api.Tool {
	return api.Tool{
		Name:        r.Name(),
		Description: "Read the contents of a file. Limited to 512KB. Use for viewing code, configs, or logs.",
		InputSchema: schema(map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File path (relative or absolute)",
			},
		}, "path"),
	}
}

func (ReadFile) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := decodeInput(input, &args); err != nil {
		return "", err
	}
	if args.Path == "" {
		return "", errors.New("path is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(args.Path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("file not found: %s", args.Path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, use list_directory instead", args.Path)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize))
	if err != nil {
		return "", err
	}

	output := string(data)
	if info.Size() > MaxFileSize {
		output += fmt.Sprintf("\n\n[Truncated: file is %d bytes, showing first 512KB]", info.Size())
	}
	return output, nil
}

// ListDirectory lists the entries of a directory, optionally recursively.
type ListDirectory struct{}

// NewListDirectory creates the list_directory tool.
func NewListDirectory() *ListDirectory { return &ListDirectory{} }

func (ListDirectory) Name() string { return "list_directory" }

func (l ListDirectory) Definition() api.Tool {
	return api.Tool{
		Name:        l.Name(),
		Description: "List files and directories in a path. Directories are shown with a trailing slash.",
		InputSchema: schema(map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory path (default: current directory)",
			},
			"recursive": map[string]interface{}{
				"type":        "boolean",
				"description": "List subdirectories recursively",
			},
		}),
	}
}

func (ListDirectory) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var args struct {
		Path      string `json:"path"`
		Recursive bool   `json:"recursive"`
	}
	if err := decodeInput(input, &args); err != nil {
		return "", err
	}
	if args.Path == "" {
		args.Path = "."
	}

	info, err := os.Stat(args.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("directory not found: %s", args.Path)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", args.Path)
	}

	var entries []string
	truncated := false
	walkErr := filepath.WalkDir(args.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == args.Path {
			return nil
		}
		if len(entries) >= MaxListEntries {
			truncated = true
			return fs.SkipAll
		}

		rel, err := filepath.Rel(args.Path, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			entries = append(entries, rel+"/")
			if !args.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		entries = append(entries, rel)
		return nil
	})
	if walkErr != nil {
		return "", walkErr
	}

	if len(entries) == 0 {
		return "(empty directory)", nil
	}
	sort.Strings(entries)
	output := strings.Join(entries, "\n")
	if truncated {
		output += fmt.Sprintf("\n[Truncated: showing first %d entries]", MaxListEntries)
	}
	return output, nil
}
