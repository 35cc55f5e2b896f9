// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// fs.go defines the nine filesystem tools registered for the agent.
package tools

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/scout/internal/util"
)

// NewFilesystemRegistry builds the standard capability-set confined to
// the given workspace directory.
func NewFilesystemRegistry(workspace string) (*Registry, error) {
	sandbox, err := NewSandbox(workspace)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	reg.Register(listDirectoryTool(sandbox))
	reg.Register(readFileTool(sandbox))
	reg.Register(readMultipleFilesTool(sandbox))
	reg.Register(writeFileTool(sandbox))
	reg.Register(createDirectoryTool(sandbox))
	reg.Register(moveFileTool(sandbox))
	reg.Register(searchFilesTool(sandbox))
	reg.Register(getFileInfoTool(sandbox))
	reg.Register(listAllowedDirectoriesTool(sandbox))
	return reg, nil
}

// =============================================================================
// DIRECTORY TOOLS
// =============================================================================

func listDirectoryTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "list_directory",
		Description: "List the entries of a directory. Directories are marked [DIR] and files [FILE].",
		Params: []Param{
			{Name: "path", Type: "string", Description: "Directory to list, relative to the workspace. Use \".\" for the workspace root.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			path, err := stringArg(args, "path")
			if err != nil {
				return "", err
			}
			abs, err := sandbox.Resolve(path)
			if err != nil {
				return "", err
			}
			entries, err := os.ReadDir(abs)
			if err != nil {
				return "", fmt.Errorf("listing %s: %w", path, err)
			}
			if len(entries) == 0 {
				return "(empty directory)", nil
			}
			var b strings.Builder
			for i, entry := range entries {
				if i > 0 {
					b.WriteByte('\n')
				}
				if entry.IsDir() {
					b.WriteString("[DIR] ")
				} else {
					b.WriteString("[FILE] ")
				}
				b.WriteString(entry.Name())
			}
			return b.String(), nil
		},
	}
}

func createDirectoryTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "create_directory",
		Description: "Create a directory, including any missing parent directories. Succeeds if it already exists.",
		Params: []Param{
			{Name: "path", Type: "string", Description: "Directory to create, relative to the workspace.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			path, err := stringArg(args, "path")
			if err != nil {
				return "", err
			}
			abs, err := sandbox.Resolve(path)
			if err != nil {
				return "", err
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return "", fmt.Errorf("creating %s: %w", path, err)
			}
			return fmt.Sprintf("Successfully created directory %s", path), nil
		},
	}
}

func listAllowedDirectoriesTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "list_allowed_directories",
		Description: "Show which directories this agent is allowed to access.",
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return fmt.Sprintf("Allowed directories:\n%s", sandbox.Root()), nil
		},
	}
}

// =============================================================================
// FILE READ TOOLS
// =============================================================================

func readFileTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "read_file",
		Description: "Read the complete contents of a file as text.",
		Params: []Param{
			{Name: "path", Type: "string", Description: "File to read, relative to the workspace.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			path, err := stringArg(args, "path")
			if err != nil {
				return "", err
			}
			return readOne(sandbox, path)
		},
	}
}

func readMultipleFilesTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "read_multiple_files",
		Description: "Read several files in a single call. Files that cannot be read are reported inline without failing the rest.",
		Params: []Param{
			{Name: "paths", Type: "array", Description: "Files to read, relative to the workspace.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			paths, err := stringSliceArg(args, "paths")
			if err != nil {
				return "", err
			}
			if len(paths) == 0 {
				return "", fmt.Errorf("argument %q must not be empty", "paths")
			}
			sections := make([]string, 0, len(paths))
			for _, path := range paths {
				content, err := readOne(sandbox, path)
				if err != nil {
					sections = append(sections, fmt.Sprintf("%s: Error - %v", path, err))
					continue
				}
				sections = append(sections, fmt.Sprintf("%s:\n%s", path, content))
			}
			return strings.Join(sections, "\n---\n"), nil
		},
	}
}

// readOne reads a single workspace file, rejecting directories with a
// hint instead of the raw EISDIR the model tends to retry verbatim.
func readOne(sandbox *Sandbox, path string) (string, error) {
	abs, err := sandbox.Resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, use list_directory instead", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// =============================================================================
// FILE WRITE TOOLS
// =============================================================================

func writeFileTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "write_file",
		Description: "Create a new file or overwrite an existing one with the given content.",
		Params: []Param{
			{Name: "path", Type: "string", Description: "File to write, relative to the workspace.", Required: true},
			{Name: "content", Type: "string", Description: "Full content to write.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			path, err := stringArg(args, "path")
			if err != nil {
				return "", err
			}
			content, err := stringArg(args, "content")
			if err != nil {
				return "", err
			}
			abs, err := sandbox.Resolve(path)
			if err != nil {
				return "", err
			}
			if info, err := os.Stat(abs); err == nil && info.IsDir() {
				return "", fmt.Errorf("%s is a directory", path)
			}
			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				return "", fmt.Errorf("writing %s: %w", path, err)
			}
			if err := util.AtomicWriteFile(abs, []byte(content), 0o644); err != nil {
				return "", fmt.Errorf("writing %s: %w", path, err)
			}
			return fmt.Sprintf("Successfully wrote to %s", path), nil
		},
	}
}

func moveFileTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "move_file",
		Description: "Move or rename a file or directory. Fails if the destination already exists.",
		Params: []Param{
			{Name: "source", Type: "string", Description: "Existing path, relative to the workspace.", Required: true},
			{Name: "destination", Type: "string", Description: "New path, relative to the workspace.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			source, err := stringArg(args, "source")
			if err != nil {
				return "", err
			}
			destination, err := stringArg(args, "destination")
			if err != nil {
				return "", err
			}
			srcAbs, err := sandbox.Resolve(source)
			if err != nil {
				return "", err
			}
			dstAbs, err := sandbox.Resolve(destination)
			if err != nil {
				return "", err
			}
			if _, err := os.Stat(srcAbs); err != nil {
				return "", fmt.Errorf("moving %s: %w", source, err)
			}
			if _, err := os.Stat(dstAbs); err == nil {
				return "", fmt.Errorf("destination %s already exists", destination)
			}
			if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
				return "", fmt.Errorf("moving %s: %w", source, err)
			}
			if err := os.Rename(srcAbs, dstAbs); err != nil {
				return "", fmt.Errorf("moving %s to %s: %w", source, destination, err)
			}
			return fmt.Sprintf("Successfully moved %s to %s", source, destination), nil
		},
	}
}

// =============================================================================
// SEARCH AND METADATA TOOLS
// =============================================================================

func searchFilesTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "search_files",
		Description: "Recursively search for files and directories whose name contains the pattern (case-insensitive).",
		Params: []Param{
			{Name: "path", Type: "string", Description: "Directory to search from, relative to the workspace.", Required: true},
			{Name: "pattern", Type: "string", Description: "Substring to match against entry names.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			path, err := stringArg(args, "path")
			if err != nil {
				return "", err
			}
			pattern, err := stringArg(args, "pattern")
			if err != nil {
				return "", err
			}
			abs, err := sandbox.Resolve(path)
			if err != nil {
				return "", err
			}

			needle := strings.ToLower(pattern)
			var matches []string
			err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
				if walkErr != nil {
					// Unreadable subtree, skip it rather than fail the search.
					if d != nil && d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if p == abs {
					return nil
				}
				if strings.Contains(strings.ToLower(d.Name()), needle) {
					matches = append(matches, sandbox.Relative(p))
				}
				return nil
			})
			if err != nil {
				return "", fmt.Errorf("searching %s: %w", path, err)
			}
			if len(matches) == 0 {
				return "No matches found", nil
			}
			sort.Strings(matches)
			return strings.Join(matches, "\n"), nil
		},
	}
}

func getFileInfoTool(sandbox *Sandbox) *Tool {
	return &Tool{
		name:        "get_file_info",
		Description: "Get size, timestamps, type and permissions for a file or directory.",
		Params: []Param{
			{Name: "path", Type: "string", Description: "Path to inspect, relative to the workspace.", Required: true},
		},
		run: func(ctx context.Context, args map[string]interface{}) (string, error) {
			path, err := stringArg(args, "path")
			if err != nil {
				return "", err
			}
			abs, err := sandbox.Resolve(path)
			if err != nil {
				return "", err
			}
			info, err := os.Stat(abs)
			if err != nil {
				return "", fmt.Errorf("inspecting %s: %w", path, err)
			}
			kind := "file"
			if info.IsDir() {
				kind = "directory"
			}
			var b strings.Builder
			fmt.Fprintf(&b, "path: %s\n", path)
			fmt.Fprintf(&b, "type: %s\n", kind)
			fmt.Fprintf(&b, "size: %d\n", info.Size())
			fmt.Fprintf(&b, "modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(&b, "permissions: %s", info.Mode().Perm())
			return b.String(), nil
		},
	}
}
