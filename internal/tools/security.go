// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// security.go confines every filesystem tool to the workspace root.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// SECURITY ERROR
// =============================================================================

// SecurityError reports a rejected path with enough context to explain
// the rejection to the model without leaking resolved paths outside the
// workspace.
type SecurityError struct {
	Type    string // "path_resolution", "path_traversal"
	Path    string // the path as requested
	Message string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security violation (%s): %s", e.Type, e.Message)
}

// =============================================================================
// WORKSPACE SANDBOX
// =============================================================================

// Sandbox resolves tool-supplied paths against a single allowed root.
type Sandbox struct {
	root string // absolute, symlink-resolved workspace root
}

// NewSandbox creates a sandbox rooted at dir. The directory must exist;
// its real (symlink-resolved) path becomes the confinement boundary.
func NewSandbox(dir string) (*Sandbox, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	info, err := os.Stat(real)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", dir)
	}
	return &Sandbox{root: real}, nil
}

// Root returns the absolute workspace root.
func (s *Sandbox) Root() string { return s.root }

// Resolve maps a tool-supplied path to an absolute path inside the
// workspace. Relative paths resolve against the root; absolute paths
// must already fall inside it. Symlinks are resolved before the
// boundary check, so a link pointing outside the workspace is rejected
// even when its own path looks contained. The target may not exist yet
// (writes, renames): in that case the nearest existing ancestor is
// resolved and checked instead.
func (s *Sandbox) Resolve(path string) (string, error) {
	if path == "" {
		path = "."
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, abs)
	}
	abs = filepath.Clean(abs)

	// Canonicalize before checking containment; "a/../../etc" style
	// traversal collapses here, symlink escapes are caught below.
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", &SecurityError{
				Type:    "path_resolution",
				Path:    path,
				Message: fmt.Sprintf("cannot resolve path: %v", err),
			}
		}
		// Not created yet. Resolve the parent chain instead and
		// reattach the missing suffix.
		real, err = s.resolveMissing(abs)
		if err != nil {
			return "", &SecurityError{
				Type:    "path_resolution",
				Path:    path,
				Message: fmt.Sprintf("cannot resolve path: %v", err),
			}
		}
	}

	if !s.contains(real) {
		return "", &SecurityError{
			Type:    "path_traversal",
			Path:    path,
			Message: fmt.Sprintf("path escapes the workspace (%s)", s.root),
		}
	}
	return real, nil
}

// resolveMissing canonicalizes a path whose tail does not exist yet by
// resolving the nearest existing ancestor.
func (s *Sandbox) resolveMissing(abs string) (string, error) {
	dir := abs
	var suffix []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no existing ancestor for %s", abs)
		}
		suffix = append([]string{filepath.Base(dir)}, suffix...)
		dir = parent
		real, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{real}, suffix...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
}

// contains reports whether abs is the root or lives beneath it.
func (s *Sandbox) contains(abs string) bool {
	if abs == s.root {
		return true
	}
	return strings.HasPrefix(abs, s.root+string(filepath.Separator))
}

// Relative renders an absolute workspace path the way the model should
// see it, relative to the root. Falls back to the absolute form if the
// path is somehow outside.
func (s *Sandbox) Relative(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return abs
	}
	return rel
}
