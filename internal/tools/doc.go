// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the filesystem capability-set for Scout.
//
// All tools operate inside a single workspace root. Paths are validated
// before any filesystem access: relative paths resolve against the root,
// absolute paths must fall inside it, and symlinks may not escape it.
//
// # Available Tools
//
//   - list_directory: list entries of a directory
//   - read_file: read one file
//   - read_multiple_files: read several files in one call
//   - write_file: create or overwrite a file
//   - create_directory: create a directory (and parents)
//   - move_file: move or rename a file or directory
//   - search_files: recursive case-insensitive name search
//   - get_file_info: size, timestamps, permissions
//   - list_allowed_directories: report the workspace root
package tools
