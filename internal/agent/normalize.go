// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

// =============================================================================
// ARGUMENT NORMALIZATION
// =============================================================================

// filesystemToolNames is the tool set whose arguments get normalized.
// Models inconsistently name the path argument for these tools; without
// normalization every misnamed argument becomes a spurious tool failure
// that inflates the breaker count.
var filesystemToolNames = map[string]bool{
	"list_directory":           true,
	"read_file":                true,
	"write_file":               true,
	"create_directory":         true,
	"move_file":                true,
	"search_files":             true,
	"get_file_info":            true,
	"list_allowed_directories": true,
	"read_multiple_files":      true,
}

// pathAliases are the alternate names models use for the path argument,
// searched in order. The first string-valued alias wins.
var pathAliases = []string{"directory_path", "dir_path", "file_path", "folder_path"}

// IsFilesystemTool reports whether a tool name belongs to the
// filesystem tool set covered by argument normalization.
func IsFilesystemTool(name string) bool {
	return filesystemToolNames[name]
}

// NormalizeArgs rewrites a tool call's arguments into the shape the tool
// expects. It is a pure function: the input map is never mutated, and the
// result is stable under repeated application.
//
// For tools outside the filesystem set the arguments pass through
// unchanged. Otherwise a missing "path" key is filled from the first
// string-valued alias, and list_directory additionally gets the
// current-directory sentinel "." when path is absent, non-string, or
// empty.
func NormalizeArgs(toolName string, args map[string]interface{}) map[string]interface{} {
	if !filesystemToolNames[toolName] {
		return args
	}

	normalized := make(map[string]interface{}, len(args)+1)
	for k, v := range args {
		normalized[k] = v
	}

	if _, ok := normalized["path"]; !ok {
		for _, alias := range pathAliases {
			if s, ok := normalized[alias].(string); ok {
				normalized["path"] = s
				break
			}
		}
	}

	if toolName == "list_directory" {
		if s, ok := normalized["path"].(string); !ok || s == "" {
			normalized["path"] = "."
		}
	}

	return normalized
}
