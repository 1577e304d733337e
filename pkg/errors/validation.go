package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateProjectName validates a project name for safety and correctness.
// It rejects names that could be used for path traversal, since project
// names become directory names on disk.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateProjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidProject, "project name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidProject, "project name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProject, "project name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidProject, "project name cannot contain path separators")
	}

	return nil
}

// branchNameRegex matches reasonable git-style branch names.
var branchNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// ValidateBranchName validates a branch or session label.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 200 characters
//   - Must start with an alphanumeric character
//   - Only alphanumerics, dots, underscores, slashes and dashes
//   - No path traversal sequences (..)
func ValidateBranchName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBranch, "branch name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidBranch, "branch name too long (max 200 characters)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidBranch, "branch name cannot contain path traversal sequences (..)")
	}

	if !branchNameRegex.MatchString(name) {
		return New(ErrCodeInvalidBranch, "invalid branch name: %q", name)
	}

	return nil
}

// ValidatePath validates a file path within a project for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// addressRegex matches block addresses of the form segment(.segment)+,
// where each segment is a word of alphanumerics, underscores and dashes.
var addressRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)+$`)

// ValidateAddress validates a block address such as "aws_instance.web" or
// "data.aws_ami.ubuntu".
func ValidateAddress(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInput, "address cannot be empty")
	}

	if !addressRegex.MatchString(addr) {
		return New(ErrCodeInvalidInput, "invalid block address: %q", addr)
	}

	return nil
}
