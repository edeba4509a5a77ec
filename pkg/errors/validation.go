package errors

import (
	"strings"
	"unicode"
)

// ValidateImageRef validates an image reference (a file path) supplied in a
// batch definition. It only rejects references that can never resolve;
// missing files are handled at render time as unresolved images.
//
// Validation rules:
//   - Reference cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateImageRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidPath, "image reference cannot be empty")
	}

	const maxRefLength = 4096
	if len(ref) > maxRefLength {
		return New(ErrCodeInvalidPath, "image reference too long (max %d characters)", maxRefLength)
	}

	for _, r := range ref {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "image reference contains invalid characters: %q", ref)
		}
	}

	return nil
}

// ValidateRelativePath validates a path that must stay inside a base
// directory, such as an image listed in a job file shipped with its artwork.
func ValidateRelativePath(path string) error {
	if err := ValidateImageRef(path); err != nil {
		return err
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidatePartyName validates the optional display name of a party.
func ValidatePartyName(name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "party name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "party name contains invalid control characters")
		}
	}

	return nil
}
