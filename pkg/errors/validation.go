package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds machine and state names accepted from the outside.
const maxNameLength = 256

// identRe matches names the log indexer and the class miner can produce:
// word characters only.
var identRe = regexp.MustCompile(`^\w+$`)

// ValidateName validates a machine or state name received from a request.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "%s name contains invalid characters: %q", kind, pattern)
		}
	}
	return nil
}

// ValidateIdentifier validates a name that must be a single word, such as a
// class name used as the root of an inheritance tree.
func ValidateIdentifier(kind, name string) error {
	if err := ValidateName(kind, name); err != nil {
		return err
	}
	if !identRe.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid %s name: %q", kind, name)
	}
	return nil
}

// ValidateExtension validates a file extension filter such as ".swift".
func ValidateExtension(ext string) error {
	if ext == "" {
		return New(ErrCodeInvalidInput, "extension cannot be empty")
	}
	if !strings.HasPrefix(ext, ".") {
		return New(ErrCodeInvalidInput, "extension must start with a dot: %q", ext)
	}
	if strings.ContainsAny(ext, `/\`) || strings.Contains(ext, "..") {
		return New(ErrCodeInvalidInput, "extension contains invalid characters: %q", ext)
	}
	return nil
}

// ValidateOutputBase validates the base name of extraction outputs. It must
// be a simple file name without directories.
func ValidateOutputBase(base string) error {
	if base == "" {
		return New(ErrCodeInvalidPath, "output base name cannot be empty")
	}
	if strings.ContainsAny(base, `/\`) {
		return New(ErrCodeInvalidPath, "output base name cannot contain path separators")
	}
	if strings.HasPrefix(base, ".") {
		return New(ErrCodeInvalidPath, "output base name cannot be a hidden file")
	}
	for _, r := range base {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output base name contains invalid characters")
		}
	}
	return nil
}
