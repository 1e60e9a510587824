package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound matches a ConfigNotFoundError with errors.Is.
var ErrNotFound = errors.New("config file not found")

// PermissionError reports a config file the process may not read or write.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // Suggested fix command
	Details string // Current permissions, when known
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "permission denied (cannot %s config): %s\n", e.Op, e.Path)
	writeLine(&b, "", e.Details)
	writeLine(&b, "💡 Fix: ", e.Fix)
	return strings.TrimRight(b.String(), "\n")
}

// ConfigNotFoundError reports an explicitly requested config file that
// does not exist. The default path is allowed to be missing.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrNotFound, e.Path)
	if e.Hint != "" {
		msg += "\n\n💡 " + e.Hint
	}
	return msg
}

func (e *ConfigNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidConfigError reports YAML that does not parse, values of the wrong
// type, or values outside their allowed range. Path is empty when the
// problem comes from defaults or the environment.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	source := e.Path
	if source == "" {
		source = "(defaults + environment)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "invalid config: %s\n", source)
	writeLine(&b, "", e.Message)
	writeLine(&b, "💡 ", e.Hint)
	return strings.TrimRight(b.String(), "\n")
}

// writeLine appends prefix+s and a newline when s is set.
func writeLine(b *strings.Builder, prefix, s string) {
	if s == "" {
		return
	}
	b.WriteString(prefix)
	b.WriteString(s)
	b.WriteByte('\n')
}
