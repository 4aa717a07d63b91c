// Package shebang handles the interpreter directive ("#!...") that may open
// an executable entry source.
package shebang

import (
	"fmt"
	"os"
	"regexp"
)

var directiveRe = regexp.MustCompile(`^#![^\n]*`)

// Get returns the leading directive followed by a newline, or "".
func Get(code string) string {
	m := directiveRe.FindString(code)
	if m == "" {
		return ""
	}
	return m + "\n"
}

// Strip removes the leading directive line, keeping the newline so line
// numbers of the remaining code do not shift.
func Strip(code string) string {
	return directiveRe.ReplaceAllString(code, "")
}

// MakeExecutable adds execute permission wherever read permission is set.
func MakeExecutable(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	mode := st.Mode().Perm()
	mode |= (mode & 0o444) >> 2
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
