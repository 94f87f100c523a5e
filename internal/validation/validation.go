// Package validation checks command-line input before any work starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Statement input extensions accepted by the CLI.
var statementExtensions = []string{".json", ".pdf"}

// IsValidStatementFile checks that path is an existing regular file with a
// .json (saved converter response) or .pdf extension.
func IsValidStatementFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range statementExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported statement file %s: expected %s", path, strings.Join(statementExtensions, " or "))
}

// IsValidOutputFormat checks that format is one of allowed.
func IsValidOutputFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are '%s'", format, strings.Join(allowed, "', '"))
}

// IsValidFilePermissions checks that a file holding secrets is not readable by others.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}
