// Package cli holds process-wide state of the bbs command.
package cli

import (
	"os"
	"path/filepath"
	"strings"
)

var _name = strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")

// Name returns the name the binary was invoked as.
// Help text uses it to refer to other commands.
func Name() string {
	return _name
}

// SetName overrides the binary name.
// Tests use this to get stable help output.
func SetName(name string) (restore func()) {
	old := _name
	_name = name
	return func() { _name = old }
}
