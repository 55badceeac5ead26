// Package config holds small configuration helpers shared by the commands.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading tilde to the user's home directory and then
// expands $VAR style environment references. Parts that cannot be resolved
// are left untouched.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}

	return os.ExpandEnv(path)
}
