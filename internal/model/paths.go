package model

import (
	"os"
	"path/filepath"
)

// defaultCacheDir returns ~/.claimcheck/cache, or a temp dir when home is unknown
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "claimcheck-cache")
	}
	return filepath.Join(home, ".claimcheck", "cache")
}
