package scaffold

import (
	"fmt"
	"os"
)

// CheckExisting checks if moot.yml already exists.
// Returns an error if it does, nil otherwise.
func CheckExisting() error {
	if _, err := os.Stat("moot.yml"); err == nil {
		return fmt.Errorf("project already initialized\n\nFound existing: moot.yml\n\nUse 'moot init --force' to reinitialize (this will overwrite existing configuration)")
	}

	return nil
}
