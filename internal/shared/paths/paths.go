package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// StoreDirName is the dot-directory under the user's home that holds
// PromptDeck state.
const StoreDirName = ".promptdeck"

// TaskStoreFile is the file name of the persisted task-group store.
const TaskStoreFile = "task-groups.json"

// Home returns the current user's home directory. It resolves from the
// platform's home environment variable (HOME on Unix, USERPROFILE on
// Windows) and fails when neither is set.
func Home() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return home, nil
}

// StoreDir returns the PromptDeck state directory under the user's home.
func StoreDir() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, StoreDirName), nil
}

// TaskStore returns the default path of the task-group store file.
func TaskStore() (string, error) {
	dir, err := StoreDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TaskStoreFile), nil
}

// Expand resolves a path that may start with "~/" against the user's home
// directory. Paths without the prefix are returned unchanged.
func Expand(path string) (string, error) {
	if len(path) < 2 || path[0] != '~' || !os.IsPathSeparator(path[1]) {
		return path, nil
	}
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
