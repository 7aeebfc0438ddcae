package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// runGit executes git against the repository at path and returns stdout.
// Failures surface the command's stderr, which carries git's actual
// message, falling back to stdout.
func runGit(path string, args ...string) (string, error) {
	full := append([]string{"-C", path}, args...)
	cmd := exec.Command("git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = strings.TrimSpace(stdout.String())
		}
		if message == "" {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), message)
	}
	return stdout.String(), nil
}
