package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
)

// maxFileBytes caps the content loaded per diff side. Larger files are
// reported as binary with their content omitted.
const maxFileBytes = 1 << 20

// Service answers repository inspection queries.
type Service struct {
	log *logging.Logger
}

// NewService creates a git inspection service.
func NewService(log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{log: log}
}

// openRepo discovers the repository enclosing path.
func (s *Service) openRepo(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// CurrentBranch returns the short branch name checked out at path, the
// abbreviated commit hash when HEAD is detached, and "" for a repository
// with no commits yet.
func (s *Service) CurrentBranch(path string) (string, error) {
	repo, err := s.openRepo(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String()[:7], nil
}

// FileSection is a line range extracted from a file.
type FileSection struct {
	Content   string `json:"content"`
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// ReadFileSection returns lines start through end of file, 1-based and
// inclusive, clamped to the file's length. Relative files resolve against
// root, or the working directory when root is empty. Binary files are
// refused.
func (s *Service) ReadFileSection(root, file string, start, end int) (*FileSection, error) {
	path := file
	if !filepath.IsAbs(path) {
		base := strings.TrimSpace(root)
		if base == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve working directory: %w", err)
			}
			base = cwd
		}
		path = filepath.Join(base, file)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if isBinary(data) {
		return nil, fmt.Errorf("refusing to read binary file %s", path)
	}

	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}

	lines := splitLines(string(data))
	if len(lines) == 0 {
		return &FileSection{Path: path, StartLine: start, EndLine: start}, nil
	}

	endIndex := end
	if endIndex > len(lines) {
		endIndex = len(lines)
	}
	if start > len(lines) {
		return &FileSection{Path: path, StartLine: start, EndLine: endIndex}, nil
	}

	return &FileSection{
		Content:   strings.Join(lines[start-1:endIndex], "\n"),
		Path:      path,
		StartLine: start,
		EndLine:   endIndex,
	}, nil
}

// splitLines splits content into lines, ignoring a trailing newline the
// way line iterators do.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
