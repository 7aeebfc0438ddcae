package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Stats aggregates line and file change counts.
type Stats struct {
	Added        int `json:"added"`
	Removed      int `json:"removed"`
	FilesChanged int `json:"filesChanged"`
}

// ChangeStats totals the diff against base, HEAD when base is empty, plus
// all untracked files, which count as pure additions. Binary files count
// toward filesChanged without line totals.
func (s *Service) ChangeStats(path, base string) (*Stats, error) {
	if base == "" {
		base = "HEAD"
	}

	out, err := runGit(path, "diff", "--numstat", base)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 || parts[2] == "" {
			continue
		}
		stats.FilesChanged++
		if parts[0] == "-" || parts[1] == "-" {
			// Binary per numstat.
			continue
		}
		if v, err := strconv.Atoi(parts[0]); err == nil {
			stats.Added += v
		}
		if v, err := strconv.Atoi(parts[1]); err == nil {
			stats.Removed += v
		}
	}

	repo, err := s.openRepo(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository has no working directory: %w", err)
	}

	untracked, err := untrackedFiles(path, wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	for _, file := range untracked {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		stats.FilesChanged++
		if isBinary(data) {
			continue
		}
		stats.Added += countLines(data)
	}

	return stats, nil
}

// untrackedFiles enumerates untracked paths from porcelain status,
// descending into any untracked directories.
func untrackedFiles(repoPath, root string) ([]string, error) {
	out, err := runGit(repoPath, "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}

	for _, entry := range strings.Split(out, "\x00") {
		if !strings.HasPrefix(entry, "?? ") {
			continue
		}
		rel := strings.TrimSpace(strings.TrimPrefix(entry, "?? "))
		if rel == "" {
			continue
		}
		full := filepath.Join(root, rel)

		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, full)
			continue
		}

		fastwalk.Walk(&conf, full, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			mu.Lock()
			files = append(files, p)
			mu.Unlock()
			return nil
		})
	}

	return files, nil
}
