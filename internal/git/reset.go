package git

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// ResetTask tears down a task's git scaffolding: the worktree checkout and
// the task branch. Both pieces are optional and already-removed ones are
// skipped. The worktree goes through the git CLI, which knows how to prune
// the administrative files under .git/worktrees.
func (s *Service) ResetTask(repoPath, worktreePath, branchName string) error {
	repo, err := s.openRepo(repoPath)
	if err != nil {
		return err
	}

	if trimmed := strings.TrimSpace(worktreePath); trimmed != "" {
		if _, err := os.Stat(trimmed); err == nil {
			if _, err := runGit(repoPath, "worktree", "remove", "--force", trimmed); err != nil {
				return err
			}
		}
	}

	if trimmed := strings.TrimSpace(branchName); trimmed != "" {
		name := plumbing.ReferenceName(trimmed)
		if !strings.HasPrefix(trimmed, "refs/") {
			name = plumbing.NewBranchReferenceName(trimmed)
		}

		_, err := repo.Reference(name, false)
		switch {
		case err == nil:
			if err := repo.Storer.RemoveReference(name); err != nil {
				return fmt.Errorf("failed to delete branch %s: %w", trimmed, err)
			}
		case errors.Is(err, plumbing.ErrReferenceNotFound):
			// Already gone.
		default:
			return fmt.Errorf("failed to resolve branch %s: %w", trimmed, err)
		}
	}

	s.log.Info("task git state reset",
		zap.String("repo", repoPath),
		zap.String("worktree", worktreePath),
		zap.String("branch", branchName))
	return nil
}
