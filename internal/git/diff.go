package git

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

// FileDiff is one changed file with both content sides loaded.
type FileDiff struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	OldContent string `json:"oldContent"`
	NewContent string `json:"newContent"`
	IsBinary   bool   `json:"isBinary"`
	OldLines   int    `json:"oldLines"`
	NewLines   int    `json:"newLines"`
}

// DiffResult is a set of file diffs rooted at one working directory.
type DiffResult struct {
	Root  string     `json:"root"`
	Files []FileDiff `json:"files"`
}

// DiffWorkdir diffs the working tree, staged and unstaged changes plus
// untracked files, against HEAD. Old content comes from the HEAD blob and
// new content from the file on disk.
func (s *Service) DiffWorkdir(path string) (*DiffResult, error) {
	repo, err := s.openRepo(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository has no working directory: %w", err)
	}
	root := wt.Filesystem.Root()

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	// nil for a repository with no commits: every file diffs against
	// empty old content.
	headTree := headTree(repo)

	rels := make([]string, 0, len(status))
	for rel, st := range status {
		if st.Staging == gogit.Unmodified && st.Worktree == gogit.Unmodified {
			continue
		}
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	files := make([]FileDiff, 0, len(rels))
	for _, rel := range rels {
		files = append(files, buildFileDiff(root, rel, headTree, statusLabel(status[rel])))
	}

	s.log.Debug("workdir diff computed",
		zap.String("root", root),
		zap.Int("files", len(files)))
	return &DiffResult{Root: root, Files: files}, nil
}

// DiffAgainstBranch diffs the working tree against a base branch, the
// merge target view: the changed set is the union of committed changes
// since base and uncommitted workdir changes, with old content from the
// base tree and new content from disk.
func (s *Service) DiffAgainstBranch(path, base string) (*DiffResult, error) {
	repo, err := s.openRepo(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository has no working directory: %w", err)
	}
	root := wt.Filesystem.Root()

	baseTree, err := resolveBaseTree(repo, base)
	if err != nil {
		return nil, err
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	// rel path to status label; "" means derive from content presence.
	changed := make(map[string]string)
	if head := headTree(repo); head != nil {
		changes, err := object.DiffTree(baseTree, head)
		if err != nil {
			return nil, fmt.Errorf("failed to diff trees: %w", err)
		}
		for _, change := range changes {
			name := change.To.Name
			if name == "" {
				name = change.From.Name
			}
			if name != "" {
				changed[name] = ""
			}
		}
	}
	for rel, st := range status {
		if st.Staging == gogit.Unmodified && st.Worktree == gogit.Unmodified {
			continue
		}
		if st.Staging == gogit.Untracked || st.Worktree == gogit.Untracked {
			changed[rel] = "untracked"
		} else if _, ok := changed[rel]; !ok {
			changed[rel] = ""
		}
	}

	rels := make([]string, 0, len(changed))
	for rel := range changed {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	files := make([]FileDiff, 0, len(rels))
	for _, rel := range rels {
		diff := buildFileDiff(root, rel, baseTree, changed[rel])
		// Changed on the branch but reverted in the working tree: no
		// difference against base remains.
		if diff.Status == "modified" && !diff.IsBinary && diff.OldContent == diff.NewContent {
			continue
		}
		files = append(files, diff)
	}

	s.log.Debug("branch diff computed",
		zap.String("root", root),
		zap.String("base", base),
		zap.Int("files", len(files)))
	return &DiffResult{Root: root, Files: files}, nil
}

// headTree returns the tree at HEAD, or nil for a repository with no
// commits.
func headTree(repo *gogit.Repository) *object.Tree {
	head, err := repo.Head()
	if err != nil {
		return nil
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil
	}
	return tree
}

// resolveBaseTree resolves base as a revision, trying the bare name, a
// local branch, then an origin-tracking branch.
func resolveBaseTree(repo *gogit.Repository, base string) (*object.Tree, error) {
	candidates := []string{base, "refs/heads/" + base, "refs/remotes/origin/" + base}
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			continue
		}
		commit, err := repo.CommitObject(*hash)
		if err != nil {
			continue
		}
		tree, err := commit.Tree()
		if err != nil {
			continue
		}
		return tree, nil
	}
	return nil, fmt.Errorf("base branch %q not found", base)
}

// buildFileDiff loads both sides of one file. label "" derives the status
// from which sides exist.
func buildFileDiff(root, rel string, base *object.Tree, label string) FileDiff {
	oldBytes, hasOld, oldBig := readTreeFile(base, rel)
	newBytes, hasNew, newBig := readWorkdirFile(root, rel)

	if label == "" {
		label = deriveStatus(hasOld, hasNew)
	}

	diff := FileDiff{Path: rel, Status: label}
	if oldBig || newBig || isBinary(oldBytes) || isBinary(newBytes) {
		diff.IsBinary = true
		return diff
	}

	diff.OldContent = lossyString(oldBytes)
	diff.NewContent = lossyString(newBytes)
	diff.OldLines = countLines(oldBytes)
	diff.NewLines = countLines(newBytes)
	return diff
}

// readTreeFile loads rel from a tree. Reports whether the file exists
// there and whether it exceeds the content cap.
func readTreeFile(tree *object.Tree, rel string) (data []byte, exists, oversize bool) {
	if tree == nil {
		return nil, false, false
	}
	file, err := tree.File(rel)
	if err != nil {
		return nil, false, false
	}
	if file.Blob.Size > maxFileBytes {
		return nil, true, true
	}
	content, err := file.Contents()
	if err != nil {
		return nil, true, false
	}
	return []byte(content), true, false
}

// readWorkdirFile loads rel from the working tree.
func readWorkdirFile(root, rel string) (data []byte, exists, oversize bool) {
	full := filepath.Join(root, rel)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return nil, false, false
	}
	if info.Size() > maxFileBytes {
		return nil, true, true
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, false, false
	}
	return content, true, false
}

// statusLabel names a worktree status entry.
func statusLabel(st *gogit.FileStatus) string {
	switch {
	case st.Staging == gogit.Untracked || st.Worktree == gogit.Untracked:
		return "untracked"
	case st.Staging == gogit.UpdatedButUnmerged || st.Worktree == gogit.UpdatedButUnmerged:
		return "conflicted"
	case st.Staging == gogit.Added:
		return "added"
	case st.Staging == gogit.Deleted || st.Worktree == gogit.Deleted:
		return "deleted"
	case st.Staging == gogit.Renamed || st.Worktree == gogit.Renamed:
		return "renamed"
	case st.Staging == gogit.Copied || st.Worktree == gogit.Copied:
		return "copied"
	default:
		return "modified"
	}
}

func deriveStatus(hasOld, hasNew bool) string {
	switch {
	case !hasOld && hasNew:
		return "added"
	case hasOld && !hasNew:
		return "deleted"
	default:
		return "modified"
	}
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// countLines counts newline-terminated lines plus a trailing partial line.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	count := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		count++
	}
	return count
}

func lossyString(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
