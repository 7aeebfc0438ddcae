package git

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initRepo(t *testing.T) (string, *gogit.Repository, *gogit.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	return dir, repo, wt
}

func writeAndCommit(t *testing.T, dir string, wt *gogit.Worktree, name, content, message string) plumbing.Hash {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func TestCurrentBranch(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "hello\n", "initial")

	svc := NewService(nil)
	branch, err := svc.CurrentBranch(dir)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "master" {
		t.Errorf("branch = %q, want master", branch)
	}
}

func TestCurrentBranchUnbornRepo(t *testing.T) {
	dir, _, _ := initRepo(t)

	svc := NewService(nil)
	branch, err := svc.CurrentBranch(dir)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "" {
		t.Errorf("branch = %q, want empty for a repo with no commits", branch)
	}
}

func TestCurrentBranchDetachedHead(t *testing.T) {
	dir, _, wt := initRepo(t)
	hash := writeAndCommit(t, dir, wt, "a.txt", "hello\n", "initial")

	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash}); err != nil {
		t.Fatalf("detach: %v", err)
	}

	svc := NewService(nil)
	branch, err := svc.CurrentBranch(dir)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != hash.String()[:7] {
		t.Errorf("branch = %q, want abbreviated hash %q", branch, hash.String()[:7])
	}
}

func TestCurrentBranchDiscoversFromSubdirectory(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "hello\n", "initial")

	sub := filepath.Join(dir, "pkg", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	svc := NewService(nil)
	branch, err := svc.CurrentBranch(sub)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "master" {
		t.Errorf("branch = %q, want master", branch)
	}
}

func TestCurrentBranchOutsideRepo(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.CurrentBranch(t.TempDir()); err == nil {
		t.Fatal("expected error outside a repository")
	}
}

func TestReadFileSection(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "code.go")
	if err := os.WriteFile(file, []byte("one\ntwo\nthree\nfour\nfive\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)

	tests := []struct {
		name      string
		start     int
		end       int
		content   string
		startLine int
		endLine   int
	}{
		{"middle", 2, 4, "two\nthree\nfour", 2, 4},
		{"full range", 1, 5, "one\ntwo\nthree\nfour\nfive", 1, 5},
		{"end clamped", 4, 50, "four\nfive", 4, 5},
		{"start floored", 0, 2, "one\ntwo", 1, 2},
		{"end before start", 3, 1, "three", 3, 3},
		{"start beyond file", 10, 12, "", 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section, err := svc.ReadFileSection("", file, tt.start, tt.end)
			if err != nil {
				t.Fatalf("ReadFileSection failed: %v", err)
			}
			if section.Content != tt.content {
				t.Errorf("content = %q, want %q", section.Content, tt.content)
			}
			if section.StartLine != tt.startLine || section.EndLine != tt.endLine {
				t.Errorf("range = %d..%d, want %d..%d",
					section.StartLine, section.EndLine, tt.startLine, tt.endLine)
			}
		})
	}
}

func TestReadFileSectionRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte("a\nb\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	section, err := svc.ReadFileSection(dir, filepath.Join("src", "main.go"), 1, 2)
	if err != nil {
		t.Fatalf("ReadFileSection failed: %v", err)
	}
	if section.Content != "a\nb" {
		t.Errorf("content = %q", section.Content)
	}
	if section.Path != filepath.Join(dir, "src", "main.go") {
		t.Errorf("path = %q", section.Path)
	}
}

func TestReadFileSectionEmptyFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	section, err := svc.ReadFileSection("", file, 3, 9)
	if err != nil {
		t.Fatalf("ReadFileSection failed: %v", err)
	}
	if section.Content != "" || section.StartLine != 3 || section.EndLine != 3 {
		t.Errorf("section = %+v", section)
	}
}

func TestReadFileSectionNormalizesCRLF(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "dos.txt")
	if err := os.WriteFile(file, []byte("one\r\ntwo\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	section, err := svc.ReadFileSection("", file, 1, 2)
	if err != nil {
		t.Fatalf("ReadFileSection failed: %v", err)
	}
	if section.Content != "one\ntwo" {
		t.Errorf("content = %q, want carriage returns stripped", section.Content)
	}
}

func TestReadFileSectionRefusesBinary(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(file, []byte{'a', 0x00, 'b'}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	_, err := svc.ReadFileSection("", file, 1, 1)
	if err == nil {
		t.Fatal("expected binary refusal")
	}
	if !strings.Contains(err.Error(), "binary") {
		t.Errorf("error = %q, want binary mention", err)
	}
}

func TestReadFileSectionMissingFile(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.ReadFileSection("", filepath.Join(t.TempDir(), "gone.txt"), 1, 1); err == nil {
		t.Fatal("expected error for missing file")
	}
}
