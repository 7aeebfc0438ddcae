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

func diffByPath(result *DiffResult) map[string]FileDiff {
	m := make(map[string]FileDiff, len(result.Files))
	for _, f := range result.Files {
		m[f.Path] = f
	}
	return m
}

func TestDiffWorkdirModified(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "one\ntwo\n", "initial")

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\nTWO\nthree\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(result.Files))
	}

	diff := result.Files[0]
	if diff.Path != "a.txt" || diff.Status != "modified" {
		t.Errorf("diff = %+v", diff)
	}
	if diff.OldContent != "one\ntwo\n" {
		t.Errorf("old content = %q", diff.OldContent)
	}
	if diff.NewContent != "one\nTWO\nthree\n" {
		t.Errorf("new content = %q", diff.NewContent)
	}
	if diff.OldLines != 2 || diff.NewLines != 3 {
		t.Errorf("line counts = %d/%d, want 2/3", diff.OldLines, diff.NewLines)
	}
}

func TestDiffWorkdirUntracked(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "tracked\n", "initial")

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}

	diff, ok := diffByPath(result)["new.txt"]
	if !ok {
		t.Fatalf("new.txt missing from %+v", result.Files)
	}
	if diff.Status != "untracked" {
		t.Errorf("status = %q, want untracked", diff.Status)
	}
	if diff.OldContent != "" || diff.NewContent != "x\n" {
		t.Errorf("contents = %q / %q", diff.OldContent, diff.NewContent)
	}
}

func TestDiffWorkdirDeleted(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "going away\n", "initial")

	if err := os.Remove(filepath.Join(dir, "a.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}

	diff, ok := diffByPath(result)["a.txt"]
	if !ok {
		t.Fatalf("a.txt missing from %+v", result.Files)
	}
	if diff.Status != "deleted" {
		t.Errorf("status = %q, want deleted", diff.Status)
	}
	if diff.OldContent != "going away\n" || diff.NewContent != "" {
		t.Errorf("contents = %q / %q", diff.OldContent, diff.NewContent)
	}
}

func TestDiffWorkdirStagedNewFile(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "tracked\n", "initial")

	if err := os.WriteFile(filepath.Join(dir, "staged.txt"), []byte("s\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := wt.Add("staged.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}

	diff, ok := diffByPath(result)["staged.txt"]
	if !ok {
		t.Fatalf("staged.txt missing from %+v", result.Files)
	}
	if diff.Status != "added" {
		t.Errorf("status = %q, want added", diff.Status)
	}
}

func TestDiffWorkdirBinary(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "tracked\n", "initial")

	if err := os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{0x00, 0x01, 0x02}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}

	diff, ok := diffByPath(result)["blob.bin"]
	if !ok {
		t.Fatalf("blob.bin missing from %+v", result.Files)
	}
	if !diff.IsBinary {
		t.Error("expected binary flag")
	}
	if diff.OldContent != "" || diff.NewContent != "" {
		t.Error("binary content should be omitted")
	}
}

func TestDiffWorkdirUnbornRepo(t *testing.T) {
	dir, _, _ := initRepo(t)

	if err := os.WriteFile(filepath.Join(dir, "first.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}

	diff, ok := diffByPath(result)["first.txt"]
	if !ok {
		t.Fatalf("first.txt missing from %+v", result.Files)
	}
	if diff.OldContent != "" || diff.NewContent != "hello\n" {
		t.Errorf("contents = %q / %q", diff.OldContent, diff.NewContent)
	}
}

func TestDiffWorkdirClean(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "settled\n", "initial")

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("clean tree should produce no diffs, got %+v", result.Files)
	}
	if result.Root == "" {
		t.Error("root should be reported even for a clean tree")
	}
}

func TestDiffWorkdirSortedPaths(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "tracked\n", "initial")

	for _, name := range []string{"zeta.txt", "alpha.txt", "mid.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	svc := NewService(nil)
	result, err := svc.DiffWorkdir(dir)
	if err != nil {
		t.Fatalf("DiffWorkdir failed: %v", err)
	}

	var got []string
	for _, f := range result.Files {
		got = append(got, f.Path)
	}
	want := []string{"alpha.txt", "mid.txt", "zeta.txt"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paths = %v, want %v", got, want)
		}
	}
}

func TestDiffAgainstBranch(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "base\n", "initial")

	if err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	writeAndCommit(t, dir, wt, "a.txt", "feature\n", "change a")

	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("wip\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffAgainstBranch(dir, "master")
	if err != nil {
		t.Fatalf("DiffAgainstBranch failed: %v", err)
	}
	files := diffByPath(result)

	a, ok := files["a.txt"]
	if !ok {
		t.Fatalf("a.txt missing from %+v", result.Files)
	}
	if a.Status != "modified" || a.OldContent != "base\n" || a.NewContent != "feature\n" {
		t.Errorf("a.txt = %+v", a)
	}

	b, ok := files["b.txt"]
	if !ok {
		t.Fatalf("b.txt missing from %+v", result.Files)
	}
	if b.Status != "untracked" || b.OldContent != "" || b.NewContent != "wip\n" {
		t.Errorf("b.txt = %+v", b)
	}

	if len(result.Files) != 2 {
		t.Errorf("expected 2 files, got %+v", result.Files)
	}
}

func TestDiffAgainstBranchRevertedFile(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "c.txt", "same\n", "initial")

	if err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	writeAndCommit(t, dir, wt, "c.txt", "changed\n", "change c")

	// Revert the working copy back to the base content without committing.
	if err := os.WriteFile(filepath.Join(dir, "c.txt"), []byte("same\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffAgainstBranch(dir, "master")
	if err != nil {
		t.Fatalf("DiffAgainstBranch failed: %v", err)
	}
	if _, ok := diffByPath(result)["c.txt"]; ok {
		t.Errorf("reverted file should not appear, got %+v", result.Files)
	}
}

func TestDiffAgainstBranchDeletedSinceBase(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "keep\n", "add a")
	writeAndCommit(t, dir, wt, "d.txt", "drop\n", "add d")

	if err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := wt.Remove("d.txt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := wt.Commit("drop d", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	svc := NewService(nil)
	result, err := svc.DiffAgainstBranch(dir, "master")
	if err != nil {
		t.Fatalf("DiffAgainstBranch failed: %v", err)
	}

	diff, ok := diffByPath(result)["d.txt"]
	if !ok {
		t.Fatalf("d.txt missing from %+v", result.Files)
	}
	if diff.Status != "deleted" || diff.OldContent != "drop\n" || diff.NewContent != "" {
		t.Errorf("d.txt = %+v", diff)
	}
}

func TestDiffAgainstBranchUnknownBase(t *testing.T) {
	dir, _, wt := initRepo(t)
	writeAndCommit(t, dir, wt, "a.txt", "x\n", "initial")

	svc := NewService(nil)
	_, err := svc.DiffAgainstBranch(dir, "no-such-branch")
	if err == nil {
		t.Fatal("expected error for unknown base")
	}
	if !strings.Contains(err.Error(), `"no-such-branch" not found`) {
		t.Errorf("error = %q, want base name in message", err)
	}
}
