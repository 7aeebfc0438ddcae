// Package git provides read-only repository inspection for the review
// pane: current branch, working-tree diffs, diffs against a merge base,
// change statistics, and file-section reads.
//
// Repository access goes through go-git; porcelain output the library
// does not expose cheaply (numstat, untracked enumeration) shells out to
// the git CLI. All operations discover the enclosing repository from any
// path inside it and are stateless single shots, so the service holds no
// repository handles between calls.
package git
