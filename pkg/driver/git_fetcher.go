package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// HomeEnv names the environment variable overriding the cache root.
const HomeEnv = "BREWIN_HOME"

// DefaultCacheDir returns $BREWIN_HOME, falling back to ~/.brewin.
func DefaultCacheDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(userHome, ".brewin"), nil
}

// FetchedProgram describes a program checked out from git.
type FetchedProgram struct {
	// Path is the program file inside the checkout.
	Path    string
	Version string
	Commit  string
}

// GitFetcher clones program repositories into a local cache.
type GitFetcher struct {
	CacheDir string
}

// NewGitFetcher returns nil when cacheDir is empty.
func NewGitFetcher(cacheDir string) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{CacheDir: cacheDir}
}

// Fetch checks out the pinned revision of spec.Git and resolves spec.Path inside it.
func (g *GitFetcher) Fetch(ctx context.Context, spec *SourceSpec) (*FetchedProgram, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	if spec == nil {
		return nil, errors.New("git fetcher: no source given")
	}
	if issues := spec.validate(); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	baseDir := filepath.Join(g.CacheDir, "src", sanitizePathSegment(spec.Git))
	version, commit, err := ensureGitCheckout(ctx, baseDir, spec)
	if err != nil {
		return nil, err
	}
	program := filepath.Join(baseDir, sanitizePathSegment(version), filepath.FromSlash(spec.Path))
	if _, err := os.Stat(program); err != nil {
		return nil, fmt.Errorf("git fetcher: %s not found at %s: %w", spec.Path, version, err)
	}
	return &FetchedProgram{Path: program, Version: version, Commit: commit}, nil
}

func ensureGitCheckout(ctx context.Context, baseDir string, spec *SourceSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor := gitRevisionFromSpec(spec)
	if spec.Rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(spec.Rev))
		if _, err := os.Stat(existing); err == nil {
			return spec.Rev, spec.Rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, gitCloneOptions(spec))
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

// gitCloneOptions clones only the pinned branch so it exists as a local head.
func gitCloneOptions(spec *SourceSpec) *git.CloneOptions {
	opts := &git.CloneOptions{URL: spec.Git}
	if spec.Rev == "" && spec.Tag == "" && spec.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(spec.Branch)
		opts.SingleBranch = true
	}
	return opts
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// gitRevisionFromSpec falls back to HEAD when nothing is pinned.
func gitRevisionFromSpec(spec *SourceSpec) (plumbing.Revision, string) {
	switch {
	case spec.Rev != "":
		return plumbing.Revision(spec.Rev), spec.Rev
	case spec.Tag != "":
		return plumbing.Revision("refs/tags/" + spec.Tag), spec.Tag
	case spec.Branch != "":
		return plumbing.Revision(plumbing.NewBranchReferenceName(spec.Branch)), spec.Branch
	}
	return plumbing.Revision("HEAD"), ""
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
