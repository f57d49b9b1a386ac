// Package gitdir implements the engine's collaborators natively against
// on-disk repository metadata: ref and HEAD resolution, loose object reads,
// index parsing, marker access, a porcelain-style status source, conflict
// scanning and commit range walking.
package gitdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is an opened repository: the metadata directory plus the working
// directory it describes. All reads are point-in-time; Dir holds no cache
// and performs no writes.
type Dir struct {
	GitDir  string
	WorkDir string
}

// Open locates and validates the repository containing path. The path may be
// the working directory, the metadata directory itself, or any directory
// below the working directory.
func Open(path string) (*Dir, error) {
	gitDir, workDir, err := discover(path)
	if err != nil {
		return nil, err
	}
	if err := validate(gitDir); err != nil {
		return nil, err
	}
	return &Dir{GitDir: gitDir, WorkDir: workDir}, nil
}

// discover walks up from startPath until it finds a .git directory or file.
func discover(startPath string) (gitDir, workDir string, err error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", "", fmt.Errorf("resolving path: %w", err)
	}

	if filepath.Base(absPath) == ".git" {
		if info, err := os.Stat(absPath); err == nil && info.IsDir() {
			return absPath, filepath.Dir(absPath), nil
		}
	}

	current := absPath
	for {
		candidate := filepath.Join(current, ".git")
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return candidate, current, nil
			}
			return resolveGitFile(candidate, current)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", "", fmt.Errorf("not a repository (or any parent): %s", startPath)
		}
		current = parent
	}
}

// resolveGitFile handles .git as a file (linked worktrees, submodules),
// whose content is "gitdir: /path/to/actual/gitdir".
func resolveGitFile(gitFilePath, workDir string) (string, string, error) {
	content, err := os.ReadFile(gitFilePath)
	if err != nil {
		return "", "", fmt.Errorf("reading .git file: %w", err)
	}

	line := strings.TrimSpace(string(content))
	if !strings.HasPrefix(line, "gitdir: ") {
		return "", "", fmt.Errorf("invalid .git file format: %s", gitFilePath)
	}

	gitDir := strings.TrimPrefix(line, "gitdir: ")
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(filepath.Dir(gitFilePath), gitDir)
	}
	gitDir = filepath.Clean(gitDir)

	if _, err := os.Stat(gitDir); err != nil {
		return "", "", fmt.Errorf("gitdir points to a non-existent directory: %s", gitDir)
	}
	return gitDir, workDir, nil
}

// validate checks the minimal layout of a repository metadata directory.
func validate(gitDir string) error {
	for _, required := range []string{"objects", "refs", "HEAD"} {
		if _, err := os.Stat(filepath.Join(gitDir, required)); err != nil {
			return fmt.Errorf("invalid repository, missing %s: %w", required, err)
		}
	}
	return nil
}
