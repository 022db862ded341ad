// Package discover finds candidate project files under a directory.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/uirepair/internal/config"
)

// FileEntry represents a discovered project file.
type FileEntry struct {
	Path string // Relative to root
	Size int64
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"build":        {},
	"dist":         {},
	".next":        {},
	".nuxt":        {},
	"coverage":     {},
	"vendor":       {},
}

// fixtureDirs hold recorded trees that tests compare against; rewriting them
// would defeat the tests.
var fixtureDirs = map[string]struct{}{
	"testdata":      {},
	"__tests__":     {},
	"__fixtures__":  {},
	"__snapshots__": {},
	"fixtures":      {},
}

// Files discovers files under root whose extension is listed in cfg and
// whose base name is not in cfg's skip list. Results are sorted by path.
func Files(root string, cfg config.DiscoverConfig) ([]FileEntry, error) {
	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	skipFiles := make(map[string]struct{}, len(cfg.SkipFiles))
	for _, f := range cfg.SkipFiles {
		skipFiles[f] = struct{}{}
	}

	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if _, ok := exts[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}
		if _, skip := skipFiles[name]; skip {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if IsFixture(rel) {
			return nil
		}

		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		results = append(results, FileEntry{Path: rel, Size: size})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// IsFixture reports whether a relative path points into a test fixture or
// snapshot directory, or is itself a snapshot/fixture file.
func IsFixture(rel string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range parts[:len(parts)-1] {
		if _, ok := fixtureDirs[dir]; ok {
			return true
		}
	}
	base := strings.ToLower(parts[len(parts)-1])
	for _, marker := range []string{".fixture.", ".snap.", ".golden."} {
		if strings.Contains(base, marker) {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
