// Package discover finds the Swift sources of a project.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/mikeger/Pecker/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path string // Relative to the project root, slash separated
}

// Options narrows discovery.
type Options struct {
	// Included lists directories, relative to the root, to search. Empty
	// means the whole root.
	Included []string
	// Excluded lists doublestar globs of files or directories to leave out.
	Excluded []string
}

// skipDirs are build products and dependency checkouts of Xcode, SwiftPM,
// CocoaPods and Carthage projects.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".build":       {},
	".swiftpm":     {},
	"Pods":         {},
	"Carthage":     {},
	"DerivedData":  {},
	"node_modules": {},
	"fastlane":     {},
}

// SkipDir reports whether a directory called name is never searched.
func SkipDir(name string) bool {
	_, skip := skipDirs[name]
	return skip || strings.HasPrefix(name, ".")
}

// Files discovers Swift files under root, sorted by path. Inside a git
// checkout only tracked and untracked-but-not-ignored files count;
// otherwise the root .gitignore is honored.
func Files(root string, opts Options) ([]FileEntry, error) {
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	starts := []string{root}
	if len(opts.Included) > 0 {
		starts = starts[:0]
		for _, inc := range opts.Included {
			starts = append(starts, filepath.Join(root, filepath.FromSlash(inc)))
		}
	}

	seen := make(map[string]struct{})
	var results []FileEntry

	for _, start := range starts {
		err := filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // skip errors
			}

			name := d.Name()
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path == start {
					return nil
				}
				if SkipDir(name) || excluded(opts.Excluded, rel) {
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

			if lang.ForExtension(filepath.Ext(name)) == "" {
				return nil
			}

			if gitFiles != nil {
				if _, ok := gitFiles[rel]; !ok {
					return nil
				}
			} else if gi != nil && gi.MatchesPath(rel) {
				return nil
			}

			if excluded(opts.Excluded, rel) {
				return nil
			}
			if _, dup := seen[rel]; dup {
				return nil
			}
			seen[rel] = struct{}{}
			results = append(results, FileEntry{Path: rel})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// excluded reports whether rel matches a glob, or lies under a directory
// named by one.
func excluded(globs []string, rel string) bool {
	for _, g := range globs {
		g = strings.TrimSuffix(filepath.ToSlash(g), "/")
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if strings.HasPrefix(rel, g+"/") {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	if _, err := os.Stat(gitDir); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard", "--", "*.swift")
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
