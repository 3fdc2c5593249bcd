package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fcindex/fcindex/internal/gitignore"
)

// gitignoreCacheSize bounds the per-directory matcher cache so a long
// benchmark run over a deep tree doesn't grow it unbounded.
const gitignoreCacheSize = 1000

// Scanner discovers indexable files under a root directory, skipping the
// fixed ignore-list directories and anything matched by a .gitignore found
// along the way.
type Scanner struct {
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
}

// New creates a Scanner with its gitignore matcher cache initialized.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, err
	}
	return &Scanner{gitignoreCache: cache}, nil
}

// Scan walks opts.RootDir and returns a sorted, deduplicated list of
// FileMeta for every regular file found. Directories named in the
// ignore-list, hidden directories, and anything excluded by a .gitignore
// rule are skipped before they're ever descended into.
func (s *Scanner) Scan(opts Options) ([]FileMeta, error) {
	root := opts.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped rather than aborting the whole scan.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if shouldSkipDir(name) {
				return filepath.SkipDir
			}
			matcher := s.matcherFor(filepath.Dir(path))
			if matcher != nil && matcher.MatchDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}
		matcher := s.matcherFor(filepath.Dir(path))
		if matcher != nil && matcher.Match(path, false) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) && len(paths) > 0 {
		workers = len(paths)
	}

	metas := make([]FileMeta, len(paths))
	valid := make([]bool, len(paths))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			meta, ok := buildMeta(p)
			if ok {
				metas[i] = meta
				valid[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	result := make([]FileMeta, 0, len(metas))
	for i, ok := range valid {
		if ok {
			result = append(result, metas[i])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

func shouldSkipDir(name string) bool {
	if _, skip := skipDirNames[name]; skip {
		return true
	}
	return strings.HasPrefix(name, ".") && name != "."
}

// matcherFor returns the cached gitignore matcher for dir: dir's own
// .gitignore (if any) chained onto its parent's matcher, so a pattern
// in an ancestor .gitignore still excludes files several levels below
// it. A directory with no .gitignore anywhere in its ancestry caches a
// nil matcher so repeat lookups are O(1).
func (s *Scanner) matcherFor(dir string) *gitignore.Matcher {
	if m, ok := s.gitignoreCache.Get(dir); ok {
		return m
	}

	var parent *gitignore.Matcher
	if parentDir := filepath.Dir(dir); parentDir != dir {
		parent = s.matcherFor(parentDir)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil && parent == nil {
		s.gitignoreCache.Add(dir, nil)
		return nil
	}

	m := gitignore.New()
	m.AddFrom(parent)
	if err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			m.AddPatternWithBase(line, dir)
		}
	}
	s.gitignoreCache.Add(dir, m)
	return m
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
