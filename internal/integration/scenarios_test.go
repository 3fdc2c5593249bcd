// Package integration exercises the index/query core end to end, the way
// a real caller drives it: Init, scan results fed through AddOrUpdate,
// Commit, then Search. Each test opens its own index directory since the
// process-wide handle in internal/lifecycle only tolerates one open
// index at a time.
package integration_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcindex/fcindex/internal/index"
	"github.com/fcindex/fcindex/internal/query"
	"github.com/fcindex/fcindex/internal/scanner"
)

func openTestIndex(t *testing.T) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "idx")
	require.NoError(t, index.Init(dir))
	t.Cleanup(func() { _ = index.Close() })
}

func strPtr(s string) *string { return &s }

func mustAdd(t *testing.T, meta scanner.FileMeta, content *string) {
	t.Helper()
	_, err := index.AddOrUpdate(meta, content, false)
	require.NoError(t, err)
}

// S1: a content-scoped search for a word in one of two indexed files
// returns exactly that file, by path.
func TestContentSearch_MatchesFileByBody(t *testing.T) {
	openTestIndex(t)

	mustAdd(t, scanner.FileMeta{Path: "/repo/docs/note.md", Name: "note.md", Ext: "md", ModifiedAt: 1, Size: 20},
		strPtr("rust search prototype"))
	mustAdd(t, scanner.FileMeta{Path: "/repo/src/main.rs", Name: "main.rs", Ext: "rs", ModifiedAt: 1, Size: 13},
		strPtr("fn main() {}"))
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{Term: "rust", Scope: query.ScopeContent, Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, strings.HasSuffix(hits[0].Path, "docs/note.md"), "got path %q", hits[0].Path)
}

// S2: a name-scoped search for a basename fragment returns the file with
// that name, not the one whose content happens to mention it.
func TestNameSearch_MatchesFileByBasename(t *testing.T) {
	openTestIndex(t)

	mustAdd(t, scanner.FileMeta{Path: "/repo/docs/note.md", Name: "note.md", Ext: "md", ModifiedAt: 1, Size: 20},
		strPtr("rust search prototype"))
	mustAdd(t, scanner.FileMeta{Path: "/repo/src/main.rs", Name: "main.rs", Ext: "rs", ModifiedAt: 1, Size: 13},
		strPtr("fn main() {}"))
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{Term: "main", Scope: query.ScopeName, Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, strings.HasSuffix(hits[0].Path, "src/main.rs"), "got path %q", hits[0].Path)
}

// S3: a path glob narrows a both-scoped match across two files with
// identical content down to the one whose path matches the glob.
func TestGlobFilter_NarrowsToMatchingPath(t *testing.T) {
	openTestIndex(t)

	mustAdd(t, scanner.FileMeta{Path: "/repo/readme.md", Name: "readme.md", Ext: "md", ModifiedAt: 1, Size: 12},
		strPtr("introduction"))
	mustAdd(t, scanner.FileMeta{Path: "/repo/docs/todo.txt", Name: "todo.txt", Ext: "txt", ModifiedAt: 1, Size: 12},
		strPtr("introduction"))
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{
		Term:     "introduction",
		Scope:    query.ScopeBoth,
		PathGlob: "**/*.md",
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, strings.HasSuffix(hits[0].Path, "readme.md"), "got path %q", hits[0].Path)
}

// S4: a name-scoped prefix of a basename returns the file; an unrelated
// term returns nothing.
func TestNameSearch_PrefixBoost(t *testing.T) {
	openTestIndex(t)

	mustAdd(t, scanner.FileMeta{Path: "/repo/hello.txt", Name: "hello.txt", Ext: "txt", ModifiedAt: 1, Size: 5}, nil)
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{Term: "hel", Scope: query.ScopeName, Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, strings.HasSuffix(hits[0].Path, "hello.txt"))

	hits, err = query.Search(query.Request{Term: "zzz", Scope: query.ScopeName, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// S5: re-adding identical metadata after a commit is a no-op
// classification and leaves the document count at 1.
func TestAddOrUpdate_DedupsIdenticalMeta(t *testing.T) {
	openTestIndex(t)
	meta := scanner.FileMeta{Path: "/repo/a.txt", Name: "a.txt", ModifiedAt: 1, Size: 5}

	first, err := index.AddOrUpdate(meta, nil, false)
	require.NoError(t, err)
	assert.Equal(t, index.Added, first)
	require.NoError(t, index.Commit())

	second, err := index.AddOrUpdate(meta, nil, false)
	require.NoError(t, err)
	assert.Equal(t, index.Skipped, second)

	stats, err := index.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.DocCount)
}

// Testable invariant: Search never returns more hits than the requested
// limit.
func TestSearch_RespectsLimit(t *testing.T) {
	openTestIndex(t)

	for i := 0; i < 5; i++ {
		mustAdd(t, scanner.FileMeta{
			Path:       filepath.Join("/repo", strPtrVal(i)+".txt"),
			Name:       strPtrVal(i) + ".txt",
			ModifiedAt: int64(i),
			Size:       1,
		}, strPtr("needle"))
	}
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{Term: "needle", Scope: query.ScopeContent, Limit: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hits), 2)
}

func strPtrVal(i int) string {
	return "file" + string(rune('a'+i))
}

// Testable invariant: ranked hits are sorted by score descending, ties
// broken by mtime descending, with no NaN/Inf scores leaking through.
func TestSearch_RankingIsStableByScoreThenMtime(t *testing.T) {
	openTestIndex(t)

	mustAdd(t, scanner.FileMeta{Path: "/repo/old.txt", Name: "old.txt", ModifiedAt: 1, Size: 1}, strPtr("needle"))
	mustAdd(t, scanner.FileMeta{Path: "/repo/new.txt", Name: "new.txt", ModifiedAt: 2, Size: 1}, strPtr("needle"))
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{Term: "needle", Scope: query.ScopeContent, Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	for i := 0; i < len(hits)-1; i++ {
		a, b := hits[i], hits[i+1]
		assert.False(t, a.Score < b.Score, "hits must be sorted by score descending")
		if a.Score == b.Score {
			assert.GreaterOrEqual(t, a.ModifiedAt, b.ModifiedAt, "tied scores must break by mtime descending")
		}
	}
	for _, h := range hits {
		assert.False(t, isNaNOrInf(h.Score), "score must be finite, got %v", h.Score)
	}
}

// Testable invariant: an empty (after trimming) search term returns no
// results and no error, rather than matching everything.
func TestSearch_EmptyTermReturnsNoResults(t *testing.T) {
	openTestIndex(t)
	mustAdd(t, scanner.FileMeta{Path: "/repo/a.txt", Name: "a.txt", ModifiedAt: 1, Size: 1}, strPtr("content"))
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{Term: "   ", Scope: query.ScopeBoth, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// Testable invariant: a glob that matches nothing drops every hit rather
// than erroring or ignoring the filter.
func TestSearch_GlobMatchingNothingYieldsNoHits(t *testing.T) {
	openTestIndex(t)
	mustAdd(t, scanner.FileMeta{Path: "/repo/readme.md", Name: "readme.md", ModifiedAt: 1, Size: 1}, strPtr("introduction"))
	require.NoError(t, index.Commit())

	hits, err := query.Search(query.Request{
		Term:     "introduction",
		Scope:    query.ScopeBoth,
		PathGlob: "**/*.rs",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func isNaNOrInf(f float64) bool {
	return f != f || f > 1e308 || f < -1e308
}
