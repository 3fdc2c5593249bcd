// Package cmd provides the fcbench CLI command.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fcindex/fcindex/internal/extract"
	"github.com/fcindex/fcindex/internal/index"
	"github.com/fcindex/fcindex/internal/lifecycle"
	"github.com/fcindex/fcindex/internal/logging"
	"github.com/fcindex/fcindex/internal/profiling"
	"github.com/fcindex/fcindex/internal/query"
	"github.com/fcindex/fcindex/internal/scanner"
	"github.com/fcindex/fcindex/internal/ui"
	"github.com/fcindex/fcindex/pkg/version"
)

const benchRuns = 5

// options holds the flags smoke.rs exposes, renamed to Go conventions.
type options struct {
	indexDir    string
	roots       []string
	queries     []string
	glob        string
	commitEvery int
	commitMs    int64
	limit       int
	reindex     bool
	threads     int
	writerMemMB int
	maxBytes    int64
	skipExt     []string
	scope       string
	plain       bool
	noColor     bool
	format      string
	cpuProfile  string
	memProfile  string
	debug       bool
}

func defaultOptions() options {
	return options{
		indexDir:    filepath.Join(os.TempDir(), "fcindex-bench"),
		commitEvery: 1000,
		commitMs:    2000,
		limit:       50,
		writerMemMB: 384,
		maxBytes:    1572864,
		skipExt:     []string{"pkg", "dmg", "app"},
		scope:       "both",
		format:      "text",
	}
}

// Execute builds and runs the fcbench root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:     "fcbench",
		Short:   "Benchmark the file search engine's index and query paths",
		Version: version.String(),
		Long: `fcbench scans one or more root directories, indexes the files it
finds (skipping empty files, files over --max-bytes and files whose
extension is in --skip-ext), and — if given one or more --q queries — benchmarks search latency
against the freshly built index.

It drives the same Init/AddOrUpdate/Commit/Search sequence a host process
would through the C ABI, without going through cgo at all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.indexDir, "index-dir", opts.indexDir, "index directory")
	flags.StringArrayVar(&opts.roots, "root", nil, "root folder to scan (repeatable)")
	flags.StringArrayVar(&opts.queries, "q", nil, "query to benchmark (repeatable)")
	flags.StringVar(&opts.glob, "glob", "", "optional glob filter")
	flags.IntVar(&opts.commitEvery, "commit-every", opts.commitEvery, "commit every N documents")
	flags.Int64Var(&opts.commitMs, "commit-ms", opts.commitMs, "commit every T milliseconds")
	flags.IntVar(&opts.limit, "limit", opts.limit, "max hits per query")
	flags.BoolVar(&opts.reindex, "reindex", false, "force reindex of every file, skipping the dedup check")
	flags.IntVar(&opts.threads, "threads", 0, "writer thread count (default num CPU)")
	flags.IntVar(&opts.writerMemMB, "writer-mem-mb", opts.writerMemMB, "writer heap budget in MB")
	flags.Int64Var(&opts.maxBytes, "max-bytes", opts.maxBytes, "skip files larger than this many bytes")
	flags.StringSliceVar(&opts.skipExt, "skip-ext", opts.skipExt, "comma-separated extensions to skip")
	flags.StringVar(&opts.scope, "scope", opts.scope, "default scope for bare queries: name, content, or both")
	flags.BoolVar(&opts.plain, "plain", false, "force plain text progress output")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&opts.format, "format", opts.format, "query result output: text or json")
	flags.StringVar(&opts.cpuProfile, "cpu-profile", "", "write a CPU profile to this path")
	flags.StringVar(&opts.memProfile, "mem-profile", "", "write a heap profile to this path on exit")
	flags.BoolVar(&opts.debug, "debug", false, "enable rotating file logging under ~/.fcindex/logs/ (stderr-only otherwise)")

	cmd.AddCommand(newConfigCmd())

	return cmd
}

// setupLogging wires the opt-in file logger: --debug turns on rotating
// file logging at Debug level; otherwise logging stays stderr-only at
// Warn, matching internal/logging's documented default.
func setupLogging(debug bool) func() {
	if !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
		return func() {}
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not set up debug logging: %v\n", err)
		return func() {}
	}
	slog.SetDefault(logger)
	return cleanup
}

type stats struct {
	filesSeen    int
	added        int
	updated      int
	skippedDedup int
	skippedLarge int
	skippedExt   int
	skippedZero  int
	bytesRead    int64
	commits      int
}

func run(opts options) error {
	cleanupLogging := setupLogging(opts.debug)
	defer cleanupLogging()

	runID := uuid.New().String()[:8]

	if len(opts.roots) == 0 {
		return fmt.Errorf("at least one --root must be provided")
	}
	if opts.commitEvery <= 0 {
		return fmt.Errorf("--commit-every must be greater than 0")
	}
	if opts.commitMs <= 0 {
		return fmt.Errorf("--commit-ms must be greater than 0")
	}
	scope, err := parseScope(opts.scope)
	if err != nil {
		return err
	}

	profiler := profiling.NewProfiler()
	if opts.cpuProfile != "" {
		stopCPU, profErr := profiler.StartCPU(opts.cpuProfile)
		if profErr != nil {
			return profErr
		}
		defer stopCPU()
	}
	if opts.memProfile != "" {
		defer func() { _ = profiler.WriteHeap(opts.memProfile) }()
	}

	if opts.reindex {
		if _, statErr := os.Stat(opts.indexDir); statErr == nil {
			fmt.Printf("[INFO] removing existing index dir %s\n", opts.indexDir)
			if rmErr := os.RemoveAll(opts.indexDir); rmErr != nil {
				return rmErr
			}
		}
	}

	threads := opts.threads
	if threads <= 0 {
		threads = max(1, runtime.NumCPU())
	}
	skipExts := normalizeExts(opts.skipExt)

	index.Configure(lifecycle.Settings{
		WriterThreads:   threads,
		WriterHeapBytes: uint64(opts.writerMemMB) * 1024 * 1024,
		QueryLimit:      opts.limit,
	})

	if err := index.Init(opts.indexDir); err != nil {
		return err
	}
	defer func() { _ = index.Close() }()

	cfg := ui.NewConfig(os.Stdout, ui.WithForcePlain(opts.plain), ui.WithNoColor(opts.noColor))
	renderer := ui.NewRenderer(cfg)

	fmt.Printf("[CONFIG] run=%s threads=%d writer_mem_mb=%d commit_every=%d commit_ms=%d max_bytes=%d skip_ext=%v limit=%d scope=%s\n",
		runID, threads, opts.writerMemMB, opts.commitEvery, opts.commitMs, opts.maxBytes, skipExts, opts.limit, opts.scope)

	st := stats{}
	var timings ui.StageTimings

	scan, err := scanner.New()
	if err != nil {
		return err
	}

	start := time.Now()
	var allMeta []scanner.FileMeta
	scanStart := time.Now()
	for _, root := range opts.roots {
		metas, scanErr := scan.Scan(scanner.Options{RootDir: root})
		if scanErr != nil {
			return scanErr
		}
		fmt.Printf("[INFO] scan completed for %s: %d files\n", root, len(metas))
		allMeta = append(allMeta, metas...)
	}
	timings.Scan = time.Since(scanStart)

	_ = renderer.Start(context.Background())
	var extractTotal, indexTotal time.Duration
	docsSinceCommit := 0
	lastCommit := time.Now()

	for i, meta := range allMeta {
		st.filesSeen++
		renderer.UpdateProgress(ui.ProgressEvent{
			Stage:       ui.StageExtracting,
			Current:     i + 1,
			Total:       len(allMeta),
			CurrentFile: meta.Name,
		})

		if meta.Size == 0 {
			st.skippedZero++
			continue
		}
		if int64(meta.Size) > opts.maxBytes {
			st.skippedLarge++
			continue
		}
		if skipsExt(meta.Ext, skipExts) {
			st.skippedExt++
			continue
		}

		extractStart := time.Now()
		res, extractErr := extract.Read(meta.Path, opts.maxBytes)
		extractTotal += time.Since(extractStart)
		var content *string
		if extractErr != nil {
			renderer.AddError(ui.ErrorEvent{File: meta.Path, Err: extractErr, IsWarn: true})
		} else if !res.WasBinary && res.Content != "" {
			content = &res.Content
			st.bytesRead += int64(res.BytesRead)
		}

		indexStart := time.Now()
		classification, idxErr := index.AddOrUpdate(meta, content, opts.reindex)
		indexTotal += time.Since(indexStart)
		if idxErr != nil {
			renderer.AddError(ui.ErrorEvent{File: meta.Path, Err: idxErr})
			continue
		}
		switch classification {
		case index.Added:
			st.added++
		case index.Updated:
			st.updated++
		case index.Skipped:
			st.skippedDedup++
		}

		docsSinceCommit++
		if docsSinceCommit >= opts.commitEvery || time.Since(lastCommit) >= time.Duration(opts.commitMs)*time.Millisecond {
			commitStart := time.Now()
			if commitErr := index.Commit(); commitErr != nil {
				return commitErr
			}
			indexTotal += time.Since(commitStart)
			st.commits++
			docsSinceCommit = 0
			lastCommit = time.Now()
		}
	}

	if docsSinceCommit > 0 {
		commitStart := time.Now()
		if commitErr := index.Commit(); commitErr != nil {
			return commitErr
		}
		indexTotal += time.Since(commitStart)
		st.commits++
	}
	timings.Extract = extractTotal
	timings.Index = indexTotal

	totalElapsed := time.Since(start)
	renderer.Complete(ui.CompletionStats{
		Files:    st.filesSeen,
		Duration: totalElapsed,
		Stages:   timings,
		Counts: ui.IndexCounts{
			Added:        st.added,
			Updated:      st.updated,
			Skipped:      st.skippedDedup,
			SkippedLarge: st.skippedLarge,
			SkippedExt:   st.skippedExt,
			BytesRead:    st.bytesRead,
			Commits:      st.commits,
		},
	})
	_ = renderer.Stop()

	if len(opts.queries) == 0 {
		return nil
	}

	fmt.Printf("[INFO] running query benchmarks (limit %d)\n", opts.limit)
	queryStart := time.Now()
	for _, q := range opts.queries {
		qScope, term := parseQueryPrefix(q, scope)
		req := query.Request{Term: term, Scope: qScope, PathGlob: opts.glob, Limit: opts.limit}

		durations := make([]time.Duration, 0, benchRuns)
		var lastHits []query.Hit
		for i := 0; i < benchRuns; i++ {
			runStart := time.Now()
			hits, searchErr := query.Search(req)
			if searchErr != nil {
				return searchErr
			}
			durations = append(durations, time.Since(runStart))
			if len(lastHits) == 0 {
				lastHits = hits
			}
		}

		p50 := percentile(durations, 0.50)
		p95 := percentile(durations, 0.95)

		shown := lastHits
		if len(shown) > 5 {
			shown = shown[:5]
		}

		if opts.format == "json" {
			if err := printQueryResultJSON(q, lastHits, shown, p50, p95); err != nil {
				return err
			}
			continue
		}

		fmt.Printf("query=%q hits=%d p50=%s p95=%s\n", q, len(lastHits), p50, p95)
		for _, hit := range shown {
			fmt.Printf("  - %s - %s\n", hit.Name, hit.Path)
		}
	}
	timings.Query = time.Since(queryStart)

	return nil
}

type queryResult struct {
	Query   string      `json:"query"`
	Hits    int         `json:"hits"`
	P50     string      `json:"p50"`
	P95     string      `json:"p95"`
	Results []query.Hit `json:"results"`
}

func printQueryResultJSON(q string, all, shown []query.Hit, p50, p95 time.Duration) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(queryResult{
		Query:   q,
		Hits:    len(all),
		P50:     p50.String(),
		P95:     p95.String(),
		Results: shown,
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(e, ".")))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func skipsExt(ext string, skipExts []string) bool {
	if len(skipExts) == 0 {
		return false
	}
	ext = strings.ToLower(ext)
	for _, s := range skipExts {
		if s == ext {
			return true
		}
	}
	return false
}

func parseScope(s string) (query.Scope, error) {
	switch strings.ToLower(s) {
	case "name":
		return query.ScopeName, nil
	case "content":
		return query.ScopeContent, nil
	case "both":
		return query.ScopeBoth, nil
	default:
		return 0, fmt.Errorf("invalid scope: %s", s)
	}
}

// parseQueryPrefix honors a "name:"/"content:"/"both:" prefix on a query
// string, falling back to defaultScope when none is present.
func parseQueryPrefix(raw string, defaultScope query.Scope) (query.Scope, string) {
	switch {
	case strings.HasPrefix(raw, "name:"):
		return query.ScopeName, strings.TrimSpace(strings.TrimPrefix(raw, "name:"))
	case strings.HasPrefix(raw, "content:"):
		return query.ScopeContent, strings.TrimSpace(strings.TrimPrefix(raw, "content:"))
	case strings.HasPrefix(raw, "both:"):
		return query.ScopeBoth, strings.TrimSpace(strings.TrimPrefix(raw, "both:"))
	default:
		return defaultScope, strings.TrimSpace(raw)
	}
}

// percentile computes the p-th percentile (0..1) of durations using linear
// interpolation between the two nearest ranks, matching the reference
// harness this is ported from.
func percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	interpolated := float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight
	return time.Duration(interpolated)
}
