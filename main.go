// Pecker reports Swift declarations that nothing in the project refers to.
package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/mikeger/Pecker/internal/collect"
	"github.com/mikeger/Pecker/internal/config"
	"github.com/mikeger/Pecker/internal/discover"
	"github.com/mikeger/Pecker/internal/lang"
	"github.com/mikeger/Pecker/internal/parse"
	"github.com/mikeger/Pecker/internal/reconcile"
	"github.com/mikeger/Pecker/internal/report"
	"github.com/mikeger/Pecker/internal/usage"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the command-line settings shared by every analysis run of
// one invocation.
type options struct {
	configPath  string
	reporter    string
	outputPath  string
	cachePath   string
	maxFileSize int
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("pecker", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts        options
		watch       bool
		verbose     bool
		showVersion bool
	)

	fs.StringVar(&opts.configPath, "config", "", "configuration file (default: .pecker.yml in root)")
	fs.StringVar(&opts.reporter, "reporter", "", "report format: "+strings.Join(report.Names(), ", "))
	fs.StringVar(&opts.outputPath, "o", "", "write the report to this file instead of stdout")
	fs.StringVar(&opts.cachePath, "cache", "", "cache file path")
	fs.IntVar(&opts.maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	fs.BoolVar(&watch, "watch", false, "re-run whenever a Swift or configuration file changes")
	fs.BoolVar(&verbose, "v", false, "log per-file details")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "pecker %s\n", version)
		return nil
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	logger := newLogger(stderr, verbose)

	if watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return watchAndAnalyze(ctx, root, opts, logger, stdout)
	}
	return analyze(root, opts, logger, stdout)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// analyze runs one full pass over root and writes the report. The report is
// rendered into memory first, so a failed run writes nothing.
func analyze(root string, opts options, logger *slog.Logger, stdout io.Writer) error {
	cfg, err := loadConfig(root, opts.configPath)
	if err != nil {
		return err
	}

	reporterName := cfg.Reporter
	if opts.reporter != "" {
		reporterName = opts.reporter
	}
	var buf bytes.Buffer
	rep, err := report.New(reporterName, &buf)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		"path", cfg.Path,
		"rules", strings.Join(cfg.Rules.Names(), ","),
		"blacklisted", len(cfg.BlacklistSymbols()),
		"reporter", reporterName)

	output := opts.outputPath
	if output == "" && cfg.OutputFile != "" {
		output = cfg.OutputFile
		if !filepath.IsAbs(output) {
			output = filepath.Join(root, output)
		}
	}

	files, err := discover.Files(root, discover.Options{Included: cfg.Included, Excluded: cfg.Excluded})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("no Swift files found", "root", root)
	}

	// Check cache freshness
	key := cacheKey(reporterName, cfg.Path, opts.maxFileSize, files)
	if opts.cachePath != "" && cacheIsFresh(opts.cachePath, root, cfg.Path, files) {
		if data, ok := readCache(opts.cachePath, key); ok {
			logger.Debug("using cached report", "cache", opts.cachePath)
			return emit(data, output, stdout)
		}
	}

	files = filterBySize(root, files, opts.maxFileSize, logger)

	results, uses := parseFilesConcurrent(root, files, cfg, logger)

	idx, ext := collect.Merge(results)
	unused := reconcile.Unused(idx, uses, ext)

	stats := reconcile.Summarize(idx, ext, unused)
	logger.Info("analysis finished",
		"files", len(results),
		"declarations", stats.Declarations,
		"extensions", stats.Extensions,
		"unused", stats.Unused)
	for _, kc := range stats.ByKind {
		logger.Debug("unused by kind", "kind", kc.Kind, "count", kc.Count)
	}

	rep.Report(cfg, unused)
	data := buf.Bytes()

	if opts.cachePath != "" {
		writeCache(opts.cachePath, key, data)
	}

	return emit(data, output, stdout)
}

func loadConfig(root, path string) (*config.Configuration, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadRoot(root)
}

// emit writes a rendered report to stdout, or replaces output with it.
func emit(data []byte, output string, stdout io.Writer) error {
	if output == "" {
		_, _ = stdout.Write(data)
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".pecker-*")
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

const cacheMagic = "pecker-cache"

// cacheKey identifies what a cached report was rendered from. Mtimes cannot
// reveal a deleted or renamed file, so the discovered path list is part of
// the key.
func cacheKey(reporter, configPath string, maxFileSize int, files []discover.FileEntry) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\n%s\n%d\n", reporter, configPath, maxFileSize)
	for _, f := range files {
		_, _ = fmt.Fprintf(h, "%s\n", f.Path)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// readCache returns the cached report when its header carries key.
func readCache(path, key string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	header, body, ok := bytes.Cut(data, []byte("\n"))
	if !ok || string(header) != cacheMagic+" "+key {
		return nil, false
	}
	return body, true
}

func writeCache(path, key string, report []byte) {
	data := append([]byte(cacheMagic+" "+key+"\n"), report...)
	_ = os.WriteFile(path, data, 0o644)
}

// cacheIsFresh reports whether the cache is newer than every source file and
// the configuration file.
func cacheIsFresh(cachePath, root, configPath string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	paths := make([]string, 0, len(files)+1)
	for _, f := range files {
		paths = append(paths, filepath.Join(root, f.Path))
	}
	if configPath != "" {
		paths = append(paths, configPath)
	}

	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, logger *slog.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			logger.Warn("skipping large file", "path", f.Path, "size", fi.Size(), "limit", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// parseFilesConcurrent parses and collects every file. Results come back in
// the order of files whatever order the workers finish in; files that cannot
// be read or parsed are logged and left out.
func parseFilesConcurrent(root string, files []discover.FileEntry, cfg *config.Configuration, logger *slog.Logger) ([]collect.Result, *usage.Set) {
	type result struct {
		index   int
		collect collect.Result
		uses    *usage.Set
	}

	numWorkers := min(runtime.GOMAXPROCS(0), len(files))

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			parser := lang.Swift.NewParser()

			for idx := range work {
				f := files[idx]

				source, err := os.ReadFile(filepath.Join(root, f.Path))
				if err != nil {
					logger.Warn("skipping unreadable file", "path", f.Path, "err", err)
					continue
				}

				parsed, err := parse.File(parser, source, f.Path)
				if err != nil {
					logger.Warn("skipping unparseable file", "path", f.Path, "err", err)
					continue
				}
				if parsed.HasErrors {
					logger.Debug("recovered from syntax errors", "path", f.Path)
				}

				collected := collect.File(cfg, parsed.Tree)
				logger.Debug("collected file",
					"path", f.Path,
					"lines", parsed.Tree.Lines.Lines(),
					"references", parsed.Uses.Len(),
					"declarations", len(collected.Declarations),
					"extensions", len(collected.Extensions),
					"skipped", collected.Skipped,
					"dropped", collected.Dropped)

				results <- result{index: idx, collect: collected, uses: parsed.Uses}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]collect.Result, len(files))
	valid := make([]bool, len(files))
	uses := usage.NewSet()
	for r := range results {
		indexed[r.index] = r.collect
		valid[r.index] = true
		uses.Merge(r.uses)
	}

	var collected []collect.Result
	for i, v := range valid {
		if v {
			collected = append(collected, indexed[i])
		}
	}

	return collected, uses
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-config": true, "--config": true,
	"-reporter": true, "--reporter": true,
	"-o": true, "--o": true,
	"-cache": true, "--cache": true,
	"-max-file-size": true, "--max-file-size": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
