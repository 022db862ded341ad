// uirepair repairs generated UI component trees: it fixes footer layout and
// contrast and restructures flat navigation bars, then reports every fix in
// TOON format.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phobologic/uirepair/internal/config"
	"github.com/phobologic/uirepair/internal/cssvalue"
	"github.com/phobologic/uirepair/internal/discover"
	"github.com/phobologic/uirepair/internal/model"
	"github.com/phobologic/uirepair/internal/repair"
	"github.com/phobologic/uirepair/internal/toon"
)

var version = "dev"

const defaultMaxFileSize = 10_000_000 // 10 MB

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the parsed command-line settings of a repair run.
type options struct {
	passes  repair.Pass
	check   bool
	dryRun  bool
	workers int
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("uirepair", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		only        string
		maxFileSize int
		verbose     bool
		showVersion bool
		opts        options
	)

	fs.StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	fs.StringVar(&only, "only", "", "run a single pass: footer or navbar")
	fs.BoolVar(&opts.check, "check", false, "report files needing repair without writing; fail if any")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "repair in memory and report without writing")
	fs.IntVar(&opts.workers, "j", runtime.GOMAXPROCS(0), "number of files repaired concurrently")
	fs.IntVar(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	fs.BoolVar(&verbose, "v", false, "log every applied fix")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "uirepair %s\n", version)
		return nil
	}

	switch only {
	case "":
		opts.passes = repair.PassAll
	case "footer":
		opts.passes = repair.PassFooter
	case "navbar":
		opts.passes = repair.PassNavbar
	default:
		return fmt.Errorf("unknown pass %q (want footer or navbar)", only)
	}

	logger := newLogger(stderr, verbose)
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	target, err = filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("target path: %w", err)
	}

	// A file named explicitly is always treated as a project.
	root := target
	var files []discover.FileEntry
	if info.IsDir() {
		files, err = discover.Files(root, cfg.Discover)
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
	} else {
		root = filepath.Dir(target)
		files = []discover.FileEntry{{Path: filepath.Base(target), Size: info.Size()}}
	}
	if len(files) == 0 {
		return fmt.Errorf("no project files found")
	}

	files = filterBySize(files, int64(maxFileSize), logger)
	if len(files) == 0 {
		return fmt.Errorf("no project files found (all exceeded size limit)")
	}

	results, err := repairFilesConcurrent(root, files, cfg, opts, logger)

	report := &model.Report{
		Root:  filepath.Base(root),
		Files: results,
	}
	_, _ = fmt.Fprintln(stdout, toon.Encode(report))

	if err != nil {
		return err
	}

	if opts.check {
		pending := 0
		for i := range results {
			if results[i].Changed() {
				pending++
			}
		}
		if pending > 0 {
			return fmt.Errorf("%d file(s) need repair", pending)
		}
	}
	return nil
}

// newLogger builds the production logger on w. Verbose runs log at debug
// level, which includes one entry per applied fix.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg.EncoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		cfg.Level,
	)
	return zap.New(core)
}

// loadConfig reads path, or the default config file when path is empty and
// the file exists. With neither, built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err != nil {
			return config.Default(), nil
		}
		path = config.DefaultFile
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func filterBySize(files []discover.FileEntry, maxSize int64, logger *zap.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		if f.Size > maxSize {
			logger.Warn("skipping file", zap.String("file", f.Path), zap.Int64("size", f.Size), zap.Int64("limit", maxSize))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// repairFile decodes, repairs and, unless the run is read-only, rewrites one
// project file. ok is false when the file was skipped.
func repairFile(root string, f discover.FileEntry, r *repair.Repairer, opts options) (fr model.FileResult, ok bool, err error) {
	absPath := filepath.Join(root, f.Path)
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fr, false, fmt.Errorf("reading %s: %w", f.Path, err)
	}

	project, err := model.DecodeProject(data)
	if err != nil {
		return fr, false, fmt.Errorf("decoding %s: %w", f.Path, err)
	}

	res := r.RepairProject(project, opts.passes)
	fr = model.FileResult{
		Path:          f.Path,
		Pages:         len(project.Pages),
		FooterChanged: res.FooterChanged,
		NavbarRepairs: res.NavbarRepairs,
		Fixes:         res.Fixes,
	}
	if !res.Changed() || opts.check || opts.dryRun {
		return fr, true, nil
	}

	out, err := model.EncodeProject(project)
	if err != nil {
		return fr, true, fmt.Errorf("encoding %s: %w", f.Path, err)
	}
	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(absPath); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(absPath, out, perm); err != nil {
		return fr, true, fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return fr, true, nil
}

func repairFilesConcurrent(root string, files []discover.FileEntry, cfg *config.Config, opts options, logger *zap.Logger) ([]model.FileResult, error) {
	type result struct {
		index int
		fr    model.FileResult
		ok    bool
		err   error
	}

	numWorkers := opts.workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own classifier; the tree-sitter parser
			// inside it is not safe for concurrent use.
			css := cssvalue.NewClassifier()

			for idx := range work {
				f := files[idx]
				flog := logger.With(zap.String("file", f.Path))
				r := repair.New(
					repair.WithConfig(cfg),
					repair.WithClassifier(css),
					repair.WithLogger(flog),
				)

				fr, ok, err := repairFile(root, f, r, opts)
				switch {
				case errors.Is(err, model.ErrNotProject):
					flog.Warn("skipping file: not a project")
				case err != nil && !ok:
					flog.Warn("skipping file", zap.Error(err))
				case err != nil:
					flog.Error("repair not saved", zap.Error(err))
				}
				results <- result{index: idx, fr: fr, ok: ok, err: err}
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
	indexed := make([]result, len(files))
	for r := range results {
		indexed[r.index] = r
	}

	var out []model.FileResult
	var errs []error
	for _, r := range indexed {
		if !r.ok {
			continue
		}
		out = append(out, r.fr)
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	return out, errors.Join(errs...)
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-config": true, "--config": true,
	"-only": true, "--only": true,
	"-j": true, "--j": true,
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
