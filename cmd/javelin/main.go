// Javelin CLI - renders JVM method capsules as annotated listings.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"github.com/chazu/javelin/batch"
	"github.com/chazu/javelin/capsule"
	"github.com/chazu/javelin/config"
	"github.com/chazu/javelin/disasm"
	"github.com/chazu/javelin/store"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("javelin.cmd")

func main() {
	configPath := flag.String("c", "", "Config file (default javelin.toml in the current directory, if present)")
	forceColor := flag.Bool("color", false, "Force colored output")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	lines := flag.Bool("lines", true, "Include linenumber rows in listings")
	cachePath := flag.String("cache", "", "Sqlite analysis cache path (overrides config)")
	workers := flag.Int("workers", 0, "Batch worker count (0 = 2x NumCPU)")
	summary := flag.Bool("summary", false, "Batch mode: print one summary table instead of full listings")
	verbose := flag.Bool("v", false, "Verbose logging")
	debug := flag.Bool("vv", false, "Debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: javelin [options] <capsule.jvc | directory> ...\n\n")
		fmt.Fprintf(os.Stderr, "Disassembles method capsules, reconstructing local variables from\n")
		fmt.Fprintf(os.Stderr, "bytecode slot accesses and debug metadata.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  javelin Widget.tick.jvc          # Print one annotated listing\n")
		fmt.Fprintf(os.Stderr, "  javelin ./out                    # Disassemble every capsule under ./out\n")
		fmt.Fprintf(os.Stderr, "  javelin -summary ./out           # One table: method, vars, cache state\n")
		fmt.Fprintf(os.Stderr, "  javelin -cache javelin.db ./out  # Reuse analyses across runs\n")
		fmt.Fprintf(os.Stderr, "  javelin -no-color -lines=false Widget.tick.jvc\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	if *debug {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override file values.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["lines"] {
		cfg.Output.LineNumbers = *lines
	}
	if set["workers"] {
		cfg.Batch.Workers = *workers
	}
	if set["cache"] {
		cfg.Cache.Path = *cachePath
	}
	if *forceColor {
		cfg.Output.Color = "always"
	}
	if *noColor {
		cfg.Output.Color = "never"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	colored := false
	switch cfg.Output.Color {
	case "always":
		color.NoColor = false
		colored = true
	case "never":
		colored = false
	default:
		colored = !color.NoColor
	}
	opts := disasm.Options{Color: colored, LineNumbers: cfg.Output.LineNumbers}

	// A single capsule argument prints one listing; anything else runs
	// batch mode.
	args := flag.Args()
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			if err := printListing(args[0], opts); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	os.Exit(runBatch(args, cfg, opts, *summary))
}

// loadConfig loads an explicit config file, or javelin.toml from the
// current directory when present.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(".")
}

// printListing renders one capsule to stdout.
func printListing(path string, opts disasm.Options) error {
	m, _, err := capsule.Load(path)
	if err != nil {
		return err
	}
	return disasm.NewPrinter(os.Stdout, opts).Print(m)
}

// runBatch analyzes every capsule under the argument paths and prints
// either full listings or one summary table. Returns the exit code.
func runBatch(paths []string, cfg *config.Config, opts disasm.Options, summary bool) int {
	bopts := batch.Options{Workers: cfg.Batch.Workers}

	if cfg.Cache.Path != "" {
		st, err := store.Open(cfg.Cache.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer st.Close()
		bopts.Store = st

		if n, err := st.Count(); err == nil {
			log.Debugf("analysis cache %s holds %d entries", cfg.Cache.Path, n)
		}
	}

	var done atomic.Int32
	if summary {
		bopts.OnProgress = func() {
			fmt.Fprintf(os.Stderr, "\rprocessed %d capsules", done.Add(1))
		}
	}

	results, errs := batch.Run(paths, bopts)
	if done.Load() > 0 {
		fmt.Fprintln(os.Stderr)
	}

	failed := false
	if summary {
		renderSummary(results, opts.Color)
	} else {
		for i, r := range results {
			if i > 0 {
				fmt.Println()
			}
			if err := printListing(r.Path, opts); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				failed = true
			}
		}
	}

	if errs != nil {
		for _, e := range errs.Errors {
			fmt.Fprintf(os.Stderr, "Error: %v\n", e)
		}
		return 1
	}
	if failed {
		return 1
	}
	return 0
}

// renderSummary prints one table row per analyzed method.
func renderSummary(results []batch.Result, colored bool) {
	disasm.RenderHeading(os.Stdout, colored, fmt.Sprintf("%d methods", len(results)))

	headers := []string{"Method", "Descriptor", "Vars", "Code", "Cache"}
	rows := make([][]string, 0, len(results))
	totalVars, hits := 0, 0
	for _, r := range results {
		cache := ""
		if r.CacheHit {
			cache = "hit"
			hits++
		}
		totalVars += len(r.Variables)
		rows = append(rows, []string{
			r.Method,
			r.Descriptor,
			strconv.Itoa(len(r.Variables)),
			strconv.Itoa(r.CodeLen),
			cache,
		})
	}
	footer := []string{"Total", "", strconv.Itoa(totalVars), "", fmt.Sprintf("%d hits", hits)}
	disasm.RenderTable(os.Stdout, headers, rows, footer)
}
