package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"chalk/internal/compiler"
	"chalk/internal/fault"
	"chalk/internal/interp"
	"chalk/internal/logger"
	"chalk/internal/object"
	"chalk/internal/repl"
	"chalk/internal/util"
	"chalk/internal/watch"
)

var (
	// Version is stamped at build time from the VERSION file.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool
	// logging
	logLevel string
	logFile  string
	// interpreter config
	configPath   string
	rootPath     string
	maxCallDepth int
	implicitDecl bool
	dumpProgram  bool
	// trace sink
	traceAll    bool
	traceDriver string
	traceDSN    string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// interpreter config
	flag.StringVar(&configPath, "config", "", "Path to a TOML config file (default: chalk.toml when present)")
	flag.StringVar(&rootPath, "root", "", "Directory script paths resolve against")
	flag.IntVar(&maxCallDepth, "max-depth", 0, "Maximum function call depth")
	flag.BoolVar(&implicitDecl, "implicit-decl", false, "Let assignments declare unknown names")
	flag.BoolVar(&dumpProgram, "dump", false, "Print the compiled instruction listing instead of running")
	// trace sink
	flag.BoolVar(&traceAll, "trace-all", false, "Record every variable mutation, not just traced ones")
	flag.StringVar(&traceDriver, "trace-driver", "", "Trace store driver: sqlite3, mysql or postgres")
	flag.StringVar(&traceDSN, "trace-dsn", "", "Trace store DSN")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chalk: %v\n", err)
		return 1
	}

	logger.Setup(cfg.LogLevel, cfg.LogFile)
	defer logger.Close()

	if version {
		printVersion()
		return 0
	}
	if help {
		printHelp()
		return 0
	}

	slog.Debug("starting",
		slog.String("version", cfg.Version),
		slog.String("root", cfg.RootPath),
		slog.Int("max_call_depth", cfg.MaxCallDepth))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flag.NArg() == 0 {
		return startREPL(ctx, cfg)
	}
	return runFile(ctx, cfg, flag.Arg(0), os.Stdout)
}

// loadConfiguration layers defaults, then the TOML file, then any flag
// the user actually set.
func loadConfiguration() (util.Configuration, error) {
	cfg := util.Configuration{
		Version:      Version,
		BuildDate:    BuildDate,
		Commit:       Commit,
		RootPath:     ".",
		MaxCallDepth: interp.DefaultMaxCallDepth,
		LogLevel:     "none",
	}

	path, explicit := util.DefaultConfigFile, false
	if configPath != "" {
		path, explicit = configPath, true
	}
	cfg, err := util.Load(cfg, path, explicit)
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.RootPath = rootPath
		case "max-depth":
			cfg.MaxCallDepth = maxCallDepth
		case "implicit-decl":
			cfg.ImplicitDecl = implicitDecl
		case "trace-all":
			cfg.TraceAll = traceAll
		case "trace-driver":
			cfg.TraceDriver = traceDriver
		case "trace-dsn":
			cfg.TraceDSN = traceDSN
		case "log-level":
			cfg.LogLevel = logLevel
		case "log-file":
			cfg.LogFile = logFile
		}
	})
	return cfg, nil
}

func runFile(ctx context.Context, cfg util.Configuration, name string, out io.Writer) int {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.RootPath, name)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chalk: %v\n", err)
		return 1
	}

	prog, err := compiler.CompileSource(string(src), compiler.Options{ImplicitDecl: cfg.ImplicitDecl})
	if err != nil {
		fmt.Fprintf(os.Stderr, "chalk: %s: %v\n", name, err)
		if lines := util.ContextLines(string(src), fault.LineOf(err)); lines != "" {
			fmt.Fprint(os.Stderr, lines)
		}
		return 1
	}

	if dumpProgram {
		fmt.Fprintln(out, prog.Dump())
		return 0
	}

	it := interp.New(interp.Options{Out: out, MaxCallDepth: cfg.MaxCallDepth})
	if cfg.TraceAll {
		it.Watcher().MarkAll()
	}
	closeStore, err := attachTraceStore(it, cfg, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chalk: trace store: %v\n", err)
		return 1
	}
	defer closeStore()

	val, err := it.Run(ctx, prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chalk: %s: %v\n", name, err)
		if fault.IsKind(err, fault.Interrupted) {
			return 130
		}
		return 1
	}

	// A non-null final value prints; a returned int is also the exit
	// status.
	if val.Kind() != object.NULL {
		fmt.Fprintln(out, val.Inspect())
	}
	if n, ok := val.(*object.Integer); ok {
		return int(n.Value)
	}
	return 0
}

func startREPL(ctx context.Context, cfg util.Configuration) int {
	it := interp.New(interp.Options{
		Out:          os.Stdout,
		MaxCallDepth: cfg.MaxCallDepth,
		Redefine:     true,
	})
	if cfg.TraceAll {
		it.Watcher().MarkAll()
	}
	closeStore, err := attachTraceStore(it, cfg, "repl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "chalk: trace store: %v\n", err)
		return 1
	}
	defer closeStore()

	fmt.Printf("chalk v%s interactive session (Ctrl-D to exit)\n", cfg.Version)
	repl.Start(ctx, os.Stdin, os.Stdout, it)
	fmt.Println()
	return 0
}

// attachTraceStore opens the configured mutation store and points the
// interpreter's watcher at it. The returned func closes the store and
// is safe to call when no store was configured.
func attachTraceStore(it *interp.Interp, cfg util.Configuration, label string) (func(), error) {
	if cfg.TraceDriver == "" {
		return func() {}, nil
	}
	store, err := watch.OpenStore(cfg.TraceDriver, cfg.TraceDSN)
	if err != nil {
		return nil, err
	}
	if _, err := store.BeginRun(label); err != nil {
		store.Close()
		return nil, err
	}
	it.Watcher().SetObserver(store.Recorder(it.Watcher()))
	slog.Debug("trace store attached",
		slog.String("driver", cfg.TraceDriver),
		slog.String("label", label))
	return func() { store.Close() }, nil
}

func printVersion() {
	fmt.Printf("chalk version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: chalk [options] [filename]

Options:
  -root <path>         Directory script paths resolve against. Default is '.'
  -config <path>       TOML config file. Default is 'chalk.toml' when present.
  -max-depth <n>       Maximum function call depth. Default is 1000.
  -implicit-decl       Let assignments declare unknown names.
  -dump                Print the compiled instruction listing instead of running.
  -trace-all           Record every variable mutation, not just traced ones.
  -trace-driver <name> Trace store driver: sqlite3, mysql or postgres.
  -trace-dsn <dsn>     Trace store DSN, e.g. 'trace.db' for sqlite3.
  -log-level <level>   Log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>     Write logs to a file as JSON. Default is stderr text.
  -help                Display this help information and exit.
  -version             Display version information and exit.

Details:
Chalk runs classroom-style pseudo code: typed declarations, loops,
functions and list builtins, with traceable variables for following a
program step by step. Without a filename it starts an interactive
session. A script that ends in return(<int>) sets the exit status.

Examples:
  chalk lesson.chalk            Run a script
  chalk -log-level=debug        Start an interactive session with debug logging
  chalk -trace-all -trace-driver=sqlite3 -trace-dsn=trace.db lesson.chalk
                                Run a script recording every mutation

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
