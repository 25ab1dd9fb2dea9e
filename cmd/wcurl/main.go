package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/wcurl/wcurl/internal/config"
	"github.com/wcurl/wcurl/internal/downloader"
	"github.com/wcurl/wcurl/internal/downloader/curl"
	"github.com/wcurl/wcurl/internal/logger"
	"github.com/wcurl/wcurl/internal/naming"
	"github.com/wcurl/wcurl/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one wcurl invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	flags := newFlagSet(opts)
	if err := flags.Parse(args); err != nil {
		fmt.Fprintf(stderr, "wcurl: %v\n", err)
		fmt.Fprintln(stderr, "Try 'wcurl --help' for more information.")
		return 1
	}

	if opts.version {
		fmt.Fprintln(stdout, config.Version)
		return 0
	}
	if opts.help {
		printUsage(stdout, flags)
		return 0
	}

	if err := config.LoadEnvFile(opts.envFile); err != nil {
		fmt.Fprintf(stderr, "wcurl: %v\n", err)
		return 1
	}
	cfg, err := config.Load(opts.configPath, flags)
	if err != nil {
		fmt.Fprintf(stderr, "wcurl: %v\n", err)
		return 1
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
		Out:    stderr,
	})
	defer log.Close()

	urls := flags.Args()
	if len(urls) == 0 {
		fmt.Fprintf(stderr, "wcurl: %v\n", downloader.ErrNoURLs)
		return 1
	}

	log.Debug().
		Str("version", config.Version).
		Str("curl", cfg.Transport.Binary).
		Int("parallel", cfg.Download.Parallel).
		Str("dir", cfg.Download.Dir).
		Msg("starting wcurl")

	features, err := curl.Probe(ctx, cfg.Transport.Binary)
	if err != nil {
		if !opts.dryRun {
			fmt.Fprintf(stderr, "wcurl: %v\n", err)
			return 1
		}
		log.Warn().Err(err).Msg("cannot probe curl, assuming no optional features")
	}
	log.Debug().
		Str("curlVersion", features.Version).
		Bool("noClobber", features.NoClobber).
		Bool("parallel", features.Parallel).
		Bool("parallelMaxHost", features.ParallelMaxHost).
		Msg("detected curl features")

	fs := afero.NewOsFs()
	if !opts.dryRun && cfg.Download.Dir != "." {
		if err := fs.MkdirAll(cfg.Download.Dir, 0755); err != nil {
			fmt.Fprintf(stderr, "wcurl: failed to create output directory: %v\n", err)
			return 1
		}
	}

	resolver := naming.NewResolver(fs, naming.Options{
		Dir:            cfg.Download.Dir,
		Output:         opts.output,
		DecodeFilename: cfg.Download.DecodeFilename && !opts.noDecodeFilename,
	}, log.WithComponent("naming"))
	if opts.report != "" {
		resolver.Reserve(opts.report)
	}

	builder := curl.NewBuilder(curl.Options{
		Binary:      cfg.Transport.Binary,
		UserAgent:   cfg.Transport.UserAgent,
		Retry:       cfg.Download.Retry,
		Passthrough: opts.curlOptions,
		Features:    features,
	})

	executor := curl.NewExecutor(log.WithComponent("transport"))
	executor.Stdout = stdout
	executor.Stderr = stderr

	svc := downloader.NewService(resolver, builder, executor, fs, downloader.Config{
		Parallel:  cfg.Download.Parallel,
		DryRun:    opts.dryRun,
		DryRunOut: stdout,
	}, log.WithComponent("downloader"))

	summary, err := svc.Run(ctx, urls)
	if err != nil {
		fmt.Fprintf(stderr, "wcurl: %v\n", err)
		return 1
	}

	if !opts.dryRun && len(summary.Outcomes) > 1 {
		if err := report.Print(stderr, summary); err != nil {
			log.Warn().Err(err).Msg("failed to print run report")
		}
	}

	code := summary.ExitCode()
	if opts.report != "" {
		if err := report.WriteYAML(fs, opts.report, summary); err != nil {
			fmt.Fprintf(stderr, "wcurl: %v\n", err)
			if code == 0 {
				code = 1
			}
		}
	}

	if err := summary.Err(); err != nil {
		log.Debug().Err(err).Int("exitCode", code).Msg("run finished with failures")
		if errors.Is(err, downloader.ErrTransportNotFound) {
			fmt.Fprintf(stderr, "wcurl: %v\n", err)
		}
	}

	return code
}
