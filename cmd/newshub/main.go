package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/fnilvuwu/newshub/pkg/aggregator"
	"github.com/fnilvuwu/newshub/pkg/config"
	"github.com/fnilvuwu/newshub/pkg/provider"
	"github.com/fnilvuwu/newshub/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] server failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run loads the configuration, assembles the pipeline and serves until ctx
// is canceled
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLog(opts.Debug, cfg.Secrets()...)

	log.Printf("[INFO] starting newshub version %s", revision)

	agg := makeAggregator(cfg)
	srv := server.New(cfg, agg, revision, opts.Debug)
	return srv.Run(ctx)
}

// makeAggregator builds the aggregation pipeline from configured providers.
// A provider without an API key is skipped, not an error.
func makeAggregator(cfg *config.Config) *aggregator.Aggregator {
	timeout, maxWorkers := cfg.GetAggregatorConfig()
	providers := cfg.GetProviders()

	var sources []provider.Provider
	if key := providers.NewsAPI.Key; key != "" {
		sources = append(sources, provider.NewNewsAPI(key, timeout))
	} else {
		log.Printf("[INFO] newsapi key not configured, source skipped")
	}
	if key := providers.Guardian.Key; key != "" {
		sources = append(sources, provider.NewGuardian(key, timeout))
	} else {
		log.Printf("[INFO] guardian key not configured, source skipped")
	}
	if key := providers.NYTimes.Key; key != "" {
		sources = append(sources, provider.NewNYTimes(key, timeout, providers.NYTimes.RateDelay, providers.NYTimes.CacheTTL))
	} else {
		log.Printf("[INFO] nytimes key not configured, source skipped")
	}

	log.Printf("[INFO] aggregating %d sources", len(sources))
	return aggregator.New(sources, timeout, maxWorkers)
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
