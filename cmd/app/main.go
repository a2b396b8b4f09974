// Pixel Filter Engine - HTTP service and command line front end
// License: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"pixel-filter-engine/internal/algorithms"
	"pixel-filter-engine/internal/config"
	"pixel-filter-engine/internal/core"
	"pixel-filter-engine/internal/imageio"
	"pixel-filter-engine/internal/server"
)

const (
	AppName    = "Pixel Filter Engine"
	AppVersion = "1.0.0"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("app", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Path to a TOML configuration file")
	debugMode := flags.Bool("debug", false, "Enable debug mode with verbose logging")
	flags.Usage = func() { usage(flags) }
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := initLogger(cfg.Log, *debugMode, stderr)

	loader := imageio.NewImageLoader(logger)
	processor := core.NewProcessor(cfg.FilterSettings(), loader, logger)

	rest := flags.Args()
	if len(rest) == 0 {
		usage(flags)
		return errUsage
	}

	switch rest[0] {
	case "serve":
		return serve(ctx, cfg, processor, logger)
	case "apply":
		return apply(ctx, rest[1:], cfg, processor, logger, stderr)
	case "batch":
		return batch(ctx, rest[1:], processor, logger, stdout, stderr)
	case "filters":
		return listFilters(stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(flags)
		return errUsage
	}
}

func usage(flags *flag.FlagSet) {
	out := flags.Output()
	fmt.Fprintf(out, "%s %s\n\n", AppName, AppVersion)
	fmt.Fprintln(out, "Usage: app [-config file] [-debug] <command> [options]")
	fmt.Fprintln(out, "\nCommands:")
	fmt.Fprintln(out, "  serve     run the HTTP API")
	fmt.Fprintln(out, "  apply     filter one image file")
	fmt.Fprintln(out, "  batch     filter every image in a directory")
	fmt.Fprintln(out, "  filters   list available filters")
	fmt.Fprintln(out, "\nGlobal flags:")
	flags.PrintDefaults()
}

func serve(ctx context.Context, cfg *config.Config, processor *core.Processor, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"version": AppVersion,
		"port":    cfg.Server.Port,
		"mode":    cfg.Server.Mode,
		"strict":  cfg.Filters.Strict,
	}).Info("Starting Pixel Filter Engine")

	srv := server.New(cfg.Server, processor, logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("Application shutting down gracefully")
	return nil
}

// apply chains one or more filters over a single file.
func apply(ctx context.Context, args []string, cfg *config.Config, processor *core.Processor, logger *logrus.Logger, stderr io.Writer) error {
	flags := flag.NewFlagSet("apply", flag.ContinueOnError)
	flags.SetOutput(stderr)
	in := flags.String("in", "", "Input image path")
	out := flags.String("out", "", "Output image path; the extension selects the format")
	filters := flags.String("filter", "grayscale", "Comma separated filters applied in order")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	if *in == "" || *out == "" {
		flags.Usage()
		return errUsage
	}

	names := splitFilters(*filters)
	if !cfg.Filters.Strict {
		for i, name := range names {
			kind, fallback := algorithms.ResolveKind(name)
			if fallback {
				logger.WithField("filter", name).Warn("Unknown filter, applying grayscale")
			}
			names[i] = kind.String()
		}
	}

	pipeline, err := core.NewPipelineFromNames(names, processor.Settings(), logger)
	if err != nil {
		return err
	}

	input, err := processor.Loader().LoadImage(*in)
	if err != nil {
		return err
	}
	output, stepMetrics, err := pipeline.Process(ctx, input)
	if err != nil {
		return err
	}
	if err := processor.Loader().SaveImage(output, *out); err != nil {
		return err
	}

	fields := logrus.Fields{"input": *in, "output": *out, "filters": strings.Join(names, ",")}
	for k, v := range stepMetrics {
		fields[k] = v
	}
	logger.WithFields(fields).Info("Image written")
	return nil
}

func batch(ctx context.Context, args []string, processor *core.Processor, logger *logrus.Logger, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("batch", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inDir := flags.String("in", "", "Directory of input images")
	outDir := flags.String("out", "", "Directory for filtered images")
	filter := flags.String("filter", "grayscale", "Filter applied to every image")
	workers := flags.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	if *inDir == "" || *outDir == "" {
		flags.Usage()
		return errUsage
	}

	jobs, err := collectJobs(processor.Loader(), *inDir, *outDir, *filter)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		logger.WithField("dir", *inDir).Warn("No supported images found")
		return nil
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	results, err := processor.ProcessBatch(ctx, jobs, *workers)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(stdout, "%s -> %s (%s, %dx%d, %s)\n", r.Job.Input, r.Job.Output, r.Kind, r.Width, r.Height, r.Elapsed)
	}
	return nil
}

func collectJobs(loader *imageio.ImageLoader, inDir, outDir, filter string) ([]core.Job, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inDir, err)
	}
	jobs := make([]core.Job, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !loader.IsSupportedImageFormat(entry.Name()) {
			continue
		}
		jobs = append(jobs, core.Job{
			Input:  filepath.Join(inDir, entry.Name()),
			Output: filepath.Join(outDir, entry.Name()),
			Filter: filter,
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })
	return jobs, nil
}

func listFilters(stdout io.Writer) error {
	for _, kind := range algorithms.Kinds() {
		alg, ok := algorithms.Get(kind.String())
		if !ok {
			continue
		}
		fmt.Fprintf(stdout, "%-12s %s\n", kind, alg.GetDescription())
	}
	return nil
}

func splitFilters(v string) []string {
	var names []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// initLogger initializes the logger with appropriate level
func initLogger(cfg config.LogConfig, debugMode bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
		return logger
	}

	logger.SetLevel(level)
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
