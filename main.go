package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/mazrean/blobbackup/internal/backup"
	"github.com/mazrean/blobbackup/internal/closer"
	"github.com/mazrean/blobbackup/internal/config"
	mylog "github.com/mazrean/blobbackup/internal/pkg/log"
	"github.com/mazrean/blobbackup/internal/storage"
	"github.com/mazrean/blobbackup/log"
)

var (
	version  = "dev"
	revision = "none"
)

// CLI represents command line options
var CLI struct {
	config.Flags `kong:"embed"`
	Dev          DevFlag `kong:"group='dev',embed,prefix='dev.'"`
}

func createStorage(logger log.Logger, cfg *config.Config) (storage.Storage, error) {
	var (
		store storage.Storage
		err   error
	)
	switch cfg.Backend {
	case config.BackendAzure:
		store, err = storage.NewAzure(logger, cfg.StorageAccountConnectionString, cfg.ContainerName)
		if err != nil {
			return nil, fmt.Errorf("create Azure storage: %w", err)
		}
	case config.BackendS3:
		store, err = storage.NewS3(
			logger,
			cfg.S3.Endpoint,
			cfg.S3.Region,
			cfg.S3.AccessKey,
			cfg.S3.SecretAccessKey,
			cfg.ContainerName,
			!cfg.S3.DisableSSL,
			cfg.S3.UsePathStyle,
		)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
	case config.BackendDisk:
		store, err = storage.NewDisk(logger, filepath.Join(cfg.Disk.Dir, cfg.ContainerName))
		if err != nil {
			return nil, fmt.Errorf("create disk storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}

	if cfg.DryRun {
		store = storage.NewDryRun(logger, store)
	}

	return store, nil
}

func main() {
	// Initialize default logger with info level
	logger := log.DefaultLogger

	parser, err := config.NewParser(&CLI, config.Version{Version: version, Revision: revision})
	if err != nil {
		panic(fmt.Errorf("unexpected error: %w", err))
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cfg, err := config.Load(&CLI.Flags)
	switch {
	case errors.Is(err, config.ErrSourceNotFound):
		fmt.Fprintf(os.Stderr, "Source directory does not exist: %s\n", CLI.Source)
		printUsageAndExit(kctx)
	case errors.Is(err, config.ErrSettingsNotFound):
		fmt.Fprintf(os.Stderr, "App settings does not exist: %s\n", CLI.SettingsFile)
		printUsageAndExit(kctx)
	case err != nil:
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		printUsageAndExit(kctx)
	}

	if err := CLI.Dev.StartProfiling(); err != nil {
		logger.Warnf("failed to start profiling: %v", err)
	}
	defer func() {
		if err := CLI.Dev.StopProfiling(); err != nil {
			logger.Warnf("failed to stop profiling: %v", err)
		}
	}()

	logger = mylog.NewLogger(cfg.LogLevel)
	logger.Debugf("backend: %s, container: %s, access tier: %s, dry run: %t", cfg.Backend, cfg.ContainerName, cfg.AccessTier, cfg.DryRun)

	store, err := createStorage(logger, cfg)
	if err != nil {
		logger.Errorf("unexpected error: failed to create storage: %v", err)
		panic(fmt.Errorf("unexpected error: failed to create storage: %w", err))
	}

	closers := &closer.Group{}
	closers.Add("storage", store.Close)
	defer func() {
		if err := closers.Close(context.Background()); err != nil {
			logger.Warnf("failed to close: %v", err)
		}
	}()

	tier, err := store.ParseTier(cfg.AccessTier)
	if err != nil {
		logger.Errorf("invalid access tier: %v", err)
		panic(fmt.Errorf("invalid access tier: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := backup.New(logger, store, tier).Run(ctx, cfg.Source, cfg.BlobDir)
	if err != nil {
		logger.Errorf("unexpected error: failed to back up %s: %v", cfg.Source, err)
		panic(fmt.Errorf("unexpected error: failed to back up %s: %w", cfg.Source, err))
	}

	logger.Infof(
		"checked %d files: %d uploaded, %d replaced, %d skipped, %d skipped with unknown size, %d tiers set, %d bytes in %s",
		summary.Checked,
		summary.Uploaded,
		summary.Replaced,
		summary.Skipped,
		summary.SkippedUnknownSize,
		summary.TiersSet,
		summary.BytesUploaded,
		summary.Duration,
	)
}

func printUsageAndExit(kctx *kong.Context) {
	_ = kctx.PrintUsage(false)
	os.Exit(1)
}
