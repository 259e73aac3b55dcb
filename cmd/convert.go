package cmd

import (
	"fmt"
	"strings"
	"sync/atomic"

	"texture-manager/core/codec"
	"texture-manager/core/config"
	"texture-manager/core/convert"
	"texture-manager/core/logger"
	"texture-manager/core/texture"
	"texture-manager/core/vfs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// Flags for the convert command
	convertWorkers int
	convertForce   bool
)

// convertCmd pre-generates cache artifacts for the whole asset tree.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert every source texture into a cache artifact",
	Long: `Convert walks the mounted asset tree and generates the loose cache
artifact for every convertible source that does not have one yet.

Sources already covered by a usable archive artifact or an up-to-date
loose artifact are skipped unless --force is given.

Examples:
  # Warm the cache with four workers
  convert

  # Reconvert everything, e.g. after changing conversion code
  convert --force --workers 8`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 4, "Number of parallel conversions")
	convertCmd.Flags().BoolVar(&convertForce, "force", false, "Reconvert even when a usable artifact exists")

	RootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	fs, err := vfs.New(cfg.Assets)
	if err != nil {
		return fmt.Errorf("failed to mount asset filesystem: %w", err)
	}

	resolver := convert.NewResolver(fs, l)

	type job struct {
		src      string
		dest     string
		settings convert.Settings
	}

	var jobs []job
	skipped := 0
	err = fs.Walk("", func(p string, _ vfs.FileInfo) error {
		if strings.HasPrefix(p, vfs.CacheMount+"/") || !codec.CanDecode(p) {
			return nil
		}
		if !convertForce && texture.CanUseArchiveCache(fs, p, texture.ArchiveCachePath(p)) {
			skipped++
			return nil
		}

		settings := resolver.Settings(p, nil)
		dest, err := texture.LooseCachePath(fs, p, settings)
		if err != nil {
			l.Warn("Cannot derive cache path", zap.String("source", p), zap.Error(err))
			return nil
		}
		// The fingerprint covers mtime, size and settings, so an existing
		// artifact at this path is current.
		if !convertForce && fs.Exists(dest) {
			skipped++
			return nil
		}

		jobs = append(jobs, job{src: p, dest: dest, settings: settings})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk assets: %w", err)
	}

	l.Info("Conversion plan",
		zap.Int("convert", len(jobs)),
		zap.Int("skipped", skipped),
		zap.Int("workers", convertWorkers),
	)

	var failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(convertWorkers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := convert.ConvertFile(fs, j.src, j.dest, j.settings); err != nil {
				failed.Add(1)
				l.Warn("Conversion failed", zap.String("source", j.src), zap.Error(err))
				return nil
			}
			l.Debug("Converted", zap.String("source", j.src), zap.String("artifact", j.dest))
			return nil
		})
	}
	_ = g.Wait()

	done := len(jobs) - int(failed.Load())
	l.Info("Conversion finished", zap.Int("converted", done), zap.Int64("failed", failed.Load()))

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d conversions failed", n, len(jobs))
	}
	return nil
}
