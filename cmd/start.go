package cmd

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"texture-manager/core/codec"
	"texture-manager/core/config"
	"texture-manager/core/logger"
	"texture-manager/core/server"
	"texture-manager/core/texture"
	"texture-manager/core/vfs"
	"texture-manager/core/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the texture daemon",
	Long: `Starts the conversion pipeline, the file watcher and the HTTP
status API. Every convertible source below the asset root is prefetched,
so a freshly mounted asset tree converges to a fully warmed cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Mount the layered asset filesystem
		fs, err := vfs.New(cfg.Assets)
		if err != nil {
			logg.Fatal("Failed to mount asset filesystem", zap.Error(err))
		}

		// 4. Texture manager on a headless uploader
		uploader := codec.NewHeadless()
		mgr, err := texture.NewManager(fs, codec.New(fs, uploader), logg)
		if err != nil {
			logg.Fatal("Failed to create texture manager", zap.Error(err))
		}

		// 5. File watcher feeding hotload invalidations
		watcher, err := watch.New(fs, logg, mgr.OnFileChanged)
		if err != nil {
			logg.Fatal("Failed to start file watcher", zap.Error(err))
		}

		prefetchAll(fs, mgr, logg)

		// 6. Status API
		app := server.New(cfg.Server, mgr, logg)
		go func() {
			logg.Info("Starting status server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Drive the pipeline until shutdown
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

	loop:
		for {
			select {
			case <-ticker.C:
				for mgr.Advance() {
				}
				// Entities reset by a hotload go back into the queue.
				mgr.Range(func(t *texture.Texture) bool {
					if t.State() == texture.StateUnloaded {
						t.Prefetch()
					}
					return true
				})
			case <-stop:
				break loop
			}
		}

		// 8. Graceful shutdown, reverse of construction
		logg.Info("Shutting down...")
		_ = watcher.Close()
		_ = app.Shutdown()
		mgr.Close()
	},
}

// prefetchAll queues every convertible source in the mounted tree.
func prefetchAll(fs vfs.FS, mgr *texture.Manager, logg *zap.Logger) {
	count := 0
	err := fs.Walk("", func(p string, _ vfs.FileInfo) error {
		if strings.HasPrefix(p, vfs.CacheMount+"/") || !codec.CanDecode(p) {
			return nil
		}
		mgr.GetOrCreate(texture.NewProperties(p)).Prefetch()
		count++
		return nil
	})
	if err != nil {
		logg.Warn("Prefetch walk failed", zap.Error(err))
	}
	logg.Info("Prefetch queued", zap.Int("textures", count))
}

func init() {
	RootCmd.AddCommand(startCmd)
}
