package cmd

import (
	"fmt"
	"os"

	"texture-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "texture-manager",
	Short: "Texture cache service",
	Long: `Texture Manager converts source images into GPU-ready artifacts,
keeps a deduplicating cache of live textures and hot-reloads them when
files change on disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console at debug level so CLI users get readable ISO8601
		// timestamps instead of the production epoch encoding.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
