package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/internal/app"
	"github.com/spf13/cobra"
)

// cacheCmd 缓存管理命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Album record management commands",
}

// cacheClearCmd 清除缓存命令
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete album records",
	Long: `Delete album records from the configured store. By default every album record is removed,
which is also the cleanup to run before uninstalling.`,
	Run: func(cmd *cobra.Command, args []string) {
		pattern, _ := cmd.Flags().GetString("pattern")

		if err := runCacheClear(pattern); err != nil {
			log.Fatalf("Cache clear failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().String("pattern", "", "Delete keys matching glob pattern (e.g., 'gphotos_album:0cc1*')")
}

// runCacheClear 执行缓存清理
func runCacheClear(pattern string) error {
	config.InitConfig()
	cfg := config.Get()

	if (cfg.StoreType == app.StoreTypeCache || cfg.StoreType == "") && (cfg.CacheType == "memory" || cfg.CacheType == "gocache" || cfg.CacheType == "") {
		log.Printf("Cache provider %q is process local, nothing persists between runs", cfg.CacheType)
		return nil
	}

	container := app.NewContainer(cfg)
	if err := container.Init(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Printf("Record store: %s", container.StoreName())

	var (
		deleted int
		err     error
	)
	if pattern == "" {
		deleted, err = container.Manager().Reset(ctx)
	} else {
		log.Printf("Clearing records matching pattern: %s", pattern)
		deleted, err = container.Store().DeleteMatching(ctx, pattern)
	}
	if err != nil {
		return err
	}

	log.Printf("%d album records cleared", deleted)
	return nil
}
