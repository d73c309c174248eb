package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/internal/app"
	"github.com/anoixa/gphotos-grid/utils"
	"github.com/spf13/cobra"
)

// photosCmd 输出相册照片列表
var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Print photo urls of an album",
	Long: `Print photo urls of a public album using the configured record store.

Examples:
  gphotos-grid photos --album https://photos.app.goo.gl/AbCdEf123
  gphotos-grid photos --ttl 0 --limit 0 --json`,
	Run: func(cmd *cobra.Command, args []string) {
		album, _ := cmd.Flags().GetString("album")
		ttl, _ := cmd.Flags().GetInt("ttl")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		if err := runPhotos(cmd, album, ttl, limit, asJSON); err != nil {
			log.Fatalf("Photos failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(photosCmd)

	photosCmd.Flags().String("album", "", "Album share url (defaults to album_url config)")
	photosCmd.Flags().Int("ttl", -1, "Cache interval in minutes, 0 disables caching (defaults to album_cache_ttl_minutes)")
	photosCmd.Flags().Int("limit", -1, "Maximum photos to print, 0 for all (defaults to album_max_photos)")
	photosCmd.Flags().Bool("json", false, "Print as JSON")
}

func runPhotos(cmd *cobra.Command, album string, ttl, limit int, asJSON bool) error {
	config.InitConfig()
	cfg := config.Get()

	if album == "" {
		album = cfg.AlbumURL
	}
	album, err := utils.NormalizeAlbumURL(album)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("ttl") || ttl < 0 {
		ttl = cfg.AlbumCacheTTLMinutes
	}
	if !cmd.Flags().Changed("limit") || limit < 0 {
		limit = cfg.AlbumMaxPhotos
	}

	container := app.NewContainer(cfg)
	if err := container.Init(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+10*time.Second)
	defer cancel()

	photos := container.Manager().GetPhotos(ctx, album, ttl)
	if limit > 0 && len(photos) > limit {
		photos = photos[:limit]
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"album_url": album,
			"count":     len(photos),
			"photos":    photos,
		})
	}
	for _, p := range photos {
		fmt.Println(p)
	}
	return nil
}
