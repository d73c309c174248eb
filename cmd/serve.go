package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/gphotos-grid/api/core"
	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/internal/app"
	"github.com/anoixa/gphotos-grid/utils"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	container := app.NewContainer(cfg)
	if err := container.Init(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// 预热默认相册，首个请求无需等待抓取
	if cfg.AlbumURL != "" && cfg.AlbumCacheTTLMinutes > 0 {
		utils.SafeGo(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+5*time.Second)
			defer cancel()
			photos := container.Manager().GetPhotos(ctx, cfg.AlbumURL, cfg.AlbumCacheTTLMinutes)
			log.Printf("Default album prewarmed with %d photos", len(photos))
		})
	}

	// 启动gin
	server, cleanup := core.StartServer(container)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	// 关闭 DI 容器
	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	log.Println("Server exited successfully")
}
