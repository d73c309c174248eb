package cmd

import (
	"fmt"
	"log"

	"github.com/anoixa/gphotos-grid/config"
	"github.com/anoixa/gphotos-grid/internal/auth"
	"github.com/anoixa/gphotos-grid/utils"
	"github.com/spf13/cobra"
)

// tokenCmd 签发管理令牌
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin token for the admin API",
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")

		config.InitConfig()
		cfg := config.Get()

		svc, err := auth.NewJWTService(cfg.AdminJWTSecret, cfg.AdminTokenTTL)
		if err != nil {
			log.Fatalf("Admin token unavailable: %v (set admin_jwt_secret, see 'token secret')", err)
		}

		token, expiry, err := svc.GenerateAdminToken(subject)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		log.Printf("Token for %q expires at %s", subject, expiry.Format("2006-01-02 15:04:05 MST"))
		fmt.Println(token)
	},
}

// tokenSecretCmd 生成签名密钥
var tokenSecretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a random value for admin_jwt_secret",
	Run: func(cmd *cobra.Command, args []string) {
		secret, err := utils.GenerateSecret(48)
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Println(secret)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSecretCmd)

	tokenCmd.Flags().String("subject", "admin", "Token subject recorded in the sub claim")
}
