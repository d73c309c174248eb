package cmd

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/anoixa/gphotos-grid/database"
	"github.com/anoixa/gphotos-grid/database/models"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tools",
	Long:  `Copy album records from one database to another (e.g., SQLite to PostgreSQL).`,
}

// migrateRunCmd 执行迁移命令
var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Copy album records between databases",
	Long: `Copy album records from source to target database.

Examples:
  # Move the record store from SQLite to PostgreSQL
  gphotos-grid migrate run --from-sqlite ./data/gphotos.db --to-postgres "host=localhost user=postgres password=secret dbname=gphotos port=5432"

  # Replace records that already exist in the target
  gphotos-grid migrate run --from-sqlite ./data/gphotos.db --to-postgres "..." --on-conflict=overwrite`,
	Run: func(cmd *cobra.Command, args []string) {
		fromType, _ := cmd.Flags().GetString("from-type")
		toType, _ := cmd.Flags().GetString("to-type")
		fromDSN, _ := cmd.Flags().GetString("from-dsn")
		toDSN, _ := cmd.Flags().GetString("to-dsn")
		fromSQLite, _ := cmd.Flags().GetString("from-sqlite")
		toPostgres, _ := cmd.Flags().GetString("to-postgres")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		onConflict, _ := cmd.Flags().GetString("on-conflict")

		if fromSQLite != "" {
			fromType, fromDSN = "sqlite", fromSQLite
		}
		if toPostgres != "" {
			toType, toDSN = "postgres", toPostgres
		}

		if err := runMigration(fromType, toType, fromDSN, toDSN, batchSize, onConflict); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateRunCmd)

	migrateRunCmd.Flags().String("from-type", "", "Source database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres)")
	migrateRunCmd.Flags().String("from-dsn", "", "Source database DSN/connection string")
	migrateRunCmd.Flags().String("to-dsn", "", "Target database DSN/connection string")
	migrateRunCmd.Flags().String("from-sqlite", "", "Source SQLite file path (shortcut)")
	migrateRunCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string (shortcut)")
	migrateRunCmd.Flags().Int("batch-size", 100, "Batch size for data migration")
	migrateRunCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), overwrite")
}

// migrateStats 迁移统计
type migrateStats struct {
	read    int64
	written int64
}

// runMigration 执行数据库迁移
func runMigration(fromType, toType, fromDSN, toDSN string, batchSize int, onConflict string) error {
	if onConflict != "skip" && onConflict != "overwrite" {
		return fmt.Errorf("invalid on-conflict strategy: %s (must be skip or overwrite)", onConflict)
	}
	if fromType == "" || toType == "" {
		return fmt.Errorf("both --from-type and --to-type are required")
	}
	if fromDSN == "" || toDSN == "" {
		return fmt.Errorf("both --from-dsn and --to-dsn (or shortcuts) are required")
	}
	if fromType == toType && fromDSN == toDSN {
		return fmt.Errorf("source and target databases are the same")
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	log.Printf("Migrating from %s to %s", fromType, toType)
	log.Printf("Source: %s", maskDSN(fromDSN))
	log.Printf("Target: %s", maskDSN(toDSN))
	log.Printf("Conflict strategy: %s", onConflict)

	sourceDB, err := openDatabase(fromType, fromDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer database.Close(sourceDB)

	targetDB, err := openDatabase(toType, toDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer database.Close(targetDB)

	log.Println("Migrating database schema...")
	if err := database.AutoMigrate(targetDB); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	stats, err := copyAlbumRecords(context.Background(), sourceDB, targetDB, batchSize, onConflict)
	if err != nil {
		return err
	}

	log.Printf("Album records read: %d, written: %d, skipped: %d", stats.read, stats.written, stats.read-stats.written)
	log.Println("Migration completed successfully!")
	return nil
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// copyAlbumRecords 按主键分批复制相册记录，冲突以 cache_key 判定
func copyAlbumRecords(ctx context.Context, sourceDB, targetDB *gorm.DB, batchSize int, onConflict string) (*migrateStats, error) {
	stats := &migrateStats{}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoNothing: true,
	}
	if onConflict == "overwrite" {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"fetched_at", "photos", "updated_at"}),
		}
	}

	var batch []models.AlbumRecord
	result := sourceDB.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, n int) error {
		stats.read += int64(len(batch))

		rows := make([]models.AlbumRecord, len(batch))
		for i, r := range batch {
			// 目标库自行分配主键
			rows[i] = models.AlbumRecord{
				CacheKey:  r.CacheKey,
				FetchedAt: r.FetchedAt,
				Photos:    r.Photos,
				CreatedAt: r.CreatedAt,
				UpdatedAt: r.UpdatedAt,
			}
		}

		res := targetDB.WithContext(ctx).Clauses(conflict).Create(&rows)
		if res.Error != nil {
			return fmt.Errorf("batch %d: %w", n, res.Error)
		}
		stats.written += res.RowsAffected
		log.Printf("Batch %d: %d records copied", n, res.RowsAffected)
		return nil
	})
	if result.Error != nil {
		return stats, fmt.Errorf("failed to copy album records: %w", result.Error)
	}
	return stats, nil
}

var (
	dsnPasswordPattern = regexp.MustCompile(`(password=)\S+`)
	urlPasswordPattern = regexp.MustCompile(`(://[^:/@]+:)[^@]+@`)
)

// maskDSN 隐藏连接串中的密码
func maskDSN(dsn string) string {
	dsn = dsnPasswordPattern.ReplaceAllString(dsn, "${1}****")
	return urlPasswordPattern.ReplaceAllString(dsn, "${1}****@")
}
