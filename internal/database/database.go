package database

import (
	"fmt"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	logging "github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/logging"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the result-archive connection. It stays nil when the archive is
// disabled in configuration.
var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewArchiveLogger(log),
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := DB.AutoMigrate(
		&models.AssessmentArchive{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	archiveIndex := `CREATE INDEX IF NOT EXISTS idx_archive_query ON assessment_archives (session_id, reviewed_at DESC);`
	if err := DB.Exec(archiveIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on archive table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
