package database

import (
	"context"
	"fmt"
	"time"

	"streaming-api/internal/config"
	"streaming-api/internal/models"
	"streaming-api/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB          *gorm.DB
	RedisClient *redis.Client
)

// InitDatabase initializes database connections
func InitDatabase() error {
	// Initialize PostgreSQL
	if err := initPostgres(); err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	// Initialize Redis
	if err := initRedis(); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Auto migrate tables
	if err := autoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Insert default data
	if err := insertDefaultData(); err != nil {
		return fmt.Errorf("failed to insert default data: %w", err)
	}

	return nil
}

// initPostgres initializes PostgreSQL connection
func initPostgres() error {
	var err error
	var dsn string

	// Get database URL from environment
	if dsn = config.AppConfig.DatabaseURL; dsn == "" {
		// Fallback to SQLite for development
		logging.Infof("Database URL not set, using SQLite for development")
		DB, err = gorm.Open(sqlite.Open("streaming-api.db"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		})
	} else {
		// Use PostgreSQL for production
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		})
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Infof("Database connected successfully")
	return nil
}

// initRedis initializes Redis connection
func initRedis() error {
	redisURL := config.AppConfig.RedisURL
	if redisURL == "" {
		return fmt.Errorf("REDIS_URL is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Errorf("Failed to parse Redis URL: %v", err)
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		logging.Errorf("Failed to connect to Redis: %v", err)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Infof("Redis connected successfully")
	return nil
}

// autoMigrate performs database migration
func autoMigrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.PaymentRecord{},
		&models.Video{},
	)
}

// insertDefaultData seeds a small demo catalog so a fresh install has
// something to list and gate
func insertDefaultData() error {
	seed := []models.Video{
		{
			Title:           "Getting Started",
			Description:     "Free introduction to the platform",
			Category:        "general",
			PlaybackID:      "demo-free-001",
			RequiredPlanID:  "",
			DurationSeconds: 180,
		},
		{
			Title:           "Documentary: Deep Oceans",
			Description:     "Full-length documentary, basic library",
			Category:        "documentary",
			PlaybackID:      "demo-basic-001",
			RequiredPlanID:  "basic",
			DurationSeconds: 3240,
		},
		{
			Title:           "Premiere: Night City",
			Description:     "4K premiere, premium library",
			Category:        "film",
			PlaybackID:      "demo-premium-001",
			RequiredPlanID:  "premium",
			DurationSeconds: 5400,
		},
	}

	for _, video := range seed {
		v := video
		result := DB.Where("playback_id = ?", v.PlaybackID).FirstOrCreate(&v)
		if result.Error != nil {
			return fmt.Errorf("failed to seed video %s: %w", v.PlaybackID, result.Error)
		}
	}

	logging.Infof("Default data inserted successfully")
	return nil
}

// GetDB returns database instance
func GetDB() *gorm.DB {
	return DB
}

// GetRedis returns Redis client
func GetRedis() *redis.Client {
	return RedisClient
}

// CloseDatabase closes database connections
func CloseDatabase() error {
	if sqlDB, err := DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logging.Errorf("Failed to close database: %v", err)
		}
	}

	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logging.Errorf("Failed to close Redis: %v", err)
		}
	}

	return nil
}
