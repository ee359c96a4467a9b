package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client // nil unless the mongo cache backend is selected
}

// InitDB initializes and returns the database connections
func InitDB(cfg *Config, log *logrus.Logger) (*DB, error) {
	sqlDB, err := OpenSQL(cfg, log)
	if err != nil {
		return nil, err
	}

	db := &DB{SQL: sqlDB}
	if cfg.CacheBackend != "mongo" {
		return db, nil
	}

	if cfg.MongoURI == "" {
		db.CloseDB(log)
		return nil, fmt.Errorf("MONGO_URI must be set when CACHE_BACKEND=mongo")
	}
	mongoClient, err := initMongo(cfg.MongoURI)
	if err != nil {
		db.CloseDB(log)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info("Successfully connected to MongoDB!")
	db.Mongo = mongoClient
	return db, nil
}

// OpenSQL opens the relational database selected by cfg.DatabaseDriver.
func OpenSQL(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.PostgresUrl == "" {
			return nil, fmt.Errorf("POSTGRES_URL environment variable not set")
		}
		dialector = postgres.Open(cfg.PostgresUrl)
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DatabaseDriver, err)
	}

	// Ping the database to verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseDriver == "sqlite" {
		// A single writer keeps SQLite from reporting "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.WithField("driver", cfg.DatabaseDriver).Info("Database connection successful")
	return db, nil
}

// sqliteDSN turns on foreign keys so ON DELETE CASCADE is honoured.
func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB(log *logrus.Logger) {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			log.WithError(err).Error("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			log.WithError(err).Error("Error closing SQL connection")
		} else {
			log.Info("SQL connection closed.")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.WithError(err).Error("Error closing MongoDB connection")
		} else {
			log.Info("MongoDB connection closed.")
		}
	}
}
