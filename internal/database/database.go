// Package database owns the gorm handle shared by every repository.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taqdeer/taqdeer-api/internal/logger"
)

// ErrStoreUnavailable is returned by repositories when no database is connected.
var ErrStoreUnavailable = errors.New("store unavailable")

type Service interface {
	// Health reports "status" ("up" or "down") plus pool statistics.
	Health() map[string]string
	// DB is nil when the service runs without a store.
	DB() *gorm.DB
	Close() error
}

type service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New connects to Postgres through the pgx stdlib driver and wraps it in gorm.
func New(dsn string, log *logger.Logger) (Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	if dsn == "" {
		return nil, errors.New("database: DATABASE_URL is empty")
	}

	log.Info("Connecting to Postgres...")
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: gorm: %w", err)
	}
	log.Info("Connected to Postgres")
	return &service{db: db, log: log.With("service", "database")}, nil
}

// Wrap adopts an already opened gorm handle, e.g. an in-memory SQLite in tests.
func Wrap(db *gorm.DB, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &service{db: db, log: log}
}

// Unavailable is the degraded-mode service used when the store cannot be reached.
func Unavailable() Service {
	return &service{log: logger.Nop()}
}

func (s *service) DB() *gorm.DB { return s.db }

func (s *service) Health() map[string]string {
	stats := make(map[string]string)
	if s.db == nil {
		stats["status"] = "down"
		stats["error"] = ErrStoreUnavailable.Error()
		return stats
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		s.log.Warn("database ping failed", "error", err)
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := sqlDB.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	return stats
}

func (s *service) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info("Disconnected from database")
	return sqlDB.Close()
}

// AutoMigrate creates or updates the tables for models. It is a no-op without a store.
func AutoMigrate(s Service, models ...interface{}) error {
	if s.DB() == nil {
		return nil
	}
	if err := s.DB().AutoMigrate(models...); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
