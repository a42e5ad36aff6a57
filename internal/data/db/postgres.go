package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Config struct {
	// Driver is "postgres" (default) or "sqlite".
	Driver string

	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// SQLitePath is a file path or ":memory:".
	SQLitePath string

	SlowThreshold time.Duration
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, sslMode,
	)
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg Config, logg *logger.Logger) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService", "driver", driverName(cfg))

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(gormWriter{log: serviceLog}, gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}

	var dialector gorm.Dialector
	switch driverName(cfg) {
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "roadmap.db"
		}
		dialector = sqlite.Open(path)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driverName(cfg), err)
	}
	if driverName(cfg) == "sqlite" {
		// sqlite serializes writers; one connection avoids "database is locked"
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	serviceLog.Info("database connected")
	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	s.log.Info("database migrated")
	return nil
}

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func driverName(cfg Config) string {
	if strings.EqualFold(strings.TrimSpace(cfg.Driver), "sqlite") {
		return "sqlite"
	}
	return "postgres"
}

// gormWriter routes gorm's printf-style logging into the service logger.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn("gorm", "detail", strings.TrimSpace(fmt.Sprintf(format, args...)))
}
