package testutil

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/roadmap-backend/internal/data/db"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	memSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database. With TEST_POSTGRES_DSN set it connects to
// Postgres; otherwise every call gets its own in-memory SQLite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var (
		conn *gorm.DB
		err  error
	)
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", memSeq.Add(1))
		conn, err = gorm.Open(sqlite.Open(name), cfg)
		if err == nil {
			sqlDB, dbErr := conn.DB()
			if dbErr != nil {
				tb.Fatalf("sql db: %v", dbErr)
			}
			sqlDB.SetMaxOpenConns(1)
			tb.Cleanup(func() { _ = sqlDB.Close() })
		}
	}
	if err != nil {
		tb.Fatalf("failed to init test db: %v", err)
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func Tx(tb testing.TB, conn *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
