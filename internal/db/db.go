package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet-service/internal/config"
)

const slowQueryThreshold = 500 * time.Millisecond

// New opens the fleet database and applies migrations. Transactions are owned by the repository
// store, so gorm's implicit per-write transaction is disabled. Row lock waits are capped at the
// transaction timeout; a lock that cannot be taken fails with 55P03 and the operation is retried.
func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dbCfg := cfg.DB
	dbLog := log.With().Str("component", "gorm").Logger()

	database, err := gorm.Open(postgres.Open(withLockTimeout(dbCfg.DSN, dbCfg.TxTimeout)), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: gormlogger.New(zerologWriter{logger: dbLog}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  selectLogLevel(cfg.Environment),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	dbLog.Info().Dur("lock_timeout", dbCfg.TxTimeout).Msg("database ready")

	return database, nil
}

// withLockTimeout adds a lock_timeout session parameter to dsn unless one is already set.
// Both URL and keyword/value DSNs are accepted.
func withLockTimeout(dsn string, timeout time.Duration) string {
	if timeout <= 0 || strings.Contains(dsn, "lock_timeout") {
		return dsn
	}
	ms := fmt.Sprintf("%d", timeout.Milliseconds())

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("lock_timeout", ms)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn) + " lock_timeout=" + ms
}

func HealthCheck(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("SELECT 1").Error
}

func selectLogLevel(env string) gormlogger.LogLevel {
	switch env {
	case "development":
		return gormlogger.Info
	case "test":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

// zerologWriter routes gorm's printf-style output into the service logger.
type zerologWriter struct {
	logger zerolog.Logger
}

func (w zerologWriter) Printf(msg string, args ...interface{}) {
	w.logger.Debug().Msgf(msg, args...)
}
