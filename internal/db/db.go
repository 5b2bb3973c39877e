package db

import (
	"context"
	"fmt"
	"time"

	"github.com/notifix/notifix/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Open builds the Postgres handle. A failed connectivity check is logged and
// the handle is still returned, so the server keeps serving and the failure
// surfaces on the requests that touch the store.
func Open(cfg config.Config, l *zap.Logger) (*gorm.DB, error) {
	d, err := gorm.Open(postgres.Open(cfg.DatabaseURL), GormConfig(cfg, l))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Ping(ctx, d); err != nil {
		l.Warn("database connection failed, continuing without it", zap.Error(err))
	} else {
		l.Info("connected to database")
	}

	return d, nil
}

// GormConfig is shared by the server, the seed tool and the tests.
func GormConfig(cfg config.Config, l *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:               newLogger(cfg.DBLogLevel, l),
		NamingStrategy:       Naming(cfg.Schema),
		DisableAutomaticPing: true,
	}
}

// Naming puts both tables into schema when one is configured.
func Naming(schemaName string) schema.NamingStrategy {
	if schemaName == "" {
		return schema.NamingStrategy{}
	}
	return schema.NamingStrategy{TablePrefix: schemaName + "."}
}

func Ping(ctx context.Context, d *gorm.DB) error {
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func newLogger(level string, l *zap.Logger) logger.Interface {
	lvl := logger.Warn
	switch level {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}

	return logger.New(
		zap.NewStdLog(l.Named("gorm")),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
