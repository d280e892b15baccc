package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Gopher0727/TripMate/config"
	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	"github.com/Gopher0727/TripMate/internal/repository/memstore"
)

// Open builds the store selected by cfg.Storage.Driver. The returned close func
// releases the underlying connection pool and is safe to call for the memory store.
func Open(cfg *config.Config) (repository.IStore, func() error, error) {
	var dialector gorm.Dialector
	var maxIdle, maxOpen int

	switch cfg.Storage.Driver {
	case "memory":
		return memstore.New(), func() error { return nil }, nil
	case "postgres":
		dialector = postgres.Open(BuildPostgresDSN(&cfg.Postgres))
		maxIdle, maxOpen = cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns
	case "mysql":
		dialector = mysql.Open(BuildMySQLDSN(&cfg.MySQL))
		maxIdle, maxOpen = cfg.MySQL.MaxIdleConns, cfg.MySQL.MaxOpenConns
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	db, err := OpenGorm(dialector, maxIdle, maxOpen)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return repository.NewStore(db), sqlDB.Close, nil
}

// OpenGorm connects through dialector, sizes the pool and migrates the schema.
func OpenGorm(dialector gorm.Dialector, maxIdleConns, maxOpenConns int) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if maxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(maxIdleConns)
	}
	if maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables and their unique indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func BuildPostgresDSN(cfg *config.PostgresConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslmode)
}

func BuildMySQLDSN(cfg *config.MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
}
