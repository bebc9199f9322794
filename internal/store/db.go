package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig holds database connection configuration.
type DBConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
	Port     int
}

// DSN returns the PostgreSQL connection string. An unset TimeZone falls back
// to UTC so observation timestamps compare consistently across services.
func (c DBConfig) DSN() string {
	tz := c.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode, tz)
}

// NewDB creates a new database connection and runs migrations.
func NewDB(config DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&Farm{},
		&Barn{},
		&Stall{},
		&Device{},
		&Pig{},
		&TemperatureRecord{},
		&BCSRecord{},
		&PostureRecord{},
		&HealthStatusRecord{},
		&FertilityStatusRecord{},
		&HeatStatusRecord{},
		&BreathRateRecord{},
		&VulvaSwellingRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// CloseDB closes the database connection.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
