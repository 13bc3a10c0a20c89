package gorm

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB struct
type DB struct {
	Postgres *gorm.DB
	// SQL is the pool under Postgres, shared with the device store
	SQL *sql.DB
}

// ConnectionString func - builds the libpq keyword/value string
func ConnectionString(host, port, username, pass, dbname string, sslmode bool) (string, error) {
	if host == "" && port == "" && dbname == "" {
		return "", errors.New("cannot establish the connection: no postgres host, port or database")
	}
	mode := "disable"
	if sslmode {
		mode = "require"
	}
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=%v connect_timeout=10",
		host, username, pass, dbname, port, mode), nil
}

// ConnectToPostgreSQL func
func ConnectToPostgreSQL(host, port, username, pass, dbname string, sslmode bool) (*DB, error) {
	connectionStr, err := ConnectionString(host, port, username, pass, dbname, sslmode)
	if err != nil {
		return nil, err
	}

	pg, err := gorm.Open(postgres.Open(connectionStr), &gorm.Config{
		DryRun: false,
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		logrus.Error(err)
		return nil, err
	}
	sqlDB, err := pg.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)

	logrus.Infof("Connected to postgres %s:%s/%s", host, port, dbname)
	return &DB{Postgres: pg, SQL: sqlDB}, nil
}

// DisconnectPostgres func
func DisconnectPostgres(db *DB) {
	if db == nil || db.SQL == nil {
		return
	}
	if err := db.SQL.Close(); err != nil {
		logrus.Error(err)
		return
	}
	logrus.Println("Connection with postgres has closed")
}
