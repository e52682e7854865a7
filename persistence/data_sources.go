package persistence

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	otgorm "github.com/smacker/opentracing-gorm"
)

var ActiveDataSourceManager *DataSourceManager

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_URL=mysql://root:root@(127.0.0.1:3306)/marketflow?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	databaseURL := os.ExpandEnv(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return nil, errors.New("environment variable DATABASE_URL is empty")
	}
	idx := strings.Index(databaseURL, "://")
	if idx <= 0 {
		return nil, errors.New("invalid DATABASE_URL: driver prefix not found")
	}
	return &DatabaseConfig{DriverType: databaseURL[0:idx], DriverArgs: databaseURL[idx+3:]}, nil
}

type DataSourceManager struct {
	gormDB *gorm.DB

	DatabaseConfig *DatabaseConfig
}

func (m *DataSourceManager) Start() error {
	db, err := connect(m.DatabaseConfig)
	if err != nil {
		return err
	}
	otgorm.AddGormCallbacks(db)
	m.gormDB = db
	if os.Getenv("GIN_MODE") != "release" {
		m.gormDB.LogMode(true)
	}
	return nil
}

func (m *DataSourceManager) Stop() {
	if m.gormDB != nil {
		if err := m.gormDB.Close(); err != nil {
			log.Printf("failed to close DB: %v", err)
		}
		m.gormDB = nil
	}
}

func (m *DataSourceManager) GormDB(ctx context.Context) *gorm.DB {
	if m.gormDB == nil {
		return nil
	}
	db := m.gormDB.New()
	if ctx != nil {
		db = otgorm.SetSpanToGorm(ctx, db)
	}
	return db
}

func connect(config *DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(config.DriverType, config.DriverArgs)
	if err != nil {
		return nil, err
	}
	err = db.DB().Ping()
	if err != nil {
		return nil, err
	}
	return db, nil
}

// PrepareMysqlDatabase creates the database named in driverArgs when absent.
func PrepareMysqlDatabase(driverArgs string) error {
	argsWithoutArgs := driverArgs
	if idx := strings.Index(argsWithoutArgs, "?"); idx >= 0 {
		argsWithoutArgs = argsWithoutArgs[0:idx]
	}
	idx := strings.LastIndex(argsWithoutArgs, "/")
	if idx < 0 {
		return errors.New("database name not found in driver args")
	}
	databaseName := argsWithoutArgs[idx+1:]
	serverArgs := driverArgs[0:strings.LastIndex(driverArgs, "/"+databaseName)] + "/"

	conn, err := sql.Open("mysql", serverArgs)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	_, err = conn.Exec("CREATE DATABASE IF NOT EXISTS " + databaseName + " CHARACTER SET utf8mb4")
	return err
}
