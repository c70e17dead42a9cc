package db

import (
	"errors"
	"favplaces/config"
	"favplaces/logger"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Instance *gorm.DB

// Init opens MySQL if MYSQL_DSN is set, SQLite otherwise
func Init() error {
	if Instance != nil {
		return nil
	}
	log := logger.Component("db")
	var dialector gorm.Dialector
	if config.MYSQL_DSN != "" {
		dsn, err := mysqldriver.ParseDSN(config.MYSQL_DSN)
		if err != nil {
			return err
		}
		log.Info().Str("addr", dsn.Addr).Str("db", dsn.DBName).Msg("Using MySQL")
		dialector = mysql.Open(config.MYSQL_DSN)
	} else if config.SQLITE_FILE != "" {
		log.Info().Str("file", config.SQLITE_FILE).Msg("Using SQLite")
		dialector = sqlite.Open(config.SQLITE_FILE)
	} else {
		return errors.New("database storage needs MYSQL_DSN or SQLITE_FILE")
	}
	db, err := Open(dialector)
	if err != nil {
		return err
	}
	Instance = db
	return nil
}

func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	level := gormlogger.Silent
	if config.DEBUG_MODE {
		level = gormlogger.Warn
	}
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 gormlogger.Default.LogMode(level),
	})
}
