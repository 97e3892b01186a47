package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/monocle-dev/planboard/internal/logging"
	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Postgres goes through lib/pq rather than the dialector's default pgx.
	_ "github.com/lib/pq"
)

// Connect opens a database for one of the supported drivers: "postgres",
// "mysql" or "sqlite".
func Connect(driver, dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(logging.Logger, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}

	return gdb, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), nil
	case "mysql":
		return mysql.Open(withParam(dsn, "parseTime", "true")), nil
	case "sqlite":
		return sqlite.Open(withParam(dsn, "_foreign_keys", "on")), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// withParam appends key=value to a DSN query string unless the key is set.
func withParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}

func Migrate(gdb *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.ProjectMembership{},
		&models.NotificationRule{},
	}

	return gdb.AutoMigrate(models...)
}
