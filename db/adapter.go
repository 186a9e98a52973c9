package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pagebound/inkdesk/config"
	dbmysql "github.com/pagebound/inkdesk/db/mysql"
	dbsqlite "github.com/pagebound/inkdesk/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeMemory:
		// A named shared-cache DSN so every pooled connection sees the
		// same in-memory database; the random name isolates parallel opens.
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
		return dbsqlite.Open(dsn)
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
