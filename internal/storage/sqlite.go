package storage

import (
	"strings"

	"gorm.io/driver/sqlite"
)

// NewSQLiteStore opens an SQLite database at dbPath. In-memory databases are
// pinned to a single connection so every query sees the same schema.
func NewSQLiteStore(dbPath string, opts Options) (*GormStore, error) {
	if isInMemory(dbPath) {
		opts.MaxOpenConns = 1
		opts.MaxIdleConns = 1
		opts.ConnMaxLifetime = 0
	}

	return newGormStore(sqlite.Open(dbPath), opts)
}

func isInMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}
