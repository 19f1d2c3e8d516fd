package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
)

// NewPostgresStore opens connStr with lib/pq and hands the pool to gorm.
func NewPostgresStore(connStr string, opts Options) (*GormStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	store, err := newGormStore(postgres.New(postgres.Config{Conn: db}), opts)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}
