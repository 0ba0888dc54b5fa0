// Package database is the SQLite data store accessor behind the tool set.
// All queries are parameterized through bun; order placement is the only
// multi-statement path and runs in a single transaction.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Config struct {
	Path string `envconfig:"PATH" split_words:"true" default:"salesagent.db"`
	Seed bool   `envconfig:"SEED" split_words:"true" default:"true"`
}

type DB struct {
	bun  *bun.DB
	seed bool
}

func NewDB(cfg Config) (*DB, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("database path is required")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; keep the pool at a single connection so
	// an in-memory database is shared too.
	sqldb.SetMaxOpenConns(1)

	return &DB{
		bun:  bun.NewDB(sqldb, sqlitedialect.New()),
		seed: cfg.Seed,
	}, nil
}

func MustNew(cfg Config) *DB {
	db, err := NewDB(cfg)
	if err != nil {
		panic(err)
	}
	return db
}

// Init creates the schema if needed and seeds the catalog when the
// products table is empty and seeding is enabled.
func (d *DB) Init(ctx context.Context) error {
	if err := d.createSchema(ctx); err != nil {
		return err
	}
	if !d.seed {
		return nil
	}
	return d.seedCatalog(ctx)
}

func (d *DB) Close() error {
	return d.bun.Close()
}
