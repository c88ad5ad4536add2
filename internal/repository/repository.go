package repository

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// NewPool は PostgreSQL 接続プールを生成する
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// NewMySQL は MySQL 接続プールを生成する。created_at を time.Time で受け取るため parseTime を強制する
func NewMySQL(ctx context.Context, dsn string, maxOpen int) (*sqlx.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Store bundles a SubmissionRepository with its health check and the
// function that releases the underlying connection pool.
type Store struct {
	Submissions SubmissionRepository
	DB          DB
	Close       func()
}

// Open connects to the backend named by driver ("postgres", "mysql" or
// "memory") and returns a Store that owns the connection pool.
func Open(ctx context.Context, driver, postgresURL, mysqlDSN string) (*Store, error) {
	switch driver {
	case "postgres":
		pool, err := NewPool(ctx, postgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Store{
			Submissions: NewPgSubmissionRepository(pool),
			DB:          pool,
			Close:       pool.Close,
		}, nil
	case "mysql":
		db, err := NewMySQL(ctx, mysqlDSN, 10)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		repo := NewMySQLSubmissionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure mysql schema: %w", err)
		}
		return &Store{
			Submissions: repo,
			DB:          repo,
			Close:       func() { _ = db.Close() },
		}, nil
	case "memory":
		repo := NewMemorySubmissionRepository()
		return &Store{Submissions: repo, DB: repo, Close: func() {}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
