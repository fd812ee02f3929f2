package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"member-service/src/pkg/log"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

// DBInterface hides the concrete connection so repositories and tests can
// share the same constructor signatures.
type DBInterface interface {
	GetDB() (*sqlx.DB, error)
}

type Database struct {
	db *sqlx.DB
}

func InitConnection(v *viper.Viper, logger log.Log) (DBInterface, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		v.GetString("database.username"),
		v.GetString("database.password"),
		v.GetString("database.host"),
		v.GetInt("database.port"),
		v.GetString("database.name"),
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		logger.Error("mysql-init", err.Error(), "connect", "")
		return &Database{}, err
	}

	maxOpen := v.GetInt("database.pool.max_open")
	if maxOpen == 0 {
		maxOpen = 25
	}
	maxIdle := v.GetInt("database.pool.max_idle")
	if maxIdle == 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Database{db: db}, nil
}

// NewFromDB wraps an already opened connection, used by tests.
func NewFromDB(db *sqlx.DB) DBInterface {
	return &Database{db: db}
}

func (d *Database) GetDB() (*sqlx.DB, error) {
	if d.db == nil {
		return nil, errors.New("database connection is not initialized")
	}
	return d.db, nil
}

// WithTransaction runs fn inside a transaction. Any error from fn rolls the
// whole unit of work back.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// IsDuplicateEntry reports whether err is a MySQL duplicate-key violation
// (errno 1062), used to detect seller id collisions under concurrency.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *driver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
