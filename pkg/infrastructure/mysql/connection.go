package mysql

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

type DSN struct {
	User     string
	Password string
	Host     string
	Database string
}

// String formats the DSN for go-sql-driver. Found rows are reported instead
// of changed rows so that an UPDATE writing the current value still counts.
func (d DSN) String() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = d.Host
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

// Open connects to MySQL and waits for it with exponential backoff until
// connectTimeout elapses.
func Open(ctx context.Context, dsn DSN, connectTimeout time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		pingErr := db.PingContext(ctx)
		if pingErr != nil {
			log.WithError(pingErr).WithField("attempt", attempt).Warn("database is not ready")
		}
		return pingErr
	}, policy)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to database after %d attempts", attempt)
	}

	log.WithFields(log.Fields{"host": dsn.Host, "database": dsn.Database}).Info("connected to database")
	return db, nil
}
