package persistent

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Session establish and socket inactivity limits.
const (
	pgDialTimeout   = 30 * time.Second
	pgSocketTimeout = 45 * time.Second
)

func PgOpen(ctx context.Context, pgDsn string) *bun.DB {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(pgDsn),
		pgdriver.WithDialTimeout(pgDialTimeout),
		pgdriver.WithReadTimeout(pgSocketTimeout),
		pgdriver.WithWriteTimeout(pgSocketTimeout),
	)
	sqldb := sql.OpenDB(connector)
	if err := sqldb.Ping(); err != nil {
		logrus.WithError(err).Fatalln("Could not ping pg database.")
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if os.Getenv("DB_VERBOSE") == "true" {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Running integration tests requires real pg db instance, but we
// don't have enought time to start db for every test so we will start db once
// and then pass datasource to as many tests as we want.

func PgOpenTest(ctx context.Context) *bun.DB {
	return PgOpen(ctx, TestEnvDsn())
}

func TestEnvDsn() string {
	return os.Getenv("PGDB_DSN")
}

func SetTestEnvDsn(dsn string) {
	os.Setenv("PGDB_DSN", dsn)
}
