package testdb

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// adminDSNEnv points at a running Postgres with createdb rights. The
// instance provisions a scratch database there and drops it on Down.
const adminDSNEnv = "TEST_DATABASE_URI"

var ErrNoDatabase = fmt.Errorf("%s is not set", adminDSNEnv)

type TestDBInstance struct {
	DSN      string
	adminDSN string
	name     string
}

func NewTestDBInstance() (*TestDBInstance, error) {
	adminDSN := os.Getenv(adminDSNEnv)
	if adminDSN == "" {
		return nil, ErrNoDatabase
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test db host: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	name := "sokopay_test_" + uuid.New().String()[:8]
	_, err = conn.Exec(ctx, "CREATE DATABASE "+name)
	if err != nil {
		return nil, fmt.Errorf("failed to create test database: %w", err)
	}

	dsn, err := replaceDatabase(adminDSN, name)
	if err != nil {
		return nil, err
	}

	return &TestDBInstance{
		DSN:      dsn,
		adminDSN: adminDSN,
		name:     name,
	}, nil
}

func (i *TestDBInstance) Down() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, i.adminDSN)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close(ctx) }()

	_, _ = conn.Exec(ctx, "DROP DATABASE IF EXISTS "+i.name+" WITH (FORCE)")
}

func replaceDatabase(dsn string, name string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("failed to parse admin DSN: %w", err)
		}
		u.Path = "/" + name
		return u.String(), nil
	}
	// keyword/value form: a later dbname key overrides an earlier one
	return dsn + " dbname=" + name, nil
}
