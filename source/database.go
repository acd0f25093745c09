package source

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vesting-audit/vesting"
)

// RequestSettings are per-query knobs shared by all database reads.
type RequestSettings struct {
	Timeout time.Duration
}

// DbClient reads audit inputs from the chain index database.
type DbClient struct {
	Pool     *pgxpool.Pool
	settings RequestSettings
}

func NewDbClient(dsn string, maxconns int, minconns int, settings RequestSettings) (*DbClient, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxconns > 0 {
		config.MaxConns = int32(maxconns)
	}
	if minconns > 0 {
		config.MinConns = int32(minconns)
	}
	config.HealthCheckPeriod = 60 * time.Second

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	return &DbClient{Pool: pool, settings: settings}, nil
}

func (db *DbClient) Close() {
	db.Pool.Close()
}

// ReferenceBlock returns the highest finalized block number of the index.
// Block numbers are scanned as text: the column is NUMERIC and the value
// must survive beyond int64.
func (db *DbClient) ReferenceBlock(ctx context.Context) (*big.Int, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, vesting.AuditError{Code: 500, Message: err.Error()}
	}
	defer conn.Release()

	ctx, cancel_ctx := context.WithTimeout(ctx, db.settings.Timeout)
	defer cancel_ctx()

	var number *string
	query := `SELECT max(number)::text FROM blocks WHERE finalized`
	if err := conn.QueryRow(ctx, query).Scan(&number); err != nil {
		return nil, vesting.AuditError{Code: 500, Message: err.Error()}
	}
	if number == nil {
		return nil, vesting.AuditError{Code: 404, Message: "no finalized blocks in index"}
	}
	value, ok := new(big.Int).SetString(*number, 10)
	if !ok {
		return nil, vesting.AuditError{Code: 500, Message: fmt.Sprintf("bad finalized block number: %q", *number)}
	}
	return value, nil
}
