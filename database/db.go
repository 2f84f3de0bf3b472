// Package database persists dispatched alerts and backtest records to an
// rqlite cluster.
package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avhal/scout/backtest"
	"github.com/avhal/scout/shared"
	"github.com/davecgh/go-spew/spew"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createAlertTableSQL  = "CREATE TABLE IF NOT EXISTS alert (id TEXT PRIMARY KEY, strategy TEXT, instrument TEXT, timeframe TEXT, candletime INTEGER, reason TEXT, createdon INTEGER)"
	createRecordTableSQL = "CREATE TABLE IF NOT EXISTS backtest_record (id TEXT PRIMARY KEY, strategy TEXT, instrument TEXT, timeframe TEXT, candletime INTEGER, reason TEXT, idx INTEGER, rangestart INTEGER, rangeend INTEGER)"
	persistAlertSQL      = "INSERT INTO alert(id, strategy, instrument, timeframe, candletime, reason, createdon) VALUES(?,?,?,?,?,?,?)"
	persistRecordSQL     = "INSERT OR REPLACE INTO backtest_record(id, strategy, instrument, timeframe, candletime, reason, idx, rangestart, rangeend) VALUES(?,?,?,?,?,?,?,?,?)"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the AlertStorer interface.
var _ shared.AlertStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createAlertTableSQL},
		{SQL: createRecordTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// PersistAlert stores the provided alert payload.
func (db *Database) PersistAlert(ctx context.Context, alert *shared.AlertPayload) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistAlertSQL,
			PositionalParams: []any{alert.ID, alert.Strategy, alert.Instrument,
				alert.Timeframe.String(), alert.Time.Unix(), alert.Reason, time.Now().Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		db.cfg.Logger.Error().Msgf("unexpected alert persistence failure: %s", spew.Sdump(alert))
		return fmt.Errorf("persisting alert %s: %d -> %s", alert.ID, idx, errStr)
	}

	return nil
}

// PersistBacktestReport stores every record of the provided backtest report.
func (db *Database) PersistBacktestReport(ctx context.Context, report *backtest.Report) error {
	if len(report.Records) == 0 {
		return nil
	}

	statements := make(rqlitehttp.SQLStatements, 0, len(report.Records))
	for idx := range report.Records {
		record := &report.Records[idx]
		statements = append(statements, &rqlitehttp.SQLStatement{
			SQL: persistRecordSQL,
			PositionalParams: []any{record.ID, record.Strategy, record.Instrument,
				record.Timeframe.String(), record.Time.Unix(), record.Reason,
				record.Index, report.Start.Unix(), report.End.Unix()},
		})
	}

	resp, err := db.client.Execute(ctx, statements,
		&rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting backtest report for %s: %d -> %s", report.Instrument, idx, errStr)
	}

	return nil
}
