package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/spf13/viper"

	"mevscan/logger"
	"mevscan/types"
)

type ClickhouseDB struct {
	conn driver.Conn
}

func NewClickhouse() Database {
	opts := &clickhouse.Options{
		Addr: []string{viper.GetString("CLICKHOUSE_ADDR")},
		Auth: clickhouse.Auth{
			Database: viper.GetString("CLICKHOUSE_DATABASE"),
			Username: viper.GetString("CLICKHOUSE_USERNAME"),
			Password: viper.GetString("CLICKHOUSE_PASSWORD"),
		},
		DialTimeout:  5 * time.Second,
		Compression:  &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		MaxOpenConns: 10,
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		slog.Error("Failed to connect to ClickHouse", "error", err)
	}

	return &ClickhouseDB{conn: conn}
}

// Database interface implementation
func (d *ClickhouseDB) Close() error {
	return d.conn.Close()
}

func (d *ClickhouseDB) EnsureDatabaseExists() error {
	query := `CREATE DATABASE IF NOT EXISTS mevscan`
	if err := d.conn.Exec(context.Background(), query); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}
	logger.GlobalLogger.Info("Database ensured to exist", "database", "mevscan")
	return nil
}

func (d *ClickhouseDB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS mevscan.analysis_reports
		(
			signature String,
			slot UInt64,
			analyzedAt DateTime,

			inBundle Bool,
			tipLamports UInt64,

			sandwichFound Bool,
			frontrunFound Bool,
			frontTx String,
			backTx String,

			lossLamports UInt64,
			lossPercentage Float64,
			lossMethod String,
			attackerProfit UInt64,
			confidence Float64
		)
		ENGINE = ReplacingMergeTree
		PRIMARY KEY signature
		ORDER BY signature
		SETTINGS index_granularity = 8192`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return err
		}
		logger.GlobalLogger.Info("Check or create table in DB", "query", q)
	}
	return nil
}

func (d *ClickhouseDB) DropTables() error {
	var dbName string
	if err := d.conn.QueryRow(context.Background(), "SELECT currentDatabase()").Scan(&dbName); err != nil {
		return fmt.Errorf("failed to get current database: %w", err)
	}

	rows, err := d.conn.Query(context.Background(),
		fmt.Sprintf("SHOW TABLES FROM %s", dbName))
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, t)
	}

	for _, t := range tables {
		q := fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", dbName, t)
		if err := d.conn.Exec(context.Background(), q); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", t, err)
		}
	}

	return nil
}

func (d *ClickhouseDB) InsertAnalysisReports(reports []*types.AnalysisReport) error {
	if len(reports) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(context.Background(), "INSERT INTO mevscan.analysis_reports")
	if err != nil {
		return err
	}
	for _, report := range reports {
		if err := batch.AppendStruct(report); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (d *ClickhouseDB) QueryAnalyzedSignatures(limit uint) ([]string, error) {
	rows, err := d.conn.Query(context.Background(),
		fmt.Sprintf(`SELECT signature FROM mevscan.analysis_reports ORDER BY analyzedAt DESC LIMIT %d`, limit))
	if err != nil {
		return nil, fmt.Errorf("query analyzed signatures failed: %w", err)
	}
	defer rows.Close()

	var sigs []string
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("scan signature failed: %w", err)
		}
		sigs = append(sigs, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sigs, nil
}

func (d *ClickhouseDB) QueryLastAnalyzedSlot() (uint64, error) {
	row := d.conn.QueryRow(context.Background(),
		`SELECT ifNull(max(slot), toUInt64(0)) FROM mevscan.analysis_reports`)
	var slot uint64
	if err := row.Scan(&slot); err != nil {
		return 0, fmt.Errorf("query last analyzed slot failed: %w", err)
	}
	return slot, nil
}
