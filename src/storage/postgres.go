package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"azt-exchange/src/logger"
	"azt-exchange/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresHistoryDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresHistoryDB(cfg *models.MConfig, log *logger.Logger) (*PostgresHistoryDB, error) {
	// Schema named after the executable so several instances can share one
	// database without clashing.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresHistoryDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresHistoryDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryDB) createTables() error {
	// History must survive restarts, hence IF NOT EXISTS rather than a drop.
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."stock_samples" (
			ticker TEXT,
			timestamp BIGINT,
			price DOUBLE PRECISION,
			volume BIGINT,
			change DOUBLE PRECISION,
			data_source TEXT,
			PRIMARY KEY (ticker, timestamp)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create stock_samples: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryDB) LoadAll() (map[string][]models.MSample, error) {
	query := fmt.Sprintf(`
		SELECT ticker, timestamp, price, volume, change, data_source
		FROM "%s"."stock_samples"
		ORDER BY ticker, timestamp
	`, d.Schema)

	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make(map[string][]models.MSample)
	for rows.Next() {
		var s models.MSample
		var ts int64
		if err := rows.Scan(&s.Ticker, &ts, &s.Price, &s.Volume, &s.Change, &s.DataSource); err != nil {
			return nil, err
		}
		s.Timestamp = time.UnixMilli(ts)
		history[s.Ticker] = append(history[s.Ticker], s)
	}

	return history, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryDB) AppendSamples(samples []models.MSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."stock_samples" (ticker, timestamp, price, volume, change, data_source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticker, timestamp) DO UPDATE SET
			price = EXCLUDED.price,
			volume = EXCLUDED.volume,
			change = EXCLUDED.change,
			data_source = EXCLUDED.data_source
	`, d.Schema)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.Exec(s.Ticker, s.Timestamp.UnixMilli(), s.Price, s.Volume, s.Change, s.DataSource)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryDB) ReplaceSeries(ticker string, samples []models.MSample) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s"."stock_samples" WHERE ticker = $1`, d.Schema), ticker); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO "%s"."stock_samples" (ticker, timestamp, price, volume, change, data_source)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.Schema)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.Exec(ticker, s.Timestamp.UnixMilli(), s.Price, s.Volume, s.Change, s.DataSource)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryDB) CleanupOldData() error {
	limit := d.Config.Market.RetentionLimit

	// Keep only the newest N samples per ticker
	query := fmt.Sprintf(`
		DELETE FROM "%s"."stock_samples" AS s
		WHERE (s.ticker, s.timestamp) NOT IN (
			SELECT ticker, timestamp FROM (
				SELECT ticker, timestamp,
					ROW_NUMBER() OVER (PARTITION BY ticker ORDER BY timestamp DESC) AS rn
				FROM "%s"."stock_samples"
			) ranked WHERE rn <= $1
		)
	`, d.Schema, d.Schema)
	if _, err := d.DB.Exec(query, limit); err != nil {
		d.Logger.Error("Cleanup stock_samples error: %v", err)
		return err
	}

	d.Logger.Info("Cleanup completed (retention: %d samples per ticker)", limit)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresHistoryDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
