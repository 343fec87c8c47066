package storage

import (
	"database/sql"
	"fmt"
	"time"

	"azt-exchange/src/logger"
	"azt-exchange/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteHistoryDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteHistoryDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteHistoryDB, error) {
	return &SQLiteHistoryDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryDB) createTables() error {
	// History must survive restarts, hence IF NOT EXISTS rather than a drop.
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS stock_samples (
			ticker TEXT,
			timestamp INTEGER,
			price REAL,
			volume INTEGER,
			change REAL,
			data_source TEXT,
			PRIMARY KEY (ticker, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create stock_samples: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryDB) LoadAll() (map[string][]models.MSample, error) {
	rows, err := d.DB.Query(`
		SELECT ticker, timestamp, price, volume, change, data_source
		FROM stock_samples
		ORDER BY ticker, timestamp
	`)
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

func (d *SQLiteHistoryDB) AppendSamples(samples []models.MSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO stock_samples (ticker, timestamp, price, volume, change, data_source)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
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

func (d *SQLiteHistoryDB) ReplaceSeries(ticker string, samples []models.MSample) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM stock_samples WHERE ticker = ?", ticker); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO stock_samples (ticker, timestamp, price, volume, change, data_source)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
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

func (d *SQLiteHistoryDB) CleanupOldData() error {
	limit := d.Config.Market.RetentionLimit

	// Keep only the newest N samples per ticker
	query := `
		DELETE FROM stock_samples
		WHERE (ticker, timestamp) NOT IN (
			SELECT ticker, timestamp FROM (
				SELECT ticker, timestamp,
					ROW_NUMBER() OVER (PARTITION BY ticker ORDER BY timestamp DESC) AS rn
				FROM stock_samples
			) WHERE rn <= ?
		)
	`
	if _, err := d.DB.Exec(query, limit); err != nil {
		d.Logger.Error("Cleanup stock_samples error: %v", err)
		return err
	}

	d.Logger.Info("Cleanup completed (retention: %d samples per ticker)", limit)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteHistoryDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
