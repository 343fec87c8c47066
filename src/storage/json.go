package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"azt-exchange/src/logger"
	"azt-exchange/src/models"
)

// -----------------------------------------------------------------------------
// JSONHistoryDB persists the whole per-ticker history map as one JSON
// document. Writes go to a temp file first and are renamed into place, so a
// reader never observes a half-written document and a crash mid-write leaves
// the previous version intact.
// -----------------------------------------------------------------------------

type JSONHistoryDB struct {
	Config *models.MConfig
	Logger *logger.Logger

	mu      sync.Mutex
	path    string
	history map[string][]models.MSample
}

// -----------------------------------------------------------------------------

func NewJSONHistoryDB(cfg *models.MConfig, log *logger.Logger) (*JSONHistoryDB, error) {
	return &JSONHistoryDB{
		Config: cfg,
		Logger: log,
		path:   cfg.Storage.DBPath,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *JSONHistoryDB) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		d.history = make(map[string][]models.MSample)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history file '%s': %w", d.path, err)
	}

	var history map[string][]models.MSample
	if err := json.Unmarshal(data, &history); err != nil {
		return fmt.Errorf("failed to parse history file '%s': %w", d.path, err)
	}

	d.history = history
	d.Logger.Info("JSON history loaded: %d tickers from %s", len(history), d.path)
	return nil
}

// -----------------------------------------------------------------------------

func (d *JSONHistoryDB) LoadAll() (map[string][]models.MSample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make(map[string][]models.MSample, len(d.history))
	for ticker, samples := range d.history {
		copied := make([]models.MSample, len(samples))
		copy(copied, samples)
		result[ticker] = copied
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (d *JSONHistoryDB) AppendSamples(samples []models.MSample) error {
	if len(samples) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, s := range samples {
		d.history[s.Ticker] = append(d.history[s.Ticker], s)
	}
	d.trimLocked()

	return d.flushLocked()
}

// -----------------------------------------------------------------------------

func (d *JSONHistoryDB) ReplaceSeries(ticker string, samples []models.MSample) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	copied := make([]models.MSample, len(samples))
	copy(copied, samples)
	d.history[ticker] = copied

	return d.flushLocked()
}

// -----------------------------------------------------------------------------

func (d *JSONHistoryDB) CleanupOldData() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.trimLocked()
	return d.flushLocked()
}

// -----------------------------------------------------------------------------

func (d *JSONHistoryDB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.flushLocked()
}

// -----------------------------------------------------------------------------

// trimLocked enforces the retention cap per ticker. Callers hold d.mu.
func (d *JSONHistoryDB) trimLocked() {
	limit := d.Config.Market.RetentionLimit
	if limit <= 0 {
		return
	}

	for ticker, samples := range d.history {
		if len(samples) > limit {
			d.history[ticker] = samples[len(samples)-limit:]
		}
	}
}

// -----------------------------------------------------------------------------

// flushLocked writes the document atomically. Callers hold d.mu.
func (d *JSONHistoryDB) flushLocked() error {
	data, err := json.Marshal(d.history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp history file: %w", err)
	}

	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	return nil
}
