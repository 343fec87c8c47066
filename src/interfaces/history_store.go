package interfaces

import "azt-exchange/src/models"

// -----------------------------------------------------------------------------
// IHistoryStore defines the contract for durable price-history persistence.
// Writes must be durable before the call returns; concurrent readers must
// never observe a half-written document.
// -----------------------------------------------------------------------------

type IHistoryStore interface {

	// Initialize sets up the underlying storage (schema, file load).
	Initialize() error

	// -----------------------------------------------------------------------------

	// LoadAll returns the whole persisted history, keyed by ticker, each
	// series ordered by timestamp ascending.
	LoadAll() (map[string][]models.MSample, error)

	// -----------------------------------------------------------------------------

	// AppendSamples durably stores a batch of new samples (one tick's output).
	AppendSamples(samples []models.MSample) error

	// -----------------------------------------------------------------------------

	// ReplaceSeries durably replaces one ticker's full series (backfill path).
	ReplaceSeries(ticker string, samples []models.MSample) error

	// -----------------------------------------------------------------------------

	// CleanupOldData trims every series to the retention limit.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the store
	Close() error
}
