package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"azt-exchange/src/logger"
	"azt-exchange/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testJSONStore(t *testing.T, retention int) *JSONHistoryDB {
	t.Helper()

	cfg := &models.MConfig{}
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "history.json")
	cfg.Market.RetentionLimit = retention

	db, err := NewJSONHistoryDB(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	return db
}

// -----------------------------------------------------------------------------

func testSamples(ticker string, n int) []models.MSample {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	samples := make([]models.MSample, n)
	for i := range samples {
		samples[i] = models.MSample{
			Ticker:     ticker,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Price:      float64(10 + i),
			Volume:     int64(100 + i),
			DataSource: models.DataSourceGenerated,
		}
	}
	return samples
}

// -----------------------------------------------------------------------------

func TestJSONHistorySurvivesReopen(t *testing.T) {
	db := testJSONStore(t, 100)
	samples := testSamples("AZT", 3)

	require.NoError(t, db.AppendSamples(samples))
	require.NoError(t, db.Close())

	// Reopen against the same file
	reopened, err := NewJSONHistoryDB(db.Config, db.Logger)
	require.NoError(t, err)
	require.NoError(t, reopened.Initialize())

	loaded, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded["AZT"], 3)
	assert.Equal(t, 10.0, loaded["AZT"][0].Price)
	assert.Equal(t, 12.0, loaded["AZT"][2].Price)
	assert.True(t, loaded["AZT"][0].Timestamp.Equal(samples[0].Timestamp))
}

// -----------------------------------------------------------------------------

func TestJSONHistoryAppendTrimsToRetention(t *testing.T) {
	db := testJSONStore(t, 5)

	require.NoError(t, db.AppendSamples(testSamples("AZT", 8)))

	loaded, err := db.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded["AZT"], 5)
	assert.Equal(t, 13.0, loaded["AZT"][0].Price, "oldest samples are dropped first")
}

// -----------------------------------------------------------------------------

func TestJSONHistoryReplaceSeries(t *testing.T) {
	db := testJSONStore(t, 100)

	require.NoError(t, db.AppendSamples(testSamples("AZT", 3)))
	require.NoError(t, db.ReplaceSeries("AZT", testSamples("AZT", 1)))

	loaded, err := db.LoadAll()
	require.NoError(t, err)
	assert.Len(t, loaded["AZT"], 1)
}

// -----------------------------------------------------------------------------

func TestJSONHistoryLeavesNoTempFile(t *testing.T) {
	db := testJSONStore(t, 100)
	require.NoError(t, db.AppendSamples(testSamples("AZT", 1)))

	_, err := os.Stat(db.Config.Storage.DBPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

// -----------------------------------------------------------------------------

func TestJSONHistoryLoadAllReturnsCopies(t *testing.T) {
	db := testJSONStore(t, 100)
	require.NoError(t, db.AppendSamples(testSamples("AZT", 2)))

	loaded, err := db.LoadAll()
	require.NoError(t, err)
	loaded["AZT"][0].Price = -1

	again, err := db.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 10.0, again["AZT"][0].Price, "callers must not share the internal slice")
}
