package seriesstore

import (
	"sync"
	"time"

	"azt-exchange/src/analysis/core"
	"azt-exchange/src/models"
)

// -----------------------------------------------------------------------------
// SeriesStore keeps the in-memory minute series for every ticker. It is the
// working set the simulator reads and writes each tick; durable storage is a
// separate concern handled by the history stores.
// -----------------------------------------------------------------------------

type SeriesStore struct {
	mu        sync.RWMutex
	series    map[string]*sampleRing
	retention int
	// Price assumed for a ticker with no usable history yet
	defaultPrice float64
}

// -----------------------------------------------------------------------------

func NewSeriesStore(retention int, defaultPrice float64) *SeriesStore {
	if retention <= 0 {
		retention = 1000
	}
	if defaultPrice <= 0 {
		defaultPrice = 100.0
	}

	return &SeriesStore{
		series:       make(map[string]*sampleRing),
		retention:    retention,
		defaultPrice: defaultPrice,
	}
}

// -----------------------------------------------------------------------------

// Append adds one sample to a ticker's series, evicting the oldest sample
// once the retention limit is reached.
func (s *SeriesStore) Append(ticker string, sample models.MSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ring, ok := s.series[ticker]
	if !ok {
		ring = newSampleRing(s.retention)
		s.series[ticker] = ring
	}
	ring.append(sample)
}

// -----------------------------------------------------------------------------

// ReplaceAll swaps in an entire series for a ticker, keeping only the newest
// retention-limit samples. Used when seeding from durable storage and after
// a backfill.
func (s *SeriesStore) ReplaceAll(ticker string, samples []models.MSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ring := newSampleRing(s.retention)
	for _, sample := range samples {
		ring.append(sample)
	}
	s.series[ticker] = ring
}

// -----------------------------------------------------------------------------

// LatestValidPrice scans a ticker's series backwards and returns the newest
// finite positive price. Corrupt tail entries (NaN, Inf, non-positive) are
// stepped over rather than poisoning the next tick. Empty or fully corrupt
// series fall back to the configured default price.
func (s *SeriesStore) LatestValidPrice(ticker string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, ok := s.series[ticker]
	if !ok || ring.len() == 0 {
		return s.defaultPrice
	}

	for i := ring.len() - 1; i >= 0; i-- {
		if p := ring.at(i).Price; core.IsValidPrice(p) {
			return p
		}
	}

	return s.defaultPrice
}

// -----------------------------------------------------------------------------

// Latest returns the newest sample for a ticker, valid or not.
func (s *SeriesStore) Latest(ticker string) (models.MSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, ok := s.series[ticker]
	if !ok || ring.len() == 0 {
		return models.MSample{}, false
	}
	return ring.at(ring.len() - 1), true
}

// -----------------------------------------------------------------------------

// Window returns a ticker's samples newer than or equal to since, oldest
// first. The series is chronological so a single backwards scan finds the
// cut point.
func (s *SeriesStore) Window(ticker string, since time.Time) []models.MSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, ok := s.series[ticker]
	if !ok || ring.len() == 0 {
		return []models.MSample{}
	}

	start := ring.len()
	for i := ring.len() - 1; i >= 0; i-- {
		if ring.at(i).Timestamp.Before(since) {
			break
		}
		start = i
	}

	result := make([]models.MSample, 0, ring.len()-start)
	for i := start; i < ring.len(); i++ {
		result = append(result, ring.at(i))
	}
	return result
}

// -----------------------------------------------------------------------------

// All returns the full buffered series for a ticker, oldest first.
func (s *SeriesStore) All(ticker string) []models.MSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, ok := s.series[ticker]
	if !ok {
		return []models.MSample{}
	}
	return ring.all()
}

// -----------------------------------------------------------------------------

// IsEmpty reports whether a ticker has no buffered samples at all.
func (s *SeriesStore) IsEmpty(ticker string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, ok := s.series[ticker]
	return !ok || ring.len() == 0
}

// -----------------------------------------------------------------------------

// Len returns the number of buffered samples for a ticker.
func (s *SeriesStore) Len(ticker string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring, ok := s.series[ticker]
	if !ok {
		return 0
	}
	return ring.len()
}

// -----------------------------------------------------------------------------

// Tickers lists every ticker currently held.
func (s *SeriesStore) Tickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tickers := make([]string, 0, len(s.series))
	for t := range s.series {
		tickers = append(tickers, t)
	}
	return tickers
}

// -----------------------------------------------------------------------------

// LatestPrices snapshots the newest sample of every ticker, keyed by ticker.
// This is the payload shape the websocket hub broadcasts.
func (s *SeriesStore) LatestPrices() map[string]models.MSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prices := make(map[string]models.MSample, len(s.series))
	for ticker, ring := range s.series {
		if ring.len() == 0 {
			continue
		}
		prices[ticker] = ring.at(ring.len() - 1)
	}
	return prices
}
