package simulator

import (
	"math"

	"azt-exchange/src/analysis/core"
	"azt-exchange/src/helpers"
	"azt-exchange/src/models"
)

// -----------------------------------------------------------------------------
// Lazy history backfill. A symbol requested before it has ever ticked gets a
// synthetic 30-day daily series so charts are not empty on day one. Runs at
// most once per symbol: the generated series is persisted immediately, so a
// restart finds it in durable storage instead of regenerating.
// -----------------------------------------------------------------------------

// EnsureHistory seeds a daily series for the ticker if it has none.
func (s *Simulator) EnsureHistory(ticker string) error {
	if !s.store.IsEmpty(ticker) {
		return nil
	}

	author, ok := s.findAuthor(ticker)
	if !ok {
		return helpers.NewValidationError("unknown ticker: "+ticker, nil)
	}

	samples := s.generateBackfill(author)
	s.store.ReplaceAll(ticker, samples)

	if err := s.history.ReplaceSeries(ticker, samples); err != nil {
		return helpers.NewStorageError("failed to persist backfilled history", err)
	}

	s.log.Info("Backfilled %d days of history for %s", s.backfillDays, ticker)
	return nil
}

// -----------------------------------------------------------------------------

// generateBackfill produces one sample per day. With a live quote the series
// hovers around fair value with 5% daily volatility and is marked as
// statistics-derived; without one it degrades to a bounded random walk from
// the default price.
func (s *Simulator) generateBackfill(author models.MAuthor) []models.MSample {
	days := s.backfillDays
	if days <= 0 {
		days = 30
	}

	now := s.now()
	samples := make([]models.MSample, 0, days)

	quote, haveQuote := s.valuation.FairValue(author)

	prev := s.store.LatestValidPrice(author.Ticker) // default price on empty series
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)

		var price float64
		var volume int64
		dataSource := models.DataSourceGenerated

		if haveQuote {
			price = math.Max(1, quote.Price*(1+(s.randFloat()-0.5)*0.05))
			volume = quote.Volume + int64(math.Floor(s.randFloat()*1000))
			dataSource = models.DataSourceStatistics
		} else if i == days-1 {
			price = prev
		} else {
			// Bounded walk: +-5% per day
			price = math.Max(1, prev*(0.95+s.randFloat()*0.1))
		}

		change := 0.0
		if len(samples) > 0 {
			change = core.ChangePercent(price, prev)
		}

		samples = append(samples, models.MSample{
			Ticker:     author.Ticker,
			Timestamp:  date,
			Price:      core.Round2(price),
			Volume:     volume,
			Change:     core.Round2(change),
			DataSource: dataSource,
		})

		prev = price
	}

	return samples
}

// -----------------------------------------------------------------------------

func (s *Simulator) findAuthor(ticker string) (models.MAuthor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.authors {
		if a.Ticker == ticker {
			return a, true
		}
	}
	return models.MAuthor{}, false
}

// -----------------------------------------------------------------------------

// Authors returns the configured symbol list.
func (s *Simulator) Authors() []models.MAuthor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MAuthor, len(s.authors))
	copy(out, s.authors)
	return out
}
