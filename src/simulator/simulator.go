package simulator

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"azt-exchange/src/analysis/core"
	"azt-exchange/src/config"
	"azt-exchange/src/helpers"
	"azt-exchange/src/interfaces"
	"azt-exchange/src/logger"
	"azt-exchange/src/models"
	"azt-exchange/src/seriesstore"
	"azt-exchange/src/utils"
)

// -----------------------------------------------------------------------------
// Simulator advances every listed stock once per tick. Each symbol runs an
// ordered chain of pricing steps: the quote step converges the price toward
// the feed-derived fair value, and the synthetic step takes over whenever no
// quote is available. The chain always produces a candidate; candidates that
// fail validation skip the symbol for this tick instead of poisoning the
// series.
// -----------------------------------------------------------------------------

type stepResult struct {
	price      float64
	volume     int64
	dataSource string
}

type priceStep struct {
	name string
	run  func(author models.MAuthor, current float64, now time.Time) (stepResult, bool)
}

// -----------------------------------------------------------------------------

type Simulator struct {
	log       *logger.Logger
	store     *seriesstore.SeriesStore
	history   interfaces.IHistoryStore
	valuation interfaces.IValuationSource
	hours     *utils.MarketHours
	exchanger interfaces.IDataExchanger

	mu      sync.RWMutex
	authors []models.MAuthor

	steps        []priceStep
	interval     time.Duration
	backfillDays int

	// Runs after every completed tick (net-worth recalculation)
	afterTick func()

	// Injectable randomness and clock for tests. The generator is shared
	// between the tick goroutine and handler-driven backfills, so every
	// draw goes through randFloat.
	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time

	quoteHits int // quote-step successes within the current tick
}

// -----------------------------------------------------------------------------

func NewSimulator(
	cfg *config.Config,
	log *logger.Logger,
	store *seriesstore.SeriesStore,
	history interfaces.IHistoryStore,
	valuation interfaces.IValuationSource,
	hours *utils.MarketHours,
	exchanger interfaces.IDataExchanger,
	authors []models.MAuthor,
) *Simulator {
	s := &Simulator{
		log:          log,
		store:        store,
		history:      history,
		valuation:    valuation,
		hours:        hours,
		exchanger:    exchanger,
		authors:      authors,
		interval:     time.Duration(cfg.Market.TickIntervalSeconds) * time.Second,
		backfillDays: cfg.Market.BackfillDays,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}

	// Evaluated in order; the first step to return ok wins.
	s.steps = []priceStep{
		{name: "quote", run: s.quoteStep},
		{name: "synthetic", run: s.syntheticStep},
	}

	return s
}

// -----------------------------------------------------------------------------

// SetAfterTick registers a hook invoked after each successful tick.
func (s *Simulator) SetAfterTick(fn func()) {
	s.afterTick = fn
}

// -----------------------------------------------------------------------------

// Run drives the simulation on a fixed ticker until the context is cancelled.
func (s *Simulator) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	s.log.Info("Simulator started (interval: %v, symbols: %d)", s.interval, len(s.authors))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Simulator stopped")
			return

		case <-ticker.C:
			if _, err := s.Tick(); err != nil {
				s.log.Error("Tick failed: %v", err)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// Tick advances every symbol one step. Feed and validation problems are
// contained per symbol; a persistence failure aborts the tick and surfaces
// to the caller, since silently dropping samples would corrupt history.
func (s *Simulator) Tick() (*models.MTickUpdate, error) {
	start := s.now()

	s.mu.RLock()
	authors := s.authors
	s.mu.RUnlock()

	s.quoteHits = 0
	updated := 0
	skipped := 0
	batch := make([]models.MSample, 0, len(authors))

	for _, author := range authors {
		current := s.store.LatestValidPrice(author.Ticker)

		var result stepResult
		for _, step := range s.steps {
			if r, ok := step.run(author, current, start); ok {
				result = r
				break
			}
		}

		if !core.IsValidPrice(result.price) {
			s.log.Warning("Skipping %s: computed price %v is not usable", author.Ticker, result.price)
			skipped++
			continue
		}

		sample := models.MSample{
			Ticker:     author.Ticker,
			Timestamp:  start,
			Price:      core.Round2(result.price),
			Volume:     result.volume,
			Change:     core.Round2(core.ChangePercent(result.price, current)),
			DataSource: result.dataSource,
		}

		s.store.Append(author.Ticker, sample)
		batch = append(batch, sample)
		updated++
	}

	if len(batch) > 0 {
		if err := s.history.AppendSamples(batch); err != nil {
			return nil, helpers.NewStorageError("failed to persist tick samples", err)
		}
	}

	if s.afterTick != nil {
		s.afterTick()
	}

	update := &models.MTickUpdate{
		Type:      "UPDATE",
		Prices:    s.store.LatestPrices(),
		Timestamp: start.UnixMilli(),
		Metrics: models.MTickMetrics{
			SimulationTimeSeconds: time.Since(start).Seconds(),
			SymbolsUpdated:        updated,
			SymbolsSkipped:        skipped,
			FeedAvailable:         s.quoteHits > 0,
		},
	}

	if s.exchanger != nil {
		s.exchanger.PublishTick(update)
	}

	s.log.Debug("Tick complete: %d updated, %d skipped in %.3fs",
		updated, skipped, update.Metrics.SimulationTimeSeconds)

	return update, nil
}

// -----------------------------------------------------------------------------
// Pricing steps
// -----------------------------------------------------------------------------

// quoteStep converges the current price toward the feed-derived fair value.
// Movement per tick is capped at 200%/day spread over minutes, so a large
// gap between price and target closes over roughly half a trading day
// instead of snapping shut.
func (s *Simulator) quoteStep(author models.MAuthor, current float64, now time.Time) (stepResult, bool) {
	quote, ok := s.valuation.FairValue(author)
	if !ok {
		return stepResult{}, false
	}
	s.quoteHits++

	diff := quote.Price - current
	maxPerMinute := current * 2.0 / 1440

	var adjustment float64
	if math.Abs(diff) < maxPerMinute {
		// Within reach: land on target with a small jitter
		adjustment = diff + (s.randFloat()-0.5)*current*0.005
	} else {
		step := math.Min(math.Abs(diff), maxPerMinute)
		if diff < 0 {
			step = -step
		}
		adjustment = step + (s.randFloat()-0.5)*current*0.01
	}

	return stepResult{
		price:      math.Max(0.01, current+adjustment),
		volume:     quote.Volume,
		dataSource: models.DataSourceStatistics,
	}, true
}

// -----------------------------------------------------------------------------

// syntheticStep is the terminal fallback: a bounded random walk with a slow
// sinusoidal daily cycle and a per-symbol bias derived from the hashed
// external id, so symbols drift apart instead of moving in lockstep.
func (s *Simulator) syntheticStep(author models.MAuthor, current float64, now time.Time) (stepResult, bool) {
	baseTrend := math.Sin(float64(now.UnixMilli())/86400000.0) * 0.1

	idNum := symbolSeed(author.CurseforgeID)
	simulatedDownloads := float64(idNum)*1000 + math.Floor(s.randFloat()*5000)
	downloadTrend := simulatedDownloads / 10

	trendInfluence := (downloadTrend / current) * 0.001
	trendBias := baseTrend*0.005 + trendInfluence

	marketOpen := s.hours.IsOpen(now)
	baseVolatility := 0.005
	if marketOpen {
		baseVolatility = 0.02
	}
	randomChange := (s.randFloat() - 0.5) * baseVolatility

	volumeCap := 2000.0
	if marketOpen {
		volumeCap = 10000.0
	}

	return stepResult{
		price:      math.Max(0.01, current*(1+randomChange+trendBias)),
		volume:     int64(math.Floor(s.randFloat()*volumeCap)) + 1000,
		dataSource: models.DataSourceGenerated,
	}, true
}

// -----------------------------------------------------------------------------

// randFloat draws from the shared generator. The tick loop and lazy
// backfills triggered by history requests run on different goroutines.
func (s *Simulator) randFloat() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

// -----------------------------------------------------------------------------

// symbolSeed hashes an external id into a stable small number (1-100) used to
// differentiate the synthetic drift of each symbol.
func symbolSeed(externalID string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(externalID)))
	return int(h.Sum32()%100) + 1
}
