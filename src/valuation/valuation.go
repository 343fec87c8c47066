package valuation

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"azt-exchange/src/config"
	"azt-exchange/src/helpers"
	"azt-exchange/src/interfaces"
	"azt-exchange/src/logger"
	"azt-exchange/src/models"
)

// -----------------------------------------------------------------------------
// RankedFeed prices authors from a download-statistics feed. One bulk request
// covers every author, so the whole response is cached and individual lookups
// resolve against the cached snapshot. A feed outage degrades lookups to
// "unavailable" - callers fall back to their synthetic path, never to an error.
// -----------------------------------------------------------------------------

type RankedFeed struct {
	log     *logger.Logger
	network interfaces.INetworkManager

	feedURL  string
	cacheTTL time.Duration

	mu        sync.Mutex
	authors   map[string]models.MFeedAuthor // keyed by lowercased author name
	fetchedAt time.Time

	// Injectable clock for tests
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewRankedFeed(cfg *config.Config, log *logger.Logger, network interfaces.INetworkManager) *RankedFeed {
	ttl := time.Duration(cfg.MConfig.Feed.CacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &RankedFeed{
		log:      log,
		network:  network,
		feedURL:  cfg.MConfig.Feed.URL,
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

func (r *RankedFeed) Name() string {
	return "rankedFeed"
}

// -----------------------------------------------------------------------------

// FairValue resolves an author against the cached feed snapshot, refreshing
// it first when stale. The boolean is false whenever the feed is unreachable
// or the author does not appear in it.
func (r *RankedFeed) FairValue(author models.MAuthor) (models.MFairValue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Serialized under the mutex so a burst of lookups after expiry
	// triggers exactly one refresh.
	if r.authors == nil || r.now().Sub(r.fetchedAt) >= r.cacheTTL {
		if err := r.refreshLocked(); err != nil {
			r.log.Warning("Valuation feed unavailable: %v", err)
			return models.MFairValue{}, false
		}
	}

	feedAuthor, ok := r.authors[strings.ToLower(author.CurseforgeID)]
	if !ok {
		return models.MFairValue{}, false
	}

	return models.MFairValue{
		Ticker:    author.Ticker,
		Price:     ConvertDownloadsToPrice(feedAuthor.DownloadCount, feedAuthor.DownloadRate),
		Volume:    EstimateVolume(feedAuthor.DownloadCount),
		FetchedAt: r.fetchedAt,
	}, true
}

// -----------------------------------------------------------------------------

// refreshLocked performs the bulk fetch and rebuilds the name index.
// Callers hold r.mu.
func (r *RankedFeed) refreshLocked() error {
	body, err := r.network.Get(r.feedURL, nil)
	if err != nil {
		return helpers.NewFeedError("failed to fetch author statistics", err)
	}

	var response models.MFeedResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return helpers.NewFeedError("failed to decode author statistics", err)
	}

	authors := make(map[string]models.MFeedAuthor, len(response.Authors))
	for _, a := range response.Authors {
		authors[strings.ToLower(a.Name)] = a
	}

	r.authors = authors
	r.fetchedAt = r.now()
	r.log.Debug("Valuation feed refreshed: %d authors", len(authors))

	return nil
}

// -----------------------------------------------------------------------------
// Pricing formulas
// -----------------------------------------------------------------------------

// ConvertDownloadsToPrice maps cumulative downloads and the daily download
// rate to a target share price. The rate term dominates (70/30 split) so
// currently popular authors trade above historically popular ones, and the
// floor keeps every listed author at one currency unit minimum.
func ConvertDownloadsToPrice(downloads, downloadRate float64) float64 {
	downloadsScore := (downloads / 10000) * 0.3
	rateScore := (downloadRate / 10) * 0.7
	return math.Max(1, (downloadsScore+rateScore)/10)
}

// -----------------------------------------------------------------------------

// EstimateVolume derives a trading volume from cumulative downloads.
func EstimateVolume(downloads float64) int64 {
	return int64(math.Floor(downloads / 100))
}
