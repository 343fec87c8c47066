package server

import (
	"errors"
	"fmt"
	"time"

	"azt-exchange/src/analysis"
	"azt-exchange/src/helpers"
	"azt-exchange/src/models"
	"azt-exchange/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Market Data Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getStocks(c *gin.Context) {
	stocks := make([]gin.H, 0)

	for _, author := range s.sim.Authors() {
		entry := gin.H{
			"ticker":       author.Ticker,
			"name":         author.Name,
			"authorUrl":    author.AuthorURL,
			"curseforgeId": author.CurseforgeID,
			"price":        s.store.LatestValidPrice(author.Ticker),
		}

		if latest, ok := s.store.Latest(author.Ticker); ok {
			entry["change"] = latest.Change
			entry["volume"] = latest.Volume
			entry["dataSource"] = latest.DataSource
		}

		stocks = append(stocks, entry)
	}

	c.JSON(200, stocks)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getStockHistory(c *gin.Context) {
	ticker := c.Param("ticker")
	period := c.DefaultQuery("period", "1D")
	granularityParam := c.DefaultQuery("granularity", "minute")
	wantOHLC := c.Query("ohlc") == "1"

	lookback, ok := utils.PeriodDuration(period)
	if !ok {
		c.JSON(400, gin.H{"error": "Invalid period"})
		return
	}

	granularity, err := analysis.ParseGranularity(granularityParam)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid granularity"})
		return
	}

	cacheKey := fmt.Sprintf("%s-%s-%s-%v", ticker, period, granularity, wantOHLC)
	if cached, ok := s.historyCache.get(cacheKey); ok {
		c.JSON(200, cached)
		return
	}

	// Seed a series for never-traded tickers so charts are not empty
	if err := s.sim.EnsureHistory(ticker); err != nil {
		var vErr *helpers.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(404, gin.H{"error": "Stock not found"})
			return
		}
		s.Logger.Error("Failed to backfill %s: %v", ticker, err)
		c.JSON(500, gin.H{"error": "Failed to fetch history"})
		return
	}

	samples := s.store.Window(ticker, time.Now().Add(-lookback))

	var data interface{}
	if granularity == analysis.GranularityMinute && wantOHLC {
		data = analysis.SynthesizeOHLC(samples)
	} else {
		data = analysis.Aggregate(samples, granularity)
	}

	response := gin.H{
		"ticker":      ticker,
		"period":      period,
		"granularity": granularity,
		"data":        data,
		"totalPoints": len(samples),
		"dataSource":  seriesDataSource(s.store.All(ticker)),
	}

	s.historyCache.put(cacheKey, response)
	c.JSON(200, response)
}

// -----------------------------------------------------------------------------
// Portfolio Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getPortfolioHistory(c *gin.Context) {
	id := c.Param("id")
	period := c.DefaultQuery("period", "1D")
	granularityParam := c.DefaultQuery("granularity", "minute")

	lookback, ok := utils.PeriodDuration(period)
	if !ok {
		c.JSON(400, gin.H{"error": "Invalid period"})
		return
	}

	granularity, err := analysis.ParseGranularity(granularityParam)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid granularity"})
		return
	}

	user, found := s.portfolio.User(id)
	if !found {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	}

	holdings := s.portfolio.HoldingsOf(user)
	if len(holdings) == 0 {
		c.JSON(200, gin.H{
			"userId":      id,
			"period":      period,
			"granularity": granularity,
			"data":        []models.MPortfolioPoint{},
			"totalPoints": 0,
			"dataSource":  models.DataSourceGenerated,
		})
		return
	}

	points := s.portfolio.ValueSeries(user, time.Now().Add(-lookback))

	var data interface{} = points
	if granularity != analysis.GranularityMinute {
		data = analysis.AggregatePortfolio(points, granularity)
	}

	dataSource := models.DataSourceGenerated
	for _, h := range holdings {
		if seriesDataSource(s.store.All(h.Ticker)) == models.DataSourceStatistics {
			dataSource = models.DataSourceStatistics
			break
		}
	}

	c.JSON(200, gin.H{
		"userId":      id,
		"period":      period,
		"granularity": granularity,
		"data":        data,
		"totalPoints": len(points),
		"dataSource":  dataSource,
		"holdings":    holdings,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getLeaderboard(c *gin.Context) {
	c.JSON(200, s.portfolio.Leaderboard())
}

// -----------------------------------------------------------------------------

// seriesDataSource reports "statistics" when any sample of the series came
// from the real feed.
func seriesDataSource(samples []models.MSample) string {
	for _, s := range samples {
		if s.DataSource == models.DataSourceStatistics {
			return models.DataSourceStatistics
		}
	}
	return models.DataSourceGenerated
}
