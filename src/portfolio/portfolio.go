package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"azt-exchange/src/analysis/core"
	"azt-exchange/src/logger"
	"azt-exchange/src/models"
	"azt-exchange/src/seriesstore"
)

// -----------------------------------------------------------------------------
// Manager owns the users file and everything derived from it: net-worth
// recalculation after each tick, the historical portfolio value series and
// the leaderboard. Users are persisted as one JSON array with the same
// atomic write-then-rename discipline as the history document.
// -----------------------------------------------------------------------------

type Manager struct {
	log   *logger.Logger
	store *seriesstore.SeriesStore

	mu    sync.Mutex
	path  string
	users []models.MUser
}

// -----------------------------------------------------------------------------

func NewManager(usersFile string, log *logger.Logger, store *seriesstore.SeriesStore) *Manager {
	return &Manager{
		log:   log,
		store: store,
		path:  usersFile,
	}
}

// -----------------------------------------------------------------------------

// Load reads the users file. A missing file is an empty exchange, not an
// error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.users = []models.MUser{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read users file '%s': %w", m.path, err)
	}

	var users []models.MUser
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to parse users file '%s': %w", m.path, err)
	}

	m.users = users
	m.log.Info("Loaded %d users from %s", len(users), m.path)
	return nil
}

// -----------------------------------------------------------------------------

// Recalculate refreshes every user's net worth from the latest valid prices.
// The users file is rewritten only when at least one net worth actually
// changed, so an idle market does not churn the file every minute.
func (m *Manager) Recalculate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := 0
	for i := range m.users {
		holdingsValue := m.holdingsValueLocked(&m.users[i])

		newNetWorth := core.Round2(m.users[i].Cash + holdingsValue)
		if m.users[i].NetWorth != newNetWorth {
			m.users[i].NetWorth = newNetWorth
			updated++
		}
	}

	if updated > 0 {
		if err := m.saveLocked(); err != nil {
			m.log.Error("Failed to persist net worth update: %v", err)
			return
		}
		m.log.Debug("Updated net worth for %d users", updated)
	}
}

// -----------------------------------------------------------------------------

// holdingsValueLocked prices a user's positions at the latest valid price.
// Legacy share entries are counted only when no holding covers the same
// ticker. Callers hold m.mu.
func (m *Manager) holdingsValueLocked(user *models.MUser) float64 {
	value := 0.0
	counted := make(map[string]bool, len(user.Holdings))

	for _, h := range user.Holdings {
		value += float64(h.Shares) * m.store.LatestValidPrice(h.Ticker)
		counted[h.Ticker] = true
	}

	for ticker, shares := range user.Shares {
		if counted[ticker] {
			continue
		}
		value += float64(shares) * m.store.LatestValidPrice(ticker)
	}

	return value
}

// -----------------------------------------------------------------------------

// User looks up an account by id.
func (m *Manager) User(id string) (models.MUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.MUser{}, false
}

// -----------------------------------------------------------------------------

// HoldingsOf returns a user's positions, migrating the legacy share map when
// no holdings list exists.
func (m *Manager) HoldingsOf(user models.MUser) []models.MHolding {
	if len(user.Holdings) > 0 {
		return user.Holdings
	}

	if len(user.Shares) == 0 {
		return []models.MHolding{}
	}

	holdings := make([]models.MHolding, 0, len(user.Shares))
	for ticker, shares := range user.Shares {
		holdings = append(holdings, models.MHolding{Ticker: ticker, Shares: shares})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Ticker < holdings[j].Ticker })

	return holdings
}

// -----------------------------------------------------------------------------

// ValueSeries reconstructs the historical value of a user's portfolio over
// the window since. Every timestamp seen in any held ticker's series becomes
// one point; each holding is priced at its last sample at or before that
// instant, falling back to the latest valid price when the holding's series
// starts later.
func (m *Manager) ValueSeries(user models.MUser, since time.Time) []models.MPortfolioPoint {
	holdings := m.HoldingsOf(user)
	if len(holdings) == 0 {
		return []models.MPortfolioPoint{}
	}

	windows := make(map[string][]models.MSample, len(holdings))
	timestampSet := make(map[time.Time]bool)

	for _, h := range holdings {
		window := m.store.Window(h.Ticker, since)
		windows[h.Ticker] = window
		for _, s := range window {
			timestampSet[s.Timestamp] = true
		}
	}

	timestamps := make([]time.Time, 0, len(timestampSet))
	for ts := range timestampSet {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	// One cursor per holding; both sides are chronological so each cursor
	// only ever moves forward.
	cursors := make(map[string]int, len(holdings))

	points := make([]models.MPortfolioPoint, 0, len(timestamps))
	for _, ts := range timestamps {
		holdingsValue := 0.0

		for _, h := range holdings {
			window := windows[h.Ticker]
			i := cursors[h.Ticker]
			for i < len(window) && !window[i].Timestamp.After(ts) {
				i++
			}
			cursors[h.Ticker] = i

			var price float64
			if i > 0 {
				price = window[i-1].Price
			} else {
				price = m.store.LatestValidPrice(h.Ticker)
			}
			holdingsValue += float64(h.Shares) * price
		}

		points = append(points, models.MPortfolioPoint{
			Timestamp:     ts,
			Value:         core.Round2(user.Cash + holdingsValue),
			Cash:          core.Round2(user.Cash),
			HoldingsValue: core.Round2(holdingsValue),
		})
	}

	return points
}

// -----------------------------------------------------------------------------

// Leaderboard ranks all users by net worth, highest first.
func (m *Manager) Leaderboard() []models.MLeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	ranked := make([]models.MUser, len(m.users))
	copy(ranked, m.users)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].NetWorth > ranked[j].NetWorth })

	entries := make([]models.MLeaderboardEntry, len(ranked))
	for i, u := range ranked {
		entries[i] = models.MLeaderboardEntry{
			Rank:     i + 1,
			ID:       u.ID,
			Username: u.Username,
			NetWorth: u.NetWorth,
		}
	}
	return entries
}

// -----------------------------------------------------------------------------

// saveLocked writes the users file atomically. Callers hold m.mu.
func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(m.users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp users file: %w", err)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace users file: %w", err)
	}

	return nil
}
