package server

import (
	"testing"
	"time"

	"azt-exchange/src/logger"
	"azt-exchange/src/models"
	"azt-exchange/src/seriesstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testHub(t *testing.T) *APIServer {
	t.Helper()

	cfg := &models.MConfig{}
	cfg.LogLevel = "ERROR"

	store := seriesstore.NewSeriesStore(100, 100)
	s := NewAPIServer(cfg, logger.NewLogger("ERROR", "test"), store, nil)
	go s.handleWebsockets()
	return s
}

// -----------------------------------------------------------------------------

func receiveUpdate(t *testing.T, client *Client) *models.MTickUpdate {
	t.Helper()

	select {
	case update := <-client.send:
		return update
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

// -----------------------------------------------------------------------------

// Subscription changes go through the hub loop, so the hub owns
// client.tickers and broadcasts only see consistent state.
func TestHubSubscriptionFiltersBroadcasts(t *testing.T) {
	s := testHub(t)

	client := &Client{hub: s, send: make(chan *models.MTickUpdate, 16)}
	s.register <- client

	initial := receiveUpdate(t, client)
	assert.Equal(t, "INITIAL", initial.Type)
	assert.Equal(t, int64(1), s.clientCount.Load())

	s.subscribe <- &subscription{client: client, tickers: []string{"AZT"}}
	snapshot := receiveUpdate(t, client)
	assert.Equal(t, "INITIAL", snapshot.Type)

	s.broadcast <- &models.MTickUpdate{
		Type: "UPDATE",
		Prices: map[string]models.MSample{
			"AZT": {Ticker: "AZT", Price: 38},
			"CTD": {Ticker: "CTD", Price: 12},
		},
		Timestamp: 1,
	}

	update := receiveUpdate(t, client)
	require.Len(t, update.Prices, 1)
	assert.Equal(t, 38.0, update.Prices["AZT"].Price)
}

// -----------------------------------------------------------------------------

func TestHubUnregisterClosesClientAndUpdatesCount(t *testing.T) {
	s := testHub(t)

	client := &Client{hub: s, send: make(chan *models.MTickUpdate, 16)}
	s.register <- client
	receiveUpdate(t, client)

	s.unregister <- client

	// The hub closes the send channel once the unregister is processed
	select {
	case _, open := <-client.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub to close client")
	}

	assert.Equal(t, int64(0), s.clientCount.Load())
}

// -----------------------------------------------------------------------------

// A subscribe racing an unregister must not resurrect the client.
func TestHubIgnoresSubscriptionFromUnknownClient(t *testing.T) {
	s := testHub(t)

	client := &Client{hub: s, send: make(chan *models.MTickUpdate, 16)}
	s.subscribe <- &subscription{client: client, tickers: []string{"AZT"}}

	select {
	case <-client.send:
		t.Fatal("unregistered client must not receive a snapshot")
	case <-time.After(50 * time.Millisecond):
	}
}
