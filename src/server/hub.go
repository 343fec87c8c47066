package server

import (
	"encoding/json"
	"net/http"

	"azt-exchange/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// subscription is a ticker-filter change for one client, routed through the
// hub loop so client.tickers has a single owning goroutine.
type subscription struct {
	client  *Client
	tickers []string
}

// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int64(len(s.clients)))
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.initialSnapshot(client.tickers)
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.clientCount.Store(int64(len(s.clients)))
				close(client.send)
			}

		case sub := <-s.subscribe:
			if _, ok := s.clients[sub.client]; !ok {
				break
			}
			sub.client.tickers = sub.tickers

			s.stateMutex.RLock()
			snapshot := s.initialSnapshot(sub.tickers)
			s.stateMutex.RUnlock()

			// Use select to avoid blocking if client's send buffer is full
			select {
			case sub.client.send <- snapshot:
			default:
			}

		case update := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = update
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.send <- filterUpdate(update, client.tickers):
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					s.clientCount.Store(int64(len(s.clients)))
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// PublishTick queues a tick update for broadcast to all connected clients.
func (s *APIServer) PublishTick(update *models.MTickUpdate) {
	// Buffered channel; a full queue means the hub is wedged and dropping
	// is better than stalling the simulation.
	select {
	case s.broadcast <- update:
	default:
		s.Logger.Warning("Broadcast queue full, dropping tick update")
	}
}

// -----------------------------------------------------------------------------

// initialSnapshot builds the INITIAL message for a newly connected or newly
// subscribed client. Callers hold s.stateMutex (read).
func (s *APIServer) initialSnapshot(tickers []string) *models.MTickUpdate {
	snapshot := filterUpdate(s.latestState, tickers)
	return &models.MTickUpdate{
		Type:      "INITIAL",
		Prices:    snapshot.Prices,
		Timestamp: s.latestState.Timestamp,
		Metrics:   s.latestState.Metrics,
	}
}

// -----------------------------------------------------------------------------

// filterUpdate narrows an update to the client's subscribed tickers. An
// empty subscription means everything.
func filterUpdate(update *models.MTickUpdate, tickers []string) *models.MTickUpdate {
	if len(tickers) == 0 {
		return update
	}

	filtered := make(map[string]models.MSample, len(tickers))
	for _, t := range tickers {
		if sample, ok := update.Prices[t]; ok {
			filtered[t] = sample
		}
	}

	return &models.MTickUpdate{
		Type:      update.Type,
		Prices:    filtered,
		Timestamp: update.Timestamp,
		Metrics:   update.Metrics,
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MTickUpdate, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	// Hand the change to the hub loop; the reader goroutine must not touch
	// client.tickers while the hub is broadcasting.
	s.subscribe <- &subscription{client: client, tickers: cmd.Tickers}
}
