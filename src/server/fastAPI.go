package server

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"azt-exchange/src/logger"
	"azt-exchange/src/models"
	"azt-exchange/src/portfolio"
	"azt-exchange/src/seriesstore"
	"azt-exchange/src/simulator"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	store     *seriesstore.SeriesStore
	portfolio *portfolio.Manager
	sim       *simulator.Simulator

	// WebSocket clients. The map and every client's subscription are owned
	// by the hub goroutine; all mutations go through these channels.
	clients     map[*Client]struct{}
	broadcast   chan *models.MTickUpdate // Strongly typed and Buffered Queue
	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscription
	clientCount atomic.Int64 // mirror of len(clients) for handlers

	// Last published tick
	latestState *models.MTickUpdate
	stateMutex  sync.RWMutex

	// History response cache
	historyCache *responseCache
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, logger *logger.Logger, store *seriesstore.SeriesStore, pf *portfolio.Manager) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:    cfg,
		Logger:    logger,
		engine:    gin.Default(),
		store:     store,
		portfolio: pf,
		clients:   make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		// Queue size of 256 ensures we can handle bursts of updates
		broadcast:  make(chan *models.MTickUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan *subscription),
		latestState: &models.MTickUpdate{
			Type:      "INITIAL",
			Prices:    make(map[string]models.MSample),
			Timestamp: 0,
		},
		historyCache: newResponseCache(10*time.Minute, 100),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// SetSimulator wires the simulator in after construction; the simulator and
// the server reference each other, so one side has to be attached late.
func (s *APIServer) SetSimulator(sim *simulator.Simulator) {
	s.sim = sim
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/stocks", s.getStocks)
	s.engine.GET("/api/stocks/:ticker/history", s.getStockHistory)
	s.engine.GET("/api/users/:id/portfolio/history", s.getPortfolioHistory)
	s.engine.GET("/api/leaderboard", s.getLeaderboard)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	close(s.subscribe)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   s.clientCount.Load(),
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"tickIntervalSeconds": s.Config.Market.TickIntervalSeconds,
		"retentionLimit":      s.Config.Market.RetentionLimit,
		"marketOpenHour":      s.Config.Market.OpenHour,
		"marketCloseHour":     s.Config.Market.CloseHour,
	})
}
