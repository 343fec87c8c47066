package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"azt-exchange/src/config"
	"azt-exchange/src/interfaces"
	"azt-exchange/src/logger"
	"azt-exchange/src/models"
	"azt-exchange/src/network"
	"azt-exchange/src/portfolio"
	"azt-exchange/src/seriesstore"
	"azt-exchange/src/server"
	"azt-exchange/src/simulator"
	"azt-exchange/src/storage"
	"azt-exchange/src/utils"
	"azt-exchange/src/valuation"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Durable history storage
	var db interfaces.IHistoryStore

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresHistoryDB(config.MConfig, appLogger)
	case "sqlite":
		db, err = storage.NewSQLiteHistoryDB(config.MConfig, appLogger)
	default:
		// Default to the JSON document store
		db, err = storage.NewJSONHistoryDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}

	// 3. Seed the in-memory series from durable history
	store := seriesstore.NewSeriesStore(config.Market.RetentionLimit, config.Market.DefaultPrice)

	history, err := db.LoadAll()
	if err != nil {
		appLogger.Critical("Failed to load history: %v", err)
	}
	for ticker, samples := range history {
		store.ReplaceAll(ticker, samples)
	}
	appLogger.Info("Loaded history for %d tickers", len(history))

	// 4. Symbol list
	authors, err := readAuthors(config.Data.AuthorsFile)
	if err != nil {
		appLogger.Critical("Failed to load authors: %v", err)
	}
	if len(authors) == 0 {
		appLogger.Critical("No authors configured")
	}
	appLogger.Info("Loaded %d listed authors", len(authors))

	// 5. Valuation feed
	var networkManager interfaces.INetworkManager = network.NewManager(config.MConfig, appLogger)
	var feed interfaces.IValuationSource = valuation.NewRankedFeed(config, appLogger, networkManager)

	// 6. Market hours and portfolios
	hours := utils.NewMarketHours(config.Market.Calendar, config.Market.OpenHour, config.Market.CloseHour)

	portfolios := portfolio.NewManager(config.Data.UsersFile, appLogger, store)
	if err := portfolios.Load(); err != nil {
		appLogger.Critical("Failed to load users: %v", err)
	}

	// 7. API server and simulator
	srv := server.NewAPIServer(config.MConfig, appLogger, store, portfolios)

	sim := simulator.NewSimulator(config, appLogger, store, db, feed, hours, srv, authors)
	sim.SetAfterTick(portfolios.Recalculate)
	srv.SetSimulator(sim)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 8. Main loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go sim.Run(ctx, wg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Storage retention sweep, once an hour
	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	appLogger.Info("%s running on %s:%d", config.Name, config.Host, config.Port)

	for {
		select {
		case <-cleanup.C:
			if err := db.CleanupOldData(); err != nil {
				appLogger.Error("Cleanup failed: %v", err)
			}

		case <-quit:
			appLogger.Info("Shutting down...")
			cancel()
			wg.Wait()

			if err := db.Close(); err != nil {
				appLogger.Error("Failed to close storage: %v", err)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

// readAuthors loads the listed-author configuration file.
func readAuthors(path string) ([]models.MAuthor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read authors file '%s': %w", path, err)
	}

	var authors []models.MAuthor
	if err := json.Unmarshal(data, &authors); err != nil {
		return nil, fmt.Errorf("failed to parse authors file '%s': %w", path, err)
	}

	return authors, nil
}
