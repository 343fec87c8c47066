package interfaces

import "azt-exchange/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing tick results with external
// listeners (HTTP server / websocket push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// PublishTick updates the server state and broadcasts the snapshot to
	// connected clients.
	PublishTick(update *models.MTickUpdate)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
