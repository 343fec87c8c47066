package interfaces

import "azt-exchange/src/models"

// -----------------------------------------------------------------------------
// IValuationSource defines the contract for the external download-statistics
// feed. Implementations must contain feed failures: a failed or stale fetch
// returns ok=false, never an error that escapes into the simulation.
// -----------------------------------------------------------------------------

type IValuationSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FairValue returns the target price and volume estimate for an author,
	// or ok=false when the feed is unavailable or the author is unknown
	// upstream.
	FairValue(author models.MAuthor) (models.MFairValue, bool)
}
