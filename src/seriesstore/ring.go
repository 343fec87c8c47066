package seriesstore

import (
	"azt-exchange/src/models"
)

// -----------------------------------------------------------------------------
// sampleRing is a fixed-size circular buffer of price samples.
// True ring buffer - appending past capacity overwrites the oldest entry.
// -----------------------------------------------------------------------------

type sampleRing struct {
	data     []models.MSample
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

func newSampleRing(capacity int) *sampleRing {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &sampleRing{
		data:     make([]models.MSample, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// append adds a sample, evicting the oldest when full.
func (r *sampleRing) append(s models.MSample) {
	r.data[r.index] = s
	r.index = (r.index + 1) % r.capacity

	// Size never exceeds capacity
	if r.size < r.capacity {
		r.size++
	}
}

// -----------------------------------------------------------------------------

// all returns the buffered samples in insertion order (oldest to newest).
func (r *sampleRing) all() []models.MSample {
	if r.size == 0 {
		return []models.MSample{}
	}

	result := make([]models.MSample, r.size)

	// Oldest element: at the write index once full, at 0 otherwise
	startIdx := 0
	if r.size == r.capacity {
		startIdx = r.index
	}

	for i := 0; i < r.size; i++ {
		result[i] = r.data[(startIdx+i)%r.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// at returns the i-th sample counting from the oldest (0) to the newest
// (size-1). The caller must keep i within [0, size).
func (r *sampleRing) at(i int) models.MSample {
	startIdx := 0
	if r.size == r.capacity {
		startIdx = r.index
	}
	return r.data[(startIdx+i)%r.capacity]
}

// -----------------------------------------------------------------------------

func (r *sampleRing) len() int {
	return r.size
}
