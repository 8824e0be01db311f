package tracking

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Deduper remembers (user, product) view pairs with a bloom filter so the
// tracking endpoint can flag the first time a user views a product. A false
// positive downgrades a genuine first view to false, never the reverse.
type Deduper struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewDeduper sizes the filter for the expected number of view pairs at the
// given false-positive rate
func NewDeduper(capacity uint, fpRate float64) *Deduper {
	return &Deduper{
		filter: bloom.NewWithEstimates(capacity, fpRate),
	}
}

// FirstView records a view pair and reports whether it was previously unseen
func (d *Deduper) FirstView(userID, productID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return !d.filter.TestAndAddString(userID + "|" + productID)
}
