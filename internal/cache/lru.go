package cache

import (
	"sync"
	"sync/atomic"

	"github.com/Sumatoshi-tech/cognit/internal/gitx"
	"github.com/Sumatoshi-tech/cognit/pkg/alg/bloom"
	"github.com/Sumatoshi-tech/cognit/pkg/report"
)

// DefaultScoreCacheSize is the default maximum memory budget for the
// LRU score cache (64 MB).
const DefaultScoreCacheSize = 64 * 1024 * 1024

// bytesPerKB is the number of bytes in a kilobyte.
const bytesPerKB = 1024.0

// averageEntryCostEstimate is the assumed average cost of a cached
// entry in bytes, used for Bloom filter sizing. A scored file with a
// handful of functions lands well under this, so the filter stays
// oversized and its false-positive rate low.
const averageEntryCostEstimate = 512

// bloomFPRate is the false-positive rate for the Bloom pre-filter.
// At 1%, 99% of definite cache misses are short-circuited without lock
// acquisition.
const bloomFPRate = 0.01

// minBloomElements is the minimum number of expected elements for the
// Bloom filter. Prevents degenerate sizing for very small caches.
const minBloomElements = 64

// Approximate in-memory cost of a cached entry. Scores are tiny next
// to the sources they derive from; the accounting only needs to be
// close enough for eviction ordering.
const (
	entryBaseCost   = 160
	perFunctionCost = 112
)

// entryCost estimates the in-memory size of one scored file.
func entryCost(file report.File) int64 {
	cost := int64(entryBaseCost + len(file.Path))

	for _, fn := range file.Functions {
		cost += perFunctionCost + int64(len(fn.Name))
	}

	return cost
}

// LRUScoreCache keeps scored files across commits, keyed by blob hash.
// Between adjacent commits most blobs are identical, so a hit skips
// parsing and scoring entirely. It tracks memory usage and evicts least
// recently used entries when the budget is exceeded. A Bloom filter
// pre-filters Get lookups to skip lock acquisition for definite misses.
type LRUScoreCache struct {
	mu          sync.RWMutex
	entries     map[gitx.Hash]*lruEntry
	head        *lruEntry // Most recently used.
	tail        *lruEntry // Least recently used.
	filter      *bloom.Filter
	maxSize     int64
	currentSize int64

	// Metrics (atomic for lock-free reads).
	hits          atomic.Int64
	misses        atomic.Int64
	bloomFiltered atomic.Int64
}

// lruEntry is a doubly-linked list node for LRU tracking.
type lruEntry struct {
	hash        gitx.Hash
	file        report.File
	size        int64
	accessCount int64 // Number of times this entry has been accessed.
	prev        *lruEntry
	next        *lruEntry
}

// evictionCost calculates the cost of evicting this entry.
// Higher cost = less desirable to evict. Large, rarely-accessed items
// are evicted first.
func (e *lruEntry) evictionCost() float64 {
	if e.size == 0 {
		return float64(e.accessCount)
	}

	// Normalize size to KB to avoid tiny fractions.
	sizeKB := float64(e.size) / bytesPerKB
	if sizeKB < 1 {
		sizeKB = 1
	}

	return float64(e.accessCount) / sizeKB
}

// NewLRUScoreCache creates an LRU score cache with the specified memory
// budget in bytes. A Bloom filter is initialized to pre-filter lookups,
// sized for the estimated element count.
func NewLRUScoreCache(maxSize int64) *LRUScoreCache {
	if maxSize <= 0 {
		maxSize = DefaultScoreCacheSize
	}

	expectedElements := max(uint(maxSize/averageEntryCostEstimate), minBloomElements)

	// Error is structurally impossible: expectedElements > 0 and bloomFPRate is in (0, 1).
	bf, err := bloom.NewWithEstimates(expectedElements, bloomFPRate)
	if err != nil {
		panic("cache: bloom filter initialization failed: " + err.Error())
	}

	return &LRUScoreCache{
		entries: make(map[gitx.Hash]*lruEntry),
		filter:  bf,
		maxSize: maxSize,
	}
}

// Get retrieves the scored file for a blob hash. Uses a Bloom filter to
// skip lock acquisition for definite cache misses.
func (c *LRUScoreCache) Get(hash gitx.Hash) (report.File, bool) {
	if !c.filter.Test(hash[:]) {
		c.bloomFiltered.Add(1)
		c.misses.Add(1)

		return report.File{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[hash]
	if !ok {
		c.misses.Add(1)

		return report.File{}, false
	}

	c.hits.Add(1)

	entry.accessCount++
	c.moveToFront(entry)

	return entry.file, true
}

// Put adds a scored file to the cache. If the cache exceeds its budget,
// entries are evicted using size-aware eviction (large, infrequently
// accessed items first). The hash is added to the Bloom filter after
// successful insertion.
func (c *LRUScoreCache) Put(hash gitx.Hash, file report.File) {
	size := entryCost(file)

	// Never cache an entry bigger than the whole budget.
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if already exists.
	if entry, ok := c.entries[hash]; ok {
		entry.accessCount++
		c.moveToFront(entry)

		return
	}

	// Evict entries until we have room using size-aware eviction.
	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	if c.currentSize+size > c.maxSize {
		return
	}

	entry := &lruEntry{
		hash:        hash,
		file:        file,
		size:        size,
		accessCount: 1,
	}

	c.entries[hash] = entry
	c.currentSize += size
	c.addToFront(entry)
	c.filter.Add(hash[:])
}

// Stats returns cache statistics.
func (c *LRUScoreCache) Stats() LRUStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return LRUStats{
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		BloomFiltered:  c.bloomFiltered.Load(),
		BloomFillRatio: c.filter.FillRatio(),
		Entries:        len(c.entries),
		CurrentSize:    c.currentSize,
		MaxSize:        c.maxSize,
	}
}

// LRUStats holds cache performance metrics.
type LRUStats struct {
	Hits           int64
	Misses         int64
	BloomFiltered  int64   // Lookups short-circuited by the Bloom pre-filter.
	BloomFillRatio float64 // Fraction of filter bits set; near 0.5 the FP rate degrades.
	Entries        int
	CurrentSize    int64
	MaxSize        int64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s LRUStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// Clear removes all entries from the cache and resets the Bloom filter.
func (c *LRUScoreCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[gitx.Hash]*lruEntry)
	c.head = nil
	c.tail = nil
	c.currentSize = 0
	c.filter.Reset()
}

// moveToFront moves an entry to the front of the LRU list (most recently used).
func (c *LRUScoreCache) moveToFront(entry *lruEntry) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

// addToFront adds an entry to the front of the LRU list.
func (c *LRUScoreCache) addToFront(entry *lruEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

// removeFromList removes an entry from the LRU list.
func (c *LRUScoreCache) removeFromList(entry *lruEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

// evictionSampleSize is the number of LRU candidates to sample for
// size-aware eviction. Sampling reduces the O(n) scan to O(k).
const evictionSampleSize = 5

// evictLowestCost removes the entry with the lowest eviction cost from
// the LRU tail region. Up to evictionSampleSize entries are sampled
// from the tail.
func (c *LRUScoreCache) evictLowestCost() {
	if c.tail == nil {
		return
	}

	// Sample candidates from the tail (LRU region).
	var candidates [evictionSampleSize]*lruEntry

	count := 0
	entry := c.tail

	for entry != nil && count < evictionSampleSize {
		candidates[count] = entry
		count++
		entry = entry.prev
	}

	if count == 0 {
		return
	}

	// Find the entry with lowest eviction cost (large size, low access count).
	victim := candidates[0]
	lowestCost := victim.evictionCost()

	for i := 1; i < count; i++ {
		cost := candidates[i].evictionCost()
		if cost < lowestCost {
			lowestCost = cost
			victim = candidates[i]
		}
	}

	// Evict the victim.
	c.removeFromList(victim)
	delete(c.entries, victim.hash)
	c.currentSize -= victim.size
}
