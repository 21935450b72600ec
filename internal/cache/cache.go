// Package cache implements a TTL-indexed, capacity-bounded record
// store: RRs are inserted with a clamped TTL, expire on their own, and
// are evicted by shortest-remaining-TTL first once the store is over
// capacity.
package cache

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
)

// Cache is a bounded, concurrency-safe store of cached RRs. A single
// mutex guards both the lookup index and the eviction heap: the
// capacity invariant is global across all keys, so sharding the lock
// would only fragment that invariant without a compensating benefit at
// the scale this resolver runs at.
type Cache struct {
	mu       sync.Mutex
	maxTTL   uint32
	capacity int
	groups   map[string][]*item
	heap     itemHeap
	now      func() time.Time
}

// item is one cached RDATA value within a (name, type, class) group.
type item struct {
	groupKey string
	data     []byte
	record   wire.Record
	expiry   time.Time
	heapIdx  int
}

// New returns an empty Cache. maxTTL bounds the TTL any single insertion
// may claim; capacity bounds the total number of live entries across
// every key.
func New(capacity int, maxTTL uint32) *Cache {
	return &Cache{
		maxTTL:   maxTTL,
		capacity: capacity,
		groups:   make(map[string][]*item),
		now:      time.Now,
	}
}

func groupKey(name wire.Name, rtype protocol.Type, class protocol.Class) string {
	return fmt.Sprintf("%s|%d|%d", name.Key(), rtype, class)
}

// Put inserts rr, clamping its TTL to [1, maxTTL]. An RR with TTL 0 is
// never cached. If an RDATA-identical entry already exists for the same
// key, the later (here, the longer) expiry wins instead of creating a
// duplicate.
func (c *Cache) Put(rr wire.RR) {
	if rr.TTL == 0 {
		return
	}
	ttl := rr.TTL
	if ttl > c.maxTTL {
		ttl = c.maxTTL
	}
	if ttl < 1 {
		ttl = 1
	}
	expiry := c.now().Add(time.Duration(ttl) * time.Second)

	c.mu.Lock()
	defer c.mu.Unlock()

	key := groupKey(rr.Name, rr.Type, rr.Class)
	group := c.groups[key]
	for _, it := range group {
		if bytesEqual(it.data, rr.Data) {
			if expiry.After(it.expiry) {
				it.expiry = expiry
				heap.Fix(&c.heap, it.heapIdx)
			}
			return
		}
	}

	it := &item{groupKey: key, data: rr.Data, record: rr.Record, expiry: expiry}
	c.groups[key] = append(group, it)
	heap.Push(&c.heap, it)

	if c.heap.Len() > c.capacity {
		c.evictToCapacity()
	}
}

// Get returns every non-expired RR cached for (name, rtype, class), with
// TTL set to the remaining lifetime computed at read time.
func (c *Cache) Get(name wire.Name, rtype protocol.Type, class protocol.Class) []wire.RR {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := groupKey(name, rtype, class)
	group := c.groups[key]
	if len(group) == 0 {
		return nil
	}

	now := c.now()
	var out []wire.RR
	live := group[:0]
	for _, it := range group {
		if !it.expiry.After(now) {
			continue // expired; dropped below, removed from heap lazily on next eviction pass
		}
		live = append(live, it)
		remaining := uint32((it.expiry.Sub(now) + time.Second - 1) / time.Second) // whole seconds, rounded up
		out = append(out, wire.RR{Name: name, Type: rtype, Class: class, TTL: remaining, Data: it.data, Record: it.record})
	}
	if len(live) != len(group) {
		if len(live) == 0 {
			delete(c.groups, key)
		} else {
			c.groups[key] = live
		}
	}
	return out
}

// evictToCapacity purges expired entries first, then evicts entries with
// the shortest remaining TTL until the store is at or under capacity.
// Caller must hold c.mu.
func (c *Cache) evictToCapacity() {
	now := c.now()
	for c.heap.Len() > 0 && !c.heap[0].expiry.After(now) {
		c.removeTop()
	}
	for c.heap.Len() > c.capacity {
		c.removeTop()
	}
}

func (c *Cache) removeTop() {
	it := heap.Pop(&c.heap).(*item)
	group := c.groups[it.groupKey]
	for i, other := range group {
		if other == it {
			group = append(group[:i], group[i+1:]...)
			break
		}
	}
	if len(group) == 0 {
		delete(c.groups, it.groupKey)
	} else {
		c.groups[it.groupKey] = group
	}
}

// Purge drops every expired entry, regardless of capacity pressure.
// Intended for periodic maintenance rather than the hot insert path.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for c.heap.Len() > 0 && !c.heap[0].expiry.After(now) {
		c.removeTop()
	}
}

// Len reports the number of entries held, including expired entries that
// have not been purged yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heap.Len()
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// itemHeap is a min-heap over item.expiry, so the soonest-to-expire
// entry is always at index 0 and is evicted first under pressure.
type itemHeap []*item

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return h[i].expiry.Before(h[j].expiry) }
func (h itemHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}

func (h *itemHeap) Push(x interface{}) {
	it := x.(*item)
	it.heapIdx = len(*h)
	*h = append(*h, it)
}

func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
