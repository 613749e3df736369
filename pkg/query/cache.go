package query

import (
	"sort"
	"sync"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// Cache memoizes normalized replies for one document, keyed by the queried
// range. It holds entries for a single version: touching it with another
// version drops everything. Partial invalidation is never attempted because
// an edit shifts every offset after it and may move macro boundaries.
//
// The cache also remembers macro runs, byte spans for which the service
// reported only empty ranges, so scans cross each run with one query.
//
// Returned nodes are shared; callers must not mutate them.
type Cache struct {
	mu      sync.Mutex
	version int
	entries map[document.Range]entry
	runs    []MacroRun
}

type entry struct {
	node *syntax.Node
	miss bool
}

// MacroRun is a byte span [Start, End) whose text the service attributes to
// a macro expansion.
type MacroRun struct {
	Start int
	End   int
}

// Contains reports whether offset lies inside the run.
func (r MacroRun) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[document.Range]entry)}
}

// Reset drops every entry and moves the cache to version.
func (c *Cache) Reset(version int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(version)
}

func (c *Cache) resetLocked(version int) {
	c.version = version
	c.entries = make(map[document.Range]entry)
	c.runs = nil
}

// syncLocked moves the cache forward to version and reports whether version
// is the one it holds. Older versions never roll the cache back.
func (c *Cache) syncLocked(version int) bool {
	if version > c.version {
		c.resetLocked(version)
	}
	return version == c.version
}

// Get looks up the reply for r at version. A recorded miss reports
// found=true with miss=true.
func (c *Cache) Get(version int, r document.Range) (node *syntax.Node, found, miss bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.syncLocked(version) {
		return nil, false, false
	}

	e, ok := c.entries[r]
	if !ok {
		return nil, false, false
	}
	return e.node, true, e.miss
}

// Put stores a reply. A nil node records "nothing at this range".
func (c *Cache) Put(version int, r document.Range, node *syntax.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.syncLocked(version) {
		c.entries[r] = entry{node: node}
	}
}

// PutMiss records that r produced a reply the engine rejected.
func (c *Cache) PutMiss(version int, r document.Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.syncLocked(version) {
		c.entries[r] = entry{miss: true}
	}
}

// Len returns the number of cached ranges.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Version returns the version the cache currently holds.
func (c *Cache) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// AddMacroRun records a macro run for version. Overlapping runs are merged.
func (c *Cache) AddMacroRun(version int, run MacroRun) {
	if run.End <= run.Start {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.syncLocked(version) {
		return
	}

	runs := append(c.runs, run)
	sort.Slice(runs, func(i, j int) bool { return runs[i].Start < runs[j].Start })

	merged := runs[:1]
	for _, r := range runs[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	c.runs = merged
}

// MacroRunAt returns the recorded run containing offset, if any.
func (c *Cache) MacroRunAt(version int, offset int) (MacroRun, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.syncLocked(version) {
		return MacroRun{}, false
	}

	for _, r := range c.runs {
		if r.Contains(offset) {
			return r, true
		}
	}
	return MacroRun{}, false
}
