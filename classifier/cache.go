package classifier

import (
	"fmt"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/maxpert/querygate/telemetry"
)

// Stats aggregates cache activity across every session sharing it. It is
// safe for concurrent use.
type Stats struct {
	size      *xsync.Counter
	inserts   *xsync.Counter
	hits      *xsync.Counter
	misses    *xsync.Counter
	evictions *xsync.Counter
	sessions  *xsync.Counter
}

// CacheStats is a point-in-time copy of Stats.
type CacheStats struct {
	Size      int64 `json:"size"`
	Inserts   int64 `json:"inserts"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Sessions  int64 `json:"sessions"`
}

func NewStats() *Stats {
	return &Stats{
		size:      xsync.NewCounter(),
		inserts:   xsync.NewCounter(),
		hits:      xsync.NewCounter(),
		misses:    xsync.NewCounter(),
		evictions: xsync.NewCounter(),
		sessions:  xsync.NewCounter(),
	}
}

// DefaultStats is shared by sessions created without their own Stats.
var DefaultStats = NewStats()

func (s *Stats) Snapshot() CacheStats {
	return CacheStats{
		Size:      s.size.Value(),
		Inserts:   s.inserts.Value(),
		Hits:      s.hits.Value(),
		Misses:    s.misses.Value(),
		Evictions: s.evictions.Value(),
		Sessions:  s.sessions.Value(),
	}
}

// CacheEntries implements telemetry.StatsProvider.
func (s *Stats) CacheEntries() int64 {
	return s.size.Value()
}

// ActiveSessions implements telemetry.StatsProvider.
func (s *Stats) ActiveSessions() int64 {
	return s.sessions.Value()
}

// CompileExcludes compiles cache exclusion patterns over canonical forms.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid cache exclude pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

type cacheEntry struct {
	result  *Result
	mode    SQLMode
	options Options
}

// resultCache maps canonical forms to results. An entry only serves
// lookups made under the SQL mode and options it was produced with.
type resultCache struct {
	lru     *lru.Cache[string, cacheEntry]
	exclude []glob.Glob
	stats   *Stats

	// removing is set while an entry is dropped for a mismatch, which is
	// not an eviction.
	removing bool
}

// newResultCache returns nil when size is 0, which disables caching.
func newResultCache(size int, exclude []glob.Glob, stats *Stats) (*resultCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c := &resultCache{exclude: exclude, stats: stats}
	l, err := lru.NewWithEvict[string, cacheEntry](size, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	c.lru = l
	return c, nil
}

func (c *resultCache) onEvict(_ string, _ cacheEntry) {
	c.stats.size.Dec()
	if c.removing {
		return
	}
	c.stats.evictions.Inc()
	telemetry.CacheEvictionsTotal.Inc()
}

// get returns a copy of the cached result for key. An entry that collected
// less than collect is left for put to replace.
func (c *resultCache) get(key string, mode SQLMode, opts Options, collect Collect) (*Result, bool) {
	e, ok := c.lru.Get(key)
	if ok && (e.mode != mode || e.options != opts) {
		c.removing = true
		c.lru.Remove(key)
		c.removing = false
		ok = false
	}
	if ok && e.result.Collected&collect != collect {
		ok = false
	}
	if !ok {
		c.stats.misses.Inc()
		telemetry.CacheLookupsTotal.With("miss").Inc()
		return nil, false
	}
	c.stats.hits.Inc()
	telemetry.CacheLookupsTotal.With("hit").Inc()
	return e.result.Clone(), true
}

func (c *resultCache) put(key string, r *Result) {
	if !c.cacheable(key, r) {
		return
	}
	if c.lru.Contains(key) {
		c.removing = true
		c.lru.Remove(key)
		c.removing = false
	}
	c.lru.Add(key, cacheEntry{result: r.Clone(), mode: r.Mode, options: r.Options})
	c.stats.size.Inc()
	c.stats.inserts.Inc()
}

// cacheable rejects results whose content depends on the literals the
// canonical form erased.
func (c *resultCache) cacheable(key string, r *Result) bool {
	if r.TypeMask&(TypeEnableAutocommit|TypeDisableAutocommit) != 0 {
		return false
	}
	if r.KillInfo != nil || r.PreparableStmt != nil {
		return false
	}
	if r.Options&(OptionStringArgAsField|OptionStringAsField) != 0 {
		return false
	}
	for _, g := range c.exclude {
		if g.Match(key) {
			return false
		}
	}
	return true
}

func (c *resultCache) len() int {
	return c.lru.Len()
}

func (c *resultCache) purge() {
	c.removing = true
	c.lru.Purge()
	c.removing = false
}
