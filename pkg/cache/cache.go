// Package cache persists assembled search results on disk so repeated
// zone searches do not refan out to the providers. Entries expire by
// file age, and marine results are additionally checked for content
// that indicates a stale or polluted snapshot.
package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"periplo/pkg/config"
	"periplo/pkg/model"
)

// ResultCache is a filesystem cache of SearchResult payloads.
type ResultCache struct {
	dir   string
	ttl   time.Duration
	force bool

	now func() time.Time
}

// NewResultCache creates a ResultCache rooted at cfg.Dir.
func NewResultCache(cfg *config.CacheConfig) *ResultCache {
	ttl := time.Duration(cfg.TTL)
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{
		dir:   cfg.Dir,
		ttl:   ttl,
		force: cfg.ForceInvalidate,
		now:   time.Now,
	}
}

// Key derives the cache key for a search request. The polygon is
// canonicalized (rounded, fixed field order) so semantically equal
// requests map to the same entry.
func Key(req *model.SearchRequest) string {
	canonical := make([][2]float64, 0, len(req.Polygon))
	for _, v := range req.Polygon {
		if len(v) < 2 {
			continue
		}
		canonical = append(canonical, [2]float64{round6(v[0]), round6(v[1])})
	}
	polyJSON, _ := json.Marshal(canonical)

	seed := fmt.Sprintf("%s_%t_%t_%s%s",
		strings.ToLower(strings.TrimSpace(req.ZoneName)),
		req.ExtendMarine, req.MarineOnly, req.Mode, polyJSON)
	return fmt.Sprintf("%x", md5.Sum([]byte(seed)))
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func (c *ResultCache) path(key string) string {
	return filepath.Join(c.dir, "semantic_"+key+".json")
}

// Get returns the cached result for the request if a fresh, valid
// entry exists.
func (c *ResultCache) Get(req *model.SearchRequest) (*model.SearchResult, bool) {
	if c.force {
		return nil, false
	}

	p := c.path(Key(req))
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(info.ModTime()) > c.ttl {
		slog.Debug("Result cache expired", "zone", req.ZoneName, "age", c.now().Sub(info.ModTime()))
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}

	var res model.SearchResult
	if err := json.Unmarshal(data, &res); err != nil {
		slog.Warn("Result cache entry unreadable, discarding", "path", p, "error", err)
		_ = os.Remove(p)
		return nil, false
	}

	if reason := staleMarineContent(req, &res); reason != "" {
		slog.Info("Result cache invalidated by content", "zone", req.ZoneName, "reason", reason)
		_ = os.Remove(p)
		return nil, false
	}

	return &res, true
}

// Put stores a result for the request. The write is atomic: a temp
// file in the same directory is renamed into place.
func (c *ResultCache) Put(req *model.SearchRequest, res *model.SearchResult) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	res.CachedAt = c.now()
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "semantic_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(Key(req)))
}

// InvalidateZone removes cached entries whose stored zone name matches.
// Returns the number of entries removed.
func (c *ResultCache) InvalidateZone(zone string) (int, error) {
	entries, err := filepath.Glob(filepath.Join(c.dir, "semantic_*.json"))
	if err != nil {
		return 0, err
	}

	zone = strings.ToLower(strings.TrimSpace(zone))
	removed := 0
	for _, p := range entries {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var res model.SearchResult
		if err := json.Unmarshal(data, &res); err != nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(res.ZoneName)) == zone {
			if err := os.Remove(p); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// InvalidateAll removes every cached result. Returns the number of
// entries removed.
func (c *ResultCache) InvalidateAll() (int, error) {
	entries, err := filepath.Glob(filepath.Join(c.dir, "semantic_*.json"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, p := range entries {
		if err := os.Remove(p); err == nil {
			removed++
		}
	}
	return removed, nil
}

// staleMarineContent checks a cached marine result for symptoms of
// earlier pipeline bugs: empty snapshots, wiki-sourced marine POIs,
// and mismatched geography leaking into the zone. Returns a non-empty
// reason when the entry should be discarded.
func staleMarineContent(req *model.SearchRequest, res *model.SearchResult) string {
	if !req.ExtendMarine && !req.MarineOnly {
		return ""
	}

	if len(res.POIs) == 0 {
		return "empty marine snapshot"
	}

	for i := range res.POIs {
		p := &res.POIs[i]
		if !p.IsMarine() {
			continue
		}
		if p.Source == model.SourceWikipedia || p.Source == model.SourceWikidata || p.Source == model.SourceDBpedia {
			return "encyclopedia-sourced marine POI"
		}
		name := strings.ToLower(p.Name)
		for _, v := range []string{"moskva", "moscova", "moscow"} {
			if strings.Contains(name, v) {
				return "suspect vessel name"
			}
		}
		desc := strings.ToLower(p.Description)
		if strings.Contains(desc, "canada") || strings.Contains(desc, "ontario") {
			return "foreign geography in description"
		}
	}
	return ""
}
