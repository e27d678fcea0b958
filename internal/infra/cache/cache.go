// Package cache provides the TTL and size-bounded cache that fronts
// provider reads. Cache types are namespaced with distinct TTLs and
// capacities but share one eviction algorithm: on insert, expired
// entries in the namespace are dropped first, then the oldest entries
// by insertion time are evicted until the namespace is under capacity.
//
// The in-memory representation is strongly typed; JSON serialization
// happens only at the key-value storage edge. Storage failures never
// reach the caller: they degrade to a miss and are logged, because the
// cache is an optimization, not a correctness dependency.
package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"media-catalog-service/internal/domain"
)

// Type names a cache namespace.
type Type string

const (
	TypeCatalogItems  Type = "catalog_items"
	TypeMediaDetail   Type = "media_detail"
	TypeSearchResults Type = "search_results"
)

// DefaultCapacity bounds each namespace when no capacity is configured.
const DefaultCapacity = 100

// TypeConfig holds one namespace's TTL and capacity.
type TypeConfig struct {
	TTL      time.Duration
	Capacity int
}

// Config holds per-namespace cache settings.
type Config struct {
	CatalogItems  TypeConfig
	MediaDetail   TypeConfig
	SearchResults TypeConfig
}

type entry struct {
	data      any
	cachedAt  time.Time
	expiresAt time.Time
	key       string
}

type namespace struct {
	entries  map[string]*entry
	ttl      time.Duration
	capacity int
}

// persistedEntry is the serialized shape written to the key-value
// store: { data, cachedAt: epoch-ms, expiresAt: epoch-ms, key }.
type persistedEntry struct {
	Data      json.RawMessage `json:"data"`
	CachedAt  int64           `json:"cached_at"`
	ExpiresAt int64           `json:"expires_at"`
	Key       string          `json:"key"`
}

// Store is the process-local cache. The only shared mutable state is
// the namespace maps, guarded by one mutation at a time with concurrent
// reads.
type Store struct {
	mu     sync.RWMutex
	spaces map[Type]*namespace
	kv     domain.KeyValueStore
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Store. kv may be nil to run purely in-memory.
func New(cfg Config, kv domain.KeyValueStore, logger *zap.Logger) *Store {
	return &Store{
		spaces: map[Type]*namespace{
			TypeCatalogItems:  newNamespace(cfg.CatalogItems),
			TypeMediaDetail:   newNamespace(cfg.MediaDetail),
			TypeSearchResults: newNamespace(cfg.SearchResults),
		},
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

func newNamespace(cfg TypeConfig) *namespace {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &namespace{
		entries:  make(map[string]*entry),
		ttl:      cfg.TTL,
		capacity: capacity,
	}
}

// Get returns the strongly typed cached value for a key, or false if
// the entry is missing or expired. A value restored from the key-value
// store is deserialized into T at this boundary.
func Get[T any](ctx context.Context, s *Store, typ Type, key string) (T, bool) {
	var zero T

	s.mu.RLock()
	ns, ok := s.spaces[typ]
	if !ok {
		s.mu.RUnlock()
		return zero, false
	}
	e, ok := ns.entries[key]
	s.mu.RUnlock()

	if ok {
		if s.now().After(e.expiresAt) {
			s.mu.Lock()
			delete(ns.entries, key)
			s.mu.Unlock()
			return zero, false
		}
		v, ok := e.data.(T)
		if !ok {
			s.logger.Warn("cache entry type mismatch",
				zap.String("cache_type", string(typ)),
				zap.String("key", key),
			)
			return zero, false
		}
		return v, true
	}

	return getPersisted[T](ctx, s, typ, key)
}

// getPersisted attempts a read-through from the key-value store. Any
// failure degrades to a miss.
func getPersisted[T any](ctx context.Context, s *Store, typ Type, key string) (T, bool) {
	var zero T
	if s.kv == nil {
		return zero, false
	}

	raw, err := s.kv.GetItem(ctx, storageKey(typ, key))
	if err != nil {
		s.logger.Warn("cache storage read failed, treating as miss",
			zap.String("cache_type", string(typ)),
			zap.String("key", key),
			zap.Error(err),
		)
		return zero, false
	}
	if raw == nil {
		return zero, false
	}

	var pe persistedEntry
	if err := json.Unmarshal(raw, &pe); err != nil {
		s.logger.Warn("cache entry deserialization failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return zero, false
	}
	if s.now().UnixMilli() > pe.ExpiresAt {
		_ = s.kv.RemoveItem(ctx, storageKey(typ, key))
		return zero, false
	}

	var v T
	if err := json.Unmarshal(pe.Data, &v); err != nil {
		s.logger.Warn("cache payload deserialization failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return zero, false
	}

	// Rehydrate the in-memory namespace so subsequent reads stay typed.
	s.mu.Lock()
	if ns, ok := s.spaces[typ]; ok {
		ns.entries[key] = &entry{
			data:      v,
			cachedAt:  time.UnixMilli(pe.CachedAt),
			expiresAt: time.UnixMilli(pe.ExpiresAt),
			key:       key,
		}
	}
	s.mu.Unlock()

	return v, true
}

// Set stores a value under a namespace. A non-positive ttl falls back
// to the namespace default. Before inserting, expired entries in the
// namespace are dropped, then the oldest entries by cachedAt are
// evicted until the namespace is under capacity.
func (s *Store) Set(ctx context.Context, typ Type, key string, data any, ttl time.Duration) {
	s.mu.Lock()
	ns, ok := s.spaces[typ]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("unknown cache type", zap.String("cache_type", string(typ)))
		return
	}

	now := s.now()
	if ttl <= 0 {
		ttl = ns.ttl
	}

	ns.purgeExpired(now)
	// Overwriting an existing key does not grow the namespace, so no
	// eviction is needed for it.
	if _, exists := ns.entries[key]; !exists {
		ns.evictOldest()
	}

	e := &entry{
		data:      data,
		cachedAt:  now,
		expiresAt: now.Add(ttl),
		key:       key,
	}
	ns.entries[key] = e
	s.mu.Unlock()

	s.persist(ctx, typ, e)
}

// persist writes the serialized entry to the key-value store.
// Serialization or storage failures are logged and swallowed.
func (s *Store) persist(ctx context.Context, typ Type, e *entry) {
	if s.kv == nil {
		return
	}

	payload, err := json.Marshal(e.data)
	if err != nil {
		s.logger.Warn("cache entry serialization failed",
			zap.String("key", e.key),
			zap.Error(err),
		)
		return
	}
	raw, err := json.Marshal(persistedEntry{
		Data:      payload,
		CachedAt:  e.cachedAt.UnixMilli(),
		ExpiresAt: e.expiresAt.UnixMilli(),
		Key:       e.key,
	})
	if err != nil {
		s.logger.Warn("cache entry serialization failed",
			zap.String("key", e.key),
			zap.Error(err),
		)
		return
	}
	if err := s.kv.SetItem(ctx, storageKey(typ, e.key), raw); err != nil {
		s.logger.Warn("cache storage write failed",
			zap.String("cache_type", string(typ)),
			zap.String("key", e.key),
			zap.Error(err),
		)
	}
}

// InvalidateMediaCache removes every detail-cache entry whose key is
// prefixed by the item id.
func (s *Store) InvalidateMediaCache(ctx context.Context, itemID string) {
	s.mu.Lock()
	ns := s.spaces[TypeMediaDetail]
	removed := make([]string, 0, 4)
	for key := range ns.entries {
		if strings.HasPrefix(key, itemID) {
			delete(ns.entries, key)
			removed = append(removed, key)
		}
	}
	s.mu.Unlock()

	if s.kv != nil {
		for _, key := range removed {
			if err := s.kv.RemoveItem(ctx, storageKey(TypeMediaDetail, key)); err != nil {
				s.logger.Warn("cache storage remove failed",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Debug("media cache invalidated",
		zap.String("item_id", itemID),
		zap.Int("removed", len(removed)),
	)
}

// IsMediaDetailCached reports whether an unexpired detail entry exists
// whose key starts with the item id. Diagnostic use only.
func (s *Store) IsMediaDetailCached(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	for key, e := range s.spaces[TypeMediaDetail].entries {
		if strings.HasPrefix(key, itemID) && now.Before(e.expiresAt) {
			return true
		}
	}
	return false
}

// ClearAll removes all entries in every namespace.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	removed := make([]string, 0)
	for typ, ns := range s.spaces {
		for key := range ns.entries {
			removed = append(removed, storageKey(typ, key))
		}
		ns.entries = make(map[string]*entry)
	}
	s.mu.Unlock()

	if s.kv != nil {
		for _, key := range removed {
			if err := s.kv.RemoveItem(ctx, key); err != nil {
				s.logger.Warn("cache storage remove failed",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("cache cleared", zap.Int("entries", len(removed)))
}

// Sweep drops expired entries in every namespace and returns how many
// were removed. Called periodically by the cache janitor.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for _, ns := range s.spaces {
		removed += ns.purgeExpired(now)
	}
	return removed
}

// TypeStats holds per-namespace counts.
type TypeStats struct {
	Entries  int `json:"entries"`
	Capacity int `json:"capacity"`
}

// Stats returns per-namespace entry counts.
func (s *Store) Stats() map[Type]TypeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[Type]TypeStats, len(s.spaces))
	for typ, ns := range s.spaces {
		stats[typ] = TypeStats{Entries: len(ns.entries), Capacity: ns.capacity}
	}
	return stats
}

func (ns *namespace) purgeExpired(now time.Time) int {
	removed := 0
	for key, e := range ns.entries {
		if now.After(e.expiresAt) {
			delete(ns.entries, key)
			removed++
		}
	}
	return removed
}

// evictOldest removes the entries with the smallest cachedAt until the
// namespace has room for one more entry.
func (ns *namespace) evictOldest() {
	if len(ns.entries) < ns.capacity {
		return
	}

	ordered := make([]*entry, 0, len(ns.entries))
	for _, e := range ns.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].cachedAt.Before(ordered[j].cachedAt)
	})

	for _, e := range ordered {
		if len(ns.entries) < ns.capacity {
			break
		}
		delete(ns.entries, e.key)
	}
}

func storageKey(typ Type, key string) string {
	return "cache:" + string(typ) + ":" + key
}
