// Package registry provides the process-wide provider directory,
// indexed by provider id, capability, and source.
package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"media-catalog-service/internal/domain"
)

// Registry is the capability-indexed provider directory. It is
// constructed once at application bootstrap and passed by reference to
// every use case. Mutation takes the write lock; reads take the read
// lock and return copies.
type Registry struct {
	mu sync.RWMutex

	providers map[string]domain.Provider
	// bySource is a secondary index: sourceId -> set of provider ids.
	// Every id in it must exist in providers; a violation is a defect
	// that is logged, never thrown.
	bySource map[string]map[string]struct{}
	// order records registration sequence for stable priority ties.
	order map[string]int
	seq   int

	logger *zap.Logger
}

// New creates an empty Registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		providers: make(map[string]domain.Provider),
		bySource:  make(map[string]map[string]struct{}),
		order:     make(map[string]int),
		logger:    logger,
	}
}

// RegisterProvider inserts or replaces a provider by id. If the id
// already exists under a different source, the old source-index entry
// is removed first. Safe to call multiple times with the same provider.
func (r *Registry) RegisterProvider(p domain.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.providers[p.ID()]; ok && existing.SourceID() != p.SourceID() {
		if ids, ok := r.bySource[existing.SourceID()]; ok {
			delete(ids, p.ID())
			if len(ids) == 0 {
				delete(r.bySource, existing.SourceID())
			}
		}
	}

	if _, ok := r.providers[p.ID()]; !ok {
		r.seq++
		r.order[p.ID()] = r.seq
	}
	r.providers[p.ID()] = p

	ids, ok := r.bySource[p.SourceID()]
	if !ok {
		ids = make(map[string]struct{})
		r.bySource[p.SourceID()] = ids
	}
	ids[p.ID()] = struct{}{}

	r.logger.Debug("provider registered",
		zap.String("provider_id", p.ID()),
		zap.String("source_id", p.SourceID()),
		zap.Int("priority", p.Priority()),
	)
}

// GetProvider returns the provider with the given id, if registered.
func (r *Registry) GetProvider(id string) (domain.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	return p, ok
}

// GetProvidersByCapability returns every registered provider supporting
// the capability, ordered ascending by priority with ties broken by
// registration order. An unknown capability yields an empty slice.
func (r *Registry) GetProvidersByCapability(c domain.Capability) []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.HasCapability(c) {
			matched = append(matched, p)
		}
	}
	r.sortStable(matched)
	return matched
}

// GetAllProviders returns every registered provider in registration
// order.
func (r *Registry) GetAllProviders() []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return r.order[all[i].ID()] < r.order[all[j].ID()]
	})
	return all
}

// GetProvidersBySource returns the providers registered under a source,
// ordered ascending by priority.
func (r *Registry) GetProvidersBySource(sourceID string) []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.bySource[sourceID]
	if !ok {
		return nil
	}

	matched := make([]domain.Provider, 0, len(ids))
	for id := range ids {
		p, ok := r.providers[id]
		if !ok {
			// Index entry without a primary entry is a defect, not a
			// reason to abort the read.
			r.logger.Error("registry source index out of sync",
				zap.String("source_id", sourceID),
				zap.String("provider_id", id),
			)
			continue
		}
		matched = append(matched, p)
	}
	r.sortStable(matched)
	return matched
}

// GetCapabilitiesBySource returns the union of capabilities over a
// source's providers, sorted for deterministic output.
func (r *Registry) GetCapabilitiesBySource(sourceID string) []domain.Capability {
	providers := r.GetProvidersBySource(sourceID)

	set := make(map[domain.Capability]struct{})
	for _, p := range providers {
		for _, c := range p.Capabilities() {
			set[c] = struct{}{}
		}
	}

	caps := make([]domain.Capability, 0, len(set))
	for c := range set {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// UnregisterProvidersBySource removes every provider registered under a
// source and returns how many were removed. Used when a source is
// disabled or reconfigured at runtime.
func (r *Registry) UnregisterProvidersBySource(sourceID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, ok := r.bySource[sourceID]
	if !ok {
		return 0
	}

	removed := 0
	for id := range ids {
		delete(r.providers, id)
		delete(r.order, id)
		removed++
	}
	delete(r.bySource, sourceID)

	r.logger.Info("providers unregistered",
		zap.String("source_id", sourceID),
		zap.Int("count", removed),
	)
	return removed
}

// Stats holds registry counts for observability.
type Stats struct {
	TotalProviders int                       `json:"total_providers"`
	ByCapability   map[domain.Capability]int `json:"by_capability"`
	BySource       map[string]int            `json:"by_source"`
}

// Stats returns provider counts by capability and source.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		TotalProviders: len(r.providers),
		ByCapability:   make(map[domain.Capability]int),
		BySource:       make(map[string]int),
	}
	for _, p := range r.providers {
		for _, c := range p.Capabilities() {
			stats.ByCapability[c]++
		}
		stats.BySource[p.SourceID()]++
	}
	return stats
}

// sortStable orders providers ascending by priority, ties broken by
// registration order. Callers must hold at least the read lock.
func (r *Registry) sortStable(providers []domain.Provider) {
	sort.Slice(providers, func(i, j int) bool {
		if providers[i].Priority() != providers[j].Priority() {
			return providers[i].Priority() < providers[j].Priority()
		}
		return r.order[providers[i].ID()] < r.order[providers[j].ID()]
	})
}
