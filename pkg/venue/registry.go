package venue

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/zeromicro/go-zero/core/syncx"
)

// ErrUnknownVenue indicates that no connector factory exists for a venue id.
var ErrUnknownVenue = errors.New("venue: unknown venue")

// Factory builds the connector for one venue.
type Factory func() (Connector, error)

// Registry lazily creates and memoizes one connector per venue. Concurrent
// first requests for the same venue share a single construction.
type Registry struct {
	factories map[string]Factory
	ids       []string

	mu         sync.RWMutex
	connectors map[string]Connector
	flight     syncx.SingleFlight
}

// NewRegistry returns a registry over the given factories.
func NewRegistry(factories map[string]Factory) *Registry {
	ids := make([]string, 0, len(factories))
	copied := make(map[string]Factory, len(factories))
	for id, f := range factories {
		if f == nil {
			continue
		}
		ids = append(ids, id)
		copied[id] = f
	}
	sort.Strings(ids)
	return &Registry{
		factories:  copied,
		ids:        ids,
		connectors: make(map[string]Connector, len(copied)),
		flight:     syncx.NewSingleFlight(),
	}
}

// Venues returns the known venue ids in sorted order.
func (r *Registry) Venues() []string {
	return append([]string(nil), r.ids...)
}

// Known reports whether id has a connector factory.
func (r *Registry) Known(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// Connector returns the memoized connector for id, building it on first use.
// Failed constructions are not memoized.
func (r *Registry) Connector(id string) (Connector, error) {
	if c, ok := r.lookup(id); ok {
		return c, nil
	}
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVenue, id)
	}

	val, err := r.flight.Do(id, func() (any, error) {
		if c, ok := r.lookup(id); ok {
			return c, nil
		}
		c, err := factory()
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", id, err)
		}
		if c == nil {
			return nil, fmt.Errorf("venue %s: factory returned nil connector", id)
		}
		r.mu.Lock()
		r.connectors[id] = c
		r.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(Connector), nil
}

// Close releases every constructed connector that holds resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for id, c := range r.connectors {
		closer, ok := c.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("venue %s: close: %w", id, err))
		}
	}
	r.connectors = make(map[string]Connector)
	return errors.Join(errs...)
}

func (r *Registry) lookup(id string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[id]
	return c, ok
}
