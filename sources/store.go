package sources

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Binding maps a logical feature set (villages, works, subplans ...) to the
// collections that hold it. Several collections are concatenated in order,
// which is how shadow and primary work tables are merged.
type Binding struct {
	Name        string      `yaml:"name" json:"name"`
	Source      string      `yaml:"source" json:"source"`
	Collections []string    `yaml:"collections" json:"collections"`
	Filter      *BoolFilter `yaml:"filter,omitempty" json:"filter,omitempty"`
	CRS         string      `yaml:"crs,omitempty" json:"crs,omitempty"`
}

// LoadResult is the outcome of fetching a single binding.
type LoadResult struct {
	Name     string
	Features []models.Feature
	Error    error
}

// WorkingSet is the feature data one report computes on. Failed bindings
// are present in Sets as empty slices.
type WorkingSet struct {
	Sets     map[string][]models.Feature
	Failed   []string
	Status   models.DataStatus
	LoadedAt time.Time
}

// Features returns the named set, or nil.
func (ws *WorkingSet) Features(name string) []models.Feature {
	if ws == nil {
		return nil
	}
	return ws.Sets[name]
}

// Store resolves bindings against registered sources and caches the
// fetched sets.
type Store struct {
	sources  map[string]Source
	bindings map[string]Binding
	cache    *cache.Cache
	limit    int
}

// NewStore creates a store backed by c. A nil cache disables caching.
func NewStore(c *cache.Cache) *Store {
	return &Store{
		sources:  make(map[string]Source),
		bindings: make(map[string]Binding),
		cache:    c,
		limit:    8,
	}
}

// Register adds or replaces a named source.
func (s *Store) Register(name string, src Source) {
	s.sources[name] = src
}

// Bind adds or replaces a binding.
func (s *Store) Bind(b Binding) {
	s.bindings[b.Name] = b
}

// SetLimit caps concurrent fetches in Load.
func (s *Store) SetLimit(n int) {
	if n > 0 {
		s.limit = n
	}
}

// Bindings returns the binding names in sorted order.
func (s *Store) Bindings() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cacheKey(name string) string {
	return "binding:" + name
}

// Fetch returns the features of one binding, from cache when possible.
func (s *Store) Fetch(ctx context.Context, name string) ([]models.Feature, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey(name)); found {
			return cached.([]models.Feature), nil
		}
	}

	b, ok := s.bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: binding %s", ErrUnknownSource, name)
	}
	src, ok := s.sources[b.Source]
	if !ok {
		return nil, fmt.Errorf("%w: %s (binding %s)", ErrUnknownSource, b.Source, name)
	}

	collections := b.Collections
	if len(collections) == 0 {
		collections = []string{name}
	}
	var features []models.Feature
	var errs []error
	for _, coll := range collections {
		part, err := src.Fetch(ctx, Query{Collection: coll, Filter: b.Filter, CRS: b.CRS})
		if err != nil {
			log.Printf("Store.Fetch: %s: collection %s failed: %v", name, coll, err)
			errs = append(errs, fmt.Errorf("collection %s: %w", coll, err))
			continue
		}
		features = append(features, part...)
	}
	if len(errs) == len(collections) {
		return nil, errors.Join(errs...)
	}

	// a partial result is served but not cached, so the next load retries
	// the failed collections
	if s.cache != nil && len(errs) == 0 {
		s.cache.SetDefault(cacheKey(name), features)
	}
	return features, nil
}

// Load fetches the named bindings concurrently. A failing binding is logged
// and contributes an empty set; Load itself only fails when ctx is done
// before any work could start.
func (s *Store) Load(ctx context.Context, names []string) (*WorkingSet, []LoadResult, error) {
	results := make([]LoadResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = LoadResult{Name: name, Error: gctx.Err()}
				return nil
			default:
			}
			features, err := s.Fetch(gctx, name)
			results[i] = LoadResult{Name: name, Features: features, Error: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, results, fmt.Errorf("error loading sources: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, results, err
	}

	ws := &WorkingSet{
		Sets:     make(map[string][]models.Feature, len(names)),
		LoadedAt: time.Now(),
	}
	total := 0
	for _, r := range results {
		if r.Error != nil {
			log.Printf("Store.Load: %s failed: %v", r.Name, r.Error)
			ws.Failed = append(ws.Failed, r.Name)
			ws.Sets[r.Name] = []models.Feature{}
			continue
		}
		ws.Sets[r.Name] = r.Features
		total += len(r.Features)
	}
	ws.Status = models.StatusReady
	if total == 0 {
		ws.Status = models.StatusNoData
	}
	return ws, results, nil
}

// Invalidate drops cached sets so the next Fetch goes to the backend. With
// no names every cached set is dropped.
func (s *Store) Invalidate(names ...string) {
	if s.cache == nil {
		return
	}
	if len(names) == 0 {
		s.cache.Flush()
		return
	}
	for _, name := range names {
		s.cache.Delete(cacheKey(name))
	}
}
