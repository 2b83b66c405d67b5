package operator

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dora-network/num2int/errors"
)

// State is the registry's cache state.
type State uint8

const (
	StateEmpty State = iota
	StatePopulated
)

func (s State) String() string {
	if s == StatePopulated {
		return "populated"
	}
	return "empty"
}

type snapshot struct {
	byID map[Identity]Signature
}

// Registry maps operator identities to the signatures they stand for. It reads the whole
// candidate set from its Catalog on first use and serves lookups from an immutable
// snapshot until invalidated. A Registry is safe for concurrent use.
type Registry struct {
	catalog    Catalog
	options    options
	mu         sync.Mutex
	snap       atomic.Pointer[snapshot]
	generation atomic.Uint64
}

// NewRegistry creates an empty registry over catalog.
func NewRegistry(catalog Catalog, opts ...Option) *Registry {
	r := &Registry{
		catalog: catalog,
		options: applyOptions(opts...),
	}
	if r.options.source != nil {
		r.options.source.OnInvalidate(r.Invalidate)
	}
	return r
}

// Resolve returns the signature registered under id. An unknown identity is not an
// error; errors only report a failed catalog read.
func (r *Registry) Resolve(ctx context.Context, id Identity) (Signature, bool, error) {
	s, err := r.load(ctx)
	if err != nil {
		return Signature{}, false, err
	}
	sig, ok := s.byID[id]
	return sig, ok, nil
}

// Populate reads the catalog now if the registry is empty.
func (r *Registry) Populate(ctx context.Context) error {
	_, err := r.load(ctx)
	return err
}

// Invalidate drops the cached snapshot. The next Resolve re-reads the catalog.
func (r *Registry) Invalidate() {
	r.generation.Add(1)
	if r.snap.Swap(nil) != nil {
		r.options.logger.Debug().Msg("operator registry invalidated")
	}
	r.options.observer.RegistryInvalidated()
}

func (r *Registry) State() State {
	if r.snap.Load() != nil {
		return StatePopulated
	}
	return StateEmpty
}

// Len is the number of resolved operators, zero when empty.
func (r *Registry) Len() int {
	if s := r.snap.Load(); s != nil {
		return len(s.byID)
	}
	return 0
}

// Signatures lists the cached signatures ordered by identity.
func (r *Registry) Signatures() []Signature {
	s := r.snap.Load()
	if s == nil {
		return nil
	}
	sigs := make([]Signature, 0, len(s.byID))
	for _, sig := range s.byID {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].ID < sigs[j].ID })
	return sigs
}

func (r *Registry) load(ctx context.Context) (*snapshot, error) {
	if s := r.snap.Load(); s != nil {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.snap.Load(); s != nil {
		return s, nil
	}
	if r.catalog == nil {
		return nil, errors.ErrCatalogNotConfigured
	}

	gen := r.generation.Load()
	start := time.Now()
	found, err := r.catalog.LookupOperators(ctx, r.options.candidates)
	r.options.observer.CatalogLookup(time.Since(start))
	if err != nil {
		return nil, errors.Wrap(errors.InternalError, err, "lookup operators")
	}

	s := &snapshot{byID: make(map[Identity]Signature, len(found))}
	for _, key := range r.options.candidates {
		id, ok := found[key]
		if !ok || id == InvalidIdentity {
			continue
		}
		if prev, dup := s.byID[id]; dup {
			r.options.logger.Warn().
				Uint32("identity", uint32(id)).
				Str("kept", prev.Key.String()).
				Str("dropped", key.String()).
				Msg("operator identity registered twice")
			continue
		}
		s.byID[id] = Signature{ID: id, Key: key}
	}

	// an Invalidate racing this read must win: publish, then withdraw if the
	// generation moved
	r.snap.Store(s)
	if r.generation.Load() != gen {
		r.snap.CompareAndSwap(s, nil)
		r.options.logger.Debug().Msg("operator registry invalidated during population")
		return s, nil
	}

	r.options.logger.Info().
		Int("operators", len(s.byID)).
		Int("candidates", len(r.options.candidates)).
		Msg("operator registry populated")
	r.options.observer.RegistryPopulated(len(s.byID))
	return s, nil
}
