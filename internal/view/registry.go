package view

import (
	"context"
	"fmt"
	"log"
	"sync"

	"sqlviews/internal/metrics"
)

// Registry holds view declarations in registration order.
//
// Its lifecycle is populate, then Freeze, then read: views are added with
// Register during startup, Freeze closes the registry, and the bulk
// operations read it for the rest of the process. Declarations are never
// removed; DropAll drops database objects only.
//
// Registration order doubles as dependency order: a view may reference only
// views registered before it. No dependency analysis is performed.
type Registry struct {
	mu     sync.RWMutex
	views  []*View
	byKey  map[string]*View
	frozen bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{byKey: map[string]*View{}}
}

// Register appends v. Names are compared case-insensitively.
func (r *Registry) Register(v *View) error {
	if v == nil {
		return fmt.Errorf("view: %w: nil view", ErrInvalidConfig)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("view %q: %w", v.name, ErrRegistryFrozen)
	}
	k := foldKey(v.name)
	if _, ok := r.byKey[k]; ok {
		return fmt.Errorf("view %q: %w", v.name, ErrDuplicateView)
	}
	r.byKey[k] = v
	r.views = append(r.views, v)
	return nil
}

// MustRegister is like Register but panics on error; a registry with a
// duplicate or late declaration is not usable.
func (r *Registry) MustRegister(views ...*View) {
	for _, v := range views {
		if err := r.Register(v); err != nil {
			panic(err)
		}
	}
}

// Freeze ends the populate phase. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Views returns the declarations in registration order.
func (r *Registry) Views() []*View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*View, len(r.views))
	copy(out, r.views)
	return out
}

// Get returns the view registered under name, compared case-insensitively.
func (r *Registry) Get(name string) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byKey[foldKey(name)]
	return v, ok
}

// CreateAll creates every view in registration order on ex.
func (r *Registry) CreateAll(ctx context.Context, ex Executor) error {
	for _, v := range r.Views() {
		p, err := v.CreateCommands(ex.Dialect())
		if err != nil {
			return err
		}
		if err := p.Exec(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

// DropAll drops every view in reverse registration order on ex, so that
// dependents go before the views they read from.
func (r *Registry) DropAll(ctx context.Context, ex Executor, ifExists bool) error {
	views := r.Views()
	for i := len(views) - 1; i >= 0; i-- {
		p, err := views[i].DropCommands(ex.Dialect(), ifExists)
		if err != nil {
			return err
		}
		if err := p.Exec(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

// RefreshAll refreshes every materialized view in registration order on ex.
// Plain views always show live data and are skipped.
func (r *Registry) RefreshAll(ctx context.Context, ex Executor) error {
	for _, v := range r.Views() {
		if !v.cfg.Materialized {
			log.Printf("view: refresh skipped view=%s reason=not_materialized", v.name)
			metrics.RecordSkip(metricsJob, v.name, "not_materialized")
			continue
		}
		p, err := v.RefreshCommands(ex.Dialect())
		if err != nil {
			return err
		}
		if err := p.Exec(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

// Plans returns the plans op would execute for every view on the dialect,
// in execution order. Refresh plans skip plain views like RefreshAll.
func (r *Registry) Plans(op Operation, dialectName string, ifExists bool) ([]Plan, error) {
	views := r.Views()
	out := make([]Plan, 0, len(views))

	switch op {
	case OpCreate:
		for _, v := range views {
			p, err := v.CreateCommands(dialectName)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	case OpDrop:
		for i := len(views) - 1; i >= 0; i-- {
			p, err := views[i].DropCommands(dialectName, ifExists)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	case OpRefresh:
		for _, v := range views {
			if !v.cfg.Materialized {
				continue
			}
			p, err := v.RefreshCommands(dialectName)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	default:
		return nil, fmt.Errorf("view: unknown operation %q", op)
	}
	return out, nil
}
