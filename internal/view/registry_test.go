package view

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"sqlviews/internal/ddl"
)

// dependentPair returns views A and B where B reads from A.
func dependentPair(materializeB bool) (*View, *View) {
	a := MustNew("events_base", Config{Definition: SQL("SELECT id, kind FROM events WHERE kind <> 'noise'")})
	b := MustNew("events_by_kind", Config{
		Definition:          SQL("SELECT kind, COUNT(*) AS n FROM events_base GROUP BY kind"),
		Materialized:        materializeB,
		MaterializedAsTable: true,
	}, ddl.ColumnDef{Name: "kind", PrimaryKey: true}, ddl.ColumnDef{Name: "n"})
	return a, b
}

func TestRegistryRejectsDuplicatesCaseInsensitively(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(MustNew("Events", Config{Definition: SQL("SELECT 1")})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := r.Register(MustNew("EVENTS", Config{Definition: SQL("SELECT 2")}))
	if !errors.Is(err, ErrDuplicateView) {
		t.Fatalf("Register(duplicate) error = %v, want ErrDuplicateView", err)
	}
	if v, ok := r.Get("events"); !ok || v.Name() != "Events" {
		t.Fatalf("Get(events) = (%v, %v), want the first declaration", v, ok)
	}
	if len(r.Views()) != 1 {
		t.Fatalf("Views() = %d entries, want 1", len(r.Views()))
	}
	if err := r.Register(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Register(nil) error = %v, want ErrInvalidConfig", err)
	}
}

func TestRegistryFreeze(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(MustNew("a", Config{Definition: SQL("SELECT 1")}))
	if r.Frozen() {
		t.Fatalf("new registry is frozen")
	}
	r.Freeze()
	r.Freeze()
	if !r.Frozen() {
		t.Fatalf("Frozen() = false after Freeze")
	}
	if err := r.Register(MustNew("b", Config{Definition: SQL("SELECT 1")})); !errors.Is(err, ErrRegistryFrozen) {
		t.Fatalf("Register() after Freeze error = %v, want ErrRegistryFrozen", err)
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	defer func() {
		if recover() == nil {
			t.Fatalf("MustRegister() did not panic on a duplicate")
		}
	}()
	v := MustNew("a", Config{Definition: SQL("SELECT 1")})
	r.MustRegister(v, v)
}

// Views created in registration order are dropped in reverse.
func TestRegistryOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, b := dependentPair(false)
	r := NewRegistry()
	r.MustRegister(a, b)
	r.Freeze()

	rec := &recorder{dialect: "postgresql"}
	if err := r.CreateAll(ctx, rec); err != nil {
		t.Fatalf("CreateAll() error = %v", err)
	}
	want := []string{
		`CREATE VIEW "events_base" AS SELECT id, kind FROM events WHERE kind <> 'noise'`,
		`CREATE VIEW "events_by_kind" AS SELECT kind, COUNT(*) AS n FROM events_base GROUP BY kind`,
	}
	if !reflect.DeepEqual(rec.stmts, want) {
		t.Fatalf("CreateAll() ran %q, want %q", rec.stmts, want)
	}

	rec = &recorder{dialect: "postgresql"}
	if err := r.DropAll(ctx, rec, true); err != nil {
		t.Fatalf("DropAll() error = %v", err)
	}
	want = []string{`DROP VIEW IF EXISTS "events_by_kind"`, `DROP VIEW IF EXISTS "events_base"`}
	if !reflect.DeepEqual(rec.stmts, want) {
		t.Fatalf("DropAll() ran %q, want %q", rec.stmts, want)
	}
}

func TestRegistryRefreshAllSkipsPlainViews(t *testing.T) {
	t.Parallel()

	a, b := dependentPair(true)
	r := NewRegistry()
	r.MustRegister(a, b)

	rec := &recorder{dialect: "postgresql"}
	if err := r.RefreshAll(context.Background(), rec); err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}
	if want := []string{`REFRESH MATERIALIZED VIEW "events_by_kind"`}; !reflect.DeepEqual(rec.stmts, want) {
		t.Fatalf("RefreshAll() ran %q, want %q", rec.stmts, want)
	}
}

func TestRegistryBulkStopsOnError(t *testing.T) {
	t.Parallel()

	a, b := dependentPair(false)
	r := NewRegistry()
	r.MustRegister(a, b)

	boom := errors.New("permission denied")
	rec := &recorder{dialect: "postgresql", failOn: "events_base", err: boom}
	if err := r.CreateAll(context.Background(), rec); !errors.Is(err, boom) {
		t.Fatalf("CreateAll() error = %v, want %v", err, boom)
	}
	if len(rec.stmts) != 0 {
		t.Fatalf("CreateAll() continued after a failure: %q", rec.stmts)
	}

	// A view that cannot be realized fails the whole bulk operation.
	bad := NewRegistry()
	bad.MustRegister(MustNew("mv", Config{Definition: SQL("SELECT 1"), Materialized: true}))
	if err := bad.CreateAll(context.Background(), &recorder{dialect: "mysql"}); !errors.Is(err, ErrUnsupportedMaterialization) {
		t.Fatalf("CreateAll() error = %v, want ErrUnsupportedMaterialization", err)
	}
}

func TestRegistryPlans(t *testing.T) {
	t.Parallel()

	a, b := dependentPair(true)
	r := NewRegistry()
	r.MustRegister(a, b)

	tests := []struct {
		op    Operation
		views []string
	}{
		{op: OpCreate, views: []string{"events_base", "events_by_kind"}},
		{op: OpDrop, views: []string{"events_by_kind", "events_base"}},
		{op: OpRefresh, views: []string{"events_by_kind"}},
	}
	for _, tt := range tests {
		plans, err := r.Plans(tt.op, "sqlite", true)
		if err != nil {
			t.Fatalf("Plans(%s) error = %v", tt.op, err)
		}
		got := make([]string, len(plans))
		for i, p := range plans {
			got[i] = p.View
			if p.Op != tt.op {
				t.Fatalf("Plans(%s)[%d].Op = %s", tt.op, i, p.Op)
			}
		}
		if !reflect.DeepEqual(got, tt.views) {
			t.Fatalf("Plans(%s) views = %v, want %v", tt.op, got, tt.views)
		}
	}

	if _, err := r.Plans("rename", "sqlite", false); err == nil {
		t.Fatalf("Plans(unknown op) error = nil")
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(MustNew(fmt.Sprintf("v%d", i), Config{Definition: SQL("SELECT 1")}))
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = r.Views()
			_, _ = r.Get(fmt.Sprintf("v%d", i))
		}(i)
	}
	wg.Wait()

	if got := len(r.Views()); got != 8 {
		t.Fatalf("Views() = %d entries, want 8", got)
	}
}
