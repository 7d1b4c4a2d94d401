package view

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"sqlviews/internal/dialect"
	"sqlviews/internal/metrics"
)

// metricsJob labels metrics recorded by plan execution.
const metricsJob = "sqlviews"

// Executor runs single statements against a database. It is normally a
// transaction supplied by the caller.
type Executor interface {
	// Dialect returns the free-form dialect name of the connection.
	Dialect() string
	Exec(ctx context.Context, sql string) error
}

// Operation names what a Plan does.
type Operation string

const (
	OpCreate  Operation = "create"
	OpDrop    Operation = "drop"
	OpRefresh Operation = "refresh"
)

// Phase tags a statement within a plan.
type Phase string

const (
	PhaseCreate   Phase = "create"
	PhasePopulate Phase = "populate"
	PhaseIndex    Phase = "index"
	PhaseDrop     Phase = "drop"
	PhaseRefresh  Phase = "refresh"
	PhasePrepare  Phase = "prepare"
	PhaseStage    Phase = "stage"
	PhaseSwap     Phase = "swap"
	PhaseCleanup  Phase = "cleanup"
)

// Statement is one executable unit of a plan.
type Statement struct {
	Phase Phase
	SQL   string
}

// Plan is the ordered statement sequence for one operation on one view.
// Statements must run strictly in order, in one transaction scope.
type Plan struct {
	View       string
	Op         Operation
	Dialect    dialect.Name
	Method     Method
	Statements []Statement

	// Downgraded is set when a concurrent refresh was requested but a
	// blocking one is emitted.
	Downgraded bool
	// Notes carries human-readable diagnostics such as the downgrade reason.
	Notes []string
}

// SQL returns the statements' text in order.
func (p Plan) SQL() []string {
	out := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		out[i] = s.SQL
	}
	return out
}

// Fingerprint is a stable hash of the statement text. It changes whenever
// the generated SQL changes and is logged with every execution.
func (p Plan) Fingerprint() string {
	var b strings.Builder
	for _, s := range p.Statements {
		b.WriteString(string(s.Phase))
		b.WriteByte(0)
		b.WriteString(s.SQL)
		b.WriteByte(0)
	}
	return strconv.FormatUint(xxh3.Hash([]byte(b.String())), 16)
}

// Exec runs the statements in order and stops at the first error, which is
// returned wrapped so errors.Is and errors.As still see the driver error.
// A downgraded refresh is logged and counted before its first statement.
func (p Plan) Exec(ctx context.Context, ex Executor) error {
	start := time.Now()
	step := string(p.Op) + ":" + p.View
	if p.Downgraded {
		log.Printf("view: concurrent refresh downgraded view=%s dialect=%s notes=%q", p.View, p.Dialect, p.Notes)
		metrics.RecordDowngrade(metricsJob, p.View)
	}

	for i, s := range p.Statements {
		if err := ex.Exec(ctx, s.SQL); err != nil {
			err = fmt.Errorf("view %q: %s: %s statement %d/%d: %w", p.View, p.Op, s.Phase, i+1, len(p.Statements), err)
			metrics.RecordStatements(metricsJob, int64(i))
			metrics.RecordStep(metricsJob, step, err, time.Since(start))
			return err
		}
	}

	d := time.Since(start)
	metrics.RecordStatements(metricsJob, int64(len(p.Statements)))
	metrics.RecordStep(metricsJob, step, nil, d)
	log.Printf("view: %s view=%s dialect=%s method=%s statements=%d fingerprint=%s dur=%s",
		p.Op, p.View, p.Dialect, p.Method, len(p.Statements), p.Fingerprint(), d)
	return nil
}
