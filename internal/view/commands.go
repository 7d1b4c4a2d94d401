package view

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sqlviews/internal/ddl"
	"sqlviews/internal/dialect"
)

// stageSuffix returns the random part of a transactional staging table name.
// Tests replace it to get stable SQL.
var stageSuffix = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (p *Plan) add(ph Phase, sql string) {
	p.Statements = append(p.Statements, Statement{Phase: ph, SQL: sql})
}

func (v *View) plan(op Operation, dialectName string) (Plan, dialect.Capability, error) {
	c := dialect.Lookup(dialectName)
	m, err := v.Method(dialectName)
	if err != nil {
		return Plan{}, c, err
	}
	return Plan{View: v.name, Op: op, Dialect: c.ID, Method: m}, c, nil
}

func (v *View) bind(dialectName string) (BoundQuery, error) {
	bq, err := Bind(v.cfg, dialectName, v.columns)
	if err != nil {
		return BoundQuery{}, fmt.Errorf("view %q: %w", v.name, err)
	}
	return bq, nil
}

// CreateCommands returns the plan that creates the view on the dialect.
//
//	view:              CREATE VIEW q AS sql
//	materialized view: CREATE MATERIALIZED VIEW q AS sql
//	                   [CREATE UNIQUE INDEX <name>_key ON q (key)]
//	table:             CREATE TABLE q AS sql
//	                   or CREATE TABLE q (cols) + INSERT INTO q SELECT ...
func (v *View) CreateCommands(dialectName string) (Plan, error) {
	p, c, err := v.plan(OpCreate, dialectName)
	if err != nil {
		return Plan{}, err
	}
	bq, err := v.bind(dialectName)
	if err != nil {
		return Plan{}, err
	}
	q := c.QuoteFQN(v.name)

	switch p.Method {
	case MethodView:
		p.add(PhaseCreate, "CREATE VIEW "+q+" AS "+bq.SQL)

	case MethodMaterializedView:
		p.add(PhaseCreate, "CREATE MATERIALIZED VIEW "+q+" AS "+bq.SQL)
		if key := v.Key(); len(key) > 0 {
			idx := c.QuoteIdent(dialect.BaseName(v.name) + "_key")
			p.add(PhaseIndex, fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", idx, q, c.QuoteList(key)))
		}

	case MethodTable:
		stmts, err := v.materialize(c, v.name, bq, PhaseCreate)
		if err != nil {
			return Plan{}, err
		}
		p.Statements = append(p.Statements, stmts...)
	}
	return p, nil
}

// DropCommands returns the plan that drops the view's database object.
// The declaration itself is untouched.
//
// Table-simulated views on dialects that refresh through fixed-name staging
// tables also drop <name>__stage and <name>__old, which a failed refresh
// leaves behind when DDL is not transactional.
func (v *View) DropCommands(dialectName string, ifExists bool) (Plan, error) {
	p, c, err := v.plan(OpDrop, dialectName)
	if err != nil {
		return Plan{}, err
	}

	var kind string
	switch p.Method {
	case MethodView:
		kind = "VIEW"
	case MethodMaterializedView:
		kind = "MATERIALIZED VIEW"
	case MethodTable:
		kind = "TABLE"
	}
	stmt := "DROP " + kind + " "
	if ifExists {
		stmt += "IF EXISTS "
	}
	p.add(PhaseDrop, stmt+c.QuoteFQN(v.name))

	if p.Method == MethodTable && !c.TransactionalDDL {
		for _, n := range v.fixedStageNames(c) {
			p.add(PhaseCleanup, "DROP TABLE IF EXISTS "+c.QuoteFQN(n))
		}
	}
	return p, nil
}

// fixedStageNames returns the staging tables a non-transactional refresh
// uses for this view on c.
func (v *View) fixedStageNames(c dialect.Capability) []string {
	base := dialect.BaseName(v.name)
	names := []string{dialect.Sibling(v.name, base+"__stage")}
	if c.AtomicRename {
		names = append(names, dialect.Sibling(v.name, base+"__old"))
	}
	return names
}

// RefreshCommands returns the plan that recomputes a materialized view.
//
// Native materialized views get one REFRESH statement; CONCURRENTLY is
// emitted only when requested, supported by the dialect, and a key is
// declared. Otherwise the refresh is downgraded to a blocking one, which is
// reported on the plan and logged and counted when the plan executes.
//
// Table-simulated views are restaged and swapped:
//   - transactional DDL: CREATE a randomly named stage, DELETE + INSERT into
//     the live table, DROP the stage. Run in one transaction, a failure
//     rolls back to the previous contents.
//   - atomic rename (MySQL family): fixed <name>__stage and <name>__old
//     tables are cleaned, the stage is built, then one RENAME TABLE swaps
//     it in before the old table is dropped. The live table is untouched
//     until the rename. Fixed names make this a per-view critical section.
//   - otherwise: the fixed-name stage is swapped in with DELETE + INSERT.
func (v *View) RefreshCommands(dialectName string) (Plan, error) {
	p, c, err := v.plan(OpRefresh, dialectName)
	if err != nil {
		return Plan{}, err
	}
	q := c.QuoteFQN(v.name)

	switch p.Method {
	case MethodView:
		return Plan{}, fmt.Errorf("view %q: %w", v.name, ErrRefreshNotSupported)

	case MethodMaterializedView:
		concurrently := v.cfg.Concurrently
		if concurrently {
			var reason string
			switch {
			case !c.SupportsConcurrentRefresh:
				reason = fmt.Sprintf("%s has no concurrent refresh", c.ID)
			case len(v.Key()) == 0:
				reason = "no unique key declared"
			}
			if reason != "" {
				concurrently = false
				p.Downgraded = true
				p.Notes = append(p.Notes, "concurrent refresh downgraded to blocking: "+reason)
			}
		}
		stmt := "REFRESH MATERIALIZED VIEW "
		if concurrently {
			stmt += "CONCURRENTLY "
		}
		p.add(PhaseRefresh, stmt+q)

	case MethodTable:
		bq, err := v.bind(dialectName)
		if err != nil {
			return Plan{}, err
		}
		if err := v.restage(&p, c, bq); err != nil {
			return Plan{}, err
		}
	}
	return p, nil
}

func (v *View) restage(p *Plan, c dialect.Capability, bq BoundQuery) error {
	base := dialect.BaseName(v.name)
	q := c.QuoteFQN(v.name)

	if c.TransactionalDDL {
		stage := dialect.Sibling(v.name, base+"_stage_"+stageSuffix())
		build, err := v.materialize(c, stage, bq, PhaseStage)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, build...)
		v.swapRows(p, c, stage)
		p.add(PhaseCleanup, "DROP TABLE "+c.QuoteFQN(stage))
		return nil
	}

	fixed := v.fixedStageNames(c)
	stage := fixed[0]
	old := dialect.Sibling(v.name, base+"__old")
	sq, oq := c.QuoteFQN(stage), c.QuoteFQN(old)
	p.Notes = append(p.Notes, fmt.Sprintf("staging uses fixed names %s and %s; serialize refreshes of this view", stage, old))

	for _, n := range fixed {
		p.add(PhasePrepare, "DROP TABLE IF EXISTS "+c.QuoteFQN(n))
	}
	build, err := v.materialize(c, stage, bq, PhaseStage)
	if err != nil {
		return err
	}
	p.Statements = append(p.Statements, build...)

	if c.AtomicRename {
		p.add(PhaseSwap, fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s", q, oq, sq, q))
		p.add(PhaseCleanup, "DROP TABLE "+oq)
		return nil
	}
	v.swapRows(p, c, stage)
	p.add(PhaseCleanup, "DROP TABLE "+sq)
	return nil
}

// swapRows replaces the live table's rows with the stage's rows.
func (v *View) swapRows(p *Plan, c dialect.Capability, stage string) {
	q, sq := c.QuoteFQN(v.name), c.QuoteFQN(stage)
	p.add(PhaseSwap, "DELETE FROM "+q)
	if len(v.columns) == 0 {
		p.add(PhaseSwap, "INSERT INTO "+q+" SELECT * FROM "+sq)
		return
	}
	cols := c.QuoteList(ddl.TableDef{Columns: v.columns}.ColumnNames())
	p.add(PhaseSwap, fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", q, cols, cols, sq))
}

// materialize returns the statements that create target holding bq's rows.
//
// Fully typed columns give a table with the declared types, nullability and
// keys, built by the dialect's ddl.Builder and filled with INSERT ... SELECT.
// Otherwise the table is CREATE TABLE ... AS the query, which dialects
// without CREATE TABLE AS cannot do.
func (v *View) materialize(c dialect.Capability, target string, bq BoundQuery, ph Phase) ([]Statement, error) {
	tq := c.QuoteFQN(target)
	if !ddl.Typed(bq.Columns) {
		if c.SupportsCreateTableAs {
			return []Statement{{Phase: ph, SQL: "CREATE TABLE " + tq + " AS " + bq.SQL}}, nil
		}
		return nil, fmt.Errorf("view %q: %w: %s has no CREATE TABLE AS, columns must be declared with types", v.name, ErrInvalidConfig, c.ID)
	}

	td := ddl.TableDef{FQN: target, Columns: bq.Columns}
	create, err := ddl.For(c.ID).CreateTable(td)
	if err != nil {
		return nil, fmt.Errorf("view %q: %w: %v", v.name, ErrInvalidConfig, err)
	}
	cols := c.QuoteList(td.ColumnNames())
	return []Statement{
		{Phase: ph, SQL: create},
		{Phase: PhasePopulate, SQL: fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM (%s) AS src", tq, cols, cols, bq.SQL)},
	}, nil
}
