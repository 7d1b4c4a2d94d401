package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"sqlviews/internal/dialect"
	"sqlviews/internal/view"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Project.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "views[1].columns[0].name"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// knownKinds are the storage kinds registered by internal/storage/all.
var knownKinds = map[string]struct{}{
	"postgres": {}, "postgresql": {},
	"mssql": {}, "sqlserver": {},
	"mysql": {}, "mariadb": {},
	"sqlite": {},
	"duckdb": {},
}

// Validate performs static validation / linting of a Project.
//
// It does not mutate the project. Views are checked against the capability
// table of the storage dialect, so a materialized view that the dialect
// cannot realize is reported here rather than at execution time.
func Validate(p Project) []Issue {
	var issues []Issue
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateViews(p.Views, p.Storage.DialectName())...)
	issues = append(issues, validateRefresh(p.Refresh)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}
	if _, ok := knownKinds[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		sev, msg := SeverityError, "storage.dsn must not be empty"
		if s.Kind == "duckdb" {
			sev, msg = SeverityWarning, "empty duckdb dsn opens a private in-memory database"
		}
		issues = append(issues, Issue{Severity: sev, Path: "storage.dsn", Message: msg})
	}

	if d := s.DialectName(); d != "" {
		if _, ok := dialect.Parse(d); !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.dialect",
				Message:  fmt.Sprintf("unknown dialect %q; conservative capabilities (no materialized views, no CREATE TABLE AS) apply", d),
			})
		}
	}
	return issues
}

func validateViews(vs []View, dialectName string) []Issue {
	var issues []Issue

	if len(vs) == 0 {
		return append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "views",
			Message:  "no views declared; commands will do nothing",
		})
	}

	fold := cases.Fold()
	seen := make(map[string]int, len(vs))
	for i, v := range vs {
		path := fmt.Sprintf("views[%d]", i)

		name := strings.TrimSpace(v.Name)
		if name == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: "view name must not be empty"})
		} else if j, dup := seen[fold.String(name)]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("view %q duplicates views[%d] (names are case-insensitive)", name, j),
			})
		} else {
			seen[fold.String(name)] = i
		}

		issues = append(issues, validateDefinition(v, path)...)
		issues = append(issues, validateColumns(v.Columns, path)...)
		issues = append(issues, validateMaterialization(v, path, dialectName)...)
	}
	return issues
}

func validateDefinition(v View, path string) []Issue {
	hasFixed := strings.TrimSpace(v.Definition) != ""
	hasPer := len(v.Definitions) > 0

	switch {
	case hasFixed && hasPer:
		return []Issue{{Severity: SeverityError, Path: path, Message: "definition and definitions are mutually exclusive"}}
	case !hasFixed && !hasPer:
		return []Issue{{Severity: SeverityError, Path: path + ".definition", Message: "one of definition or definitions is required"}}
	case hasFixed:
		return nil
	}

	var issues []Issue
	for k, sql := range v.Definitions {
		p := fmt.Sprintf("%s.definitions.%s", path, k)
		if strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";")) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: p, Message: "query must not be empty"})
		}
		if k == string(view.DefaultDialect) {
			continue
		}
		if _, ok := dialect.Parse(k); !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     p,
				Message:  fmt.Sprintf("unknown dialect %q; this definition is only used when the connection reports it", k),
			})
		}
	}
	return issues
}

func validateColumns(cols []Column, path string) []Issue {
	var issues []Issue
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		p := fmt.Sprintf("%s.columns[%d]", path, i)
		name := strings.TrimSpace(c.Name)
		if name == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: p + ".name", Message: "column name must not be empty"})
			continue
		}
		k := fold.String(name)
		if _, dup := seen[k]; dup {
			issues = append(issues, Issue{Severity: SeverityError, Path: p + ".name", Message: fmt.Sprintf("duplicate column %q", name)})
		}
		seen[k] = struct{}{}
	}
	return issues
}

func validateMaterialization(v View, path, dialectName string) []Issue {
	var issues []Issue

	if !v.Materialized {
		if v.MaterializedAsTable || v.Concurrently {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".materialized",
				Message:  "materialized_as_table and concurrently are ignored for a plain view",
			})
		}
		return issues
	}
	if dialectName == "" {
		return issues
	}

	c := dialect.Lookup(dialectName)
	m, err := view.Resolve(view.Config{Materialized: true, MaterializedAsTable: v.MaterializedAsTable}, dialectName)
	if err != nil {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".materialized_as_table",
			Message:  fmt.Sprintf("%s has no materialized views; set materialized_as_table to simulate one", c.ID),
		})
	}

	if v.Concurrently && m == view.MethodMaterializedView {
		var key bool
		for _, col := range v.Columns {
			key = key || col.PrimaryKey || col.Unique
		}
		switch {
		case !c.SupportsConcurrentRefresh:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".concurrently",
				Message:  fmt.Sprintf("%s has no concurrent refresh; refreshes will block readers", c.ID),
			})
		case !key:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".concurrently",
				Message:  "concurrent refresh needs a primary_key or unique column; refreshes will block readers",
			})
		}
	}

	if m == view.MethodTable && !c.SupportsCreateTableAs {
		if len(v.Columns) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".columns",
				Message:  fmt.Sprintf("%s has no CREATE TABLE AS; declare typed columns for table simulation", c.ID),
			})
		}
		for i, col := range v.Columns {
			if strings.TrimSpace(col.Type) == "" && strings.TrimSpace(col.SQLType) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("%s.columns[%d].type", path, i),
					Message:  fmt.Sprintf("%s has no CREATE TABLE AS; column needs type or sql_type", c.ID),
				})
			}
		}
	}
	return issues
}

func validateRefresh(r Refresh) []Issue {
	var issues []Issue
	if d, err := r.PeriodDuration(); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: "refresh.period", Message: err.Error()})
	} else if d <= 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "refresh.period", Message: "refresh.period must be positive"})
	}
	if r.MaxRepetitions < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "refresh.max_repetitions", Message: "refresh.max_repetitions must be >= 0"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none", "pushgateway":
		return nil
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			return []Issue{{Severity: SeverityWarning, Path: "metrics.datadog_addr", Message: "datadog backend without datadog_addr; the address must come from flags or DD_AGENT_HOST"}}
		}
		return nil
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		}}
	}
}
