// Package config defines the project file that declares views for viewctl:
// which database to connect to, the views to manage in dependency order, how
// often to refresh them, and where metrics go.
//
// Project files are JSON, or YAML when the file extension is .yaml or .yml.
// Field names are the same in both.
//
// Example (trimmed):
//
//	storage:
//	  kind: postgres
//	  dsn: ${VIEWS_DSN}
//	views:
//	  - name: public.daily_totals
//	    materialized: true
//	    concurrently: true
//	    columns:
//	      - { name: day, type: date, primary_key: true }
//	      - { name: total, type: int }
//	    definition: SELECT day, SUM(amount) AS total FROM orders GROUP BY day
//	refresh:
//	  period: 5m
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Project is the top-level object decoded from a project file.
type Project struct {
	// Storage selects the database backend.
	Storage Storage `json:"storage" yaml:"storage"`

	// Views lists the declarations in registration (dependency) order: a
	// view may only read from views listed before it.
	Views []View `json:"views" yaml:"views"`

	// Refresh configures periodic refresh in serve mode.
	Refresh Refresh `json:"refresh" yaml:"refresh"`

	// Metrics configures the metrics backend.
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Storage identifies the backend and connection.
type Storage struct {
	// Kind is a registered storage kind, e.g. "postgres", "sqlite".
	Kind string `json:"kind" yaml:"kind"`

	// DSN is passed to the backend driver. ${VAR} references are expanded
	// from the environment at load time.
	DSN string `json:"dsn" yaml:"dsn"`

	// Dialect overrides the dialect used for planning without a connection.
	// It defaults to Kind.
	Dialect string `json:"dialect,omitempty" yaml:"dialect,omitempty"`
}

// DialectName returns the dialect statements are planned for.
func (s Storage) DialectName() string {
	if strings.TrimSpace(s.Dialect) != "" {
		return s.Dialect
	}
	return s.Kind
}

// View is one view declaration.
type View struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns,omitempty" yaml:"columns,omitempty"`

	// Definition is a dialect-independent query.
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
	// Definitions maps dialect names (or "default") to query text.
	Definitions map[string]string `json:"definitions,omitempty" yaml:"definitions,omitempty"`

	Materialized        bool `json:"materialized,omitempty" yaml:"materialized,omitempty"`
	MaterializedAsTable bool `json:"materialized_as_table,omitempty" yaml:"materialized_as_table,omitempty"`
	Concurrently        bool `json:"concurrently,omitempty" yaml:"concurrently,omitempty"`
}

// Column declares one output column of a view.
type Column struct {
	Name string `json:"name" yaml:"name"`
	// Type is a logical type ("int", "text", "timestamp", ...) mapped per
	// dialect; SQLType, when set, is used verbatim instead.
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	SQLType    string `json:"sql_type,omitempty" yaml:"sql_type,omitempty"`
	Nullable   bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Unique     bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// Refresh controls serve mode.
type Refresh struct {
	// Period is a Go duration string, e.g. "30s", "5m".
	Period string `json:"period,omitempty" yaml:"period,omitempty"`
	// WaitFirst delays the first refresh by one period.
	WaitFirst bool `json:"wait_first,omitempty" yaml:"wait_first,omitempty"`
	// MaxRepetitions stops serve mode after that many refreshes; 0 is unbounded.
	MaxRepetitions int `json:"max_repetitions,omitempty" yaml:"max_repetitions,omitempty"`
}

// DefaultRefreshPeriod is used when Refresh.Period is empty.
const DefaultRefreshPeriod = 5 * time.Minute

// PeriodDuration parses Period, falling back to DefaultRefreshPeriod.
func (r Refresh) PeriodDuration() (time.Duration, error) {
	if strings.TrimSpace(r.Period) == "" {
		return DefaultRefreshPeriod, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(r.Period))
	if err != nil {
		return 0, fmt.Errorf("refresh.period: %w", err)
	}
	return d, nil
}

// Metrics selects a metrics backend. Flags and environment variables in
// cmd/viewctl take precedence over these values.
type Metrics struct {
	// Backend is "pushgateway", "datadog", or "none".
	Backend        string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Job            string `json:"job,omitempty" yaml:"job,omitempty"`
	PushgatewayURL string `json:"pushgateway_url,omitempty" yaml:"pushgateway_url,omitempty"`
	DatadogAddr    string `json:"datadog_addr,omitempty" yaml:"datadog_addr,omitempty"`
}

// Load reads and decodes a project file. Unknown fields are rejected so that
// typos surface instead of being ignored.
func Load(path string) (Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return Project{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Decode decodes a project from b. ext selects the format: ".yaml" and
// ".yml" decode YAML, anything else JSON.
func Decode(b []byte, ext string) (Project, error) {
	var p Project
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return Project{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Project{}, fmt.Errorf("decode json: %w", err)
		}
	}
	p.Storage.DSN = os.ExpandEnv(p.Storage.DSN)
	return p, nil
}
