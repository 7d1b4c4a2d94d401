// Command viewctl manages the views declared in a project file: it prints
// their plans, creates, drops and refreshes them, and in serve mode refreshes
// materialized views periodically until interrupted.
//
// Usage:
//
//	viewctl [flags] plan|create|drop|refresh|serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sqlviews/internal/config"
	"sqlviews/internal/metrics"
	"sqlviews/internal/metrics/datadog"
	"sqlviews/internal/metrics/prompush"
	"sqlviews/internal/schedule"
	"sqlviews/internal/storage"
	"sqlviews/internal/view"

	// register all backends with the storage factory.
	// the project file specifies which to use but we need to build in support for all of them.
	_ "sqlviews/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	cfgPath        string
	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
	dialect        string
	validate       bool
	ifExists       bool
	verbose        bool
	command        string
}

var commands = map[string]bool{"plan": true, "create": true, "drop": true, "refresh": true, "serve": true}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("viewctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.cfgPath, "config", getenv("VIEWCTL_CONFIG", "views.yaml"), "project file (JSON or YAML); env VIEWCTL_CONFIG")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog, none; env METRICS_BACKEND")
	fs.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&o.datadogAddr, "datadog-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	fs.StringVar(&o.dialect, "dialect", "", "plan for this dialect without connecting")
	fs.BoolVar(&o.validate, "validate", false, "validate the project file and exit")
	fs.BoolVar(&o.ifExists, "if-exists", false, "drop: ignore views that do not exist")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.validate {
		return o, nil
	}
	if fs.NArg() != 1 || !commands[fs.Arg(0)] {
		fs.Usage()
		return o, fmt.Errorf("expected one command: plan, create, drop, refresh or serve")
	}
	o.command = fs.Arg(0)
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "viewctl: %v\n", err)
		return 2
	}

	p, err := config.Load(o.cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "viewctl: %v\n", err)
		return 1
	}

	// Validate project config.
	issues := config.Validate(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", o.cfgPath)
		return 1
	}
	if o.validate {
		log.Printf("Configuration is valid: %v", o.cfgPath)
		return 0
	}

	reg, err := config.BuildRegistry(p)
	if err != nil {
		fmt.Fprintf(stderr, "viewctl: %v\n", err)
		return 1
	}

	flush := setupMetrics(o, p)
	defer flush()

	start := time.Now()
	if err := execute(ctx, o, p, reg, stdout); err != nil {
		fmt.Fprintf(stderr, "viewctl: %s: %v\n", o.command, err)
		return 1
	}
	if o.verbose {
		log.Printf("viewctl: %s completed in %s", o.command, time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

func execute(ctx context.Context, o options, p config.Project, reg *view.Registry, stdout io.Writer) error {
	if d := pick(o.dialect, p.Storage.Dialect); o.command == "plan" && d != "" {
		return printPlans(stdout, reg, d)
	}

	conn, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DSN})
	if err != nil {
		return err
	}
	defer conn.Close()

	if o.verbose {
		log.Printf("viewctl: storage=%s dialect=%s views=%d", p.Storage.Kind, conn.Dialect(), len(reg.Views()))
	}

	switch o.command {
	case "plan":
		return printPlans(stdout, reg, conn.Dialect())
	case "create":
		return conn.InTx(ctx, func(tx storage.Executor) error { return reg.CreateAll(ctx, tx) })
	case "drop":
		return conn.InTx(ctx, func(tx storage.Executor) error { return reg.DropAll(ctx, tx, o.ifExists) })
	case "refresh":
		return refreshOnce(ctx, conn, reg)
	case "serve":
		return serve(ctx, conn, reg, p.Refresh)
	}
	return fmt.Errorf("unknown command %q", o.command)
}

func refreshOnce(ctx context.Context, conn storage.Conn, reg *view.Registry) error {
	return conn.InTx(ctx, func(tx storage.Executor) error { return reg.RefreshAll(ctx, tx) })
}

// serve refreshes every period, each tick in its own transaction, until a
// signal arrives or the configured repetitions are done. Tick failures are
// logged and do not stop the loop.
func serve(ctx context.Context, conn storage.Conn, reg *view.Registry, r config.Refresh) error {
	period, err := r.PeriodDuration()
	if err != nil {
		return err
	}
	opts := schedule.Options{Period: period, MaxRepetitions: r.MaxRepetitions, Name: "refresh"}
	if r.WaitFirst {
		opts.WaitFirst = period
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		n, err := schedule.RunRepeated(gctx, func(ctx context.Context) error {
			err := refreshOnce(ctx, conn, reg)
			if ferr := metrics.Flush(); ferr != nil {
				log.Printf("metrics: flush error: %v", ferr)
			}
			return err
		}, opts)
		log.Printf("serve: stopped after %d refreshes", n)
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		if parent.Err() != nil {
			log.Printf("serve: signal received, shutting down")
		}
		return nil
	})

	log.Printf("serve: refreshing every %s views=%d", period, len(reg.Views()))
	return g.Wait()
}

// printPlans writes every create, refresh and drop plan as a SQL script.
func printPlans(w io.Writer, reg *view.Registry, dialectName string) error {
	for _, op := range []view.Operation{view.OpCreate, view.OpRefresh, view.OpDrop} {
		plans, err := reg.Plans(op, dialectName, true)
		if err != nil {
			return err
		}
		for _, pl := range plans {
			fmt.Fprintf(w, "-- %s %s method=%s dialect=%s fingerprint=%s\n", pl.Op, pl.View, pl.Method, pl.Dialect, pl.Fingerprint())
			for _, n := range pl.Notes {
				fmt.Fprintf(w, "-- note: %s\n", n)
			}
			for _, s := range pl.SQL() {
				if !strings.HasSuffix(s, ";") {
					s += ";"
				}
				fmt.Fprintln(w, s)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// setupMetrics installs the metrics backend chosen by flag → env → project
// file → none, and returns the function that flushes it on exit.
func setupMetrics(o options, p config.Project) func() {
	backendName := pick(o.metricsBackend, os.Getenv("METRICS_BACKEND"), p.Metrics.Backend)
	jobName := pick(p.Metrics.Job, "viewctl")
	flush := func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}

	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → project file → default.
		gwURL := pick(o.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), p.Metrics.PushgatewayURL, "http://localhost:9091")
		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return func() {}
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
		metrics.SetBackend(b)
		return flush

	case "datadog":
		addr := pick(o.datadogAddr, os.Getenv("DD_DOGSTATSD_ADDR"), p.Metrics.DatadogAddr, "127.0.0.1:8125")
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "sqlviews.",
			GlobalTags: []string{"service:" + jobName},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return func() {}
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, jobName)
		metrics.SetBackend(b)
		return func() {
			flush()
			if err := b.Close(); err != nil {
				log.Printf("metrics: close error: %v", err)
			}
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if o.verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
	return func() {}
}

// pick returns the first non-empty value.
func pick(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
