package mysql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"

	"sqlviews/internal/storage"
)

func TestMySQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	ctx := context.Background()

	origNewRepository := newRepository
	defer func() { newRepository = origNewRepository }()

	var (
		gotCfg Config
		closed int
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed++ }, nil
	}

	for _, kind := range []string{"mysql", "mariadb"} {
		cfg := storage.Config{Kind: kind, DSN: "app:pw@tcp(localhost:3306)/app"}
		conn, err := storage.New(ctx, cfg)
		if err != nil {
			t.Fatalf("storage.New(%s) error = %v", kind, err)
		}
		if gotCfg.DSN != cfg.DSN || gotCfg.Dialect != kind {
			t.Errorf("hook cfg = %+v, want DSN %q dialect %q", gotCfg, cfg.DSN, kind)
		}
		if _, ok := conn.(*wrappedRepo); !ok {
			t.Fatalf("storage.New() type = %T, want *wrappedRepo", conn)
		}
		conn.Close()
	}
	if closed != 2 {
		t.Fatalf("closeFn called %d times, want 2", closed)
	}
}

func TestNormalizeDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr string
	}{
		{name: "adds parseTime", dsn: "app:pw@tcp(localhost:3306)/app", want: "parseTime=true"},
		{name: "keeps db", dsn: "app:pw@tcp(localhost:3306)/views?charset=utf8mb4", want: "/views?"},
		{name: "empty", dsn: "", wantErr: "mysql: DSN must not be empty"},
		{name: "malformed", dsn: "app:pw@tcp(localhost:3306", wantErr: "mysql dsn:"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := normalizeDSN(tt.dsn)
			if tt.wantErr != "" {
				if err == nil || !strings.HasPrefix(err.Error(), tt.wantErr) {
					t.Fatalf("normalizeDSN(%q) error = %v, want prefix %q", tt.dsn, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeDSN(%q) error = %v", tt.dsn, err)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("normalizeDSN(%q) = %q, want it to contain %q", tt.dsn, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	err := describe(&mysql.MySQLError{Number: 1050, Message: "Table 'totals' already exists"})
	if !strings.HasPrefix(err.Error(), "mysql error 1050:") {
		t.Fatalf("describe() = %q", err)
	}
	var got *mysql.MySQLError
	if !errors.As(err, &got) || got.Number != 1050 {
		t.Fatalf("errors.As lost MySQLError: %v", err)
	}
	if describe(nil) != nil {
		t.Fatalf("describe(nil) != nil")
	}
}
