package database

import (
	"strings"
	"testing"
)

func TestDialectDriverNames(t *testing.T) {
	tests := []struct {
		dialect Dialect
		driver  string
		subdir  string
	}{
		{NewSQLiteDialect(), "sqlite3", "sqlite"},
		{NewPostgresDialect(), "postgres", "postgres"},
		{NewMySQLDialect(), "mysql", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %s, want %s", got, tt.driver)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.subdir {
				t.Errorf("MigrationsSubdir() = %s, want %s", got, tt.subdir)
			}
		})
	}
}

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT body FROM documents",
			want:  "SELECT body FROM documents",
		},
		{
			name:  "single placeholder",
			query: "SELECT body FROM documents WHERE doc_key = ?",
			want:  "SELECT body FROM documents WHERE doc_key = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO documents (doc_key, body) VALUES (?, ?)",
			want:  "INSERT INTO documents (doc_key, body) VALUES ($1, $2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.want {
				t.Errorf("rewritePlaceholdersToNumbered() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRewriteQueryPerDialect(t *testing.T) {
	query := "SELECT body FROM documents WHERE doc_key = ?"

	if got := NewSQLiteDialect().RewriteQuery(query); got != query {
		t.Errorf("sqlite must not rewrite, got %s", got)
	}
	if got := NewMySQLDialect().RewriteQuery(query); got != query {
		t.Errorf("mysql must not rewrite, got %s", got)
	}
	if got := NewPostgresDialect().RewriteQuery(query); !strings.Contains(got, "$1") {
		t.Errorf("postgres must number placeholders, got %s", got)
	}
}

func TestUpsertQueriesTargetDocuments(t *testing.T) {
	for _, d := range []Dialect{NewSQLiteDialect(), NewPostgresDialect(), NewMySQLDialect()} {
		query := d.UpsertDocumentQuery()
		if !strings.Contains(query, "INSERT INTO documents") {
			t.Errorf("%s upsert does not target documents: %s", d.DriverName(), query)
		}
		if !strings.Contains(query, "doc_key") {
			t.Errorf("%s upsert does not key on doc_key: %s", d.DriverName(), query)
		}
	}
}

func TestDSNSelection(t *testing.T) {
	cfg := DialectConfig{Path: "/tmp/local.db", URL: "postgres://localhost/app"}

	if got := NewSQLiteDialect().DSN(cfg); got != cfg.Path {
		t.Errorf("sqlite DSN = %s, want the file path", got)
	}
	if got := NewPostgresDialect().DSN(cfg); got != cfg.URL {
		t.Errorf("postgres DSN = %s, want the URL", got)
	}
	if got := NewMySQLDialect().DSN(cfg); got != cfg.URL {
		t.Errorf("mysql DSN = %s, want the URL", got)
	}
}
