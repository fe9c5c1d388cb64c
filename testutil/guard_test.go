package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		pred Predicate
		in   string
		want bool
	}{
		{InternalImportForbidden, "hbnb/internal/storage", true},
		{InternalImportForbidden, "hbnb/pkg/domain", false},
		{PersistenceImportForbidden, "database/sql", true},
		{PersistenceImportForbidden, "database/sql/driver", true},
		{PersistenceImportForbidden, "github.com/jackc/pgx/v5/stdlib", true},
		{PersistenceImportForbidden, "hbnb/internal/infra/persistence/file", true},
		{PersistenceImportForbidden, "hbnb/internal/blob", true},
		{PersistenceImportForbidden, "hbnb/internal/metrics", false},
		{PersistenceImportForbidden, "database/sqlx", false},
	}
	for _, c := range cases {
		if got := c.pred(c.in); got != c.want {
			t.Fatalf("predicate(%q)=%v want %v", c.in, got, c.want)
		}
	}
	either := AnyOf(InternalImportForbidden, func(p string) bool { return p == "os/exec" })
	if !either("os/exec") || !either("x/internal/y") || either("fmt") {
		t.Fatalf("AnyOf combined predicates incorrectly")
	}
}

type recorder struct{ msg string }

func (r *recorder) Fatalf(format string, args ...any) { r.msg = format }

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("a.go", "package x\n\nimport (\n\t\"fmt\"\n\t\"database/sql\"\n)\n\nvar _ = fmt.Sprint\nvar _ sql.DB\n")
	write("a_test.go", "package x\n\nimport \"github.com/jackc/pgx/v5\"\n")
	viols, err := directImportViolations(dir, PersistenceImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || !strings.HasPrefix(viols[0], "database/sql") {
		t.Fatalf("unexpected violations %v", viols)
	}
	var r recorder
	failIfViolations(&r, "reason", viols)
	if r.msg == "" {
		t.Fatalf("expected failure to be reported")
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), PersistenceImportForbidden); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
