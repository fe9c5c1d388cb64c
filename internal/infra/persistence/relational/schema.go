// Package relational maps the object table onto one SQL table per class. It
// is shared by the sqlite and postgres backends, which differ only in their
// Dialect.
package relational

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"hbnb/pkg/domain"
)

// Common columns present in every class table.
const (
	colID         = "id"
	colCreatedAt  = "created_at"
	colUpdatedAt  = "updated_at"
	colAttributes = "attributes"
)

// Dialect captures the SQL differences between engines.
type Dialect struct {
	Name string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Types maps field kinds to column types. KindStringList is stored as JSON text.
	Types map[domain.FieldKind]string
	// TextType is used for the common id/timestamp/attributes columns.
	TextType string
}

// Table describes the table backing one class.
type Table struct {
	Class   domain.Class
	Name    string
	Columns []Column
}

// Column is a class-specific column.
type Column struct {
	Name string
	Kind domain.FieldKind
}

var tableNames = map[domain.Class]string{
	domain.ClassBaseModel: "base_models",
	domain.ClassUser:      "users",
	domain.ClassState:     "states",
	domain.ClassCity:      "cities",
	domain.ClassAmenity:   "amenities",
	domain.ClassPlace:     "places",
	domain.ClassReview:    "reviews",
}

// TableName returns the table backing class. Classes outside the default
// set map to their lower-cased name with an "s" suffix.
func TableName(class domain.Class) string {
	if name, ok := tableNames[class]; ok {
		return name
	}
	return strings.ToLower(string(class)) + "s"
}

// Tables derives the table layout for every class in registry.
func Tables(registry *domain.Registry) ([]Table, error) {
	classes := registry.Classes()
	out := make([]Table, 0, len(classes))
	for _, class := range classes {
		m, err := registry.Instantiate(class)
		if err != nil {
			return nil, err
		}
		t := Table{Class: class, Name: TableName(class)}
		for _, f := range domain.Fields(m) {
			t.Columns = append(t.Columns, Column{Name: f.Name, Kind: f.Kind})
		}
		out = append(out, t)
	}
	return out, nil
}

func (t Table) columnNames() []string {
	names := []string{colID, colCreatedAt, colUpdatedAt, colAttributes}
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// CreateStatement returns the CREATE TABLE IF NOT EXISTS statement for t.
func (d Dialect) CreateStatement(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Name)
	fmt.Fprintf(&b, "\t%s %s PRIMARY KEY,\n", colID, d.TextType)
	fmt.Fprintf(&b, "\t%s %s NOT NULL,\n", colCreatedAt, d.TextType)
	fmt.Fprintf(&b, "\t%s %s NOT NULL,\n", colUpdatedAt, d.TextType)
	fmt.Fprintf(&b, "\t%s %s", colAttributes, d.TextType)
	for _, c := range t.Columns {
		fmt.Fprintf(&b, ",\n\t%s %s", c.Name, d.Types[c.Kind])
	}
	b.WriteString("\n)")
	return b.String()
}

func (d Dialect) insertStatement(t Table) string {
	cols := t.columnNames()
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func selectStatement(t Table) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columnNames(), ", "), t.Name)
}

func clearStatement(t Table) string {
	return "DELETE FROM " + t.Name
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EnsureSchema creates every missing class table.
func EnsureSchema(ctx context.Context, db execer, d Dialect, tables []Table) error {
	for _, t := range tables {
		if _, err := db.ExecContext(ctx, d.CreateStatement(t)); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// rowValues flattens m into insert arguments matching t.columnNames().
func rowValues(t Table, m domain.Model) ([]any, error) {
	rec := m.Record()
	var extra any
	if len(rec.Extra) > 0 {
		data, err := json.Marshal(domain.JSONValue(rec.Extra))
		if err != nil {
			return nil, fmt.Errorf("encode %s attributes: %w", domain.Key(m), err)
		}
		extra = string(data)
	}
	args := []any{
		rec.ID,
		rec.CreatedAt.UTC().Format(domain.TimeLayout),
		rec.UpdatedAt.UTC().Format(domain.TimeLayout),
		extra,
	}
	values := make(map[string]domain.FieldInfo)
	for _, f := range domain.Fields(m) {
		values[f.Name] = f
	}
	for _, c := range t.Columns {
		f := values[c.Name]
		switch c.Kind {
		case domain.KindInt:
			args = append(args, int64(f.Value.(int)))
		case domain.KindStringList:
			data, err := json.Marshal(f.Value)
			if err != nil {
				return nil, fmt.Errorf("encode %s.%s: %w", domain.Key(m), c.Name, err)
			}
			args = append(args, string(data))
		default:
			args = append(args, f.Value)
		}
	}
	return args, nil
}
