package relational

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hbnb/pkg/domain"
)

// Save rewrites every class table with the records in objects inside a single
// transaction. Records whose class has no table are rejected.
func Save(ctx context.Context, db *sql.DB, d Dialect, tables []Table, objects map[string]domain.Model) (retErr error) {
	byClass := make(map[domain.Class][]domain.Model)
	for _, m := range objects {
		byClass[m.Class()] = append(byClass[m.Class()], m)
	}
	known := make(map[domain.Class]struct{}, len(tables))
	for _, t := range tables {
		known[t.Class] = struct{}{}
	}
	for class := range byClass {
		if _, ok := known[class]; !ok {
			return fmt.Errorf("no table for class %s", class)
		}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, clearStatement(t)); err != nil {
			return fmt.Errorf("clear %s: %w", t.Name, err)
		}
		insert := d.insertStatement(t)
		for _, m := range byClass[t.Class] {
			args, err := rowValues(t, m)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
				return fmt.Errorf("insert %s: %w", domain.Key(m), err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Load materializes every row of every class table into records.
func Load(ctx context.Context, db *sql.DB, tables []Table, registry *domain.Registry) ([]domain.Model, error) {
	var out []domain.Model
	for _, t := range tables {
		models, err := loadTable(ctx, db, t, registry)
		if err != nil {
			return nil, err
		}
		out = append(out, models...)
	}
	return out, nil
}

func loadTable(ctx context.Context, db *sql.DB, t Table, registry *domain.Registry) ([]domain.Model, error) {
	rows, err := db.QueryContext(ctx, selectStatement(t))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.Name, err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Model
	for rows.Next() {
		var (
			id, createdAt, updatedAt string
			attributes               sql.NullString
		)
		dest := []any{&id, &createdAt, &updatedAt, &attributes}
		holders := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			switch c.Kind {
			case domain.KindInt:
				holders[i] = new(sql.NullInt64)
			case domain.KindFloat:
				holders[i] = new(sql.NullFloat64)
			default:
				holders[i] = new(sql.NullString)
			}
		}
		dest = append(dest, holders...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		attrs := map[string]any{
			domain.AttrClass:     string(t.Class),
			domain.AttrID:        id,
			domain.AttrCreatedAt: createdAt,
			domain.AttrUpdatedAt: updatedAt,
		}
		if attributes.Valid && attributes.String != "" {
			extra, err := decodeJSON(attributes.String)
			if err != nil {
				return nil, fmt.Errorf("decode %s.%s attributes: %w", t.Class, id, err)
			}
			extraMap, ok := extra.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("decode %s.%s attributes: not an object", t.Class, id)
			}
			for k, v := range extraMap {
				attrs[k] = v
			}
		}
		for i, c := range t.Columns {
			switch h := holders[i].(type) {
			case *sql.NullInt64:
				if h.Valid {
					attrs[c.Name] = h.Int64
				}
			case *sql.NullFloat64:
				if h.Valid {
					attrs[c.Name] = h.Float64
				}
			case *sql.NullString:
				if !h.Valid {
					continue
				}
				if c.Kind == domain.KindStringList {
					list, err := decodeJSON(h.String)
					if err != nil {
						return nil, fmt.Errorf("decode %s.%s.%s: %w", t.Class, id, c.Name, err)
					}
					attrs[c.Name] = list
					continue
				}
				attrs[c.Name] = h.String
			}
		}
		m, err := registry.FromMap(attrs)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.Name, err)
	}
	return out, nil
}

func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return domain.NormalizeJSON(v), nil
}
