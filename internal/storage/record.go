package storage

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Record es una fila genérica columna -> valor, tal como la devuelve el
// driver. Los managers la convierten a sus structs con los accesores tipados;
// una columna ausente o NULL degrada al cero del tipo pedido.
type Record map[string]any

// Has indica si la columna existe y no es NULL.
func (r Record) Has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}

// String devuelve la columna como texto ("" si es NULL o no existe).
func (r Record) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int64 devuelve la columna como entero (0 si es NULL o no existe).
func (r Record) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Float devuelve la columna como float64 (0 si es NULL o no existe).
func (r Record) Float(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Decimal devuelve la columna como decimal exacto (cero si es NULL).
// SQLite guarda los montos con afinidad NUMERIC, así que pueden volver como
// entero, flotante o texto según cómo se insertaron.
func (r Record) Decimal(col string) decimal.Decimal {
	switch v := r[col].(type) {
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Time devuelve la columna como timestamp (cero si es NULL o no convertible).
// El driver ya convierte las columnas declaradas TIMESTAMP/DATETIME/DATE.
func (r Record) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// NullTime devuelve la columna como *time.Time (nil si es NULL).
func (r Record) NullTime(col string) *time.Time {
	if !r.Has(col) {
		return nil
	}
	t := r.Time(col)
	if t.IsZero() {
		return nil
	}
	return &t
}

// NullInt64 devuelve la columna como *int64 (nil si es NULL).
func (r Record) NullInt64(col string) *int64 {
	if !r.Has(col) {
		return nil
	}
	v := r.Int64(col)
	return &v
}

// collectRecords materializa un *sql.Rows en una secuencia ordenada de Records.
func collectRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = values[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
