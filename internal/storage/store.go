package storage

import (
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

// identRe restringe los identificadores (tabla, clave primaria, campo de
// búsqueda) que se interpolan en SQL. Los parámetros de datos siempre van
// como placeholders.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RecordStore implementa las operaciones CRUD uniformes con soft delete y
// auditoría sobre una tabla cualquiera, parametrizado por nombre de tabla y
// de clave primaria. Un registro está activo si deleted_at IS NULL; ninguna
// operación normal borra filas físicamente.
//
// Contrato de errores: toda falla de almacenamiento se absorbe aquí, se
// registra en el log y degrada a vacío/cero/false. Los managers verifican
// resultados, no capturan errores de esta capa.
type RecordStore struct {
	db    *DB
	table string
	pk    string
	log   *logger.Logger

	// beforeDelete valida dependencias antes de un soft delete; nil = sin
	// validación. Lo configura el manager dueño de la tabla.
	beforeDelete func(id any) bool
}

// NewRecordStore construye el store genérico para una tabla. Los nombres de
// tabla y clave primaria provienen de constantes de los managers; aun así se
// validan para que nunca se interpole un identificador arbitrario.
func NewRecordStore(db *DB, table, pk string, log *logger.Logger) (*RecordStore, error) {
	if !identRe.MatchString(table) || !identRe.MatchString(pk) {
		return nil, fmt.Errorf("%w: identificador inválido %q/%q", domain.ErrInvalidInput, table, pk)
	}
	return &RecordStore{db: db, table: table, pk: pk, log: log}, nil
}

// SetBeforeDelete registra el hook de validación de dependencias.
func (s *RecordStore) SetBeforeDelete(fn func(id any) bool) { s.beforeDelete = fn }

// Table devuelve el nombre de la tabla administrada.
func (s *RecordStore) Table() string { return s.table }

// ExecuteQuery ejecuta una consulta de solo lectura y devuelve las filas en
// orden. Ante cualquier fallo devuelve una secuencia vacía y lo registra.
func (s *RecordStore) ExecuteQuery(query string, args ...any) []Record {
	rows, err := s.db.sql.Query(query, args...)
	if err != nil {
		s.log.Error().Err(err).Str("tabla", s.table).Str("query", query).Msg("error ejecutando consulta")
		return nil
	}
	recs, err := collectRecords(rows)
	if err != nil {
		s.log.Error().Err(err).Str("tabla", s.table).Msg("error leyendo filas")
		return nil
	}
	return recs
}

// ExecuteCommand ejecuta un INSERT/UPDATE/DELETE con commit inmediato y
// devuelve las filas afectadas; 0 ante cualquier fallo (registrado).
func (s *RecordStore) ExecuteCommand(command string, args ...any) int64 {
	res, err := s.db.sql.Exec(command, args...)
	if err != nil {
		s.log.Error().Err(err).Str("tabla", s.table).Str("command", command).Msg("error ejecutando comando")
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.log.Error().Err(err).Str("tabla", s.table).Msg("error obteniendo filas afectadas")
		return 0
	}
	return n
}

// GetActive devuelve todos los registros activos, opcionalmente ordenados.
func (s *RecordStore) GetActive(orderBy string) []Record {
	query := fmt.Sprintf("SELECT * FROM %s WHERE deleted_at IS NULL", s.table)
	if orderBy != "" {
		if !identRe.MatchString(orderBy) {
			s.log.Warn().Str("order_by", orderBy).Msg("orden ignorado: identificador inválido")
		} else {
			query += " ORDER BY " + orderBy
		}
	}
	return s.ExecuteQuery(query)
}

// GetDeleted devuelve los registros eliminados lógicamente.
func (s *RecordStore) GetDeleted(orderBy string) []Record {
	query := fmt.Sprintf("SELECT * FROM %s WHERE deleted_at IS NOT NULL", s.table)
	if orderBy != "" && identRe.MatchString(orderBy) {
		query += " ORDER BY " + orderBy
	}
	return s.ExecuteQuery(query)
}

// GetAllIncludingDeleted devuelve todos los registros, activos y eliminados.
func (s *RecordStore) GetAllIncludingDeleted(orderBy string) []Record {
	query := fmt.Sprintf("SELECT * FROM %s", s.table)
	if orderBy != "" && identRe.MatchString(orderBy) {
		query += " ORDER BY " + orderBy
	}
	return s.ExecuteQuery(query)
}

// GetByID devuelve el registro activo con esa clave primaria, o nil si no
// existe o está eliminado.
func (s *RecordStore) GetByID(id any) Record {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? AND deleted_at IS NULL", s.table, s.pk)
	recs := s.ExecuteQuery(query, id)
	if len(recs) == 0 {
		return nil
	}
	return recs[0]
}

// SearchActive busca registros activos por un campo, con coincidencia parcial
// (LIKE %valor%) o exacta.
func (s *RecordStore) SearchActive(field, value string, partial bool) []Record {
	if !identRe.MatchString(field) {
		s.log.Warn().Str("campo", field).Msg("búsqueda ignorada: identificador inválido")
		return nil
	}
	if partial {
		query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIKE ? AND deleted_at IS NULL", s.table, field)
		return s.ExecuteQuery(query, "%"+value+"%")
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? AND deleted_at IS NULL", s.table, field)
	return s.ExecuteQuery(query, value)
}

// SoftDelete marca un registro como eliminado. Devuelve false si el registro
// no existe o ya estaba eliminado (la operación es idempotente en ese
// sentido) o si el hook de dependencias lo bloquea.
func (s *RecordStore) SoftDelete(id any, validateDependencies bool) bool {
	if s.GetByID(id) == nil {
		s.log.Warn().Str("tabla", s.table).Any("id", id).Msg("registro no encontrado o ya eliminado")
		return false
	}

	if validateDependencies && s.beforeDelete != nil && !s.beforeDelete(id) {
		s.log.Warn().Str("tabla", s.table).Any("id", id).Msg("no se puede eliminar: tiene dependencias activas")
		return false
	}

	query := fmt.Sprintf(
		"UPDATE %s SET deleted_at = CURRENT_TIMESTAMP WHERE %s = ? AND deleted_at IS NULL",
		s.table, s.pk,
	)
	return s.ExecuteCommand(query, id) > 0
}

// Restore limpia deleted_at. Devuelve false si el registro no existe.
func (s *RecordStore) Restore(id any) bool {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = NULL WHERE %s = ?", s.table, s.pk)
	if s.ExecuteCommand(query, id) > 0 {
		return true
	}
	s.log.Warn().Str("tabla", s.table).Any("id", id).Msg("no se encontró el registro para restaurar")
	return false
}

// CountActive cuenta los registros activos.
func (s *RecordStore) CountActive() int64 {
	return s.countWhere("deleted_at IS NULL")
}

// CountDeleted cuenta los registros eliminados.
func (s *RecordStore) CountDeleted() int64 {
	return s.countWhere("deleted_at IS NOT NULL")
}

func (s *RecordStore) countWhere(cond string) int64 {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", s.table, cond)
	if err := s.db.sql.QueryRow(query).Scan(&n); err != nil {
		s.log.Error().Err(err).Str("tabla", s.table).Msg("error contando registros")
		return 0
	}
	return n
}

// GetAuditInfo devuelve los timestamps de auditoría de un registro, esté
// activo o eliminado; nil si no existe.
func (s *RecordStore) GetAuditInfo(id any) *domain.AuditInfo {
	query := fmt.Sprintf(
		"SELECT created_at, updated_at, deleted_at FROM %s WHERE %s = ?",
		s.table, s.pk,
	)
	var info domain.AuditInfo
	var deleted sql.NullTime
	err := s.db.sql.QueryRow(query, id).Scan(&info.CreatedAt, &info.UpdatedAt, &deleted)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Error().Err(err).Str("tabla", s.table).Msg("error obteniendo auditoría")
		}
		return nil
	}
	if deleted.Valid {
		t := deleted.Time
		info.DeletedAt = &t
	}
	return &info
}

// BulkSoftDelete aplica SoftDelete a cada id de forma independiente: un fallo
// no aborta el lote ni revierte los anteriores.
func (s *RecordStore) BulkSoftDelete(ids []any, validateDependencies bool) domain.BulkDeleteResult {
	var result domain.BulkDeleteResult
	for _, id := range ids {
		if s.SoftDelete(id, validateDependencies) {
			result.Successful = append(result.Successful, id)
		} else {
			result.Failed = append(result.Failed, id)
		}
	}
	return result
}

// GetRecentlyCreated devuelve registros activos creados en los últimos días.
func (s *RecordStore) GetRecentlyCreated(days, limit int) []Record {
	query := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE deleted_at IS NULL
		AND created_at >= date('now', '-%d days')
		ORDER BY created_at DESC
		LIMIT %d`, s.table, days, limit)
	return s.ExecuteQuery(query)
}

// GetRecentlyUpdated devuelve registros activos modificados (no recién
// creados) en los últimos días.
func (s *RecordStore) GetRecentlyUpdated(days, limit int) []Record {
	query := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE deleted_at IS NULL
		AND updated_at >= date('now', '-%d days')
		AND updated_at != created_at
		ORDER BY updated_at DESC
		LIMIT %d`, s.table, days, limit)
	return s.ExecuteQuery(query)
}
