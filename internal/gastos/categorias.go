package gastos

import (
	"strings"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

const (
	maxNombreCategoria      = 100
	maxDescripcionCategoria = 500
)

// CategoriasManager gestiona las categorías de gastos/ingresos. Compone el
// store genérico parametrizado por tabla y clave primaria; las reglas de
// negocio (unicidad, dependencias) viven acá.
type CategoriasManager struct {
	store *storage.RecordStore
	log   *logger.Logger
}

// NewCategoriasManager construye el manager sobre la base abierta.
func NewCategoriasManager(db *storage.DB, log *logger.Logger) (*CategoriasManager, error) {
	store, err := storage.NewRecordStore(db, "categorias", "id", log)
	if err != nil {
		return nil, err
	}
	m := &CategoriasManager{store: store, log: log}
	store.SetBeforeDelete(func(id any) bool {
		return m.transaccionesDependientes(id) == 0
	})
	return m, nil
}

// Agregar valida e inserta una nueva categoría. El nombre se recorta y debe
// ser único entre las categorías activas.
func (m *CategoriasManager) Agregar(nombre, descripcion string) bool {
	nombre = strings.TrimSpace(nombre)
	descripcion = strings.TrimSpace(descripcion)

	if !m.validar(nombre, descripcion) {
		return false
	}
	if m.nombreEnUso(nombre, -1) {
		m.log.Warn().Str("nombre", nombre).Msg("la categoría ya existe")
		return false
	}

	return m.store.ExecuteCommand(insertCategoria, nombre, descripcion) > 0
}

// Actualizar valida y modifica una categoría activa. La unicidad del nombre
// excluye el propio registro.
func (m *CategoriasManager) Actualizar(id int64, nombre, descripcion string) bool {
	nombre = strings.TrimSpace(nombre)
	descripcion = strings.TrimSpace(descripcion)

	if m.ObtenerPorID(id) == nil {
		m.log.Warn().Int64("id", id).Msg("categoría no encontrada")
		return false
	}
	if !m.validar(nombre, descripcion) {
		return false
	}
	if m.nombreEnUso(nombre, id) {
		m.log.Warn().Str("nombre", nombre).Msg("el nombre ya está en uso por otra categoría")
		return false
	}

	return m.store.ExecuteCommand(updateCategoria, nombre, descripcion, id) > 0
}

// ObtenerTodas devuelve las categorías activas ordenadas por nombre.
func (m *CategoriasManager) ObtenerTodas() []Categoria {
	recs := m.store.ExecuteQuery(selectCategoriasActivas)
	out := make([]Categoria, 0, len(recs))
	for _, r := range recs {
		out = append(out, categoriaFromRecord(r))
	}
	return out
}

// ObtenerPorID devuelve una categoría activa, o nil si no existe.
func (m *CategoriasManager) ObtenerPorID(id int64) *Categoria {
	recs := m.store.ExecuteQuery(selectCategoriaByID, id)
	if len(recs) == 0 {
		return nil
	}
	c := categoriaFromRecord(recs[0])
	return &c
}

// Buscar busca categorías activas por coincidencia parcial de nombre.
func (m *CategoriasManager) Buscar(termino string) []Categoria {
	termino = strings.TrimSpace(termino)
	if termino == "" {
		return m.ObtenerTodas()
	}
	recs := m.store.SearchActive("nombre", termino, true)
	out := make([]Categoria, 0, len(recs))
	for _, r := range recs {
		out = append(out, categoriaFromRecord(r))
	}
	return out
}

// ObtenerNombres devuelve solo los nombres activos, para combos.
func (m *CategoriasManager) ObtenerNombres() []string {
	categorias := m.ObtenerTodas()
	nombres := make([]string, 0, len(categorias))
	for _, c := range categorias {
		nombres = append(nombres, c.Nombre)
	}
	return nombres
}

// Eliminar marca la categoría como eliminada. Se bloquea mientras haya
// transacciones activas que la referencien; el motivo enumera la cantidad.
func (m *CategoriasManager) Eliminar(id int64) domain.DeleteResult {
	if m.ObtenerPorID(id) == nil {
		return domain.NotFound()
	}
	if n := m.transaccionesDependientes(id); n > 0 {
		return domain.BlockedBy("tiene %d transacciones asociadas", n)
	}
	if !m.store.SoftDelete(id, false) {
		return domain.Failed("no se pudo eliminar la categoría")
	}
	return domain.Deleted()
}

// Restaurar limpia deleted_at de una categoría eliminada.
func (m *CategoriasManager) Restaurar(id int64) bool {
	return m.store.Restore(id)
}

// Auditoria devuelve los timestamps de auditoría de una categoría.
func (m *CategoriasManager) Auditoria(id int64) *domain.AuditInfo {
	return m.store.GetAuditInfo(id)
}

func (m *CategoriasManager) validar(nombre, descripcion string) bool {
	if nombre == "" {
		m.log.Warn().Msg("el nombre de la categoría es obligatorio")
		return false
	}
	if len(nombre) > maxNombreCategoria {
		m.log.Warn().Msg("el nombre excede el máximo permitido")
		return false
	}
	if len(descripcion) > maxDescripcionCategoria {
		m.log.Warn().Msg("la descripción excede el máximo permitido")
		return false
	}
	return true
}

// nombreEnUso verifica unicidad entre categorías activas. excludeID < 0
// significa sin exclusión; un id 0 se pasa a SQL tal cual, de modo que la
// exclusión no depende de que las claves arranquen en 1.
func (m *CategoriasManager) nombreEnUso(nombre string, excludeID int64) bool {
	query, args := countCategoriaNombre, []any{nombre, excludeID}
	if excludeID < 0 {
		query, args = countCategoriaNombreSinExclusion, []any{nombre}
	}
	recs := m.store.ExecuteQuery(query, args...)
	return len(recs) > 0 && recs[0].Int64("n") > 0
}

func (m *CategoriasManager) transaccionesDependientes(id any) int64 {
	recs := m.store.ExecuteQuery(countTransaccionesPorCategoria, id)
	if len(recs) == 0 {
		return 0
	}
	return recs[0].Int64("n")
}

func categoriaFromRecord(r storage.Record) Categoria {
	return Categoria{
		ID:          r.Int64("id"),
		Nombre:      r.String("nombre"),
		Descripcion: r.String("descripcion"),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}
