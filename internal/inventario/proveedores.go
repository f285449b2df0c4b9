package inventario

import (
	"strings"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

const maxRazonSocial = 200

// ProveedoresManager gestiona los proveedores. La razón social y el CUIT/RUT
// deben ser únicos entre proveedores activos; un proveedor eliminado libera
// ambos para reutilización.
type ProveedoresManager struct {
	store *storage.RecordStore
	log   *logger.Logger
}

// NewProveedoresManager construye el manager sobre la base abierta.
func NewProveedoresManager(db *storage.DB, log *logger.Logger) (*ProveedoresManager, error) {
	store, err := storage.NewRecordStore(db, "proveedores", "id", log)
	if err != nil {
		return nil, err
	}
	m := &ProveedoresManager{store: store, log: log}
	store.SetBeforeDelete(func(id any) bool {
		return m.productosDependientes(id) == 0
	})
	return m, nil
}

// Agregar valida e inserta un proveedor nuevo.
func (m *ProveedoresManager) Agregar(p Proveedor) bool {
	normalizarProveedor(&p)
	if !m.validar(p, -1) {
		return false
	}
	return m.store.ExecuteCommand(insertProveedor,
		p.RazonSocial, nullable(p.CuitRut), p.Direccion, p.Telefono, p.Email, p.Responsable) > 0
}

// Actualizar valida y modifica un proveedor activo. Las unicidades excluyen
// el propio registro.
func (m *ProveedoresManager) Actualizar(id int64, p Proveedor) bool {
	normalizarProveedor(&p)
	if m.ObtenerPorID(id) == nil {
		m.log.Warn().Int64("id", id).Msg("proveedor no encontrado")
		return false
	}
	if !m.validar(p, id) {
		return false
	}
	return m.store.ExecuteCommand(updateProveedor,
		p.RazonSocial, nullable(p.CuitRut), p.Direccion, p.Telefono, p.Email, p.Responsable, id) > 0
}

// ObtenerTodos devuelve los proveedores activos ordenados por razón social.
func (m *ProveedoresManager) ObtenerTodos() []Proveedor {
	return proveedoresFromRecords(m.store.ExecuteQuery(selectProveedoresActivos))
}

// ObtenerPorID devuelve un proveedor activo, o nil si no existe.
func (m *ProveedoresManager) ObtenerPorID(id int64) *Proveedor {
	recs := m.store.ExecuteQuery(selectProveedorByID, id)
	if len(recs) == 0 {
		return nil
	}
	p := proveedorFromRecord(recs[0])
	return &p
}

// Buscar busca proveedores activos por coincidencia parcial en razón social,
// CUIT/RUT o email.
func (m *ProveedoresManager) Buscar(termino string) []Proveedor {
	termino = strings.TrimSpace(termino)
	if termino == "" {
		return m.ObtenerTodos()
	}
	patron := "%" + termino + "%"
	return proveedoresFromRecords(m.store.ExecuteQuery(selectBuscarProveedores, patron, patron, patron))
}

// ObtenerNombres devuelve las razones sociales activas, para combos.
func (m *ProveedoresManager) ObtenerNombres() []string {
	proveedores := m.ObtenerTodos()
	nombres := make([]string, 0, len(proveedores))
	for _, p := range proveedores {
		nombres = append(nombres, p.RazonSocial)
	}
	return nombres
}

// Eliminar marca el proveedor como eliminado. Se bloquea mientras haya
// productos activos que lo referencien.
func (m *ProveedoresManager) Eliminar(id int64) domain.DeleteResult {
	if m.ObtenerPorID(id) == nil {
		return domain.NotFound()
	}
	if n := m.productosDependientes(id); n > 0 {
		return domain.BlockedBy("tiene %d productos asociados", n)
	}
	if !m.store.SoftDelete(id, false) {
		return domain.Failed("no se pudo eliminar el proveedor")
	}
	return domain.Deleted()
}

// Restaurar limpia deleted_at de un proveedor eliminado.
func (m *ProveedoresManager) Restaurar(id int64) bool {
	return m.store.Restore(id)
}

// Auditoria devuelve los timestamps de auditoría de un proveedor.
func (m *ProveedoresManager) Auditoria(id int64) *domain.AuditInfo {
	return m.store.GetAuditInfo(id)
}

func (m *ProveedoresManager) validar(p Proveedor, excludeID int64) bool {
	if p.RazonSocial == "" {
		m.log.Warn().Msg("la razón social es obligatoria")
		return false
	}
	if len(p.RazonSocial) > maxRazonSocial {
		m.log.Warn().Msg("la razón social excede el máximo permitido")
		return false
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		m.log.Warn().Str("email", p.Email).Msg("el email no es válido")
		return false
	}
	if m.razonSocialEnUso(p.RazonSocial, excludeID) {
		m.log.Warn().Str("razon_social", p.RazonSocial).Msg("ya existe un proveedor con esa razón social")
		return false
	}
	if p.CuitRut != "" && m.cuitEnUso(p.CuitRut, excludeID) {
		m.log.Warn().Str("cuit_rut", p.CuitRut).Msg("ya existe un proveedor con ese CUIT/RUT")
		return false
	}
	return true
}

func (m *ProveedoresManager) razonSocialEnUso(nombre string, excludeID int64) bool {
	query, args := countProveedorNombre, []any{nombre, excludeID}
	if excludeID < 0 {
		query, args = countProveedorNombreSinExclusion, []any{nombre}
	}
	recs := m.store.ExecuteQuery(query, args...)
	return len(recs) > 0 && recs[0].Int64("n") > 0
}

func (m *ProveedoresManager) cuitEnUso(cuit string, excludeID int64) bool {
	query, args := countProveedorCuit, []any{cuit, excludeID}
	if excludeID < 0 {
		query, args = countProveedorCuitSinExclusion, []any{cuit}
	}
	recs := m.store.ExecuteQuery(query, args...)
	return len(recs) > 0 && recs[0].Int64("n") > 0
}

func (m *ProveedoresManager) productosDependientes(id any) int64 {
	recs := m.store.ExecuteQuery(countProductosPorProveedor, id)
	if len(recs) == 0 {
		return 0
	}
	return recs[0].Int64("n")
}

func normalizarProveedor(p *Proveedor) {
	p.RazonSocial = strings.TrimSpace(p.RazonSocial)
	p.CuitRut = strings.TrimSpace(p.CuitRut)
	p.Direccion = strings.TrimSpace(p.Direccion)
	p.Telefono = strings.TrimSpace(p.Telefono)
	p.Email = strings.TrimSpace(p.Email)
	p.Responsable = strings.TrimSpace(p.Responsable)
}

func proveedorFromRecord(r storage.Record) Proveedor {
	return Proveedor{
		ID:          r.Int64("id"),
		RazonSocial: r.String("nombre_razon_social"),
		CuitRut:     r.String("cuit_rut"),
		Direccion:   r.String("direccion"),
		Telefono:    r.String("telefono"),
		Email:       r.String("email"),
		Responsable: r.String("contacto_responsable"),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func proveedoresFromRecords(recs []storage.Record) []Proveedor {
	out := make([]Proveedor, 0, len(recs))
	for _, r := range recs {
		out = append(out, proveedorFromRecord(r))
	}
	return out
}
