package gastos

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

// TransaccionesManager gestiona ingresos y egresos, sus filtros y las
// proyecciones de reporte (totales, balance, datos de gráficos). Todas las
// lecturas ignoran filas eliminadas y devuelven defaults en cero ante
// resultados vacíos.
type TransaccionesManager struct {
	store      *storage.RecordStore
	categorias *CategoriasManager
	log        *logger.Logger
}

// NewTransaccionesManager construye el manager. Necesita el de categorías
// para validar la categoría opcional de cada transacción.
func NewTransaccionesManager(db *storage.DB, categorias *CategoriasManager, log *logger.Logger) (*TransaccionesManager, error) {
	store, err := storage.NewRecordStore(db, "transacciones", "id", log)
	if err != nil {
		return nil, err
	}
	return &TransaccionesManager{store: store, categorias: categorias, log: log}, nil
}

// Agregar valida e inserta una transacción. La fecha vacía se reemplaza por
// la de hoy; la categoría es opcional pero debe existir activa si se indica.
func (m *TransaccionesManager) Agregar(tipo string, monto decimal.Decimal, categoriaID *int64, descripcion, fecha string) bool {
	if !m.validar(tipo, monto, categoriaID) {
		return false
	}
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	}

	return m.store.ExecuteCommand(insertTransaccion,
		tipo, monto, nullableID(categoriaID), strings.TrimSpace(descripcion), fecha) > 0
}

// Actualizar valida y modifica una transacción activa.
func (m *TransaccionesManager) Actualizar(id int64, tipo string, monto decimal.Decimal, categoriaID *int64, descripcion, fecha string) bool {
	if !m.validar(tipo, monto, categoriaID) {
		return false
	}
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	}

	n := m.store.ExecuteCommand(updateTransaccion,
		tipo, monto, nullableID(categoriaID), strings.TrimSpace(descripcion), fecha, id)
	if n == 0 {
		m.log.Warn().Int64("id", id).Msg("no se encontró la transacción")
		return false
	}
	return true
}

// Obtener devuelve las transacciones activas, más recientes primero. Las
// filas sin categoría se conservan; las que referencian una categoría
// eliminada quedan ocultas hasta restaurar la categoría.
func (m *TransaccionesManager) Obtener() []Transaccion {
	return transaccionesFromRecords(m.store.ExecuteQuery(selectTransaccionesActivas))
}

// ObtenerPorID devuelve una transacción activa, o nil si no existe.
func (m *TransaccionesManager) ObtenerPorID(id int64) *Transaccion {
	recs := m.store.ExecuteQuery(selectTransaccionByID, id)
	if len(recs) == 0 {
		return nil
	}
	t := transaccionFromRecord(recs[0])
	return &t
}

// Filtrar aplica los criterios no vacíos del filtro; las fechas delimitan un
// intervalo cerrado. Orden: fecha descendente, luego creación descendente.
func (m *TransaccionesManager) Filtrar(f FiltroTransacciones) []Transaccion {
	recs := m.store.ExecuteQuery(selectTransaccionesByFiltro,
		nullable(f.Tipo), nullable(f.Tipo),
		nullable(f.Categoria), nullable(f.Categoria),
		nullable(f.FechaDesde), nullable(f.FechaDesde),
		nullable(f.FechaHasta), nullable(f.FechaHasta),
	)
	return transaccionesFromRecords(recs)
}

// Eliminar marca la transacción como eliminada. No tiene dependientes, así
// que solo distingue no-encontrada de fallo de almacenamiento.
func (m *TransaccionesManager) Eliminar(id int64) domain.DeleteResult {
	if m.ObtenerPorID(id) == nil {
		return domain.NotFound()
	}
	if !m.store.SoftDelete(id, false) {
		return domain.Failed("no se pudo eliminar la transacción")
	}
	return domain.Deleted()
}

// Restaurar limpia deleted_at de una transacción eliminada.
func (m *TransaccionesManager) Restaurar(id int64) bool {
	return m.store.Restore(id)
}

// Auditoria devuelve los timestamps de auditoría de una transacción.
func (m *TransaccionesManager) Auditoria(id int64) *domain.AuditInfo {
	return m.store.GetAuditInfo(id)
}

// TotalesPorTipo devuelve el total acumulado por tipo de transacción.
func (m *TransaccionesManager) TotalesPorTipo() []TotalPorTipo {
	recs := m.store.ExecuteQuery(selectTotalesPorTipo)
	out := make([]TotalPorTipo, 0, len(recs))
	for _, r := range recs {
		out = append(out, TotalPorTipo{Tipo: r.String("tipo"), Total: r.Decimal("total")})
	}
	return out
}

// TotalesPorCategoria devuelve los totales por categoría y tipo, mayores
// primero.
func (m *TransaccionesManager) TotalesPorCategoria() []TotalPorCategoria {
	recs := m.store.ExecuteQuery(selectTotalesPorCategoria)
	out := make([]TotalPorCategoria, 0, len(recs))
	for _, r := range recs {
		out = append(out, TotalPorCategoria{
			Categoria: r.String("categoria"),
			Tipo:      r.String("tipo"),
			Total:     r.Decimal("total"),
		})
	}
	return out
}

// TotalesPorMes devuelve los totales por mes (YYYY-MM) y tipo.
func (m *TransaccionesManager) TotalesPorMes() []TotalPorMes {
	recs := m.store.ExecuteQuery(selectTotalesPorMes)
	out := make([]TotalPorMes, 0, len(recs))
	for _, r := range recs {
		out = append(out, TotalPorMes{
			Mes:   r.String("mes"),
			Tipo:  r.String("tipo"),
			Total: r.Decimal("total"),
		})
	}
	return out
}

// BalanceActual devuelve ingresos menos egresos sobre transacciones activas;
// cero si no hay datos.
func (m *TransaccionesManager) BalanceActual() decimal.Decimal {
	recs := m.store.ExecuteQuery(selectBalanceActual)
	if len(recs) == 0 {
		return decimal.Zero
	}
	return recs[0].Decimal("balance")
}

// ResumenBalance devuelve totales de ingresos, egresos y su diferencia.
func (m *TransaccionesManager) ResumenBalance() ResumenBalance {
	ingresos := m.totalPorTipo(TipoIngreso)
	egresos := m.totalPorTipo(TipoEgreso)
	return ResumenBalance{
		TotalIngresos: ingresos,
		TotalEgresos:  egresos,
		Balance:       ingresos.Sub(egresos),
	}
}

func (m *TransaccionesManager) totalPorTipo(tipo string) decimal.Decimal {
	rows := m.store.ExecuteQuery(selectTotalPorTipo, tipo)
	if len(rows) == 0 {
		return decimal.Zero
	}
	return rows[0].Decimal("total")
}

// DatosGraficoCategorias devuelve (categoría, total) para gráficos; con tipo
// vacío agrega ambos tipos.
func (m *TransaccionesManager) DatosGraficoCategorias(tipo string) []PuntoGrafico {
	var recs []storage.Record
	if tipo != "" {
		recs = m.store.ExecuteQuery(selectGraficoCategoriasPorTipo, tipo)
	} else {
		recs = m.store.ExecuteQuery(selectGraficoCategorias)
	}
	return puntosFromRecords(recs, "categoria")
}

// DatosGraficoMensual devuelve (mes, total) para gráficos; con tipo vacío
// agrega ambos tipos.
func (m *TransaccionesManager) DatosGraficoMensual(tipo string) []PuntoGrafico {
	var recs []storage.Record
	if tipo != "" {
		recs = m.store.ExecuteQuery(selectGraficoMensualPorTipo, tipo)
	} else {
		recs = m.store.ExecuteQuery(selectGraficoMensual)
	}
	return puntosFromRecords(recs, "mes")
}

func (m *TransaccionesManager) validar(tipo string, monto decimal.Decimal, categoriaID *int64) bool {
	if tipo != TipoIngreso && tipo != TipoEgreso {
		m.log.Warn().Str("tipo", tipo).Msg("tipo de transacción inválido")
		return false
	}
	if !monto.IsPositive() {
		m.log.Warn().Msg("el monto debe ser mayor a cero")
		return false
	}
	if categoriaID != nil && m.categorias.ObtenerPorID(*categoriaID) == nil {
		m.log.Warn().Int64("categoria_id", *categoriaID).Msg("categoría no encontrada")
		return false
	}
	return true
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func transaccionFromRecord(r storage.Record) Transaccion {
	return Transaccion{
		ID:          r.Int64("id"),
		Tipo:        r.String("tipo"),
		Monto:       r.Decimal("monto"),
		CategoriaID: r.NullInt64("categoria_id"),
		Categoria:   r.String("categoria"),
		Descripcion: r.String("descripcion"),
		Fecha:       fechaISO(r, "fecha"),
		CreatedAt:   r.Time("created_at"),
		UpdatedAt:   r.Time("updated_at"),
	}
}

func transaccionesFromRecords(recs []storage.Record) []Transaccion {
	out := make([]Transaccion, 0, len(recs))
	for _, r := range recs {
		out = append(out, transaccionFromRecord(r))
	}
	return out
}

func puntosFromRecords(recs []storage.Record, etiqueta string) []PuntoGrafico {
	out := make([]PuntoGrafico, 0, len(recs))
	for _, r := range recs {
		out = append(out, PuntoGrafico{Etiqueta: r.String(etiqueta), Total: r.Decimal("total")})
	}
	return out
}

// fechaISO normaliza la columna de fecha a YYYY-MM-DD: el driver convierte
// las columnas DATE a time.Time, pero tras un join puede llegar como texto.
func fechaISO(r storage.Record, col string) string {
	if t := r.Time(col); !t.IsZero() {
		return t.Format("2006-01-02")
	}
	s := r.String(col)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
