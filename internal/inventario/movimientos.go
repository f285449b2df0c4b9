package inventario

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

const usuarioPorDefecto = "Sistema"

// MovimientosManager registra entradas, salidas y ajustes de stock. Cada alta
// inserta el movimiento y actualiza productos.stock_actual dentro de una
// misma transacción: o se aplican ambos cambios o ninguno.
//
// Los movimientos son un registro histórico: eliminar uno lo oculta de los
// listados pero NO revierte su efecto sobre el stock del producto.
type MovimientosManager struct {
	store     *storage.RecordStore
	productos *ProductosManager
	tx        *storage.TxRunner
	log       *logger.Logger
}

// NewMovimientosManager construye el manager. Necesita el de productos para
// validar que el producto del movimiento exista y esté activo.
func NewMovimientosManager(db *storage.DB, productos *ProductosManager, log *logger.Logger) (*MovimientosManager, error) {
	store, err := storage.NewRecordStore(db, "movimientos_stock", "id", log)
	if err != nil {
		return nil, err
	}
	return &MovimientosManager{
		store:     store,
		productos: productos,
		tx:        storage.NewTxRunner(db),
		log:       log,
	}, nil
}

// RegistrarEntrada suma cantidad unidades al stock del producto.
func (m *MovimientosManager) RegistrarEntrada(ctx context.Context, mov Movimiento) bool {
	mov.Tipo = MovEntrada
	if mov.Cantidad <= 0 {
		m.log.Warn().Int64("cantidad", mov.Cantidad).Msg("la cantidad de una entrada debe ser mayor a cero")
		return false
	}
	return m.registrar(ctx, mov, updateStockEntrada, mov.Cantidad)
}

// RegistrarSalida resta cantidad unidades del stock del producto. Se rechaza
// si la salida dejaría el stock en negativo.
func (m *MovimientosManager) RegistrarSalida(ctx context.Context, mov Movimiento) bool {
	mov.Tipo = MovSalida
	if mov.Cantidad <= 0 {
		m.log.Warn().Int64("cantidad", mov.Cantidad).Msg("la cantidad de una salida debe ser mayor a cero")
		return false
	}
	p := m.productos.ObtenerPorCodigo(mov.CodigoBarras)
	if p != nil && p.StockActual < mov.Cantidad {
		m.log.Warn().
			Str("codigo", mov.CodigoBarras).
			Int64("stock", p.StockActual).
			Int64("cantidad", mov.Cantidad).
			Msg("stock insuficiente para la salida")
		return false
	}
	return m.registrar(ctx, mov, updateStockSalida, mov.Cantidad)
}

// RegistrarAjuste fija el stock del producto en cantidad, sin acumular con el
// valor anterior. Cantidad cero es válida (inventario agotado).
func (m *MovimientosManager) RegistrarAjuste(ctx context.Context, mov Movimiento) bool {
	mov.Tipo = MovAjuste
	if mov.Cantidad < 0 {
		m.log.Warn().Int64("cantidad", mov.Cantidad).Msg("el ajuste no puede ser negativo")
		return false
	}
	return m.registrar(ctx, mov, updateStockAjuste, mov.Cantidad)
}

// registrar valida el producto y aplica insert + actualización de stock en
// una transacción.
func (m *MovimientosManager) registrar(ctx context.Context, mov Movimiento, updateStock string, delta int64) bool {
	mov.CodigoBarras = strings.TrimSpace(mov.CodigoBarras)
	if mov.Usuario == "" {
		mov.Usuario = usuarioPorDefecto
	}

	if mov.PrecioUnitario.IsNegative() {
		m.log.Warn().Str("codigo", mov.CodigoBarras).Msg("el precio unitario no puede ser negativo")
		return false
	}
	if m.productos.ObtenerPorCodigo(mov.CodigoBarras) == nil {
		m.log.Warn().Str("codigo", mov.CodigoBarras).Msg("producto no encontrado o eliminado")
		return false
	}

	err := m.tx.Run(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(insertMovimiento,
			mov.CodigoBarras, mov.Tipo, mov.Cantidad, mov.PrecioUnitario,
			mov.Motivo, mov.Usuario, nullable(mov.Documento)); err != nil {
			return fmt.Errorf("insertar movimiento: %w", err)
		}
		res, err := tx.Exec(updateStock, delta, mov.CodigoBarras)
		if err != nil {
			return fmt.Errorf("actualizar stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("producto %s: %w", mov.CodigoBarras, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		m.log.Error().Err(err).Str("codigo", mov.CodigoBarras).Str("tipo", mov.Tipo).Msg("error registrando movimiento")
		return false
	}
	return true
}

// Obtener devuelve los movimientos activos más recientes, hasta limit.
func (m *MovimientosManager) Obtener(limit int) []Movimiento {
	if limit <= 0 {
		limit = 100
	}
	return movimientosFromRecords(m.store.ExecuteQuery(selectMovimientosActivos, limit))
}

// ObtenerPorProducto devuelve los movimientos activos de un producto, más
// recientes primero.
func (m *MovimientosManager) ObtenerPorProducto(codigo string) []Movimiento {
	return movimientosFromRecords(m.store.ExecuteQuery(selectMovimientosByProducto, strings.TrimSpace(codigo)))
}

// StockCalculado recorre los movimientos activos del producto en orden
// cronológico y devuelve el stock resultante: las entradas suman, las salidas
// restan y cada ajuste fija el acumulado en su cantidad.
func (m *MovimientosManager) StockCalculado(codigo string) int64 {
	recs := m.store.ExecuteQuery(selectMovimientosParaFold, strings.TrimSpace(codigo))
	var stock int64
	for _, r := range recs {
		cantidad := r.Int64("cantidad")
		switch r.String("tipo") {
		case MovEntrada:
			stock += cantidad
		case MovSalida:
			stock -= cantidad
		case MovAjuste:
			stock = cantidad
		}
	}
	return stock
}

// Eliminar marca el movimiento como eliminado. El stock del producto queda
// como está: el movimiento deja de listarse pero su efecto histórico no se
// revierte.
func (m *MovimientosManager) Eliminar(id int64) domain.DeleteResult {
	if m.store.GetByID(id) == nil {
		return domain.NotFound()
	}
	if !m.store.SoftDelete(id, false) {
		return domain.Failed("no se pudo eliminar el movimiento")
	}
	return domain.Deleted()
}

// Restaurar limpia deleted_at de un movimiento eliminado. Tampoco toca el
// stock, por simetría con Eliminar.
func (m *MovimientosManager) Restaurar(id int64) bool {
	return m.store.Restore(id)
}

// Auditoria devuelve los timestamps de auditoría de un movimiento.
func (m *MovimientosManager) Auditoria(id int64) *domain.AuditInfo {
	return m.store.GetAuditInfo(id)
}

// MasVendidos devuelve el ranking de productos con más salidas en los últimos
// 30 días.
func (m *MovimientosManager) MasVendidos() []ProductoVendido {
	recs := m.store.ExecuteQuery(selectProductosMasVendidos)
	out := make([]ProductoVendido, 0, len(recs))
	for _, r := range recs {
		out = append(out, ProductoVendido{
			CodigoBarras: r.String("codigo_barras"),
			Nombre:       r.String("nombre"),
			TotalVendido: r.Int64("total_vendido"),
		})
	}
	return out
}

// ActividadReciente resume los movimientos por día y tipo de los últimos 30
// días.
func (m *MovimientosManager) ActividadReciente() []ActividadDiaria {
	recs := m.store.ExecuteQuery(selectMovimientosPorFecha)
	out := make([]ActividadDiaria, 0, len(recs))
	for _, r := range recs {
		out = append(out, ActividadDiaria{
			Fecha:         fechaISO(r, "fecha"),
			Tipo:          r.String("tipo"),
			Movimientos:   r.Int64("cantidad_movimientos"),
			CantidadTotal: r.Int64("cantidad_total"),
		})
	}
	return out
}

// Metricas condensa los indicadores del panel principal del inventario.
func Metricas(productos *ProductosManager, movimientos *MovimientosManager) MetricasDashboard {
	criticos := productos.StockBajo()
	return MetricasDashboard{
		ProductosActivos:     productos.store.CountActive(),
		ProductosCriticos:    int64(len(criticos)),
		ValorInventario:      productos.ValorTotal(),
		MasVendidos:          movimientos.MasVendidos(),
		MovimientosRecientes: movimientos.ActividadReciente(),
	}
}

func movimientoFromRecord(r storage.Record) Movimiento {
	return Movimiento{
		ID:             r.Int64("id"),
		CodigoBarras:   r.String("codigo_barras_producto"),
		Producto:       r.String("producto_nombre"),
		Tipo:           r.String("tipo"),
		Cantidad:       r.Int64("cantidad"),
		PrecioUnitario: r.Decimal("precio_unitario"),
		Motivo:         r.String("motivo_descripcion"),
		Usuario:        r.String("usuario_responsable"),
		Documento:      r.String("numero_documento_factura"),
		CreatedAt:      r.Time("created_at"),
		UpdatedAt:      r.Time("updated_at"),
	}
}

func movimientosFromRecords(recs []storage.Record) []Movimiento {
	out := make([]Movimiento, 0, len(recs))
	for _, r := range recs {
		out = append(out, movimientoFromRecord(r))
	}
	return out
}
