package inventario

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

const (
	maxNombreProducto      = 200
	maxDescripcionProducto = 500
	minCodigoBarras        = 3
	maxCodigoBarras        = 50
)

// codigoBarrasRe admite letras, dígitos, guion, punto y guion bajo. El largo
// se valida aparte para poder loguear el motivo exacto.
var codigoBarrasRe = regexp.MustCompile(`^[a-zA-Z0-9\-\._]+$`)

// ProductosManager gestiona los productos del inventario. El código de barras
// es la clave primaria; el stock actual lo mantiene MovimientosManager y acá
// solo se lee.
type ProductosManager struct {
	store       *storage.RecordStore
	categorias  *CategoriasManager
	proveedores *ProveedoresManager
	log         *logger.Logger
}

// NewProductosManager construye el manager. Necesita los de categorías y
// proveedores para validar las referencias opcionales de cada producto.
func NewProductosManager(db *storage.DB, categorias *CategoriasManager, proveedores *ProveedoresManager, log *logger.Logger) (*ProductosManager, error) {
	store, err := storage.NewRecordStore(db, "productos", "codigo_barras", log)
	if err != nil {
		return nil, err
	}
	m := &ProductosManager{store: store, categorias: categorias, proveedores: proveedores, log: log}
	store.SetBeforeDelete(func(id any) bool {
		codigo, ok := id.(string)
		if !ok {
			return false
		}
		return m.motivoBloqueo(codigo) == ""
	})
	return m, nil
}

// Agregar valida e inserta un producto nuevo. El código de barras debe ser
// único entre los productos activos; la fecha de ingreso vacía se reemplaza
// por la de hoy.
func (m *ProductosManager) Agregar(p Producto) bool {
	normalizarProducto(&p)
	if !m.validar(p) {
		return false
	}
	if m.ObtenerPorCodigo(p.CodigoBarras) != nil {
		m.log.Warn().Str("codigo", p.CodigoBarras).Msg("ya existe un producto con ese código de barras")
		return false
	}
	if p.FechaIngreso == "" {
		p.FechaIngreso = time.Now().Format("2006-01-02")
	}

	return m.store.ExecuteCommand(insertProducto,
		p.CodigoBarras, p.Nombre, p.Descripcion,
		nullableID(p.CategoriaID), nullableID(p.ProveedorID),
		p.StockActual, p.StockMinimo, p.PrecioCompra, p.PrecioVenta, p.FechaIngreso) > 0
}

// Actualizar valida y modifica un producto activo. El código de barras y el
// stock actual no se modifican por esta vía: el primero es la identidad del
// producto y el segundo solo cambia mediante movimientos.
func (m *ProductosManager) Actualizar(p Producto) bool {
	normalizarProducto(&p)
	if m.ObtenerPorCodigo(p.CodigoBarras) == nil {
		m.log.Warn().Str("codigo", p.CodigoBarras).Msg("producto no encontrado")
		return false
	}
	if !m.validar(p) {
		return false
	}

	return m.store.ExecuteCommand(updateProducto,
		p.Nombre, p.Descripcion,
		nullableID(p.CategoriaID), nullableID(p.ProveedorID),
		p.StockMinimo, p.PrecioCompra, p.PrecioVenta,
		p.CodigoBarras) > 0
}

// ObtenerTodos devuelve los productos activos con los nombres de su categoría
// y proveedor resueltos, ordenados por nombre.
func (m *ProductosManager) ObtenerTodos() []Producto {
	return productosFromVista(m.store.ExecuteQuery(selectProductosActivos))
}

// ObtenerPorCodigo devuelve un producto activo, o nil si no existe.
func (m *ProductosManager) ObtenerPorCodigo(codigo string) *Producto {
	recs := m.store.ExecuteQuery(selectProductoByCodigo, strings.TrimSpace(codigo))
	if len(recs) == 0 {
		return nil
	}
	p := productoFromRecord(recs[0])
	return &p
}

// Buscar busca productos activos por coincidencia parcial en código, nombre o
// descripción.
func (m *ProductosManager) Buscar(termino string) []Producto {
	termino = strings.TrimSpace(termino)
	if termino == "" {
		return m.ObtenerTodos()
	}
	patron := "%" + termino + "%"
	return productosFromVista(m.store.ExecuteQuery(selectBuscarProductos, patron, patron, patron))
}

// StockBajo devuelve los productos activos cuyo stock actual está en o por
// debajo del mínimo, los más críticos primero.
func (m *ProductosManager) StockBajo() []Producto {
	return productosFromVista(m.store.ExecuteQuery(selectProductosStockBajo))
}

// ValorTotal devuelve la suma de stock_actual * precio_venta sobre los
// productos activos con stock positivo.
func (m *ProductosManager) ValorTotal() decimal.Decimal {
	recs := m.store.ExecuteQuery(selectValorTotalInventario)
	if len(recs) == 0 {
		return decimal.Zero
	}
	return recs[0].Decimal("valor_total")
}

// GenerarCodigoBarras produce un código PRD-YYMMDD-NNNN que no colisiona con
// ningún producto, activo o eliminado.
func (m *ProductosManager) GenerarCodigoBarras() string {
	base := fmt.Sprintf("PRD-%s-%04d", time.Now().Format("060102"), rand.Intn(10000))
	codigo := base
	for sufijo := 1; m.codigoExiste(codigo); sufijo++ {
		codigo = fmt.Sprintf("%s-%d", base, sufijo)
	}
	return codigo
}

// Eliminar marca el producto como eliminado. Se bloquea si conserva stock o
// registró movimientos en los últimos 30 días; el motivo lo detalla.
func (m *ProductosManager) Eliminar(codigo string) domain.DeleteResult {
	codigo = strings.TrimSpace(codigo)
	p := m.ObtenerPorCodigo(codigo)
	if p == nil {
		return domain.NotFound()
	}
	if motivo := m.motivoBloqueo(codigo); motivo != "" {
		return domain.BlockedBy("%s", motivo)
	}
	if !m.store.SoftDelete(codigo, false) {
		return domain.Failed("no se pudo eliminar el producto")
	}
	return domain.Deleted()
}

// Restaurar limpia deleted_at de un producto eliminado.
func (m *ProductosManager) Restaurar(codigo string) bool {
	return m.store.Restore(strings.TrimSpace(codigo))
}

// Auditoria devuelve los timestamps de auditoría de un producto.
func (m *ProductosManager) Auditoria(codigo string) *domain.AuditInfo {
	return m.store.GetAuditInfo(strings.TrimSpace(codigo))
}

// motivoBloqueo devuelve la razón por la que el producto no puede eliminarse,
// o vacío si nada lo impide.
func (m *ProductosManager) motivoBloqueo(codigo string) string {
	if p := m.ObtenerPorCodigo(codigo); p != nil && p.StockActual > 0 {
		return fmt.Sprintf("tiene stock actual de %d unidades", p.StockActual)
	}
	if n := m.movimientosRecientes(codigo); n > 0 {
		return fmt.Sprintf("tiene %d movimientos en los últimos 30 días", n)
	}
	return ""
}

func (m *ProductosManager) movimientosRecientes(codigo string) int64 {
	recs := m.store.ExecuteQuery(countMovimientosRecientesProducto, codigo)
	if len(recs) == 0 {
		return 0
	}
	return recs[0].Int64("n")
}

func (m *ProductosManager) codigoExiste(codigo string) bool {
	return m.store.GetAuditInfo(codigo) != nil
}

func (m *ProductosManager) validar(p Producto) bool {
	if len(p.CodigoBarras) < minCodigoBarras || len(p.CodigoBarras) > maxCodigoBarras {
		m.log.Warn().Str("codigo", p.CodigoBarras).Msg("el código de barras debe tener entre 3 y 50 caracteres")
		return false
	}
	if !codigoBarrasRe.MatchString(p.CodigoBarras) {
		m.log.Warn().Str("codigo", p.CodigoBarras).Msg("el código de barras contiene caracteres inválidos")
		return false
	}
	if p.Nombre == "" {
		m.log.Warn().Msg("el nombre del producto es obligatorio")
		return false
	}
	if len(p.Nombre) > maxNombreProducto {
		m.log.Warn().Msg("el nombre excede el máximo permitido")
		return false
	}
	if len(p.Descripcion) > maxDescripcionProducto {
		m.log.Warn().Msg("la descripción excede el máximo permitido")
		return false
	}
	if p.StockActual < 0 || p.StockMinimo < 0 {
		m.log.Warn().Msg("los stocks no pueden ser negativos")
		return false
	}
	if p.PrecioCompra.IsNegative() || p.PrecioVenta.IsNegative() {
		m.log.Warn().Msg("los precios no pueden ser negativos")
		return false
	}
	if p.CategoriaID != nil && m.categorias.ObtenerPorID(*p.CategoriaID) == nil {
		m.log.Warn().Int64("categoria_id", *p.CategoriaID).Msg("categoría no encontrada")
		return false
	}
	if p.ProveedorID != nil && m.proveedores.ObtenerPorID(*p.ProveedorID) == nil {
		m.log.Warn().Int64("proveedor_id", *p.ProveedorID).Msg("proveedor no encontrado")
		return false
	}
	return true
}

func normalizarProducto(p *Producto) {
	p.CodigoBarras = strings.TrimSpace(p.CodigoBarras)
	p.Nombre = strings.TrimSpace(p.Nombre)
	p.Descripcion = strings.TrimSpace(p.Descripcion)
	p.FechaIngreso = strings.TrimSpace(p.FechaIngreso)
}

// productoFromRecord mapea una fila cruda de la tabla productos, sin los
// nombres de categoría y proveedor.
func productoFromRecord(r storage.Record) Producto {
	return Producto{
		CodigoBarras: r.String("codigo_barras"),
		Nombre:       r.String("nombre"),
		Descripcion:  r.String("descripcion"),
		CategoriaID:  r.NullInt64("categoria_id"),
		ProveedorID:  r.NullInt64("proveedor_id"),
		StockActual:  r.Int64("stock_actual"),
		StockMinimo:  r.Int64("stock_minimo"),
		PrecioCompra: r.Decimal("precio_compra"),
		PrecioVenta:  r.Decimal("precio_venta"),
		FechaIngreso: fechaISO(r, "fecha_ingreso"),
		AlertaStock:  r.Int64("stock_actual") <= r.Int64("stock_minimo"),
		CreatedAt:    r.Time("created_at"),
		UpdatedAt:    r.Time("updated_at"),
	}
}

// productoFromVista mapea una fila de v_productos_activos, que ya resuelve
// nombres de categoría/proveedor y la alerta de stock.
func productoFromVista(r storage.Record) Producto {
	return Producto{
		CodigoBarras: r.String("codigo_barras"),
		Nombre:       r.String("nombre"),
		Descripcion:  r.String("descripcion"),
		Categoria:    r.String("categoria_nombre"),
		Proveedor:    r.String("proveedor_nombre"),
		StockActual:  r.Int64("stock_actual"),
		StockMinimo:  r.Int64("stock_minimo"),
		PrecioCompra: r.Decimal("precio_compra"),
		PrecioVenta:  r.Decimal("precio_venta"),
		FechaIngreso: fechaISO(r, "fecha_ingreso"),
		AlertaStock:  r.Int64("alerta_stock") == 1,
		CreatedAt:    r.Time("created_at"),
		UpdatedAt:    r.Time("updated_at"),
	}
}

func productosFromVista(recs []storage.Record) []Producto {
	out := make([]Producto, 0, len(recs))
	for _, r := range recs {
		out = append(out, productoFromVista(r))
	}
	return out
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
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
