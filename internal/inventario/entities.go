package inventario

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. Entrada suma, Salida resta y Ajuste fija el
// stock en el valor indicado.
const (
	MovEntrada = "Entrada"
	MovSalida  = "Salida"
	MovAjuste  = "Ajuste"
)

// Categoria agrupa productos y lleva un color para la interfaz.
type Categoria struct {
	ID          int64
	Nombre      string
	Descripcion string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Proveedor es la contraparte comercial de la que provienen los productos.
type Proveedor struct {
	ID          int64
	RazonSocial string
	CuitRut     string
	Direccion   string
	Telefono    string
	Email       string
	Responsable string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Producto se identifica por su código de barras, que actúa como clave
// primaria. AlertaStock se enciende cuando el stock actual cae al mínimo.
type Producto struct {
	CodigoBarras string
	Nombre       string
	Descripcion  string
	CategoriaID  *int64
	Categoria    string
	ProveedorID  *int64
	Proveedor    string
	StockActual  int64
	StockMinimo  int64
	PrecioCompra decimal.Decimal
	PrecioVenta  decimal.Decimal
	FechaIngreso string
	AlertaStock  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Movimiento registra una entrada, salida o ajuste de stock de un producto.
type Movimiento struct {
	ID             int64
	CodigoBarras   string
	Producto       string
	Tipo           string
	Cantidad       int64
	PrecioUnitario decimal.Decimal
	Motivo         string
	Usuario        string
	Documento      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductoVendido es una fila del ranking de productos con más salidas.
type ProductoVendido struct {
	CodigoBarras string
	Nombre       string
	TotalVendido int64
}

// ActividadDiaria resume los movimientos de un día por tipo.
type ActividadDiaria struct {
	Fecha         string
	Tipo          string
	Movimientos   int64
	CantidadTotal int64
}

// MetricasDashboard condensa los indicadores del panel principal.
type MetricasDashboard struct {
	ProductosActivos     int64
	ProductosCriticos    int64
	ValorInventario      decimal.Decimal
	MasVendidos          []ProductoVendido
	MovimientosRecientes []ActividadDiaria
}
