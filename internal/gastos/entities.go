package gastos

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	TipoIngreso = "ingreso"
	TipoEgreso  = "egreso"
)

// Categoria agrupa transacciones de gastos/ingresos.
type Categoria struct {
	ID          int64
	Nombre      string
	Descripcion string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Transaccion representa un ingreso o egreso. CategoriaID es opcional;
// Categoria trae el nombre resuelto por el join, vacío si no tiene.
type Transaccion struct {
	ID          int64
	Tipo        string
	Monto       decimal.Decimal
	CategoriaID *int64
	Categoria   string
	Descripcion string
	Fecha       string // YYYY-MM-DD
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FiltroTransacciones criterios opcionales de filtrado; un campo vacío no
// restringe. Las fechas forman un intervalo cerrado.
type FiltroTransacciones struct {
	Tipo       string
	Categoria  string
	FechaDesde string // YYYY-MM-DD
	FechaHasta string // YYYY-MM-DD
}

// TotalPorTipo total acumulado de un tipo de transacción.
type TotalPorTipo struct {
	Tipo  string
	Total decimal.Decimal
}

// TotalPorCategoria total acumulado por categoría y tipo.
type TotalPorCategoria struct {
	Categoria string
	Tipo      string
	Total     decimal.Decimal
}

// TotalPorMes total acumulado por mes (YYYY-MM) y tipo.
type TotalPorMes struct {
	Mes   string
	Tipo  string
	Total decimal.Decimal
}

// PuntoGrafico par etiqueta/valor para las proyecciones de gráficos
// (por categoría o por mes).
type PuntoGrafico struct {
	Etiqueta string
	Total    decimal.Decimal
}

// ResumenBalance totales globales del sistema de gastos.
type ResumenBalance struct {
	TotalIngresos decimal.Decimal
	TotalEgresos  decimal.Decimal
	Balance       decimal.Decimal
}
