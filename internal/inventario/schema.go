package inventario

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

// InitDatabase crea tablas, triggers de auditoría, índices y vistas del
// sistema de inventario. Idempotente: todo usa IF NOT EXISTS.
//
// El stock NO se mantiene por trigger: cada alta de movimiento inserta el
// registro y actualiza productos.stock_actual dentro de una misma
// transacción explícita (ver MovimientosManager).
func InitDatabase(db *storage.DB, log *logger.Logger) error {
	statements := []struct{ name, sql string }{
		{"tabla categorias", createTableCategorias},
		{"tabla proveedores", createTableProveedores},
		{"tabla productos", createTableProductos},
		{"tabla movimientos_stock", createTableMovimientos},
		{"trigger categorias updated_at", createTriggerCategoriasUpdatedAt},
		{"trigger proveedores updated_at", createTriggerProveedoresUpdatedAt},
		{"trigger productos updated_at", createTriggerProductosUpdatedAt},
		{"trigger movimientos updated_at", createTriggerMovimientosUpdatedAt},
		{"índice productos deleted_at", createIndexProductosDeletedAt},
		{"índice categorias deleted_at", createIndexCategoriasDeletedAt},
		{"índice proveedores deleted_at", createIndexProveedoresDeletedAt},
		{"índice movimientos deleted_at", createIndexMovimientosDeletedAt},
		{"índice productos categoría", createIndexProductosCategoria},
		{"índice productos proveedor", createIndexProductosProveedor},
		{"índice movimientos producto", createIndexMovimientosProducto},
		{"vista productos activos", createViewProductosActivos},
		{"vista movimientos activos", createViewMovimientosActivos},
	}

	for _, st := range statements {
		if _, err := db.SQL().Exec(st.sql); err != nil {
			return fmt.Errorf("crear %s: %w", st.name, err)
		}
	}

	log.Info().Str("db", db.Path()).Msg("base de datos de inventario inicializada")
	return nil
}

// EstadoDatos conteos de registros activos y alertas del inventario.
type EstadoDatos struct {
	IntegrityOK       bool
	Categorias        int64
	Proveedores       int64
	Productos         int64
	Movimientos       int64
	ProductosCriticos int64
	ValorInventario   decimal.Decimal
}

// VerificarDatos ejecuta PRAGMA integrity_check, cuenta los registros activos
// de cada tabla y agrega las alertas de stock y el valor del inventario.
func VerificarDatos(db *storage.DB, log *logger.Logger) EstadoDatos {
	estado := EstadoDatos{IntegrityOK: db.CheckIntegrity()}

	for _, t := range []struct {
		table string
		dst   *int64
	}{
		{"categorias", &estado.Categorias},
		{"proveedores", &estado.Proveedores},
		{"productos", &estado.Productos},
		{"movimientos_stock", &estado.Movimientos},
	} {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE deleted_at IS NULL", t.table)
		if err := db.SQL().QueryRow(query).Scan(t.dst); err != nil {
			log.Error().Err(err).Str("tabla", t.table).Msg("error contando registros activos")
		}
	}

	if err := db.SQL().QueryRow(selectAlertasStockCritico).Scan(&estado.ProductosCriticos); err != nil {
		log.Error().Err(err).Msg("error contando productos críticos")
	}
	if err := db.SQL().QueryRow(selectValorTotalInventario).Scan(&estado.ValorInventario); err != nil {
		log.Error().Err(err).Msg("error calculando valor del inventario")
	}
	return estado
}
