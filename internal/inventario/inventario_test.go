package inventario

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

type fixture struct {
	db          *storage.DB
	categorias  *CategoriasManager
	proveedores *ProveedoresManager
	productos   *ProductosManager
	movimientos *MovimientosManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	db, err := storage.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitDatabase(db, log))

	categorias, err := NewCategoriasManager(db, log)
	require.NoError(t, err)
	proveedores, err := NewProveedoresManager(db, log)
	require.NoError(t, err)
	productos, err := NewProductosManager(db, categorias, proveedores, log)
	require.NoError(t, err)
	movimientos, err := NewMovimientosManager(db, productos, log)
	require.NoError(t, err)

	return &fixture{
		db:          db,
		categorias:  categorias,
		proveedores: proveedores,
		productos:   productos,
		movimientos: movimientos,
	}
}

func (f *fixture) agregarProducto(t *testing.T, codigo string) {
	t.Helper()
	require.True(t, f.productos.Agregar(Producto{
		CodigoBarras: codigo,
		Nombre:       "Producto " + codigo,
		PrecioCompra: decimal.NewFromInt(100),
		PrecioVenta:  decimal.NewFromInt(150),
	}))
}

func ctx() context.Context { return context.Background() }

func TestStockDerivadoDeMovimientos(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")

	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 10}))
	require.True(t, f.movimientos.RegistrarSalida(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 3}))
	require.True(t, f.movimientos.RegistrarAjuste(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 50}))

	p := f.productos.ObtenerPorCodigo("PRD-001")
	require.NotNil(t, p)
	assert.EqualValues(t, 50, p.StockActual, "el ajuste fija el stock, no acumula")
	assert.EqualValues(t, 50, f.movimientos.StockCalculado("PRD-001"))
}

func TestMovimientoYStockSonAtomicos(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")

	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 7}))

	movs := f.movimientos.ObtenerPorProducto("PRD-001")
	require.Len(t, movs, 1)
	assert.Equal(t, MovEntrada, movs[0].Tipo)
	assert.EqualValues(t, 7, f.productos.ObtenerPorCodigo("PRD-001").StockActual)
}

func TestSalidaConStockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")
	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 5}))

	assert.False(t, f.movimientos.RegistrarSalida(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 6}))
	assert.EqualValues(t, 5, f.productos.ObtenerPorCodigo("PRD-001").StockActual)
	assert.Len(t, f.movimientos.ObtenerPorProducto("PRD-001"), 1, "la salida rechazada no deja movimiento")
}

func TestMovimientoValidaciones(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")

	assert.False(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 0}))
	assert.False(t, f.movimientos.RegistrarSalida(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: -1}))
	assert.False(t, f.movimientos.RegistrarAjuste(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: -1}))
	assert.True(t, f.movimientos.RegistrarAjuste(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 0}),
		"ajuste a cero es inventario agotado, no un error")
	assert.False(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "NO-EXISTE", Cantidad: 1}))
	assert.False(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{
		CodigoBarras:   "PRD-001",
		Cantidad:       1,
		PrecioUnitario: decimal.NewFromInt(-10),
	}))
}

func TestEliminarMovimientoNoRevierteStock(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")
	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 10}))
	require.True(t, f.movimientos.RegistrarSalida(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 3}))

	var salida int64
	for _, m := range f.movimientos.ObtenerPorProducto("PRD-001") {
		if m.Tipo == MovSalida {
			salida = m.ID
		}
	}
	require.NotZero(t, salida)
	require.True(t, f.movimientos.Eliminar(salida).OK())

	// el movimiento deja de listarse pero el stock registrado no cambia;
	// el fold sobre los movimientos activos sí deja de verlo
	assert.Len(t, f.movimientos.ObtenerPorProducto("PRD-001"), 1)
	assert.EqualValues(t, 7, f.productos.ObtenerPorCodigo("PRD-001").StockActual)
	assert.EqualValues(t, 10, f.movimientos.StockCalculado("PRD-001"))
}

func TestUsuarioPorDefecto(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")
	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 1}))

	movs := f.movimientos.ObtenerPorProducto("PRD-001")
	require.Len(t, movs, 1)
	assert.Equal(t, "Sistema", movs[0].Usuario)
}

func TestProductoValidaciones(t *testing.T) {
	f := newFixture(t)

	base := Producto{Nombre: "Válido"}

	base.CodigoBarras = "ab"
	assert.False(t, f.productos.Agregar(base), "código demasiado corto")

	base.CodigoBarras = strings.Repeat("x", 51)
	assert.False(t, f.productos.Agregar(base), "código demasiado largo")

	base.CodigoBarras = "abc$123"
	assert.False(t, f.productos.Agregar(base), "caracteres inválidos")

	base.CodigoBarras = "ABC-123.x_9"
	assert.True(t, f.productos.Agregar(base))
	assert.False(t, f.productos.Agregar(base), "código duplicado")

	assert.False(t, f.productos.Agregar(Producto{CodigoBarras: "PRD-002", Nombre: ""}))
	assert.False(t, f.productos.Agregar(Producto{CodigoBarras: "PRD-003", Nombre: "X", StockMinimo: -1}))
	assert.False(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-004",
		Nombre:       "X",
		PrecioVenta:  decimal.NewFromInt(-1),
	}))

	inexistente := int64(999)
	assert.False(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-005",
		Nombre:       "X",
		CategoriaID:  &inexistente,
	}))
}

func TestGenerarCodigoBarras(t *testing.T) {
	f := newFixture(t)

	codigo := f.productos.GenerarCodigoBarras()
	assert.Regexp(t, `^PRD-\d{6}-\d{4}$`, codigo)
	assert.True(t, codigoBarrasRe.MatchString(codigo))
	assert.True(t, f.productos.Agregar(Producto{CodigoBarras: codigo, Nombre: "Generado"}))
}

func TestProductoEliminarBloqueado(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")
	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 7}))

	res := f.productos.Eliminar("PRD-001")
	assert.Equal(t, domain.DeleteBlocked, res.Outcome)
	assert.Contains(t, res.Reason, "stock actual de 7 unidades")

	// sin stock sigue bloqueado por los movimientos de los últimos 30 días
	require.True(t, f.movimientos.RegistrarAjuste(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 0}))
	res = f.productos.Eliminar("PRD-001")
	assert.Equal(t, domain.DeleteBlocked, res.Outcome)
	assert.Contains(t, res.Reason, "movimientos en los últimos 30 días")
}

func TestProductoEliminarYRestaurar(t *testing.T) {
	f := newFixture(t)
	f.agregarProducto(t, "PRD-001")

	require.True(t, f.productos.Eliminar("PRD-001").OK())
	assert.Nil(t, f.productos.ObtenerPorCodigo("PRD-001"))
	assert.Equal(t, domain.DeleteNotFound, f.productos.Eliminar("PRD-001").Outcome)

	require.True(t, f.productos.Restaurar("PRD-001"))
	assert.NotNil(t, f.productos.ObtenerPorCodigo("PRD-001"))
}

func TestStockBajoYValorTotal(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-OK",
		Nombre:       "Con stock",
		StockMinimo:  2,
		PrecioVenta:  decimal.NewFromInt(10),
	}))
	require.True(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-BAJO",
		Nombre:       "Crítico",
		StockMinimo:  5,
		PrecioVenta:  decimal.NewFromInt(20),
	}))
	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-OK", Cantidad: 8}))
	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-BAJO", Cantidad: 3}))

	criticos := f.productos.StockBajo()
	require.Len(t, criticos, 1)
	assert.Equal(t, "PRD-BAJO", criticos[0].CodigoBarras)
	assert.True(t, criticos[0].AlertaStock)

	// 8*10 + 3*20
	assert.True(t, f.productos.ValorTotal().Equal(decimal.NewFromInt(140)),
		"valor total %s", f.productos.ValorTotal())
}

func TestCategoriaColorPorDefecto(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.categorias.Agregar("Electrónicos", "", ""))

	cats := f.categorias.ObtenerTodas()
	require.Len(t, cats, 1)
	assert.Equal(t, colorPorDefecto, cats[0].Color)
}

func TestCategoriaEliminarBloqueadaPorProductos(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.categorias.Agregar("Electrónicos", "", "#111111"))
	cat := f.categorias.ObtenerTodas()[0]

	require.True(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-001",
		Nombre:       "Notebook",
		CategoriaID:  &cat.ID,
	}))

	res := f.categorias.Eliminar(cat.ID)
	assert.Equal(t, domain.DeleteBlocked, res.Outcome)
	assert.Contains(t, res.Reason, "1 productos")

	require.True(t, f.productos.Eliminar("PRD-001").OK())
	assert.True(t, f.categorias.Eliminar(cat.ID).OK())
}

func TestProveedorUnicidadEntreActivos(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.proveedores.Agregar(Proveedor{RazonSocial: "TecnoSoft S.A.", CuitRut: "30-1"}))

	assert.False(t, f.proveedores.Agregar(Proveedor{RazonSocial: "TecnoSoft S.A.", CuitRut: "30-2"}),
		"razón social duplicada")
	assert.False(t, f.proveedores.Agregar(Proveedor{RazonSocial: "Otra S.A.", CuitRut: "30-1"}),
		"CUIT duplicado")
	assert.True(t, f.proveedores.Agregar(Proveedor{RazonSocial: "Otra S.A.", CuitRut: "30-2"}))

	id := f.proveedores.Buscar("TecnoSoft")[0].ID
	require.True(t, f.proveedores.Eliminar(id).OK())
	assert.True(t, f.proveedores.Agregar(Proveedor{RazonSocial: "TecnoSoft S.A.", CuitRut: "30-1"}),
		"un proveedor eliminado libera su razón social y CUIT")
}

func TestProveedorValidaciones(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.proveedores.Agregar(Proveedor{RazonSocial: "   "}))
	assert.False(t, f.proveedores.Agregar(Proveedor{RazonSocial: "X", Email: "sin-arroba"}))
	assert.True(t, f.proveedores.Agregar(Proveedor{RazonSocial: "X", Email: "ventas@x.com"}))
}

func TestProveedorEliminarBloqueadoPorProductos(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.proveedores.Agregar(Proveedor{RazonSocial: "TecnoSoft S.A."}))
	prov := f.proveedores.ObtenerTodos()[0]

	require.True(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-001",
		Nombre:       "Notebook",
		ProveedorID:  &prov.ID,
	}))

	res := f.proveedores.Eliminar(prov.ID)
	assert.Equal(t, domain.DeleteBlocked, res.Outcome)
	assert.Contains(t, res.Reason, "1 productos")
}

func TestVistaResuelveNombres(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.categorias.Agregar("Electrónicos", "", "#111111"))
	require.True(t, f.proveedores.Agregar(Proveedor{RazonSocial: "TecnoSoft S.A."}))
	cat := f.categorias.ObtenerTodas()[0]
	prov := f.proveedores.ObtenerTodos()[0]

	require.True(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-001",
		Nombre:       "Notebook",
		CategoriaID:  &cat.ID,
		ProveedorID:  &prov.ID,
	}))

	todos := f.productos.ObtenerTodos()
	require.Len(t, todos, 1)
	assert.Equal(t, "Electrónicos", todos[0].Categoria)
	assert.Equal(t, "TecnoSoft S.A.", todos[0].Proveedor)
}

func TestMetricas(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.productos.Agregar(Producto{
		CodigoBarras: "PRD-001",
		Nombre:       "Notebook",
		StockMinimo:  1,
		PrecioVenta:  decimal.NewFromInt(100),
	}))
	require.True(t, f.movimientos.RegistrarEntrada(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 5}))
	require.True(t, f.movimientos.RegistrarSalida(ctx(), Movimiento{CodigoBarras: "PRD-001", Cantidad: 2}))

	m := Metricas(f.productos, f.movimientos)
	assert.EqualValues(t, 1, m.ProductosActivos)
	assert.EqualValues(t, 0, m.ProductosCriticos)
	assert.True(t, m.ValorInventario.Equal(decimal.NewFromInt(300)))

	require.Len(t, m.MasVendidos, 1)
	assert.Equal(t, "PRD-001", m.MasVendidos[0].CodigoBarras)
	assert.EqualValues(t, 2, m.MasVendidos[0].TotalVendido)
	assert.NotEmpty(t, m.MovimientosRecientes)
}

func TestVerificarDatos(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.categorias.Agregar("Electrónicos", "", ""))
	f.agregarProducto(t, "PRD-001")

	estado := VerificarDatos(f.db, logger.NewNop())
	assert.True(t, estado.IntegrityOK)
	assert.EqualValues(t, 1, estado.Categorias)
	assert.EqualValues(t, 1, estado.Productos)
	assert.EqualValues(t, 1, estado.ProductosCriticos, "stock 0 y mínimo 0 cuentan como crítico")
}
