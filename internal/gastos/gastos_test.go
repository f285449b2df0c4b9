package gastos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastanos/gestion-local/internal/domain"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

func newManagers(t *testing.T) (*CategoriasManager, *TransaccionesManager) {
	t.Helper()
	log := logger.NewNop()
	db, err := storage.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitDatabase(db, log))

	categorias, err := NewCategoriasManager(db, log)
	require.NoError(t, err)
	transacciones, err := NewTransaccionesManager(db, categorias, log)
	require.NoError(t, err)
	return categorias, transacciones
}

func categoriaID(t *testing.T, m *CategoriasManager, nombre string) int64 {
	t.Helper()
	for _, c := range m.ObtenerTodas() {
		if c.Nombre == nombre {
			return c.ID
		}
	}
	t.Fatalf("categoría %q no encontrada", nombre)
	return 0
}

func monto(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCategoriaAgregarRecortaEspacios(t *testing.T) {
	categorias, _ := newManagers(t)

	require.True(t, categorias.Agregar("  Comida  ", " diaria "))
	c := categorias.ObtenerPorID(categoriaID(t, categorias, "Comida"))
	require.NotNil(t, c)
	assert.Equal(t, "Comida", c.Nombre)
	assert.Equal(t, "diaria", c.Descripcion)
}

func TestCategoriaNombreUnicoSoloEntreActivas(t *testing.T) {
	categorias, _ := newManagers(t)

	require.True(t, categorias.Agregar("Comida", ""))
	assert.False(t, categorias.Agregar("Comida", "duplicada"))
	assert.False(t, categorias.Agregar("  Comida  ", "duplicada tras recorte"))

	id := categoriaID(t, categorias, "Comida")
	require.True(t, categorias.Eliminar(id).OK())

	assert.True(t, categorias.Agregar("Comida", "reutiliza el nombre de una eliminada"))
}

func TestCategoriaValidaciones(t *testing.T) {
	categorias, _ := newManagers(t)

	assert.False(t, categorias.Agregar("", ""))
	assert.False(t, categorias.Agregar("   ", ""))

	largo := make([]byte, maxNombreCategoria+1)
	for i := range largo {
		largo[i] = 'x'
	}
	assert.False(t, categorias.Agregar(string(largo), ""))
}

func TestCategoriaActualizarExcluyeSuPropioNombre(t *testing.T) {
	categorias, _ := newManagers(t)
	require.True(t, categorias.Agregar("Comida", ""))
	require.True(t, categorias.Agregar("Transporte", ""))

	idComida := categoriaID(t, categorias, "Comida")
	assert.True(t, categorias.Actualizar(idComida, "Comida", "misma"), "conservar el propio nombre es válido")
	assert.False(t, categorias.Actualizar(idComida, "Transporte", ""), "no puede tomar el nombre de otra activa")
	assert.False(t, categorias.Actualizar(9999, "Nueva", ""))
}

func TestCategoriaEliminarBloqueadaPorTransacciones(t *testing.T) {
	categorias, transacciones := newManagers(t)
	require.True(t, categorias.Agregar("Comida", ""))
	id := categoriaID(t, categorias, "Comida")

	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "10"), &id, "almuerzo", "2024-01-10"))

	res := categorias.Eliminar(id)
	assert.Equal(t, domain.DeleteBlocked, res.Outcome)
	assert.Contains(t, res.Reason, "1 transacciones")

	// eliminada la transacción dependiente, la categoría se libera
	tr := transacciones.Obtener()
	require.Len(t, tr, 1)
	require.True(t, transacciones.Eliminar(tr[0].ID).OK())
	assert.True(t, categorias.Eliminar(id).OK())
}

func TestCategoriaEliminarInexistente(t *testing.T) {
	categorias, _ := newManagers(t)
	assert.Equal(t, domain.DeleteNotFound, categorias.Eliminar(404).Outcome)
}

func TestCategoriaRestaurar(t *testing.T) {
	categorias, _ := newManagers(t)
	require.True(t, categorias.Agregar("Comida", "para restaurar"))
	id := categoriaID(t, categorias, "Comida")

	require.True(t, categorias.Eliminar(id).OK())
	require.Nil(t, categorias.ObtenerPorID(id))

	require.True(t, categorias.Restaurar(id))
	c := categorias.ObtenerPorID(id)
	require.NotNil(t, c)
	assert.Equal(t, "para restaurar", c.Descripcion)
}

func TestTransaccionValidaciones(t *testing.T) {
	_, transacciones := newManagers(t)

	assert.False(t, transacciones.Agregar("prestamo", monto(t, "10"), nil, "", ""), "tipo inválido")
	assert.False(t, transacciones.Agregar(TipoIngreso, decimal.Zero, nil, "", ""), "monto cero")
	assert.False(t, transacciones.Agregar(TipoEgreso, monto(t, "-5"), nil, "", ""), "monto negativo")

	inexistente := int64(777)
	assert.False(t, transacciones.Agregar(TipoEgreso, monto(t, "10"), &inexistente, "", ""), "categoría inexistente")

	assert.True(t, transacciones.Agregar(TipoIngreso, monto(t, "10"), nil, "sin categoría", ""))
}

func TestTransaccionFechaPorDefectoEsHoy(t *testing.T) {
	_, transacciones := newManagers(t)
	require.True(t, transacciones.Agregar(TipoIngreso, monto(t, "1"), nil, "", ""))

	tr := transacciones.Obtener()
	require.Len(t, tr, 1)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, tr[0].Fecha)
}

func TestBalanceIgnoraEliminadas(t *testing.T) {
	_, transacciones := newManagers(t)

	require.True(t, transacciones.Agregar(TipoIngreso, monto(t, "100"), nil, "sueldo", "2024-01-01"))
	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "40"), nil, "super", "2024-01-02"))
	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "1000"), nil, "error de carga", "2024-01-03"))

	var erronea int64
	for _, tr := range transacciones.Obtener() {
		if tr.Monto.Equal(monto(t, "1000")) {
			erronea = tr.ID
		}
	}
	require.NotZero(t, erronea)
	require.True(t, transacciones.Eliminar(erronea).OK())

	assert.True(t, transacciones.BalanceActual().Equal(monto(t, "60")),
		"balance %s, esperaba 60", transacciones.BalanceActual())

	resumen := transacciones.ResumenBalance()
	assert.True(t, resumen.TotalIngresos.Equal(monto(t, "100")))
	assert.True(t, resumen.TotalEgresos.Equal(monto(t, "40")))
	assert.True(t, resumen.Balance.Equal(monto(t, "60")))
}

func TestFiltrarCombinaCriterios(t *testing.T) {
	categorias, transacciones := newManagers(t)
	require.True(t, categorias.Agregar("Comida", ""))
	require.True(t, categorias.Agregar("Transporte", ""))
	idComida := categoriaID(t, categorias, "Comida")
	idTransporte := categoriaID(t, categorias, "Transporte")

	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "10"), &idComida, "almuerzo", "2024-01-10"))
	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "20"), &idTransporte, "tren", "2024-02-10"))
	require.True(t, transacciones.Agregar(TipoIngreso, monto(t, "30"), &idComida, "reintegro", "2024-03-10"))

	assert.Len(t, transacciones.Filtrar(FiltroTransacciones{}), 3, "filtro vacío devuelve todo")
	assert.Len(t, transacciones.Filtrar(FiltroTransacciones{Tipo: TipoEgreso}), 2)
	assert.Len(t, transacciones.Filtrar(FiltroTransacciones{Categoria: "Comida"}), 2)
	assert.Len(t, transacciones.Filtrar(FiltroTransacciones{Tipo: TipoEgreso, Categoria: "Comida"}), 1)
	assert.Len(t, transacciones.Filtrar(FiltroTransacciones{FechaDesde: "2024-02-01"}), 2)
	assert.Len(t, transacciones.Filtrar(FiltroTransacciones{FechaDesde: "2024-01-15", FechaHasta: "2024-02-28"}), 1)
	assert.Empty(t, transacciones.Filtrar(FiltroTransacciones{Tipo: TipoIngreso, FechaHasta: "2024-01-01"}))
}

func TestFiltrarOrdenaPorFechaDescendente(t *testing.T) {
	_, transacciones := newManagers(t)
	require.True(t, transacciones.Agregar(TipoIngreso, monto(t, "1"), nil, "vieja", "2024-01-01"))
	require.True(t, transacciones.Agregar(TipoIngreso, monto(t, "2"), nil, "nueva", "2024-03-01"))

	tr := transacciones.Filtrar(FiltroTransacciones{})
	require.Len(t, tr, 2)
	assert.Equal(t, "nueva", tr[0].Descripcion)
	assert.Equal(t, "vieja", tr[1].Descripcion)
}

func TestTransaccionConCategoriaEliminadaQuedaOculta(t *testing.T) {
	categorias, transacciones := newManagers(t)
	require.True(t, categorias.Agregar("Comida", ""))
	id := categoriaID(t, categorias, "Comida")
	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "10"), &id, "almuerzo", "2024-01-10"))

	// el único camino a una transacción activa con categoría eliminada es
	// eliminar ambas y restaurar solo la transacción
	tr := transacciones.Obtener()
	require.Len(t, tr, 1)
	require.True(t, transacciones.Eliminar(tr[0].ID).OK())
	require.True(t, categorias.Eliminar(id).OK())
	require.True(t, transacciones.Restaurar(tr[0].ID))

	assert.Empty(t, transacciones.Obtener())

	require.True(t, categorias.Restaurar(id))
	assert.Len(t, transacciones.Obtener(), 1)
}

func TestTotalesYGraficos(t *testing.T) {
	categorias, transacciones := newManagers(t)
	require.True(t, categorias.Agregar("Comida", ""))
	id := categoriaID(t, categorias, "Comida")

	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "10"), &id, "a", "2024-01-10"))
	require.True(t, transacciones.Agregar(TipoEgreso, monto(t, "20"), &id, "b", "2024-02-10"))
	require.True(t, transacciones.Agregar(TipoIngreso, monto(t, "50"), nil, "c", "2024-01-15"))

	porTipo := transacciones.TotalesPorTipo()
	require.Len(t, porTipo, 2)

	porCategoria := transacciones.TotalesPorCategoria()
	require.Len(t, porCategoria, 1)
	assert.Equal(t, "Comida", porCategoria[0].Categoria)
	assert.True(t, porCategoria[0].Total.Equal(monto(t, "30")))

	porMes := transacciones.TotalesPorMes()
	assert.Len(t, porMes, 3)

	puntos := transacciones.DatosGraficoCategorias(TipoEgreso)
	require.Len(t, puntos, 1)
	assert.Equal(t, "Comida", puntos[0].Etiqueta)
	assert.True(t, puntos[0].Total.Equal(monto(t, "30")))

	mensual := transacciones.DatosGraficoMensual("")
	assert.Len(t, mensual, 2)
}

func TestAuditoriaDeTransaccion(t *testing.T) {
	_, transacciones := newManagers(t)
	require.True(t, transacciones.Agregar(TipoIngreso, monto(t, "5"), nil, "", "2024-01-01"))

	tr := transacciones.Obtener()
	require.Len(t, tr, 1)

	info := transacciones.Auditoria(tr[0].ID)
	require.NotNil(t, info)
	assert.True(t, info.IsActive())

	require.True(t, transacciones.Eliminar(tr[0].ID).OK())
	info = transacciones.Auditoria(tr[0].ID)
	require.NotNil(t, info, "la auditoría incluye registros eliminados")
	assert.True(t, info.IsDeleted())
}

func TestVerificarIntegridad(t *testing.T) {
	log := logger.NewNop()
	db, err := storage.Open(":memory:", log)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, InitDatabase(db, log))

	categorias, err := NewCategoriasManager(db, log)
	require.NoError(t, err)
	require.True(t, categorias.Agregar("Comida", ""))

	estado := VerificarIntegridad(db, log)
	assert.True(t, estado.IntegrityOK)
	assert.EqualValues(t, 1, estado.Categorias)
	assert.EqualValues(t, 0, estado.Transacciones)
}
