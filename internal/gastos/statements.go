package gastos

// Sentencias SQL del sistema de gastos. Todas las lecturas por defecto
// filtran deleted_at IS NULL; los LEFT JOIN conservan las transacciones sin
// categoría (c.id IS NULL) y ocultan las que referencian una categoría
// eliminada, estado solo alcanzable restaurando una transacción después de
// eliminar su categoría.
//
// La unicidad de nombres se valida en los managers sobre filas activas; una
// restricción UNIQUE de columna impediría reutilizar el nombre de una fila
// eliminada lógicamente.

const createTableCategorias = `
CREATE TABLE IF NOT EXISTS categorias (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nombre TEXT NOT NULL,
    descripcion TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME NULL
)`

const createTableTransacciones = `
CREATE TABLE IF NOT EXISTS transacciones (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tipo TEXT NOT NULL CHECK(tipo IN ('ingreso', 'egreso')),
    monto REAL NOT NULL,
    categoria_id INTEGER,
    descripcion TEXT,
    fecha DATE NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME NULL,
    FOREIGN KEY (categoria_id) REFERENCES categorias(id)
)`

const createTriggerUpdateCategorias = `
CREATE TRIGGER IF NOT EXISTS update_categorias_updated_at
AFTER UPDATE ON categorias
FOR EACH ROW
WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE categorias SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END`

const createTriggerUpdateTransacciones = `
CREATE TRIGGER IF NOT EXISTS update_transacciones_updated_at
AFTER UPDATE ON transacciones
FOR EACH ROW
WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE transacciones SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END`

const createIndexTransaccionesFecha = `
CREATE INDEX IF NOT EXISTS idx_transacciones_fecha ON transacciones(fecha)`

const createIndexTransaccionesTipo = `
CREATE INDEX IF NOT EXISTS idx_transacciones_tipo ON transacciones(tipo)`

const createIndexTransaccionesCategoria = `
CREATE INDEX IF NOT EXISTS idx_transacciones_categoria ON transacciones(categoria_id)`

const createViewResumenMensual = `
CREATE VIEW IF NOT EXISTS resumen_mensual AS
SELECT
    strftime('%Y-%m', fecha) as mes,
    tipo,
    SUM(monto) as total,
    COUNT(*) as cantidad
FROM transacciones
WHERE deleted_at IS NULL
GROUP BY strftime('%Y-%m', fecha), tipo
ORDER BY mes DESC, tipo`

const createViewResumenCategorias = `
CREATE VIEW IF NOT EXISTS resumen_categorias AS
SELECT
    c.nombre as categoria,
    t.tipo,
    SUM(t.monto) as total,
    COUNT(*) as cantidad
FROM transacciones t
JOIN categorias c ON t.categoria_id = c.id
WHERE t.deleted_at IS NULL AND c.deleted_at IS NULL
GROUP BY c.nombre, t.tipo
ORDER BY total DESC`

const insertCategoria = `
INSERT INTO categorias (nombre, descripcion)
VALUES (?, ?)`

const updateCategoria = `
UPDATE categorias
SET nombre = ?, descripcion = ?
WHERE id = ? AND deleted_at IS NULL`

const selectCategoriasActivas = `
SELECT id, nombre, descripcion, created_at, updated_at
FROM categorias
WHERE deleted_at IS NULL
ORDER BY nombre`

const selectCategoriaByID = `
SELECT id, nombre, descripcion, created_at, updated_at
FROM categorias
WHERE id = ? AND deleted_at IS NULL`

const countCategoriaNombre = `
SELECT COUNT(*) as n FROM categorias
WHERE nombre = ? AND deleted_at IS NULL AND id != ?`

const countCategoriaNombreSinExclusion = `
SELECT COUNT(*) as n FROM categorias
WHERE nombre = ? AND deleted_at IS NULL`

const countTransaccionesPorCategoria = `
SELECT COUNT(*) as n FROM transacciones
WHERE categoria_id = ? AND deleted_at IS NULL`

const insertTransaccion = `
INSERT INTO transacciones (tipo, monto, categoria_id, descripcion, fecha)
VALUES (?, ?, ?, ?, ?)`

const updateTransaccion = `
UPDATE transacciones
SET tipo = ?, monto = ?, categoria_id = ?, descripcion = ?, fecha = ?
WHERE id = ? AND deleted_at IS NULL`

const selectTransaccionesActivas = `
SELECT t.id, t.tipo, t.monto, t.categoria_id, c.nombre as categoria, t.descripcion, t.fecha, t.created_at, t.updated_at
FROM transacciones t
LEFT JOIN categorias c ON t.categoria_id = c.id
WHERE t.deleted_at IS NULL AND (c.deleted_at IS NULL OR c.id IS NULL)
ORDER BY t.fecha DESC, t.created_at DESC`

const selectTransaccionByID = `
SELECT t.id, t.tipo, t.monto, t.categoria_id, c.nombre as categoria, t.descripcion, t.fecha, t.created_at, t.updated_at
FROM transacciones t
LEFT JOIN categorias c ON t.categoria_id = c.id
WHERE t.id = ? AND t.deleted_at IS NULL AND (c.deleted_at IS NULL OR c.id IS NULL)`

const selectTransaccionesByFiltro = `
SELECT t.id, t.tipo, t.monto, t.categoria_id, c.nombre as categoria, t.descripcion, t.fecha, t.created_at, t.updated_at
FROM transacciones t
LEFT JOIN categorias c ON t.categoria_id = c.id
WHERE t.deleted_at IS NULL AND (c.deleted_at IS NULL OR c.id IS NULL)
AND (? IS NULL OR t.tipo = ?)
AND (? IS NULL OR c.nombre = ?)
AND (? IS NULL OR t.fecha >= ?)
AND (? IS NULL OR t.fecha <= ?)
ORDER BY t.fecha DESC, t.created_at DESC`

const selectTotalesPorTipo = `
SELECT tipo, SUM(monto) as total
FROM transacciones
WHERE deleted_at IS NULL
GROUP BY tipo`

const selectTotalesPorCategoria = `
SELECT c.nombre as categoria, t.tipo, SUM(t.monto) as total
FROM transacciones t
JOIN categorias c ON t.categoria_id = c.id
WHERE t.deleted_at IS NULL AND c.deleted_at IS NULL
GROUP BY c.nombre, t.tipo
ORDER BY total DESC`

const selectTotalesPorMes = `
SELECT strftime('%Y-%m', fecha) as mes, tipo, SUM(monto) as total
FROM transacciones
WHERE deleted_at IS NULL
GROUP BY strftime('%Y-%m', fecha), tipo
ORDER BY mes DESC`

const selectBalanceActual = `
SELECT
    (SELECT COALESCE(SUM(monto), 0) FROM transacciones WHERE tipo = 'ingreso' AND deleted_at IS NULL) -
    (SELECT COALESCE(SUM(monto), 0) FROM transacciones WHERE tipo = 'egreso' AND deleted_at IS NULL) as balance`

const selectTotalPorTipo = `
SELECT COALESCE(SUM(monto), 0) as total FROM transacciones
WHERE tipo = ? AND deleted_at IS NULL`

const selectGraficoCategoriasPorTipo = `
SELECT c.nombre as categoria, SUM(t.monto) as total
FROM transacciones t
JOIN categorias c ON t.categoria_id = c.id
WHERE t.deleted_at IS NULL AND c.deleted_at IS NULL AND t.tipo = ?
GROUP BY c.nombre
ORDER BY total DESC`

const selectGraficoCategorias = `
SELECT c.nombre as categoria, SUM(t.monto) as total
FROM transacciones t
JOIN categorias c ON t.categoria_id = c.id
WHERE t.deleted_at IS NULL AND c.deleted_at IS NULL
GROUP BY c.nombre
ORDER BY total DESC`

const selectGraficoMensualPorTipo = `
SELECT strftime('%Y-%m', fecha) as mes, SUM(monto) as total
FROM transacciones
WHERE deleted_at IS NULL AND tipo = ?
GROUP BY strftime('%Y-%m', fecha)
ORDER BY mes`

const selectGraficoMensual = `
SELECT strftime('%Y-%m', fecha) as mes, SUM(monto) as total
FROM transacciones
WHERE deleted_at IS NULL
GROUP BY strftime('%Y-%m', fecha)
ORDER BY mes`
