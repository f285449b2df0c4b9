package inventario

// Sentencias SQL del sistema de inventario. Soft delete en todas las tablas;
// las vistas v_* filtran filas eliminadas y toleran que el padre de un join
// haya sido eliminado (LEFT JOIN condicionado por deleted_at).
//
// La unicidad (nombre de categoría, razón social y CUIT/RUT de proveedor) se
// valida en los managers sobre filas activas; una restricción UNIQUE de
// columna impediría reutilizar el valor de una fila eliminada lógicamente.

const createTableCategorias = `
CREATE TABLE IF NOT EXISTS categorias (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nombre TEXT NOT NULL,
    descripcion TEXT,
    color_identificador TEXT DEFAULT '#3498db',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
)`

const createTableProveedores = `
CREATE TABLE IF NOT EXISTS proveedores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nombre_razon_social TEXT NOT NULL,
    cuit_rut TEXT,
    direccion TEXT,
    telefono TEXT,
    email TEXT,
    contacto_responsable TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
)`

const createTableProductos = `
CREATE TABLE IF NOT EXISTS productos (
    codigo_barras TEXT PRIMARY KEY,
    nombre TEXT NOT NULL,
    descripcion TEXT,
    categoria_id INTEGER,
    proveedor_id INTEGER,
    stock_actual INTEGER DEFAULT 0,
    stock_minimo INTEGER DEFAULT 0,
    precio_compra DECIMAL(10,2) DEFAULT 0.00,
    precio_venta DECIMAL(10,2) DEFAULT 0.00,
    fecha_ingreso DATE DEFAULT CURRENT_DATE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL,
    FOREIGN KEY (categoria_id) REFERENCES categorias(id),
    FOREIGN KEY (proveedor_id) REFERENCES proveedores(id)
)`

const createTableMovimientos = `
CREATE TABLE IF NOT EXISTS movimientos_stock (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    codigo_barras_producto TEXT NOT NULL,
    tipo TEXT CHECK(tipo IN ('Entrada', 'Salida', 'Ajuste')) NOT NULL,
    cantidad INTEGER NOT NULL,
    precio_unitario DECIMAL(10,2) DEFAULT 0.00,
    motivo_descripcion TEXT,
    usuario_responsable TEXT DEFAULT 'Sistema',
    numero_documento_factura TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL,
    FOREIGN KEY (codigo_barras_producto) REFERENCES productos(codigo_barras)
)`

const createTriggerCategoriasUpdatedAt = `
CREATE TRIGGER IF NOT EXISTS trigger_categorias_updated_at
AFTER UPDATE ON categorias
FOR EACH ROW
WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE categorias SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END`

const createTriggerProveedoresUpdatedAt = `
CREATE TRIGGER IF NOT EXISTS trigger_proveedores_updated_at
AFTER UPDATE ON proveedores
FOR EACH ROW
WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE proveedores SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END`

const createTriggerProductosUpdatedAt = `
CREATE TRIGGER IF NOT EXISTS trigger_productos_updated_at
AFTER UPDATE ON productos
FOR EACH ROW
WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE productos SET updated_at = CURRENT_TIMESTAMP WHERE codigo_barras = NEW.codigo_barras;
END`

const createTriggerMovimientosUpdatedAt = `
CREATE TRIGGER IF NOT EXISTS trigger_movimientos_updated_at
AFTER UPDATE ON movimientos_stock
FOR EACH ROW
WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE movimientos_stock SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END`

const createIndexProductosDeletedAt = `
CREATE INDEX IF NOT EXISTS idx_productos_deleted_at ON productos(deleted_at)`

const createIndexCategoriasDeletedAt = `
CREATE INDEX IF NOT EXISTS idx_categorias_deleted_at ON categorias(deleted_at)`

const createIndexProveedoresDeletedAt = `
CREATE INDEX IF NOT EXISTS idx_proveedores_deleted_at ON proveedores(deleted_at)`

const createIndexMovimientosDeletedAt = `
CREATE INDEX IF NOT EXISTS idx_movimientos_deleted_at ON movimientos_stock(deleted_at)`

const createIndexProductosCategoria = `
CREATE INDEX IF NOT EXISTS idx_productos_categoria ON productos(categoria_id)`

const createIndexProductosProveedor = `
CREATE INDEX IF NOT EXISTS idx_productos_proveedor ON productos(proveedor_id)`

const createIndexMovimientosProducto = `
CREATE INDEX IF NOT EXISTS idx_movimientos_producto ON movimientos_stock(codigo_barras_producto)`

const createViewProductosActivos = `
CREATE VIEW IF NOT EXISTS v_productos_activos AS
SELECT
    p.codigo_barras,
    p.nombre,
    p.descripcion,
    c.nombre as categoria_nombre,
    c.color_identificador as categoria_color,
    pr.nombre_razon_social as proveedor_nombre,
    p.stock_actual,
    p.stock_minimo,
    p.precio_compra,
    p.precio_venta,
    p.fecha_ingreso,
    p.created_at,
    p.updated_at,
    CASE WHEN p.stock_actual <= p.stock_minimo THEN 1 ELSE 0 END as alerta_stock
FROM productos p
LEFT JOIN categorias c ON p.categoria_id = c.id AND c.deleted_at IS NULL
LEFT JOIN proveedores pr ON p.proveedor_id = pr.id AND pr.deleted_at IS NULL
WHERE p.deleted_at IS NULL`

const createViewMovimientosActivos = `
CREATE VIEW IF NOT EXISTS v_movimientos_activos AS
SELECT
    m.id,
    m.codigo_barras_producto,
    p.nombre as producto_nombre,
    m.tipo,
    m.cantidad,
    m.precio_unitario,
    m.motivo_descripcion,
    m.usuario_responsable,
    m.numero_documento_factura,
    m.created_at,
    m.updated_at
FROM movimientos_stock m
LEFT JOIN productos p ON m.codigo_barras_producto = p.codigo_barras AND p.deleted_at IS NULL
WHERE m.deleted_at IS NULL
ORDER BY m.created_at DESC`

// Categorías

const insertCategoria = `
INSERT INTO categorias (nombre, descripcion, color_identificador)
VALUES (?, ?, ?)`

const updateCategoria = `
UPDATE categorias SET nombre = ?, descripcion = ?, color_identificador = ?
WHERE id = ? AND deleted_at IS NULL`

const selectCategoriasActivas = `
SELECT * FROM categorias WHERE deleted_at IS NULL ORDER BY nombre`

const selectCategoriaByID = `
SELECT * FROM categorias WHERE id = ? AND deleted_at IS NULL`

const selectBuscarCategorias = `
SELECT * FROM categorias
WHERE (nombre LIKE ? OR descripcion LIKE ?) AND deleted_at IS NULL
ORDER BY nombre`

const countCategoriaNombre = `
SELECT COUNT(*) as n FROM categorias
WHERE nombre = ? AND deleted_at IS NULL AND id != ?`

const countCategoriaNombreSinExclusion = `
SELECT COUNT(*) as n FROM categorias
WHERE nombre = ? AND deleted_at IS NULL`

const countProductosPorCategoria = `
SELECT COUNT(*) as n FROM productos
WHERE categoria_id = ? AND deleted_at IS NULL`

// Proveedores

const insertProveedor = `
INSERT INTO proveedores (nombre_razon_social, cuit_rut, direccion, telefono, email, contacto_responsable)
VALUES (?, ?, ?, ?, ?, ?)`

const updateProveedor = `
UPDATE proveedores SET nombre_razon_social = ?, cuit_rut = ?, direccion = ?,
telefono = ?, email = ?, contacto_responsable = ?
WHERE id = ? AND deleted_at IS NULL`

const selectProveedoresActivos = `
SELECT * FROM proveedores WHERE deleted_at IS NULL ORDER BY nombre_razon_social`

const selectProveedorByID = `
SELECT * FROM proveedores WHERE id = ? AND deleted_at IS NULL`

const selectBuscarProveedores = `
SELECT * FROM proveedores
WHERE (nombre_razon_social LIKE ? OR cuit_rut LIKE ? OR email LIKE ?) AND deleted_at IS NULL
ORDER BY nombre_razon_social`

const countProveedorNombre = `
SELECT COUNT(*) as n FROM proveedores
WHERE nombre_razon_social = ? AND deleted_at IS NULL AND id != ?`

const countProveedorNombreSinExclusion = `
SELECT COUNT(*) as n FROM proveedores
WHERE nombre_razon_social = ? AND deleted_at IS NULL`

const countProveedorCuit = `
SELECT COUNT(*) as n FROM proveedores
WHERE cuit_rut = ? AND deleted_at IS NULL AND id != ?`

const countProveedorCuitSinExclusion = `
SELECT COUNT(*) as n FROM proveedores
WHERE cuit_rut = ? AND deleted_at IS NULL`

const countProductosPorProveedor = `
SELECT COUNT(*) as n FROM productos
WHERE proveedor_id = ? AND deleted_at IS NULL`

// Productos

const insertProducto = `
INSERT INTO productos (codigo_barras, nombre, descripcion, categoria_id, proveedor_id,
stock_actual, stock_minimo, precio_compra, precio_venta, fecha_ingreso)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const updateProducto = `
UPDATE productos SET nombre = ?, descripcion = ?, categoria_id = ?, proveedor_id = ?,
stock_minimo = ?, precio_compra = ?, precio_venta = ?
WHERE codigo_barras = ? AND deleted_at IS NULL`

const selectProductosActivos = `
SELECT * FROM v_productos_activos ORDER BY nombre`

const selectProductoByCodigo = `
SELECT * FROM productos WHERE codigo_barras = ? AND deleted_at IS NULL`

const selectProductosStockBajo = `
SELECT * FROM v_productos_activos
WHERE stock_actual <= stock_minimo
ORDER BY stock_actual ASC`

const selectBuscarProductos = `
SELECT * FROM v_productos_activos
WHERE codigo_barras LIKE ? OR nombre LIKE ? OR descripcion LIKE ?
ORDER BY nombre`

const countMovimientosRecientesProducto = `
SELECT COUNT(*) as n FROM movimientos_stock
WHERE codigo_barras_producto = ?
AND deleted_at IS NULL
AND created_at >= date('now', '-30 days')`

const selectValorTotalInventario = `
SELECT COALESCE(SUM(stock_actual * precio_venta), 0) as valor_total
FROM productos
WHERE deleted_at IS NULL AND stock_actual > 0`

// Movimientos de stock

const insertMovimiento = `
INSERT INTO movimientos_stock (codigo_barras_producto, tipo, cantidad, precio_unitario,
motivo_descripcion, usuario_responsable, numero_documento_factura)
VALUES (?, ?, ?, ?, ?, ?, ?)`

const selectMovimientosActivos = `
SELECT * FROM v_movimientos_activos LIMIT ?`

const selectMovimientosByProducto = `
SELECT * FROM v_movimientos_activos
WHERE codigo_barras_producto = ?`

const selectMovimientosParaFold = `
SELECT tipo, cantidad FROM movimientos_stock
WHERE codigo_barras_producto = ? AND deleted_at IS NULL
ORDER BY created_at ASC, id ASC`

const updateStockEntrada = `
UPDATE productos SET stock_actual = stock_actual + ?
WHERE codigo_barras = ? AND deleted_at IS NULL`

const updateStockSalida = `
UPDATE productos SET stock_actual = stock_actual - ?
WHERE codigo_barras = ? AND deleted_at IS NULL`

const updateStockAjuste = `
UPDATE productos SET stock_actual = ?
WHERE codigo_barras = ? AND deleted_at IS NULL`

// Reportes y dashboard

const selectProductosMasVendidos = `
SELECT
    p.codigo_barras,
    p.nombre,
    SUM(m.cantidad) as total_vendido
FROM productos p
JOIN movimientos_stock m ON p.codigo_barras = m.codigo_barras_producto
WHERE p.deleted_at IS NULL
AND m.deleted_at IS NULL
AND m.tipo = 'Salida'
AND m.created_at >= date('now', '-30 days')
GROUP BY p.codigo_barras, p.nombre
ORDER BY total_vendido DESC
LIMIT 10`

const selectMovimientosPorFecha = `
SELECT
    DATE(created_at) as fecha,
    tipo,
    COUNT(*) as cantidad_movimientos,
    SUM(cantidad) as cantidad_total
FROM movimientos_stock
WHERE deleted_at IS NULL
AND created_at >= date('now', '-30 days')
GROUP BY DATE(created_at), tipo
ORDER BY fecha DESC, tipo`

const selectAlertasStockCritico = `
SELECT COUNT(*) as productos_criticos
FROM productos
WHERE deleted_at IS NULL
AND stock_actual <= stock_minimo`
