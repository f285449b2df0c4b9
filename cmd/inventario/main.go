package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jcastanos/gestion-local/internal/inventario"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/config"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

// Herramienta de línea de comandos del sistema de inventario: inicialización
// y mantenimiento de la base, datos de ejemplo y consultas de stock.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error cargando configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	root := &cobra.Command{
		Use:           "inventario",
		Short:         "Inventario para pequeños negocios",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		initCmd(cfg, log),
		seedCmd(cfg, log),
		verificarCmd(cfg, log),
		stockBajoCmd(cfg, log),
		backupCmd(cfg, log),
		restaurarCmd(cfg),
		optimizarCmd(cfg, log),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("comando fallido")
		os.Exit(1)
	}
}

// abrir abre la base configurada y asegura el esquema.
func abrir(cfg *config.Config, log *logger.Logger) (*storage.DB, error) {
	db, err := storage.Open(cfg.Inventario.Path, log)
	if err != nil {
		return nil, err
	}
	if err := inventario.InitDatabase(db, log); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// managers construye la cadena completa de managers sobre la base abierta.
func managers(db *storage.DB, log *logger.Logger) (*inventario.CategoriasManager, *inventario.ProveedoresManager, *inventario.ProductosManager, *inventario.MovimientosManager, error) {
	categorias, err := inventario.NewCategoriasManager(db, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	proveedores, err := inventario.NewProveedoresManager(db, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	productos, err := inventario.NewProductosManager(db, categorias, proveedores, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	movimientos, err := inventario.NewMovimientosManager(db, productos, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return categorias, proveedores, productos, movimientos, nil
}

func initCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Crea la base de datos y su esquema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Println("base de datos lista en", db.Path())
			return nil
		},
	}
}

func seedCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Carga categorías, proveedores, productos y movimientos de ejemplo",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			categorias, proveedores, productos, movimientos, err := managers(db, log)
			if err != nil {
				return err
			}

			for _, c := range [][3]string{
				{"Electrónicos", "Dispositivos electrónicos, computadoras y smartphones", "#3498db"},
				{"Oficina y Papelería", "Suministros de oficina y material administrativo", "#2ecc71"},
				{"Mobiliario", "Muebles de oficina, escritorios y sillas", "#8e44ad"},
				{"Limpieza", "Productos de limpieza y mantenimiento", "#f39c12"},
			} {
				categorias.Agregar(c[0], c[1], c[2])
			}

			proveedores.Agregar(inventario.Proveedor{
				RazonSocial: "TecnoSoft S.A.",
				CuitRut:     "30-68521479-8",
				Direccion:   "Av. Corrientes 1234, CABA",
				Telefono:    "+54 11 4567-8901",
				Email:       "ventas@tecnosoft.com.ar",
				Responsable: "Juan Pérez",
			})
			proveedores.Agregar(inventario.Proveedor{
				RazonSocial: "OficiMax Distribuciones",
				CuitRut:     "33-71234567-9",
				Direccion:   "Calle San Martín 567, Rosario",
				Telefono:    "+54 341 456-7890",
				Email:       "pedidos@oficimax.com",
				Responsable: "María González",
			})

			idCategoria := make(map[string]int64)
			for _, c := range categorias.ObtenerTodas() {
				idCategoria[c.Nombre] = c.ID
			}
			idProveedor := make(map[string]int64)
			for _, p := range proveedores.ObtenerTodos() {
				idProveedor[p.RazonSocial] = p.ID
			}
			ref := func(m map[string]int64, clave string) *int64 {
				if id, ok := m[clave]; ok {
					return &id
				}
				return nil
			}

			for _, p := range []struct {
				codigo, nombre, categoria, proveedor string
				minimo                               int64
				compra, venta                        string
			}{
				{"NB-LEN-T14", "Notebook Lenovo ThinkPad T14", "Electrónicos", "TecnoSoft S.A.", 2, "850000.00", "1190000.00"},
				{"MON-SAM-24", "Monitor Samsung 24 pulgadas", "Electrónicos", "TecnoSoft S.A.", 3, "180000.00", "252000.00"},
				{"RSM-A4-500", "Resma papel A4 500 hojas", "Oficina y Papelería", "OficiMax Distribuciones", 20, "4500.00", "6300.00"},
				{"SIL-ERG-01", "Silla ergonómica de oficina", "Mobiliario", "OficiMax Distribuciones", 1, "95000.00", "133000.00"},
			} {
				compra, err := decimal.NewFromString(p.compra)
				if err != nil {
					return err
				}
				venta, err := decimal.NewFromString(p.venta)
				if err != nil {
					return err
				}
				productos.Agregar(inventario.Producto{
					CodigoBarras: p.codigo,
					Nombre:       p.nombre,
					CategoriaID:  ref(idCategoria, p.categoria),
					ProveedorID:  ref(idProveedor, p.proveedor),
					StockMinimo:  p.minimo,
					PrecioCompra: compra,
					PrecioVenta:  venta,
				})
			}

			ctx := cmd.Context()
			for _, m := range []struct {
				codigo   string
				cantidad int64
			}{
				{"NB-LEN-T14", 5},
				{"MON-SAM-24", 8},
				{"RSM-A4-500", 100},
				{"SIL-ERG-01", 4},
			} {
				movimientos.RegistrarEntrada(ctx, inventario.Movimiento{
					CodigoBarras: m.codigo,
					Cantidad:     m.cantidad,
					Motivo:       "Carga inicial de inventario",
					Documento:    "FC-0001-00000001",
				})
			}
			movimientos.RegistrarSalida(ctx, inventario.Movimiento{
				CodigoBarras: "RSM-A4-500",
				Cantidad:     12,
				Motivo:       "Venta mostrador",
			})

			fmt.Println("datos de ejemplo cargados")
			return nil
		},
	}
}

func verificarCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "verificar",
		Short: "Verifica la integridad de la base y resume los datos activos",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			estado := inventario.VerificarDatos(db, log)
			fmt.Printf("integridad: %v\n", estado.IntegrityOK)
			fmt.Printf("categorías activas: %d\n", estado.Categorias)
			fmt.Printf("proveedores activos: %d\n", estado.Proveedores)
			fmt.Printf("productos activos: %d\n", estado.Productos)
			fmt.Printf("movimientos activos: %d\n", estado.Movimientos)
			fmt.Printf("productos en stock crítico: %d\n", estado.ProductosCriticos)
			fmt.Printf("valor del inventario: %s\n", estado.ValorInventario.StringFixed(2))
			if !estado.IntegrityOK {
				return fmt.Errorf("la base %s reporta problemas de integridad", db.Path())
			}
			return nil
		},
	}
}

func stockBajoCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stock-bajo",
		Short: "Lista los productos en o por debajo de su stock mínimo",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			_, _, productos, _, err := managers(db, log)
			if err != nil {
				return err
			}

			criticos := productos.StockBajo()
			if len(criticos) == 0 {
				fmt.Println("sin productos en stock crítico")
				return nil
			}
			for _, p := range criticos {
				fmt.Printf("%-15s %-40s stock %d (mínimo %d)\n",
					p.CodigoBarras, p.Nombre, p.StockActual, p.StockMinimo)
			}
			return nil
		},
	}
}

func backupCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Crea una copia de seguridad fechada en el directorio de backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
				return fmt.Errorf("crear directorio de backups: %w", err)
			}
			dst := filepath.Join(cfg.BackupDir,
				fmt.Sprintf("inventario_%s.db", time.Now().Format("20060102_150405")))
			if err := db.Backup(dst); err != nil {
				return err
			}
			fmt.Println("backup creado en", dst)
			return nil
		},
	}
}

func restaurarCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurar <archivo>",
		Short: "Reemplaza la base actual con un backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// la base destino no se abre: RestoreFile copia sobre el archivo
			if err := storage.RestoreFile(args[0], cfg.Inventario.Path); err != nil {
				return err
			}
			fmt.Println("base restaurada desde", args[0])
			return nil
		},
	}
}

func optimizarCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "optimizar",
		Short: "Compacta la base (VACUUM) y refresca estadísticas (ANALYZE)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if !db.Optimize() {
				return fmt.Errorf("no se pudo optimizar la base %s", db.Path())
			}
			fmt.Println("base optimizada")
			return nil
		},
	}
}
