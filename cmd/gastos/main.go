package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jcastanos/gestion-local/internal/gastos"
	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/config"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

// Herramienta de línea de comandos del sistema de gastos: inicialización y
// mantenimiento de la base, datos de ejemplo y consultas rápidas de balance.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error cargando configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	root := &cobra.Command{
		Use:           "gastos",
		Short:         "Control de gastos personales",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		initCmd(cfg, log),
		seedCmd(cfg, log),
		verificarCmd(cfg, log),
		balanceCmd(cfg, log),
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
	db, err := storage.Open(cfg.Gastos.Path, log)
	if err != nil {
		return nil, err
	}
	if err := gastos.InitDatabase(db, log); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
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
		Short: "Carga categorías y transacciones de ejemplo",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			categorias, err := gastos.NewCategoriasManager(db, log)
			if err != nil {
				return err
			}
			transacciones, err := gastos.NewTransaccionesManager(db, categorias, log)
			if err != nil {
				return err
			}

			for _, c := range [][2]string{
				{"Alimentación", "Gastos en comida y restaurantes"},
				{"Transporte", "Transporte público y combustible"},
				{"Vivienda", "Alquiler, servicios, mantenimiento"},
				{"Salud", "Médicos, medicamentos, seguros"},
				{"Entretenimiento", "Cine, música, hobbies"},
				{"Tecnología", "Electrónicos, software, internet"},
				{"Otros", "Gastos varios"},
			} {
				categorias.Agregar(c[0], c[1])
			}

			idPor := make(map[string]int64)
			for _, c := range categorias.ObtenerTodas() {
				idPor[c.Nombre] = c.ID
			}
			catID := func(nombre string) *int64 {
				if id, ok := idPor[nombre]; ok {
					return &id
				}
				return nil
			}

			for _, t := range []struct {
				tipo      string
				monto     string
				categoria string
				desc      string
				fecha     string
			}{
				{gastos.TipoIngreso, "2500.00", "Otros", "Salario", "2024-01-01"},
				{gastos.TipoIngreso, "800.00", "Otros", "Freelance", "2024-01-15"},
				{gastos.TipoIngreso, "2500.00", "Otros", "Salario", "2024-02-01"},
				{gastos.TipoEgreso, "150.50", "Alimentación", "Supermercado", "2024-01-05"},
				{gastos.TipoEgreso, "45.00", "Alimentación", "Restaurante", "2024-01-12"},
				{gastos.TipoEgreso, "60.00", "Transporte", "Gasolina", "2024-01-08"},
				{gastos.TipoEgreso, "800.00", "Vivienda", "Alquiler", "2024-01-01"},
				{gastos.TipoEgreso, "75.00", "Vivienda", "Electricidad", "2024-01-10"},
				{gastos.TipoEgreso, "80.00", "Salud", "Consulta médica", "2024-01-20"},
				{gastos.TipoEgreso, "15.00", "Entretenimiento", "Cine", "2024-01-14"},
				{gastos.TipoEgreso, "29.99", "Tecnología", "Software", "2024-01-25"},
			} {
				monto, err := decimal.NewFromString(t.monto)
				if err != nil {
					return err
				}
				transacciones.Agregar(t.tipo, monto, catID(t.categoria), t.desc, t.fecha)
			}

			fmt.Println("datos de ejemplo cargados")
			return nil
		},
	}
}

func verificarCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "verificar",
		Short: "Verifica la integridad de la base y cuenta registros activos",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			estado := gastos.VerificarIntegridad(db, log)
			fmt.Printf("integridad: %v\n", estado.IntegrityOK)
			fmt.Printf("categorías activas: %d\n", estado.Categorias)
			fmt.Printf("transacciones activas: %d\n", estado.Transacciones)
			if !estado.IntegrityOK {
				return fmt.Errorf("la base %s reporta problemas de integridad", db.Path())
			}
			return nil
		},
	}
}

func balanceCmd(cfg *config.Config, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Muestra ingresos, egresos y balance actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := abrir(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			categorias, err := gastos.NewCategoriasManager(db, log)
			if err != nil {
				return err
			}
			transacciones, err := gastos.NewTransaccionesManager(db, categorias, log)
			if err != nil {
				return err
			}

			r := transacciones.ResumenBalance()
			fmt.Printf("ingresos: %s\n", r.TotalIngresos.StringFixed(2))
			fmt.Printf("egresos:  %s\n", r.TotalEgresos.StringFixed(2))
			fmt.Printf("balance:  %s\n", r.Balance.StringFixed(2))
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
				fmt.Sprintf("gastos_%s.db", time.Now().Format("20060102_150405")))
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
			if err := storage.RestoreFile(args[0], cfg.Gastos.Path); err != nil {
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
