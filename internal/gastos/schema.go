package gastos

import (
	"fmt"

	"github.com/jcastanos/gestion-local/internal/storage"
	"github.com/jcastanos/gestion-local/pkg/logger"
)

// InitDatabase crea tablas, triggers de auditoría, índices y vistas del
// sistema de gastos. Idempotente: todo usa IF NOT EXISTS.
func InitDatabase(db *storage.DB, log *logger.Logger) error {
	statements := []struct{ name, sql string }{
		{"tabla categorias", createTableCategorias},
		{"tabla transacciones", createTableTransacciones},
		{"trigger categorias updated_at", createTriggerUpdateCategorias},
		{"trigger transacciones updated_at", createTriggerUpdateTransacciones},
		{"índice transacciones fecha", createIndexTransaccionesFecha},
		{"índice transacciones tipo", createIndexTransaccionesTipo},
		{"índice transacciones categoría", createIndexTransaccionesCategoria},
		{"vista resumen mensual", createViewResumenMensual},
		{"vista resumen categorías", createViewResumenCategorias},
	}

	for _, st := range statements {
		if _, err := db.SQL().Exec(st.sql); err != nil {
			return fmt.Errorf("crear %s: %w", st.name, err)
		}
	}

	log.Info().Str("db", db.Path()).Msg("base de datos de gastos inicializada")
	return nil
}

// EstadoDatos conteos de registros activos del sistema de gastos.
type EstadoDatos struct {
	IntegrityOK   bool
	Categorias    int64
	Transacciones int64
}

// VerificarIntegridad ejecuta PRAGMA integrity_check y cuenta los registros
// activos de cada tabla.
func VerificarIntegridad(db *storage.DB, log *logger.Logger) EstadoDatos {
	estado := EstadoDatos{IntegrityOK: db.CheckIntegrity()}

	for _, t := range []struct {
		table string
		dst   *int64
	}{
		{"categorias", &estado.Categorias},
		{"transacciones", &estado.Transacciones},
	} {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE deleted_at IS NULL", t.table)
		if err := db.SQL().QueryRow(query).Scan(t.dst); err != nil {
			log.Error().Err(err).Str("tabla", t.table).Msg("error contando registros activos")
		}
	}
	return estado
}
