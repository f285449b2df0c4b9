package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRunner ejecuta callbacks dentro de una transacción explícita. Las
// secuencias de más de una sentencia que deben ser atómicas (insertar un
// movimiento y actualizar el stock derivado) pasan por aquí; ejecutarlas
// como comandos independientes dejaría una ventana de inconsistencia si la
// segunda sentencia falla.
type TxRunner struct {
	db *DB
}

// NewTxRunner construye el runner sobre la base abierta.
func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn y hace Commit; cualquier error de fn
// provoca Rollback y se devuelve al llamador.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
