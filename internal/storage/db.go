package storage

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jcastanos/gestion-local/pkg/logger"
)

// DB envuelve la conexión a un archivo SQLite. Un archivo por aplicación;
// ":memory:" abre una base efímera (tests).
type DB struct {
	sql  *sql.DB
	path string
	log  *logger.Logger
}

// Open abre (o crea) la base de datos con foreign keys activas y WAL.
// El modelo es de un solo escritor (aplicación interactiva), así que se
// limita el pool a una conexión; además una base :memory: con más de una
// conexión sería una base distinta por conexión.
func Open(path string, log *logger.Logger) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("abrir base de datos %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping base de datos %s: %w", path, err)
	}

	return &DB{sql: db, path: path, log: log}, nil
}

// SQL expone el *sql.DB subyacente para los stores y el TxRunner.
func (d *DB) SQL() *sql.DB { return d.sql }

// Path devuelve la ruta del archivo de la base.
func (d *DB) Path() string { return d.path }

// Close cierra la conexión.
func (d *DB) Close() error { return d.sql.Close() }

// Backup escribe una copia consistente de la base en dst usando VACUUM INTO,
// que funciona con la base abierta y en uso.
func (d *DB) Backup(dst string) error {
	if _, err := os.Stat(dst); err == nil {
		// VACUUM INTO exige que el destino no exista
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("backup: limpiar destino %s: %w", dst, err)
		}
	}
	if _, err := d.sql.Exec("VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("backup hacia %s: %w", dst, err)
	}
	return nil
}

// Optimize reorganiza y compacta la base (VACUUM) y refresca estadísticas
// de consulta (ANALYZE).
func (d *DB) Optimize() bool {
	if _, err := d.sql.Exec("VACUUM"); err != nil {
		d.log.Error().Err(err).Msg("error durante VACUUM")
		return false
	}
	if _, err := d.sql.Exec("ANALYZE"); err != nil {
		d.log.Error().Err(err).Msg("error durante ANALYZE")
		return false
	}
	return true
}

// CheckIntegrity ejecuta PRAGMA integrity_check y reporta cada problema
// encontrado en el log.
func (d *DB) CheckIntegrity() bool {
	rows, err := d.sql.Query("PRAGMA integrity_check")
	if err != nil {
		d.log.Error().Err(err).Msg("error verificando integridad")
		return false
	}
	defer rows.Close()

	ok := true
	for rows.Next() {
		var issue string
		if err := rows.Scan(&issue); err != nil {
			d.log.Error().Err(err).Msg("error leyendo integrity_check")
			return false
		}
		if issue != "ok" {
			ok = false
			d.log.Error().Str("detalle", issue).Msg("problema de integridad detectado")
		}
	}
	return ok && rows.Err() == nil
}

// RestoreFile reemplaza la base dst con el contenido del backup src.
// La base destino debe estar cerrada; el llamador la reabre después.
func RestoreFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("restore: abrir backup %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("restore: crear %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("restore: copiar %s a %s: %w", src, dst, err)
	}
	return nil
}
