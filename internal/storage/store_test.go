package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastanos/gestion-local/pkg/logger"
)

const createNotas = `
CREATE TABLE notas (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    titulo TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME NULL
)`

const createNotasTrigger = `
CREATE TRIGGER notas_updated_at
AFTER UPDATE ON notas
FOR EACH ROW
WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE notas SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END`

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.SQL().Exec(createNotas)
	require.NoError(t, err)
	_, err = db.SQL().Exec(createNotasTrigger)
	require.NoError(t, err)
	return db
}

func newNotasStore(t *testing.T) (*DB, *RecordStore) {
	t.Helper()
	db := newTestDB(t)
	store, err := NewRecordStore(db, "notas", "id", logger.NewNop())
	require.NoError(t, err)
	return db, store
}

func insertarNota(t *testing.T, store *RecordStore, titulo string) int64 {
	t.Helper()
	n := store.ExecuteCommand("INSERT INTO notas (titulo) VALUES (?)", titulo)
	require.EqualValues(t, 1, n)

	recs := store.ExecuteQuery("SELECT id FROM notas WHERE titulo = ? ORDER BY id DESC LIMIT 1", titulo)
	require.Len(t, recs, 1)
	return recs[0].Int64("id")
}

func TestNewRecordStoreRechazaIdentificadoresInvalidos(t *testing.T) {
	db := newTestDB(t)

	_, err := NewRecordStore(db, "notas; DROP TABLE notas", "id", logger.NewNop())
	require.Error(t, err)

	_, err = NewRecordStore(db, "notas", "id = 1 OR 1", logger.NewNop())
	require.Error(t, err)
}

func TestAuditoriaAlCrear(t *testing.T) {
	_, store := newNotasStore(t)
	id := insertarNota(t, store, "primera")

	info := store.GetAuditInfo(id)
	require.NotNil(t, info)
	assert.False(t, info.CreatedAt.IsZero())
	assert.Equal(t, info.CreatedAt, info.UpdatedAt)
	assert.Nil(t, info.DeletedAt)
	assert.True(t, info.IsActive())
}

func TestSoftDeleteEsIdempotente(t *testing.T) {
	_, store := newNotasStore(t)
	id := insertarNota(t, store, "efímera")

	assert.True(t, store.SoftDelete(id, false))
	assert.False(t, store.SoftDelete(id, false), "la segunda eliminación no debe reportar éxito")

	assert.Nil(t, store.GetByID(id))
	info := store.GetAuditInfo(id)
	require.NotNil(t, info)
	assert.NotNil(t, info.DeletedAt)
	assert.True(t, info.IsDeleted())
}

func TestSoftDeleteInexistente(t *testing.T) {
	_, store := newNotasStore(t)
	assert.False(t, store.SoftDelete(int64(999), false))
}

func TestRestoreRoundTrip(t *testing.T) {
	_, store := newNotasStore(t)
	id := insertarNota(t, store, "recuperable")

	antes := store.GetByID(id)
	require.NotNil(t, antes)

	require.True(t, store.SoftDelete(id, false))
	require.Nil(t, store.GetByID(id))

	require.True(t, store.Restore(id))
	despues := store.GetByID(id)
	require.NotNil(t, despues)

	assert.Equal(t, antes.String("titulo"), despues.String("titulo"))
	assert.Equal(t, antes.Time("created_at"), despues.Time("created_at"))
	info := store.GetAuditInfo(id)
	require.NotNil(t, info)
	assert.Nil(t, info.DeletedAt)
}

func TestRestoreInexistente(t *testing.T) {
	_, store := newNotasStore(t)
	assert.False(t, store.Restore(int64(12345)))
}

func TestGetActiveYGetDeleted(t *testing.T) {
	_, store := newNotasStore(t)
	a := insertarNota(t, store, "a")
	insertarNota(t, store, "b")
	require.True(t, store.SoftDelete(a, false))

	activos := store.GetActive("titulo")
	require.Len(t, activos, 1)
	assert.Equal(t, "b", activos[0].String("titulo"))

	eliminados := store.GetDeleted("")
	require.Len(t, eliminados, 1)
	assert.Equal(t, "a", eliminados[0].String("titulo"))

	assert.Len(t, store.GetAllIncludingDeleted(""), 2)
	assert.EqualValues(t, 1, store.CountActive())
	assert.EqualValues(t, 1, store.CountDeleted())
}

func TestSearchActive(t *testing.T) {
	_, store := newNotasStore(t)
	insertarNota(t, store, "lista de compras")
	insertarNota(t, store, "lista de tareas")
	oculta := insertarNota(t, store, "lista vieja")
	require.True(t, store.SoftDelete(oculta, false))

	assert.Len(t, store.SearchActive("titulo", "lista", true), 2)
	assert.Len(t, store.SearchActive("titulo", "lista de compras", false), 1)
	assert.Empty(t, store.SearchActive("titulo; --", "x", true))
}

func TestBeforeDeleteBloquea(t *testing.T) {
	_, store := newNotasStore(t)
	id := insertarNota(t, store, "protegida")

	store.SetBeforeDelete(func(any) bool { return false })
	assert.False(t, store.SoftDelete(id, true))
	assert.NotNil(t, store.GetByID(id))

	// sin validación de dependencias el hook no aplica
	assert.True(t, store.SoftDelete(id, false))
}

func TestBulkSoftDelete(t *testing.T) {
	_, store := newNotasStore(t)
	a := insertarNota(t, store, "a")
	b := insertarNota(t, store, "b")

	res := store.BulkSoftDelete([]any{a, int64(999), b}, false)
	assert.ElementsMatch(t, []any{a, b}, res.Successful)
	assert.Equal(t, []any{int64(999)}, res.Failed)
	assert.EqualValues(t, 0, store.CountActive())
}

func TestExecuteQueryDegradaAVacio(t *testing.T) {
	_, store := newNotasStore(t)
	assert.Empty(t, store.ExecuteQuery("SELECT * FROM tabla_inexistente"))
	assert.EqualValues(t, 0, store.ExecuteCommand("UPDATE tabla_inexistente SET x = 1"))
}

func TestTxRunnerRollback(t *testing.T) {
	db, store := newNotasStore(t)
	runner := NewTxRunner(db)

	falla := errors.New("falla simulada")
	err := runner.Run(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO notas (titulo) VALUES (?)", "fantasma"); err != nil {
			return err
		}
		return falla
	})
	require.ErrorIs(t, err, falla)
	assert.EqualValues(t, 0, store.CountActive(), "el rollback debe descartar el insert")

	err = runner.Run(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO notas (titulo) VALUES (?)", "real")
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, store.CountActive())
}

func TestBackupYRestore(t *testing.T) {
	dir := t.TempDir()
	origen := filepath.Join(dir, "origen.db")

	db, err := Open(origen, logger.NewNop())
	require.NoError(t, err)
	_, err = db.SQL().Exec(createNotas)
	require.NoError(t, err)
	_, err = db.SQL().Exec("INSERT INTO notas (titulo) VALUES ('respaldada')")
	require.NoError(t, err)

	respaldo := filepath.Join(dir, "respaldo.db")
	require.NoError(t, db.Backup(respaldo))
	require.NoError(t, db.Close())

	destino := filepath.Join(dir, "restaurada.db")
	require.NoError(t, RestoreFile(respaldo, destino))

	restaurada, err := Open(destino, logger.NewNop())
	require.NoError(t, err)
	defer restaurada.Close()

	var titulo string
	require.NoError(t, restaurada.SQL().QueryRow("SELECT titulo FROM notas").Scan(&titulo))
	assert.Equal(t, "respaldada", titulo)
	assert.True(t, restaurada.CheckIntegrity())
}
