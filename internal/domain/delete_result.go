package domain

import "fmt"

// DeleteOutcome clasifica el resultado de una eliminación lógica.
type DeleteOutcome int

const (
	// DeleteOK el registro fue marcado como eliminado.
	DeleteOK DeleteOutcome = iota
	// DeleteNotFound el registro no existe o ya estaba eliminado.
	DeleteNotFound
	// DeleteBlocked hay dependencias activas; Reason describe cuáles.
	DeleteBlocked
	// DeleteFailed la capa de almacenamiento no pudo aplicar el cambio.
	DeleteFailed
)

// DeleteResult resultado tipado de una eliminación. Reemplaza el retorno
// bool-o-string de la capa de presentación: el llamador discrimina por
// Outcome en lugar de inspeccionar tipos.
type DeleteResult struct {
	Outcome DeleteOutcome
	Reason  string // solo con DeleteBlocked / DeleteFailed
}

// Deleted resultado exitoso.
func Deleted() DeleteResult { return DeleteResult{Outcome: DeleteOK} }

// NotFound el registro no existe o ya estaba eliminado.
func NotFound() DeleteResult { return DeleteResult{Outcome: DeleteNotFound} }

// BlockedBy eliminación bloqueada por dependencias, con el motivo legible.
func BlockedBy(format string, args ...any) DeleteResult {
	return DeleteResult{Outcome: DeleteBlocked, Reason: fmt.Sprintf(format, args...)}
}

// Failed fallo de almacenamiento.
func Failed(reason string) DeleteResult {
	return DeleteResult{Outcome: DeleteFailed, Reason: reason}
}

// OK indica si la eliminación se aplicó.
func (r DeleteResult) OK() bool { return r.Outcome == DeleteOK }

// BulkDeleteResult resultado de una eliminación en lote. Cada id se procesa
// de forma independiente; un fallo no aborta el lote.
type BulkDeleteResult struct {
	Successful []any
	Failed     []any
}
