package domain

import "time"

// AuditInfo resume los timestamps de auditoría de un registro.
// Un registro está activo si y solo si DeletedAt es nil.
type AuditInfo struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsActive indica si el registro sigue vigente.
func (a AuditInfo) IsActive() bool { return a.DeletedAt == nil }

// IsDeleted indica si el registro fue marcado como eliminado.
func (a AuditInfo) IsDeleted() bool { return a.DeletedAt != nil }
