package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("registro no encontrado")
	ErrDuplicate    = errors.New("registro duplicado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDependencias = errors.New("tiene dependencias activas")
)
