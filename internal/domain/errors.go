package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrRunInProgress   = errors.New("ya existe una corrida en curso para la fecha")
	ErrEmptyInput      = errors.New("sin datos de entrada para la fecha")
	ErrNoReplenishment = errors.New("no se generaron registros de reposición")
	ErrInfrastructure  = errors.New("verificación de infraestructura fallida")
)
