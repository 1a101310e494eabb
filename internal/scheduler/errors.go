package scheduler

import "errors"

var (
	ErrInvalidMonth      = errors.New("mes inválido")
	ErrInvalidYear       = errors.New("año inválido")
	ErrInvalidTemplate   = errors.New("plantilla semanal inválida")
	ErrInvalidRole       = errors.New("rol inválido")
	ErrServiceNotFound   = errors.New("el culto no existe")
	ErrUserNotFound      = errors.New("el hermano no existe")
	ErrInactiveUser      = errors.New("el hermano está inactivo")
	ErrNotPulpitEligible = errors.New("el hermano no está habilitado para el púlpito")
	ErrConcurrentUpdate  = errors.New("el culto fue modificado por otra persona, vuelva a intentarlo")
)
