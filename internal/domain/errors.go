package domain

import "errors"

// ErrDuplicateCitation lo devuelve la persistencia cuando una lectura no repetida choca con otra
// lectura original que tiene exactamente la misma cita.
var ErrDuplicateCitation = errors.New("la cita ya fue leída en otro culto")
