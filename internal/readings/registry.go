// Package readings registra las lecturas bíblicas de cada culto y detecta citas repetidas.
package readings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

var (
	ErrInvalidCitation  = errors.New("cita bíblica inválida")
	ErrInvalidRole      = errors.New("rol de lectura inválido")
	ErrServiceNotFound  = errors.New("el culto no existe")
	ErrReaderNotFound   = errors.New("el lector no existe")
	ErrReadingNotFound  = errors.New("la lectura no existe")
	errStillConflicting = errors.New("la cita sigue en conflicto")
)

type Store interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	// FindOriginalReading busca la lectura no repetida con la misma cita; sql.ErrNoRows si no hay.
	FindOriginalReading(ctx context.Context, c domain.Citation) (*domain.ReadingDetail, error)
	// UpsertReading inserta o reemplaza la lectura del par (culto, rol). Devuelve
	// domain.ErrDuplicateCitation si la escritura rompe la unicidad de las citas originales.
	UpsertReading(ctx context.Context, r *domain.ScriptureReading) error
	GetReading(ctx context.Context, id int64) (*domain.ReadingDetail, error)
	GetReadingsByService(ctx context.Context, serviceID int64) ([]*domain.ReadingDetail, error)
	ListReadings(ctx context.Context, filter domain.ReadingFilter) ([]*domain.ReadingDetail, int, error)
	DeleteReading(ctx context.Context, id int64) error
}

type Invalidator interface {
	InvalidateService(ctx context.Context, serviceID int64) error
}

// Notifier avisa al lector de que se le ha registrado una lectura.
type Notifier interface {
	ReadingRecorded(ctx context.Context, reading *domain.ScriptureReading, svc *domain.Service, reader *domain.User) error
}

type Registry struct {
	store    Store
	views    Invalidator
	notifier Notifier
}

func NewRegistry(store Store, views Invalidator, notifier Notifier) *Registry {
	return &Registry{
		store:    store,
		views:    views,
		notifier: notifier,
	}
}

// RecordRequest llega ya tipado desde el handler. EndChapter y EndVerse son opcionales: si faltan,
// la lectura es de un solo versículo.
type RecordRequest struct {
	ServiceID    int64
	Role         domain.ReadingRole
	Book         string
	StartChapter int32
	StartVerse   int32
	EndChapter   *int32
	EndVerse     *int32
	ReaderID     int64
}

func (r RecordRequest) Citation() domain.Citation {
	c := domain.Citation{
		Book:         strings.TrimSpace(r.Book),
		StartChapter: r.StartChapter,
		StartVerse:   r.StartVerse,
		EndChapter:   r.StartChapter,
		EndVerse:     r.StartVerse,
	}
	if r.EndChapter != nil {
		c.EndChapter = *r.EndChapter
	}
	if r.EndVerse != nil {
		c.EndVerse = *r.EndVerse
	}
	return c
}

func ValidateCitation(c domain.Citation) error {
	if c.Book == "" {
		return fmt.Errorf("%w: falta el libro", ErrInvalidCitation)
	}
	if c.StartChapter < 1 || c.StartVerse < 1 || c.EndChapter < 1 || c.EndVerse < 1 {
		return fmt.Errorf("%w: capítulos y versículos empiezan en 1", ErrInvalidCitation)
	}
	if c.EndChapter < c.StartChapter || (c.EndChapter == c.StartChapter && c.EndVerse < c.StartVerse) {
		return fmt.Errorf("%w: el final es anterior al inicio", ErrInvalidCitation)
	}
	return nil
}

type Status string

const (
	StatusSaved                Status = "saved"
	StatusRequiresConfirmation Status = "requires_confirmation"
)

// Conflict describe la lectura original que ya usó la misma cita.
type Conflict struct {
	OriginalReadingID int64              `json:"originalReadingID"`
	ServiceID         int64              `json:"serviceID"`
	ServiceDate       time.Time          `json:"serviceDate"`
	Role              domain.ReadingRole `json:"role"`
	ReaderID          int64              `json:"readerID"`
	ReaderName        string             `json:"readerName"`
	Citation          string             `json:"citation"`
}

type Outcome struct {
	Status   Status                   `json:"status"`
	Reading  *domain.ScriptureReading `json:"reading,omitempty"`
	Conflict *Conflict                `json:"conflict,omitempty"`
}

func (o *Outcome) RequiresConfirmation() bool {
	return o.Status == StatusRequiresConfirmation
}

type target struct {
	citation domain.Citation
	service  *domain.Service
	reader   *domain.User
}

// Record guarda la lectura del par (culto, rol). Si la misma cita ya se leyó como original en otro
// culto o en otro rol, no escribe nada y devuelve StatusRequiresConfirmation con los datos de esa lectura.
func (r *Registry) Record(ctx context.Context, req RecordRequest) (*Outcome, error) {
	t, err := r.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	original, err := r.findOriginal(ctx, t.citation)
	if err != nil {
		return nil, err
	}
	if original != nil && !sameSlot(original, req) {
		return conflictOutcome(original), nil
	}

	reading := newReading(req, t.citation)
	if err := r.store.UpsertReading(ctx, reading); err != nil {
		if !errors.Is(err, domain.ErrDuplicateCitation) {
			return nil, err
		}
		// otra petición guardó la misma cita entre la consulta y la escritura
		original, ferr := r.findOriginal(ctx, t.citation)
		if ferr != nil {
			return nil, ferr
		}
		if original == nil {
			return nil, err
		}
		return conflictOutcome(original), nil
	}

	r.afterSave(ctx, reading, t)
	return &Outcome{Status: StatusSaved, Reading: reading}, nil
}

// ConfirmRepeat guarda la lectura marcándola como repetida de la original. Si la original ya no
// existe, o es la propia lectura de este par, se guarda como original.
func (r *Registry) ConfirmRepeat(ctx context.Context, req RecordRequest) (*Outcome, error) {
	t, err := r.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		original, err := r.findOriginal(ctx, t.citation)
		if err != nil {
			return nil, err
		}

		reading := newReading(req, t.citation)
		if original != nil && !sameSlot(original, req) {
			id := original.ID
			reading.IsRepeat = true
			reading.OriginalReadingID = &id
		}

		err = r.store.UpsertReading(ctx, reading)
		if errors.Is(err, domain.ErrDuplicateCitation) {
			// apareció una original entre medias: se vuelve a buscar y se guarda como repetida
			continue
		}
		if err != nil {
			return nil, err
		}

		r.afterSave(ctx, reading, t)
		return &Outcome{Status: StatusSaved, Reading: reading}, nil
	}

	return nil, errStillConflicting
}

func (r *Registry) Get(ctx context.Context, id int64) (*domain.ReadingDetail, error) {
	reading, err := r.store.GetReading(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReadingNotFound
		}
		return nil, err
	}
	return reading, nil
}

func (r *Registry) ListForService(ctx context.Context, serviceID int64) ([]*domain.ReadingDetail, error) {
	if _, err := r.getService(ctx, serviceID); err != nil {
		return nil, err
	}
	return r.store.GetReadingsByService(ctx, serviceID)
}

// Delete borra una lectura. Si era la original de otras repetidas, la persistencia promueve la
// repetida más antigua a original.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	reading, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.DeleteReading(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReadingNotFound
		}
		return err
	}

	r.invalidate(ctx, reading.ServiceID)
	return nil
}

func (r *Registry) prepare(ctx context.Context, req RecordRequest) (*target, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	c := req.Citation()
	if err := ValidateCitation(c); err != nil {
		return nil, err
	}

	svc, err := r.getService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	reader, err := r.store.GetUserByID(ctx, req.ReaderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReaderNotFound
		}
		return nil, err
	}

	return &target{citation: c, service: svc, reader: reader}, nil
}

func (r *Registry) getService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := r.store.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

func (r *Registry) findOriginal(ctx context.Context, c domain.Citation) (*domain.ReadingDetail, error) {
	original, err := r.store.FindOriginalReading(ctx, c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return original, nil
}

func (r *Registry) afterSave(ctx context.Context, reading *domain.ScriptureReading, t *target) {
	r.invalidate(ctx, reading.ServiceID)

	if r.notifier == nil {
		return
	}
	if err := r.notifier.ReadingRecorded(ctx, reading, t.service, t.reader); err != nil {
		slog.Warn("no se pudo avisar al lector", "reading", reading.ID, "reader", t.reader.ID, "error", err)
	}
}

func (r *Registry) invalidate(ctx context.Context, serviceID int64) {
	if r.views == nil {
		return
	}
	if err := r.views.InvalidateService(ctx, serviceID); err != nil {
		slog.Warn("no se pudo invalidar la vista del culto", "service", serviceID, "error", err)
	}
}

func sameSlot(original *domain.ReadingDetail, req RecordRequest) bool {
	return original.ServiceID == req.ServiceID && original.Role == req.Role
}

func newReading(req RecordRequest, c domain.Citation) *domain.ScriptureReading {
	return &domain.ScriptureReading{
		Citation:  c,
		ServiceID: req.ServiceID,
		Role:      req.Role,
		ReaderID:  req.ReaderID,
	}
}

func conflictOutcome(original *domain.ReadingDetail) *Outcome {
	return &Outcome{
		Status: StatusRequiresConfirmation,
		Conflict: &Conflict{
			OriginalReadingID: original.ID,
			ServiceID:         original.ServiceID,
			ServiceDate:       original.ServiceDate,
			Role:              original.Role,
			ReaderID:          original.ReaderID,
			ReaderName:        original.ReaderName,
			Citation:          original.Citation.String(),
		},
	}
}
