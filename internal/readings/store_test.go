package readings

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

// memStore reproduce las restricciones de la base de datos: unicidad por (culto, rol) y un índice
// único parcial sobre la cita de las lecturas originales.
type memStore struct {
	services map[int64]*domain.Service
	users    map[int64]*domain.User
	readings map[int64]*domain.ScriptureReading
	nextID   int64

	// hideOriginals hace que FindOriginalReading no vea nada, como si la otra escritura llegara tarde
	hideOriginals int
}

func newMemStore() *memStore {
	m := &memStore{
		services: make(map[int64]*domain.Service),
		users:    make(map[int64]*domain.User),
		readings: make(map[int64]*domain.ScriptureReading),
	}
	for i, d := range []string{"2025-01-05", "2025-01-08", "2025-01-12"} {
		id := int64(i + 1)
		day, _ := calendar.ParseDate(d)
		m.services[id] = &domain.Service{ID: id, Date: day, ServiceTypeID: 1, StartTime: "19:00:00"}
	}
	m.users[10] = &domain.User{ID: 10, FullName: "Ana Ruiz", IsActive: true}
	m.users[11] = &domain.User{ID: 11, FullName: "Luis Gil", IsActive: true}
	return m
}

func (m *memStore) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return svc, nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *memStore) detail(r *domain.ScriptureReading) *domain.ReadingDetail {
	return &domain.ReadingDetail{
		ScriptureReading: *r,
		ServiceDate:      m.services[r.ServiceID].Date,
		ReaderName:       m.users[r.ReaderID].FullName,
	}
}

func (m *memStore) FindOriginalReading(ctx context.Context, c domain.Citation) (*domain.ReadingDetail, error) {
	if m.hideOriginals > 0 {
		m.hideOriginals--
		return nil, sql.ErrNoRows
	}
	for _, r := range m.readings {
		if !r.IsRepeat && r.Citation == c {
			return m.detail(r), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) UpsertReading(ctx context.Context, reading *domain.ScriptureReading) error {
	var slot *domain.ScriptureReading
	for _, r := range m.readings {
		if r.ServiceID == reading.ServiceID && r.Role == reading.Role {
			slot = r
		}
	}

	if !reading.IsRepeat {
		for _, r := range m.readings {
			if r != slot && !r.IsRepeat && r.Citation == reading.Citation {
				return domain.ErrDuplicateCitation
			}
		}
	}

	if slot != nil {
		reading.ID = slot.ID
	} else {
		m.nextID++
		reading.ID = m.nextID
	}
	cp := *reading
	m.readings[reading.ID] = &cp
	return nil
}

func (m *memStore) GetReading(ctx context.Context, id int64) (*domain.ReadingDetail, error) {
	r, ok := m.readings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m.detail(r), nil
}

func (m *memStore) GetReadingsByService(ctx context.Context, serviceID int64) ([]*domain.ReadingDetail, error) {
	out := make([]*domain.ReadingDetail, 0)
	for _, r := range m.all() {
		if r.ServiceID == serviceID {
			out = append(out, m.detail(r))
		}
	}
	return out, nil
}

func (m *memStore) ListReadings(ctx context.Context, filter domain.ReadingFilter) ([]*domain.ReadingDetail, int, error) {
	var matched []*domain.ReadingDetail
	for _, r := range m.all() {
		if filter.Book == "" || strings.EqualFold(r.Book, filter.Book) {
			matched = append(matched, m.detail(r))
		}
	}
	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (m *memStore) DeleteReading(ctx context.Context, id int64) error {
	deleted, ok := m.readings[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(m.readings, id)
	if deleted.IsRepeat {
		return nil
	}

	var heir *domain.ScriptureReading
	for _, r := range m.all() {
		if r.OriginalReadingID != nil && *r.OriginalReadingID == id {
			if heir == nil || m.services[r.ServiceID].Date.Before(m.services[heir.ServiceID].Date) {
				heir = r
			}
		}
	}
	if heir == nil {
		return nil
	}
	heir.IsRepeat = false
	heir.OriginalReadingID = nil
	for _, r := range m.readings {
		if r.OriginalReadingID != nil && *r.OriginalReadingID == id {
			newID := heir.ID
			r.OriginalReadingID = &newID
		}
	}
	return nil
}

func (m *memStore) all() []*domain.ScriptureReading {
	out := make([]*domain.ScriptureReading, 0, len(m.readings))
	for _, r := range m.readings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) count() int {
	return len(m.readings)
}

type recordingViews struct {
	services []int64
}

func (v *recordingViews) InvalidateService(ctx context.Context, serviceID int64) error {
	v.services = append(v.services, serviceID)
	return nil
}

type recordingNotifier struct {
	sent []int64
}

func (n *recordingNotifier) ReadingRecorded(ctx context.Context, reading *domain.ScriptureReading, svc *domain.Service, reader *domain.User) error {
	n.sent = append(n.sent, reader.ID)
	return nil
}
