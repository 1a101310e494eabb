package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

const originalCitationIndex = "scripture_readings_original_citation_idx"

const readingDetailSelect = `
	SELECT
		r.id,
		r.service_id,
		r.role,
		r.reader_id,
		r.book,
		r.start_chapter,
		r.start_verse,
		r.end_chapter,
		r.end_verse,
		r.is_repeat,
		r.original_reading_id,
		r.created_at,
		r.updated_at,
		s.date,
		u.full_name
	FROM scripture_readings r
	JOIN services s ON s.id = r.service_id
	JOIN users u ON u.id = r.reader_id
`

func scanReadingDetail(row rowScanner) (*domain.ReadingDetail, error) {
	d := &domain.ReadingDetail{}
	var originalID sql.NullInt64

	dst := []any{
		&d.ID,
		&d.ServiceID,
		&d.Role,
		&d.ReaderID,
		&d.Book,
		&d.StartChapter,
		&d.StartVerse,
		&d.EndChapter,
		&d.EndVerse,
		&d.IsRepeat,
		&originalID,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ServiceDate,
		&d.ReaderName,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	d.OriginalReadingID = nullableID(originalID)

	return d, nil
}

func (r *Repository) queryReadingDetails(ctx context.Context, query string, args ...any) ([]*domain.ReadingDetail, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]*domain.ReadingDetail, 0)
	for rows.Next() {
		d, err := scanReadingDetail(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}

func (r *Repository) FindOriginalReading(ctx context.Context, c domain.Citation) (*domain.ReadingDetail, error) {
	query := readingDetailSelect + `
		WHERE NOT r.is_repeat
			AND r.book = $1
			AND r.start_chapter = $2
			AND r.start_verse = $3
			AND r.end_chapter = $4
			AND r.end_verse = $5
		LIMIT 1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{c.Book, c.StartChapter, c.StartVerse, c.EndChapter, c.EndVerse}
	return scanReadingDetail(r.dbpool.QueryRowContext(ctx, query, args...))
}

func (r *Repository) GetReading(ctx context.Context, id int64) (*domain.ReadingDetail, error) {
	query := readingDetailSelect + ` WHERE r.id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanReadingDetail(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetReadingsByService(ctx context.Context, serviceID int64) ([]*domain.ReadingDetail, error) {
	query := readingDetailSelect + `
		WHERE r.service_id = $1
		ORDER BY r.role DESC
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.queryReadingDetails(ctx, query, serviceID)
}

// ListReadings devuelve una página del historial, del culto más reciente al más antiguo, y el total
// de lecturas que cumplen el filtro.
func (r *Repository) ListReadings(ctx context.Context, filter domain.ReadingFilter) ([]*domain.ReadingDetail, int, error) {
	where := ` WHERE ($1::text = '' OR lower(r.book) = lower($1::text))`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var total int
	countQuery := `SELECT count(*) FROM scripture_readings r` + where
	if err := r.dbpool.QueryRowContext(ctx, countQuery, filter.Book).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := readingDetailSelect + where + `
		ORDER BY s.date DESC, r.id DESC
		OFFSET $2 LIMIT $3
	`
	readings, err := r.queryReadingDetails(ctx, query, filter.Book, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	return readings, total, nil
}

// UpsertReading escribe la lectura del par (culto, rol). Si la fila sustituida era la original de
// otras lecturas y su cita cambia, la repetida más antigua pasa a ser la original.
func (r *Repository) UpsertReading(ctx context.Context, reading *domain.ScriptureReading) error {
	err := r.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var (
			prevID       int64
			prevRepeat   bool
			prevCitation domain.Citation
		)
		selectQuery := `
			SELECT id, is_repeat, book, start_chapter, start_verse, end_chapter, end_verse
			FROM scripture_readings
			WHERE service_id = $1 AND role = $2
			FOR UPDATE
		`
		prevDst := []any{
			&prevID,
			&prevRepeat,
			&prevCitation.Book,
			&prevCitation.StartChapter,
			&prevCitation.StartVerse,
			&prevCitation.EndChapter,
			&prevCitation.EndVerse,
		}
		err := tx.QueryRowContext(ctx, selectQuery, reading.ServiceID, reading.Role).Scan(prevDst...)
		hadPrevious := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		upsertQuery := `
			INSERT INTO scripture_readings (
				service_id,
				role,
				reader_id,
				book,
				start_chapter,
				start_verse,
				end_chapter,
				end_verse,
				is_repeat,
				original_reading_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (service_id, role) DO UPDATE SET
				reader_id = EXCLUDED.reader_id,
				book = EXCLUDED.book,
				start_chapter = EXCLUDED.start_chapter,
				start_verse = EXCLUDED.start_verse,
				end_chapter = EXCLUDED.end_chapter,
				end_verse = EXCLUDED.end_verse,
				is_repeat = EXCLUDED.is_repeat,
				original_reading_id = EXCLUDED.original_reading_id,
				updated_at = now()
			RETURNING id, created_at, updated_at
		`
		args := []any{
			reading.ServiceID,
			reading.Role,
			reading.ReaderID,
			reading.Book,
			reading.StartChapter,
			reading.StartVerse,
			reading.EndChapter,
			reading.EndVerse,
			reading.IsRepeat,
			reading.OriginalReadingID,
		}
		dst := []any{&reading.ID, &reading.CreatedAt, &reading.UpdatedAt}
		if err := tx.QueryRowContext(ctx, upsertQuery, args...).Scan(dst...); err != nil {
			return err
		}

		if hadPrevious && !prevRepeat && (prevCitation != reading.Citation || reading.IsRepeat) {
			return promoteRepeats(ctx, tx, prevID)
		}
		return nil
	})
	if ConstraintViolated(err, originalCitationIndex) {
		return domain.ErrDuplicateCitation
	}

	return err
}

// DeleteReading borra la lectura. Si era original, su repetida más antigua ocupa su lugar.
func (r *Repository) DeleteReading(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var isRepeat bool
		if err := tx.QueryRowContext(ctx, `SELECT is_repeat FROM scripture_readings WHERE id = $1 FOR UPDATE`, id).Scan(&isRepeat); err != nil {
			return err
		}

		if !isRepeat {
			// fuera del índice de originales para que la heredera pueda ocupar la cita
			if _, err := tx.ExecContext(ctx, `UPDATE scripture_readings SET is_repeat = true WHERE id = $1`, id); err != nil {
				return err
			}
			if err := promoteRepeats(ctx, tx, id); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM scripture_readings WHERE id = $1`, id)
		return err
	})
}

// promoteRepeats convierte en original la repetida de oldID con el culto más antiguo y apunta a ella
// el resto de repetidas.
func promoteRepeats(ctx context.Context, tx *sql.Tx, oldID int64) error {
	heirQuery := `
		SELECT r.id
		FROM scripture_readings r
		JOIN services s ON s.id = r.service_id
		WHERE r.original_reading_id = $1
		ORDER BY s.date, r.id
		LIMIT 1
	`

	var heirID int64
	err := tx.QueryRowContext(ctx, heirQuery, oldID).Scan(&heirID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	promote := `
		UPDATE scripture_readings
		SET is_repeat = false, original_reading_id = NULL, updated_at = now()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, promote, heirID); err != nil {
		return err
	}

	repoint := `
		UPDATE scripture_readings
		SET original_reading_id = $1, updated_at = now()
		WHERE original_reading_id = $2
	`
	_, err = tx.ExecContext(ctx, repoint, heirID, oldID)
	return err
}
