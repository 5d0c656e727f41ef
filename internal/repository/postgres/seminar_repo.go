package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"seminarrsvp/internal/domain"
)

const seminarColumns = `id, title, seminar_date, seminar_time, description, capacity, price, agent_id,
		invitees, attendees, confirmed_attendees, qr_code, created_at, updated_at`

type seminarRepository struct {
	DB *sql.DB
}

func NewSeminarRepository(db *sql.DB) domain.SeminarRepository {
	return &seminarRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeminar(row rowScanner) (*domain.Seminar, error) {
	s := &domain.Seminar{}
	var qr sql.NullString
	err := row.Scan(
		&s.ID, &s.Title, &s.Date, &s.Time, &s.Description, &s.Capacity, &s.Price, &s.AgentID,
		pq.Array(&s.Invitees), pq.Array(&s.Attendees), pq.Array(&s.ConfirmedAttendees),
		&qr, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if qr.Valid {
		s.QRCode = &qr.String
	}
	return s, nil
}

func (r *seminarRepository) Create(ctx context.Context, s *domain.Seminar) error {
	query := `
		INSERT INTO seminars (title, seminar_date, seminar_time, description, capacity, price, agent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		s.Title, s.Date, s.Time, s.Description, s.Capacity, s.Price, s.AgentID, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func (r *seminarRepository) GetByID(ctx context.Context, id string) (*domain.Seminar, error) {
	if !validID(id) {
		return nil, domain.ErrSeminarNotFound
	}
	query := `SELECT ` + seminarColumns + ` FROM seminars WHERE id = $1`
	s, err := scanSeminar(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSeminarNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *seminarRepository) List(ctx context.Context) ([]*domain.Seminar, error) {
	return r.list(ctx, `SELECT `+seminarColumns+` FROM seminars ORDER BY seminar_date, seminar_time, created_at`)
}

func (r *seminarRepository) ListByAgent(ctx context.Context, agentID string) ([]*domain.Seminar, error) {
	return r.list(ctx, `SELECT `+seminarColumns+` FROM seminars WHERE agent_id = $1 ORDER BY seminar_date, seminar_time, created_at`, agentID)
}

func (r *seminarRepository) ListByInvitee(ctx context.Context, userID string) ([]*domain.Seminar, error) {
	return r.list(ctx, `SELECT `+seminarColumns+` FROM seminars WHERE $1 = ANY(invitees) ORDER BY seminar_date, seminar_time, created_at`, userID)
}

func (r *seminarRepository) ListByAttendee(ctx context.Context, userID string) ([]*domain.Seminar, error) {
	return r.list(ctx, `SELECT `+seminarColumns+` FROM seminars WHERE $1 = ANY(attendees) ORDER BY seminar_date, seminar_time, created_at`, userID)
}

func (r *seminarRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Seminar, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seminars := make([]*domain.Seminar, 0)
	for rows.Next() {
		s, err := scanSeminar(rows)
		if err != nil {
			return nil, err
		}
		seminars = append(seminars, s)
	}
	return seminars, rows.Err()
}

// Update applies the set fields of patch. A capacity change only matches while the
// current attendee count fits; otherwise ErrConditionNotMet is returned.
func (r *seminarRepository) Update(ctx context.Context, id string, patch domain.SeminarPatch) (*domain.Seminar, error) {
	if !validID(id) {
		return nil, domain.ErrSeminarNotFound
	}
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	set := func(column string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, v)
		n++
	}
	if patch.Title != nil {
		set("title", strings.TrimSpace(*patch.Title))
	}
	if patch.Date != nil {
		set("seminar_date", strings.TrimSpace(*patch.Date))
	}
	if patch.Time != nil {
		set("seminar_time", strings.TrimSpace(*patch.Time))
	}
	if patch.Description != nil {
		set("description", strings.TrimSpace(*patch.Description))
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.ClearQRCode {
		setClauses = append(setClauses, "qr_code = NULL")
	} else if patch.QRCode != nil {
		set("qr_code", *patch.QRCode)
	}
	where := fmt.Sprintf("id = $%d", n)
	args = append(args, id)
	n++
	if patch.Capacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", n))
		where += fmt.Sprintf(" AND cardinality(attendees) <= $%d", n)
		args = append(args, *patch.Capacity)
	}
	query := fmt.Sprintf(`
		UPDATE seminars SET %s
		WHERE %s
		RETURNING %s
	`, strings.Join(setClauses, ", "), where, seminarColumns)
	s, err := scanSeminar(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if patch.Capacity != nil {
				return nil, domain.ErrConditionNotMet
			}
			return nil, domain.ErrSeminarNotFound
		}
		return nil, err
	}
	return s, nil
}

// AddInvitees unions userIDs into invitees, skipping users who already attend.
func (r *seminarRepository) AddInvitees(ctx context.Context, id string, userIDs []string) (*domain.Seminar, error) {
	if !validID(id) {
		return nil, domain.ErrSeminarNotFound
	}
	query := `
		UPDATE seminars SET
			invitees = ARRAY(
				SELECT DISTINCT u FROM unnest(invitees || $2::text[]) AS u
				WHERE NOT (u = ANY(attendees))
				ORDER BY u
			),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + seminarColumns
	s, err := scanSeminar(r.DB.QueryRowContext(ctx, query, id, pq.Array(userIDs)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSeminarNotFound
		}
		return nil, err
	}
	return s, nil
}

// AcceptInvitation moves userID from invitees to attendees and confirmed attendees in one
// statement, guarded by invitation, non-membership and remaining capacity.
func (r *seminarRepository) AcceptInvitation(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	query := `
		UPDATE seminars SET
			attendees = array_append(attendees, $2::text),
			confirmed_attendees = array_append(array_remove(confirmed_attendees, $2::text), $2::text),
			invitees = array_remove(invitees, $2::text),
			updated_at = NOW()
		WHERE id = $1
			AND $2::text = ANY(invitees)
			AND NOT ($2::text = ANY(attendees))
			AND cardinality(attendees) < capacity
		RETURNING ` + seminarColumns
	return r.conditionalUpdate(ctx, query, id, userID)
}

// DeclineInvitation removes a pending invitation.
func (r *seminarRepository) DeclineInvitation(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	query := `
		UPDATE seminars SET
			invitees = array_remove(invitees, $2::text),
			updated_at = NOW()
		WHERE id = $1 AND $2::text = ANY(invitees)
		RETURNING ` + seminarColumns
	return r.conditionalUpdate(ctx, query, id, userID)
}

// Register adds userID to attendees. Seminars with pending invitations only admit invitees.
func (r *seminarRepository) Register(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	query := `
		UPDATE seminars SET
			attendees = array_append(attendees, $2::text),
			invitees = array_remove(invitees, $2::text),
			updated_at = NOW()
		WHERE id = $1
			AND NOT ($2::text = ANY(attendees))
			AND cardinality(attendees) < capacity
			AND (cardinality(invitees) = 0 OR $2::text = ANY(invitees))
		RETURNING ` + seminarColumns
	return r.conditionalUpdate(ctx, query, id, userID)
}

func (r *seminarRepository) conditionalUpdate(ctx context.Context, query, id, userID string) (*domain.Seminar, error) {
	if !validID(id) {
		return nil, domain.ErrSeminarNotFound
	}
	s, err := scanSeminar(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConditionNotMet
		}
		return nil, err
	}
	return s, nil
}

func (r *seminarRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrSeminarNotFound
	}
	result, err := r.DB.ExecContext(ctx, `DELETE FROM seminars WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSeminarNotFound
	}
	return nil
}
