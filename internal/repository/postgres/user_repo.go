package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"seminarrsvp/internal/domain"
)

const userColumns = `id, email, name, role, phone_number, password_hash, salt, registered_seminars, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PhoneNumber, &u.PasswordHash, &u.Salt,
		pq.Array(&u.RegisteredSeminars), &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, name, role, phone_number, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Email, u.Name, string(u.Role), u.PhoneNumber, u.PasswordHash, u.Salt, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	if u.RegisteredSeminars == nil {
		u.RegisteredSeminars = []string{}
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, domain.ErrUserNotFound
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns every user, or only those with role when role is non-empty.
func (r *userRepository) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if role == "" {
		return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	}
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at`, string(role))
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*domain.User{}, nil
	}
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[]) ORDER BY name`, pq.Array(valid))
}

func (r *userRepository) ListByEmails(ctx context.Context, emails []string, role domain.Role) ([]*domain.User, error) {
	if len(emails) == 0 {
		return []*domain.User{}, nil
	}
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE email = ANY($1) AND role = $2 ORDER BY email`, pq.Array(emails), string(role))
}

func (r *userRepository) list(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddRegisteredSeminar is idempotent.
func (r *userRepository) AddRegisteredSeminar(ctx context.Context, userID, seminarID string) error {
	if !validID(userID) {
		return domain.ErrUserNotFound
	}
	query := `
		UPDATE users SET
			registered_seminars = CASE
				WHEN $2::text = ANY(registered_seminars) THEN registered_seminars
				ELSE array_append(registered_seminars, $2::text)
			END,
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, userID, seminarID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RemoveRegisteredSeminar drops seminarID from every user that lists it.
func (r *userRepository) RemoveRegisteredSeminar(ctx context.Context, seminarID string) error {
	query := `
		UPDATE users SET registered_seminars = array_remove(registered_seminars, $1::text), updated_at = NOW()
		WHERE $1::text = ANY(registered_seminars)
	`
	_, err := r.DB.ExecContext(ctx, query, seminarID)
	return err
}
