package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/user-management/internal/domain"
)

// UserRepository defines persistence access for managed users. The schema's
// unique constraints on username and email are the source of truth for
// uniqueness; the exists checks here are advisory pre-write queries.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByStatus(ctx context.Context, status domain.UserStatus) ([]domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

const userColumns = `id, username, email, password_hash, first_name, last_name, phone_number, status, role, created_at, updated_at`

// Lists are ordered newest-first; id breaks created_at ties so repeated
// calls return a stable order.
const userListOrder = ` ORDER BY created_at DESC, id DESC`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, password_hash, first_name, last_name, phone_number, status, role)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Status,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users` + userListOrder
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) ListByStatus(ctx context.Context, status domain.UserStatus) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE status=$1` + userListOrder
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, email=$2, password_hash=$3, first_name=$4, last_name=$5,
            phone_number=$6, status=$7, role=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`

	if err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.Status,
		user.Role,
		user.ID,
	).Scan(&user.UpdatedAt); err != nil {
		// pgx.ErrNoRows here means the row vanished under us (raced delete).
		return err
	}
	return nil
}

// Delete removes the row if present. Deleting an absent id is a no-op so
// the operation stays idempotent under concurrent deletes.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM users`
	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.Status,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
