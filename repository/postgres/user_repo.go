package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation of
// UserRepository. Uniqueness of email, username and (provider, provider_id)
// is enforced by the schema and surfaced as CONFLICT.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.fetch(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.fetch(ctx, query, email)
}

func (r *userRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	const query = `
	SELECT u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at
	FROM users u
	JOIN user_identities i ON i.user_id = u.id
	WHERE i.provider = $1 AND i.provider_id = $2
	`
	return r.fetch(ctx, query, provider, providerID)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertUser = `
	INSERT INTO users (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, insertUser,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		return err
	}

	const insertIdentity = `
	INSERT INTO user_identities (provider, provider_id, user_id)
	VALUES ($1, $2, $3)
	`
	for _, id := range user.Identities {
		if _, err := tx.Exec(ctx, insertIdentity, id.Provider, id.ProviderID, user.ID); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateIdentity
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE users
	SET username = $2,
		email = $3,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query, user.ID, user.Username, user.Email).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrCodeConflict, "username or email already in use", err)
		}
		return err
	}
	return nil
}

func (r *userRepository) LinkProvider(ctx context.Context, userID, provider, providerID string) error {
	const query = `
	INSERT INTO user_identities (provider, provider_id, user_id)
	VALUES ($1, $2, $3)
	`
	if _, err := r.pool.Exec(ctx, query, provider, providerID, userID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		return err
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	const query = `
	SELECT ` + userColumns + `
	FROM users
	WHERE username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
	ORDER BY username
	LIMIT $2
	`
	limit := filter.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, query, filter.Query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) fetch(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if err := r.loadIdentities(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) loadIdentities(ctx context.Context, user *domain.User) error {
	const query = `
	SELECT provider, provider_id
	FROM user_identities
	WHERE user_id = $1
	ORDER BY provider
	`
	rows, err := r.pool.Query(ctx, query, user.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var identity domain.ProviderIdentity
		if err := rows.Scan(&identity.Provider, &identity.ProviderID); err != nil {
			return err
		}
		user.Identities = append(user.Identities, identity)
	}
	return rows.Err()
}
