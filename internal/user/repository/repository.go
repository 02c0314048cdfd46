package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/yuizumi/chatspace/internal/common/db"
	commonerrors "github.com/yuizumi/chatspace/internal/common/errors"
	"github.com/yuizumi/chatspace/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	ListByLastSeen(ctx context.Context) ([]domain.User, error)
	TouchLastSeen(ctx context.Context, id domain.ID, now time.Time) (domain.User, error)

	// WithQuerier rebinds the repository to q, typically a transaction.
	WithQuerier(q db.Querier) Repository
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

func (r *PgRepository) WithQuerier(q db.Querier) Repository {
	return &PgRepository{q: q}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO users (id, name, created_at, last_seen) VALUES ($1, $2, $3, $4)`,
		string(user.ID),
		user.Name,
		user.CreatedAt,
		user.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	row := r.q.QueryRow(
		ctx,
		`SELECT id, name, created_at, last_seen FROM users WHERE id = $1`,
		string(id),
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.CreatedAt, &user.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, commonerrors.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to find user by id: %w", err)
	}

	return user, nil
}

func (r *PgRepository) ListByLastSeen(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.Query(
		ctx,
		`SELECT id, name, created_at, last_seen
		 FROM users
		 ORDER BY last_seen DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt, &u.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return users, nil
}

func (r *PgRepository) TouchLastSeen(ctx context.Context, id domain.ID, now time.Time) (domain.User, error) {
	row := r.q.QueryRow(
		ctx,
		`UPDATE users
		 SET last_seen = GREATEST(last_seen, $2)
		 WHERE id = $1
		 RETURNING id, name, created_at, last_seen`,
		string(id),
		now,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.CreatedAt, &user.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, commonerrors.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to touch last seen: %w", err)
	}

	return user, nil
}
