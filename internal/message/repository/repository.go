package repository

import (
	"context"
	"fmt"

	"github.com/yuizumi/chatspace/internal/common/db"
	"github.com/yuizumi/chatspace/internal/message/domain"
	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByCreatedAt(ctx context.Context) ([]domain.Message, error)
	ListByUserID(ctx context.Context, userID userdomain.ID) ([]domain.Message, error)

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

func (r *PgRepository) Create(ctx context.Context, message domain.Message) error {
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO messages (id, content, created_at, user_id) VALUES ($1, $2, $3, $4)`,
		string(message.ID),
		message.Content,
		message.CreatedAt,
		string(message.UserID),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByCreatedAt returns every message oldest-first with its owner joined in.
func (r *PgRepository) ListByCreatedAt(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.q.Query(
		ctx,
		`SELECT m.id, m.content, m.created_at, m.user_id,
		        u.id, u.name, u.created_at, u.last_seen
		 FROM messages m
		 JOIN users u ON u.id = m.user_id
		 ORDER BY m.created_at ASC, m.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var u userdomain.User
		if err := rows.Scan(
			&m.ID, &m.Content, &m.CreatedAt, &m.UserID,
			&u.ID, &u.Name, &u.CreatedAt, &u.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.User = &u
		messages = append(messages, m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return messages, nil
}

func (r *PgRepository) ListByUserID(ctx context.Context, userID userdomain.ID) ([]domain.Message, error) {
	rows, err := r.q.Query(
		ctx,
		`SELECT id, content, created_at, user_id
		 FROM messages
		 WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		string(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages by user: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.CreatedAt, &m.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return messages, nil
}
