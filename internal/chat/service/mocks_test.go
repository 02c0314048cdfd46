package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yuizumi/chatspace/internal/common/db"
	commonerrors "github.com/yuizumi/chatspace/internal/common/errors"
	msgdomain "github.com/yuizumi/chatspace/internal/message/domain"
	msgrepo "github.com/yuizumi/chatspace/internal/message/repository"
	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
	userrepo "github.com/yuizumi/chatspace/internal/user/repository"
)

// memUserRepo behaves like the real repository against an in-memory table,
// including the monotonic last_seen update.
type memUserRepo struct {
	mu    sync.Mutex
	users map[userdomain.ID]userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[userdomain.ID]userdomain.User)}
}

func (r *memUserRepo) WithQuerier(db.Querier) userrepo.Repository { return r }

func (r *memUserRepo) Create(_ context.Context, user userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepo) ListByLastSeen(_ context.Context) ([]userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]userdomain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].LastSeen.Equal(users[j].LastSeen) {
			return users[i].LastSeen.After(users[j].LastSeen)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *memUserRepo) TouchLastSeen(_ context.Context, id userdomain.ID, now time.Time) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}
	if now.After(user.LastSeen) {
		user.LastSeen = now
	}
	r.users[id] = user
	return user, nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []msgdomain.Message
	users    *memUserRepo
}

func newMemMessageRepo(users *memUserRepo) *memMessageRepo {
	return &memMessageRepo{users: users}
}

func (r *memMessageRepo) WithQuerier(db.Querier) msgrepo.Repository { return r }

func (r *memMessageRepo) Create(_ context.Context, message msgdomain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := message
	stored.User = nil
	r.messages = append(r.messages, stored)
	return nil
}

func (r *memMessageRepo) ListByCreatedAt(ctx context.Context) ([]msgdomain.Message, error) {
	r.mu.Lock()
	messages := make([]msgdomain.Message, len(r.messages))
	copy(messages, r.messages)
	r.mu.Unlock()

	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})

	for i := range messages {
		owner, err := r.users.FindByID(ctx, messages[i].UserID)
		if err != nil {
			return nil, err
		}
		messages[i].User = &owner
	}
	return messages, nil
}

func (r *memMessageRepo) ListByUserID(_ context.Context, userID userdomain.ID) ([]msgdomain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []msgdomain.Message
	for _, m := range r.messages {
		if m.UserID == userID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// memTxManager runs the function directly; the in-memory repos ignore the
// querier rebinding.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, fn func(context.Context, db.Querier) error) error {
	return fn(ctx, nil)
}

func testDanglingMessage() msgdomain.Message {
	return msgdomain.Message{
		ID:        "msg-dangling",
		Content:   "orphaned",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UserID:    "ghost",
	}
}

// seqIDGenerator hands out id-1, id-2, ... for deterministic assertions.
type seqIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}
