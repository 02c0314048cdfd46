package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	chatservice "github.com/yuizumi/chatspace/internal/chat/service"
	"github.com/yuizumi/chatspace/internal/common/clock"
	"github.com/yuizumi/chatspace/internal/common/db"
	commonerrors "github.com/yuizumi/chatspace/internal/common/errors"
	"github.com/yuizumi/chatspace/internal/common/logger"
	msgdomain "github.com/yuizumi/chatspace/internal/message/domain"
	msgrepo "github.com/yuizumi/chatspace/internal/message/repository"
	"github.com/yuizumi/chatspace/internal/pubsub"
	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
	userrepo "github.com/yuizumi/chatspace/internal/user/repository"

	graphqlgo "github.com/graph-gophers/graphql-go"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[userdomain.ID]userdomain.User
}

func (r *fakeUserRepo) WithQuerier(db.Querier) userrepo.Repository { return r }

func (r *fakeUserRepo) Create(_ context.Context, u userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListByLastSeen(_ context.Context) ([]userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]userdomain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].LastSeen.After(users[j].LastSeen) })
	return users, nil
}

func (r *fakeUserRepo) TouchLastSeen(_ context.Context, id userdomain.ID, now time.Time) (userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}
	if now.After(u.LastSeen) {
		u.LastSeen = now
	}
	r.users[id] = u
	return u, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []msgdomain.Message
	users    *fakeUserRepo
}

func (r *fakeMessageRepo) WithQuerier(db.Querier) msgrepo.Repository { return r }

func (r *fakeMessageRepo) Create(_ context.Context, m msgdomain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.User = nil
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeMessageRepo) ListByCreatedAt(ctx context.Context) ([]msgdomain.Message, error) {
	r.mu.Lock()
	messages := make([]msgdomain.Message, len(r.messages))
	copy(messages, r.messages)
	r.mu.Unlock()

	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	for i := range messages {
		owner, err := r.users.FindByID(ctx, messages[i].UserID)
		if err != nil {
			return nil, err
		}
		messages[i].User = &owner
	}
	return messages, nil
}

func (r *fakeMessageRepo) ListByUserID(_ context.Context, userID userdomain.ID) ([]msgdomain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []msgdomain.Message
	for _, m := range r.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(context.Context, db.Querier) error) error {
	return fn(ctx, nil)
}

type counterIDs struct {
	mu sync.Mutex
	n  int
}

func (g *counterIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func setupSchema(t *testing.T) (*graphqlgo.Schema, *clock.MockClock, *pubsub.Bus) {
	t.Helper()

	users := &fakeUserRepo{users: make(map[userdomain.ID]userdomain.User)}
	messages := &fakeMessageRepo{users: users}
	mockClock := clock.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	bus := pubsub.NewBus(16)
	log, _ := logger.New("", "test", "ERROR")

	svc := chatservice.NewChatService(chatservice.ChatServiceDeps{
		Users:    users,
		Messages: messages,
		Bus:      bus,
		IDs:      &counterIDs{},
		Clock:    mockClock,
		Tx:       passthroughTx{},
		Log:      log,
	})

	schema, err := ParseSchema(NewResolver(svc, bus))
	if err != nil {
		t.Fatalf("failed to parse schema: %v", err)
	}
	return schema, mockClock, bus
}

func mustExec(t *testing.T, schema *graphqlgo.Schema, query string, out interface{}) {
	t.Helper()
	resp := schema.Exec(context.Background(), query, "", nil)
	if len(resp.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
}

func TestSchema_CreateUser(t *testing.T) {
	schema, mockClock, _ := setupSchema(t)

	var out struct {
		CreateUser struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			CreatedAt string `json:"createdAt"`
			LastSeen  string `json:"lastSeen"`
		} `json:"createUser"`
	}
	mustExec(t, schema, `mutation { createUser(name: "  Alice  ") { id name createdAt lastSeen } }`, &out)

	if out.CreateUser.Name != "Alice" {
		t.Errorf("expected trimmed name, got %q", out.CreateUser.Name)
	}
	if out.CreateUser.ID == "" {
		t.Error("expected a generated id")
	}

	wantTime := mockClock.Now().Format(time.RFC3339Nano)
	if out.CreateUser.CreatedAt != wantTime {
		t.Errorf("createdAt %q should marshal the clock time %q", out.CreateUser.CreatedAt, wantTime)
	}
	if out.CreateUser.LastSeen != out.CreateUser.CreatedAt {
		t.Errorf("lastSeen should equal createdAt on registration")
	}
}

func TestSchema_CreateUser_ValidationErrorCarriesExtensions(t *testing.T) {
	schema, _, _ := setupSchema(t)

	long := strings.Repeat("x", 51)
	resp := schema.Exec(context.Background(), fmt.Sprintf(`mutation { createUser(name: %q) { id } }`, long), "", nil)
	if len(resp.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", resp.Errors)
	}

	err := resp.Errors[0]
	if !strings.Contains(err.Message, "50") {
		t.Errorf("error message should mention the 50 character limit, got %q", err.Message)
	}
	if err.Extensions["category"] != "VALIDATION" {
		t.Errorf("expected VALIDATION category extension, got %v", err.Extensions)
	}
}

func TestSchema_UserQueryReturnsNullForUnknownID(t *testing.T) {
	schema, _, _ := setupSchema(t)

	var out struct {
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	mustExec(t, schema, `{ user(id: "non-existent-id") { id } }`, &out)

	if out.User != nil {
		t.Errorf("expected null user, got %+v", out.User)
	}
}

func TestSchema_CreateMessage_UnknownUserIsError(t *testing.T) {
	schema, _, _ := setupSchema(t)

	resp := schema.Exec(context.Background(), `mutation { createMessage(content: "hi", userId: "nope") { id } }`, "", nil)
	if len(resp.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", resp.Errors)
	}
	if resp.Errors[0].Extensions["category"] != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND category extension, got %v", resp.Errors[0].Extensions)
	}
}

func TestSchema_ConversationRoundTrip(t *testing.T) {
	schema, mockClock, _ := setupSchema(t)

	var created struct {
		CreateUser struct {
			ID string `json:"id"`
		} `json:"createUser"`
	}
	mustExec(t, schema, `mutation { createUser(name: "Alice") { id } }`, &created)
	aliceID := created.CreateUser.ID

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		mockClock.Advance(time.Second)
		mustExec(t, schema, fmt.Sprintf(
			`mutation { createMessage(content: %q, userId: %q) { id } }`, content, aliceID), nil)
	}

	var out struct {
		Messages []struct {
			Content string `json:"content"`
			User    struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"user"`
		} `json:"messages"`
	}
	mustExec(t, schema, `{ messages { content user { id name } } }`, &out)

	if len(out.Messages) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(out.Messages))
	}
	for i, content := range contents {
		if out.Messages[i].Content != content {
			t.Errorf("message %d: got %q, expected %q", i, out.Messages[i].Content, content)
		}
		if out.Messages[i].User.ID != aliceID {
			t.Errorf("message %d should belong to Alice", i)
		}
	}

	var userOut struct {
		User struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		} `json:"user"`
	}
	mustExec(t, schema, fmt.Sprintf(`{ user(id: %q) { messages { content } } }`, aliceID), &userOut)
	if len(userOut.User.Messages) != len(contents) {
		t.Errorf("expected %d per-user messages, got %d", len(contents), len(userOut.User.Messages))
	}
}

func TestSchema_MessageAddedSubscription(t *testing.T) {
	schema, _, _ := setupSchema(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads, err := schema.Subscribe(ctx, `subscription { messageAdded { content user { name } } }`, "", nil)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	var created struct {
		CreateUser struct {
			ID string `json:"id"`
		} `json:"createUser"`
	}
	mustExec(t, schema, `mutation { createUser(name: "Alice") { id } }`, &created)
	mustExec(t, schema, fmt.Sprintf(
		`mutation { createMessage(content: "hello", userId: %q) { id } }`, created.CreateUser.ID), nil)

	select {
	case payload := <-payloads:
		resp, ok := payload.(*graphqlgo.Response)
		if !ok {
			t.Fatalf("unexpected payload type %T", payload)
		}
		if len(resp.Errors) > 0 {
			t.Fatalf("subscription payload errors: %v", resp.Errors)
		}
		var out struct {
			MessageAdded struct {
				Content string `json:"content"`
			} `json:"messageAdded"`
		}
		if err := json.Unmarshal(resp.Data, &out); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if out.MessageAdded.Content != "hello" {
			t.Errorf("expected pushed content hello, got %q", out.MessageAdded.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive subscription payload")
	}
}
