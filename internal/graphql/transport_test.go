package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/gorilla/websocket"

	"github.com/yuizumi/chatspace/internal/client/api"
	clientsync "github.com/yuizumi/chatspace/internal/client/sync"
	commonhttp "github.com/yuizumi/chatspace/internal/common/http"
	"github.com/yuizumi/chatspace/internal/common/httpmetrics"
	"github.com/yuizumi/chatspace/internal/common/logger"
)

// startTestServer serves the schema behind the same middleware chain
// cmd/server assembles, so upgrades are exercised end to end.
func startTestServer(t *testing.T, schema *graphqlgo.Schema) *httptest.Server {
	t.Helper()

	log, err := logger.New("", "test", "ERROR")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", NewHandler(schema))
	mux.Handle("/graphql/ws", NewSubscriptionHandler(schema))

	recovery := commonhttp.RecoveryMiddleware(log)
	handler := recovery(commonhttp.TraceIDMiddleware(httpmetrics.Wrap(mux)))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func wsEndpoint(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/graphql/ws"
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type transportMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func TestSubscription_UpgradeThroughMiddlewareChain(t *testing.T) {
	schema, _, bus := setupSchema(t)
	srv := startTestServer(t, schema)

	dialer := websocket.Dialer{Subprotocols: []string{"graphql-ws"}}
	conn, resp, err := dialer.Dial(wsEndpoint(srv), nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("websocket upgrade failed (status %d): %v", status, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(transportMessage{Type: "connection_init"}); err != nil {
		t.Fatalf("failed to send connection_init: %v", err)
	}

	var ack transportMessage
	for {
		if err := conn.ReadJSON(&ack); err != nil {
			t.Fatalf("failed to read handshake reply: %v", err)
		}
		if ack.Type == "ka" {
			continue
		}
		if ack.Type != "connection_ack" {
			t.Fatalf("expected connection_ack, got %q", ack.Type)
		}
		break
	}

	payload, _ := json.Marshal(map[string]string{
		"query": `subscription { messageAdded { content user { name } } }`,
	})
	if err := conn.WriteJSON(transportMessage{ID: "1", Type: "start", Payload: payload}); err != nil {
		t.Fatalf("failed to start subscription: %v", err)
	}

	// The start frame is processed asynchronously; publish only once the
	// subscription has actually reached the bus.
	waitFor(t, "subscription registration", func() bool {
		return bus.MessageAdded.SubscriberCount() >= 1
	})

	var created struct {
		CreateUser struct {
			ID string `json:"id"`
		} `json:"createUser"`
	}
	mustExec(t, schema, `mutation { createUser(name: "Alice") { id } }`, &created)
	mustExec(t, schema, fmt.Sprintf(
		`mutation { createMessage(content: "over the wire", userId: %q) { id } }`, created.CreateUser.ID), nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg transportMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("did not receive subscription data: %v", err)
		}
		if msg.Type == "ka" {
			continue
		}
		if msg.Type != "data" {
			t.Fatalf("expected data frame, got %q", msg.Type)
		}

		var out struct {
			Data struct {
				MessageAdded struct {
					Content string `json:"content"`
				} `json:"messageAdded"`
			} `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &out); err != nil {
			t.Fatalf("failed to decode data payload: %v", err)
		}
		if out.Data.MessageAdded.Content != "over the wire" {
			t.Errorf("expected pushed content %q, got %q", "over the wire", out.Data.MessageAdded.Content)
		}
		return
	}
}

func TestSubscription_PusherReceivesEventsEndToEnd(t *testing.T) {
	schema, _, bus := setupSchema(t)
	srv := startTestServer(t, schema)

	log, err := logger.New("", "test", "ERROR")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	store := clientsync.NewStore(nil)
	apiClient := api.NewClient(srv.URL+"/graphql", time.Second)
	pusher := clientsync.NewPusher(apiClient, store, wsEndpoint(srv), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- pusher.Run(ctx) }()

	waitFor(t, "pusher subscriptions", func() bool {
		return bus.MessageAdded.SubscriberCount() >= 1 && bus.UserJoined.SubscriberCount() >= 1
	})

	var created struct {
		CreateUser struct {
			ID string `json:"id"`
		} `json:"createUser"`
	}
	mustExec(t, schema, `mutation { createUser(name: "Alice") { id } }`, &created)
	mustExec(t, schema, fmt.Sprintf(
		`mutation { createMessage(content: "pushed", userId: %q) { id } }`, created.CreateUser.ID), nil)

	waitFor(t, "pushed message in the store", func() bool {
		snap := store.Snapshot()
		return len(snap.Messages) == 1 && snap.Messages[0].Content == "pushed"
	})
	waitFor(t, "pushed user in the store", func() bool {
		snap := store.Snapshot()
		return len(snap.Users) == 1 && snap.Users[0].Name == "Alice"
	})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pusher did not stop on cancel")
	}
}
