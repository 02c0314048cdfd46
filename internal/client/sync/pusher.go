package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/yuizumi/chatspace/internal/client/api"
	"github.com/yuizumi/chatspace/internal/common/logger"
)

const (
	wsSubprotocol = "graphql-ws"

	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgKeepAlive      = "ka"
	msgStart          = "start"
	msgData           = "data"
	msgError          = "error"
	msgComplete       = "complete"
)

const messageAddedSubscription = `
	subscription MessageAdded {
		messageAdded {
			id
			content
			createdAt
			user {
				id
				name
				createdAt
				lastSeen
			}
		}
	}
`

const userJoinedSubscription = `
	subscription UserJoined {
		userJoined {
			id
			name
			createdAt
			lastSeen
		}
	}
`

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Pusher is the push sync strategy: it loads both lists once, then appends
// events received over a graphql-ws subscription connection. It makes the
// same eventual-consistency promise as the poller and is interchangeable
// with it.
type Pusher struct {
	api   Fetcher
	store *Store
	wsURL string
	log   *logger.Logger
}

func NewPusher(apiClient Fetcher, store *Store, wsURL string, log *logger.Logger) *Pusher {
	return &Pusher{api: apiClient, store: store, wsURL: wsURL, log: log}
}

func (p *Pusher) Run(ctx context.Context) error {
	// Initial state still comes from the queries; the subscription only
	// carries deltas and replays nothing.
	if messages, err := p.api.Messages(ctx); err == nil {
		p.store.SetMessages(messages)
	} else {
		p.log.Warnf("initial message fetch failed: %v", err)
	}
	if users, err := p.api.Users(ctx); err == nil {
		p.store.SetUsers(users)
	} else {
		p.log.Warnf("initial user fetch failed: %v", err)
	}

	dialer := websocket.Dialer{Subprotocols: []string{wsSubprotocol}}
	conn, _, err := dialer.DialContext(ctx, p.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect subscription socket: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if err := p.handshake(conn); err != nil {
		return err
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("subscription socket closed: %w", err)
		}

		switch msg.Type {
		case msgKeepAlive, msgComplete:
		case msgData:
			p.handleData(msg)
		case msgError:
			p.log.Warnf("subscription error: %s", string(msg.Payload))
		}
	}
}

func (p *Pusher) handshake(conn *websocket.Conn) error {
	if err := conn.WriteJSON(wsMessage{Type: msgConnectionInit}); err != nil {
		return fmt.Errorf("failed to init subscription connection: %w", err)
	}

	var ack wsMessage
	for {
		if err := conn.ReadJSON(&ack); err != nil {
			return fmt.Errorf("failed to read connection ack: %w", err)
		}
		if ack.Type == msgKeepAlive {
			continue
		}
		if ack.Type != msgConnectionAck {
			return fmt.Errorf("unexpected handshake message %q", ack.Type)
		}
		break
	}

	subscriptions := []struct {
		id    string
		query string
	}{
		{"1", messageAddedSubscription},
		{"2", userJoinedSubscription},
	}
	for _, sub := range subscriptions {
		payload, err := json.Marshal(map[string]string{"query": sub.query})
		if err != nil {
			return err
		}
		if err := conn.WriteJSON(wsMessage{ID: sub.id, Type: msgStart, Payload: payload}); err != nil {
			return fmt.Errorf("failed to start subscription %s: %w", sub.id, err)
		}
	}

	return nil
}

func (p *Pusher) handleData(msg wsMessage) {
	var payload struct {
		Data struct {
			MessageAdded *api.Message `json:"messageAdded"`
			UserJoined   *api.User    `json:"userJoined"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		p.log.Warnf("failed to decode subscription payload: %v", err)
		return
	}

	if payload.Data.MessageAdded != nil {
		p.store.AppendMessage(*payload.Data.MessageAdded)
	}
	if payload.Data.UserJoined != nil {
		p.store.AppendUser(*payload.Data.UserJoined)
	}
}
