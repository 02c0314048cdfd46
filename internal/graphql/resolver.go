package graphql

import (
	"context"
	"errors"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/samber/lo"

	"github.com/yuizumi/chatspace/internal/chat/service"
	commonerrors "github.com/yuizumi/chatspace/internal/common/errors"
	msgdomain "github.com/yuizumi/chatspace/internal/message/domain"
	"github.com/yuizumi/chatspace/internal/observability/metrics"
	"github.com/yuizumi/chatspace/internal/pubsub"
	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
)

// Resolver is the root resolver. It owns the chat service and the event bus;
// both are injected once at construction rather than reached through globals.
type Resolver struct {
	svc *service.ChatService
	bus *pubsub.Bus
}

func NewResolver(svc *service.ChatService, bus *pubsub.Bus) *Resolver {
	return &Resolver{svc: svc, bus: bus}
}

func (r *Resolver) Users(ctx context.Context) ([]*UserResolver, error) {
	users, err := r.svc.ListUsers(ctx)
	observe("users", err)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u userdomain.User, _ int) *UserResolver {
		return &UserResolver{user: u, svc: r.svc}
	}), nil
}

func (r *Resolver) Messages(ctx context.Context) ([]*MessageResolver, error) {
	messages, err := r.svc.ListMessages(ctx)
	observe("messages", err)
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(m msgdomain.Message, _ int) *MessageResolver {
		return &MessageResolver{message: m, svc: r.svc}
	}), nil
}

// User returns null for an unknown id; that is not an error at this surface.
func (r *Resolver) User(ctx context.Context, args struct{ ID graphqlgo.ID }) (*UserResolver, error) {
	user, err := r.svc.GetUser(ctx, string(args.ID))
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			observe("user", nil)
			return nil, nil
		}
		observe("user", err)
		return nil, err
	}
	observe("user", nil)
	return &UserResolver{user: user, svc: r.svc}, nil
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ Name string }) (*UserResolver, error) {
	user, err := r.svc.CreateUser(ctx, args.Name)
	observe("createUser", err)
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: user, svc: r.svc}, nil
}

func (r *Resolver) UpdateUserLastSeen(ctx context.Context, args struct{ ID graphqlgo.ID }) (*UserResolver, error) {
	user, err := r.svc.TouchLastSeen(ctx, string(args.ID))
	observe("updateUserLastSeen", err)
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: user, svc: r.svc}, nil
}

func (r *Resolver) CreateMessage(ctx context.Context, args struct {
	Content string
	UserID  graphqlgo.ID
}) (*MessageResolver, error) {
	message, err := r.svc.CreateMessage(ctx, args.Content, string(args.UserID))
	observe("createMessage", err)
	if err != nil {
		return nil, err
	}
	return &MessageResolver{message: message, svc: r.svc}, nil
}

// MessageAdded streams message-added events until the subscriber's context is
// cancelled.
func (r *Resolver) MessageAdded(ctx context.Context) <-chan *MessageResolver {
	events := r.bus.MessageAdded.Subscribe(ctx)
	out := make(chan *MessageResolver)

	go func() {
		defer close(out)
		for m := range events {
			select {
			case out <- &MessageResolver{message: m, svc: r.svc}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (r *Resolver) UserJoined(ctx context.Context) <-chan *UserResolver {
	events := r.bus.UserJoined.Subscribe(ctx)
	out := make(chan *UserResolver)

	go func() {
		defer close(out)
		for u := range events {
			select {
			case out <- &UserResolver{user: u, svc: r.svc}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if de, ok := commonerrors.AsDomainError(err); ok {
			metrics.DomainErrorsTotal.WithLabelValues(string(de.Category()), de.Code()).Inc()
		}
	}
	metrics.GraphQLOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
