package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/samber/lo"

	"github.com/yuizumi/chatspace/internal/chat/service"
	msgdomain "github.com/yuizumi/chatspace/internal/message/domain"
	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
)

type UserResolver struct {
	user userdomain.User
	svc  *service.ChatService
}

func (r *UserResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(r.user.ID)
}

func (r *UserResolver) Name() string {
	return r.user.Name
}

func (r *UserResolver) CreatedAt() DateTime {
	return NewDateTime(r.user.CreatedAt)
}

func (r *UserResolver) LastSeen() DateTime {
	return NewDateTime(r.user.LastSeen)
}

func (r *UserResolver) Messages(ctx context.Context) ([]*MessageResolver, error) {
	messages, err := r.svc.ListUserMessages(ctx, string(r.user.ID))
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(m msgdomain.Message, _ int) *MessageResolver {
		return &MessageResolver{message: m, svc: r.svc}
	}), nil
}

type MessageResolver struct {
	message msgdomain.Message
	svc     *service.ChatService
}

func (r *MessageResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(r.message.ID)
}

func (r *MessageResolver) Content() string {
	return r.message.Content
}

func (r *MessageResolver) CreatedAt() DateTime {
	return NewDateTime(r.message.CreatedAt)
}

func (r *MessageResolver) User(ctx context.Context) (*UserResolver, error) {
	owner, err := r.svc.ResolveMessageOwner(ctx, r.message)
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: owner, svc: r.svc}, nil
}
