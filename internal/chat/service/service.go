package service

import (
	"context"
	"errors"

	"github.com/yuizumi/chatspace/internal/common/clock"
	"github.com/yuizumi/chatspace/internal/common/db"
	commonerrors "github.com/yuizumi/chatspace/internal/common/errors"
	"github.com/yuizumi/chatspace/internal/common/id"
	"github.com/yuizumi/chatspace/internal/common/logger"
	msgdomain "github.com/yuizumi/chatspace/internal/message/domain"
	msgrepo "github.com/yuizumi/chatspace/internal/message/repository"
	"github.com/yuizumi/chatspace/internal/pubsub"
	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
	userrepo "github.com/yuizumi/chatspace/internal/user/repository"
)

type ChatServiceDeps struct {
	Users    userrepo.Repository
	Messages msgrepo.Repository
	Bus      *pubsub.Bus
	IDs      id.Generator
	Clock    clock.Clock
	Tx       db.TxManager
	Log      *logger.Logger
}

// ChatService implements every chat operation. All timestamps come from the
// injected clock and all identifiers from the injected generator.
type ChatService struct {
	users    userrepo.Repository
	messages msgrepo.Repository
	bus      *pubsub.Bus
	ids      id.Generator
	clock    clock.Clock
	tx       db.TxManager
	log      *logger.Logger
}

func NewChatService(deps ChatServiceDeps) *ChatService {
	return &ChatService{
		users:    deps.Users,
		messages: deps.Messages,
		bus:      deps.Bus,
		ids:      deps.IDs,
		clock:    deps.Clock,
		tx:       deps.Tx,
		log:      deps.Log,
	}
}

func (s *ChatService) CreateUser(ctx context.Context, name string) (userdomain.User, error) {
	validated, err := ValidateUserName(name)
	if err != nil {
		return userdomain.User{}, err
	}

	now := s.clock.Now()
	user := userdomain.User{
		ID:        userdomain.ID(s.ids.NewID()),
		Name:      validated,
		CreatedAt: now,
		LastSeen:  now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.log.WithFields(ctx, logger.Fields{"action": "create_user"}).Errorf("failed to create user: %v", err)
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.bus.UserJoined.Publish(user)

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "user_created",
	}).Info("user registered")

	return user, nil
}

// GetUser reports an unknown id as the not-found sentinel; the API layer maps
// it to a null result rather than an error.
func (s *ChatService) GetUser(ctx context.Context, userID string) (userdomain.User, error) {
	return s.users.FindByID(ctx, userdomain.ID(userID))
}

func (s *ChatService) ListUsers(ctx context.Context) ([]userdomain.User, error) {
	users, err := s.users.ListByLastSeen(ctx)
	if err != nil {
		s.log.Errorf("failed to list users: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return users, nil
}

func (s *ChatService) TouchLastSeen(ctx context.Context, userID string) (userdomain.User, error) {
	user, err := s.users.TouchLastSeen(ctx, userdomain.ID(userID), s.clock.Now())
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return userdomain.User{}, commonerrors.ErrUserNotFound
		}
		s.log.Errorf("failed to touch last seen for user %s: %v", userID, err)
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return user, nil
}

// CreateMessage persists the message and advances the owner's last_seen in a
// single transaction, then publishes the message-added event.
func (s *ChatService) CreateMessage(ctx context.Context, content, userID string) (msgdomain.Message, error) {
	validated, err := ValidateMessageContent(content)
	if err != nil {
		return msgdomain.Message{}, err
	}

	now := s.clock.Now()
	message := msgdomain.Message{
		ID:        msgdomain.ID(s.ids.NewID()),
		Content:   validated,
		CreatedAt: now,
		UserID:    userdomain.ID(userID),
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context, q db.Querier) error {
		users := s.users.WithQuerier(q)

		owner, err := users.TouchLastSeen(txCtx, userdomain.ID(userID), now)
		if err != nil {
			return err
		}
		message.User = &owner

		return s.messages.WithQuerier(q).Create(txCtx, message)
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return msgdomain.Message{}, commonerrors.ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "create_message",
		}).Errorf("failed to create message: %v", err)
		return msgdomain.Message{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.bus.MessageAdded.Publish(message)

	return message, nil
}

func (s *ChatService) ListMessages(ctx context.Context) ([]msgdomain.Message, error) {
	messages, err := s.messages.ListByCreatedAt(ctx)
	if err != nil {
		s.log.Errorf("failed to list messages: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return messages, nil
}

func (s *ChatService) ListUserMessages(ctx context.Context, userID string) ([]msgdomain.Message, error) {
	messages, err := s.messages.ListByUserID(ctx, userdomain.ID(userID))
	if err != nil {
		s.log.Errorf("failed to list messages for user %s: %v", userID, err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return messages, nil
}

// ResolveMessageOwner fetches the owning user of a message. A dangling
// reference cannot happen while the foreign key holds, but it is still
// reported as not-found rather than a crash.
func (s *ChatService) ResolveMessageOwner(ctx context.Context, message msgdomain.Message) (userdomain.User, error) {
	if message.User != nil {
		return *message.User, nil
	}

	owner, err := s.users.FindByID(ctx, message.UserID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return userdomain.User{}, commonerrors.ErrMessageOwnerMissing
		}
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return owner, nil
}
