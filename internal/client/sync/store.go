package sync

import (
	"sync"

	"github.com/yuizumi/chatspace/internal/client/api"
)

// Snapshot is a point-in-time copy of the synchronized state.
type Snapshot struct {
	Messages []api.Message
	Users    []api.User
}

// Store holds the client's view of the message and user lists. Every change
// fires the onChange callback so the view can re-render.
type Store struct {
	mu       sync.RWMutex
	messages []api.Message
	users    []api.User
	onChange func()
}

func NewStore(onChange func()) *Store {
	if onChange == nil {
		onChange = func() {}
	}
	return &Store{onChange: onChange}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Messages: make([]api.Message, len(s.messages)),
		Users:    make([]api.User, len(s.users)),
	}
	copy(snap.Messages, s.messages)
	copy(snap.Users, s.users)
	return snap
}

func (s *Store) SetMessages(messages []api.Message) {
	s.mu.Lock()
	s.messages = messages
	s.mu.Unlock()
	s.onChange()
}

func (s *Store) SetUsers(users []api.User) {
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	s.onChange()
}

// AppendMessage adds a pushed message unless it is already present.
func (s *Store) AppendMessage(message api.Message) {
	s.mu.Lock()
	for _, m := range s.messages {
		if m.ID == message.ID {
			s.mu.Unlock()
			return
		}
	}
	s.messages = append(s.messages, message)
	s.mu.Unlock()
	s.onChange()
}

// AppendUser adds a pushed user unless it is already present.
func (s *Store) AppendUser(user api.User) {
	s.mu.Lock()
	for _, u := range s.users {
		if u.ID == user.ID {
			s.mu.Unlock()
			return
		}
	}
	s.users = append(s.users, user)
	s.mu.Unlock()
	s.onChange()
}
