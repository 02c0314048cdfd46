package session

import (
	"context"
	"time"

	"github.com/yuizumi/chatspace/internal/client/api"
	"github.com/yuizumi/chatspace/internal/client/identity"
	"github.com/yuizumi/chatspace/internal/common/clock"
	"github.com/yuizumi/chatspace/internal/common/logger"
)

type State string

const (
	// StateLogin means no usable identity: the registration form is shown.
	StateLogin State = "login"
	// StateSelection means a previously saved identity exists but has not
	// been confirmed against the server yet.
	StateSelection State = "selection"
	// StateChat means a confirmed active identity.
	StateChat State = "chat"
)

const (
	// MsgSavedIdentityInvalid is shown when the server no longer knows the
	// saved id.
	MsgSavedIdentityInvalid = "This user no longer exists. Please create a new user."
	// MsgVerificationFailed is shown when revalidation could not complete.
	MsgVerificationFailed = "Could not verify the user. Please try again later."
)

type API interface {
	GetUser(ctx context.Context, id string) (*api.User, error)
	CreateUser(ctx context.Context, name string) (api.User, error)
	UpdateUserLastSeen(ctx context.Context, id string) (api.User, error)
}

type IdentityStore interface {
	Load() *identity.SavedIdentity
	Save(saved identity.SavedIdentity) error
	Clear() error
}

// Session is the client-side identity state machine. It does no I/O of its
// own beyond the injected API and identity store, and it never terminates the
// program on an error: failures land in LastError and the state is unchanged.
type Session struct {
	api   API
	store IdentityStore
	clock clock.Clock
	log   *logger.Logger

	state     State
	saved     *identity.SavedIdentity
	current   *api.User
	lastError string
}

// NewSession decides the initial state: selection when a saved identity is
// present, login otherwise.
func NewSession(apiClient API, store IdentityStore, clk clock.Clock, log *logger.Logger) *Session {
	s := &Session{
		api:   apiClient,
		store: store,
		clock: clk,
		log:   log,
		state: StateLogin,
	}

	if saved := store.Load(); saved != nil {
		s.saved = saved
		s.state = StateSelection
	}

	return s
}

func (s *Session) State() State                   { return s.state }
func (s *Session) Saved() *identity.SavedIdentity { return s.saved }
func (s *Session) CurrentUser() *api.User         { return s.current }
func (s *Session) LastError() string              { return s.lastError }

// UseExisting revalidates the saved identity against the server. An unknown
// id and a failed request each surface their own recoverable error and keep
// the session in selection.
func (s *Session) UseExisting(ctx context.Context) error {
	if s.state != StateSelection || s.saved == nil {
		return nil
	}

	s.lastError = ""

	user, err := s.api.GetUser(ctx, s.saved.ID)
	if err != nil {
		s.log.Warnf("failed to validate saved identity: %v", err)
		s.lastError = MsgVerificationFailed
		return err
	}

	if user == nil {
		s.lastError = MsgSavedIdentityInvalid
		return nil
	}

	updated, err := s.api.UpdateUserLastSeen(ctx, s.saved.ID)
	if err != nil {
		s.log.Warnf("failed to touch last seen on resume: %v", err)
		s.lastError = MsgVerificationFailed
		return err
	}

	s.current = &updated
	s.state = StateChat

	refreshed := identity.SavedIdentity{
		ID:       s.saved.ID,
		Name:     s.saved.Name,
		LastSeen: s.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Save(refreshed); err != nil {
		s.log.Warnf("failed to refresh saved identity: %v", err)
	}
	s.saved = &refreshed

	return nil
}

// CreateNew abandons the saved identity for this run without deleting it.
func (s *Session) CreateNew() {
	if s.state != StateSelection {
		return
	}
	s.lastError = ""
	s.state = StateLogin
}

// DeleteSaved clears the local cache and falls back to registration.
func (s *Session) DeleteSaved() {
	if s.state != StateSelection {
		return
	}
	if err := s.store.Clear(); err != nil {
		s.log.Warnf("failed to clear saved identity: %v", err)
	}
	s.saved = nil
	s.lastError = ""
	s.state = StateLogin
}

// Register creates a new user and persists it as the saved identity.
func (s *Session) Register(ctx context.Context, name string) error {
	if s.state != StateLogin {
		return nil
	}

	s.lastError = ""

	user, err := s.api.CreateUser(ctx, name)
	if err != nil {
		s.lastError = err.Error()
		return err
	}

	saved := identity.SavedIdentity{
		ID:       user.ID,
		Name:     user.Name,
		LastSeen: user.LastSeen.UTC().Format(time.RFC3339),
	}
	if err := s.store.Save(saved); err != nil {
		s.log.Warnf("failed to save identity: %v", err)
	}
	s.saved = &saved
	s.current = &user
	s.state = StateChat

	return nil
}

// Logout returns to selection when a saved identity remains, else to login.
func (s *Session) Logout() {
	if s.state != StateChat {
		return
	}
	s.current = nil
	s.lastError = ""
	if s.saved != nil {
		s.state = StateSelection
	} else {
		s.state = StateLogin
	}
}
