// Package session owns the authentication credential and current user
// identity for the whole client. It authorizes outgoing requests through
// the shared API client and reacts to server-signaled unauthorized access
// by logging out.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/benvon/smart-todo-cli/internal/api"
	"github.com/benvon/smart-todo-cli/internal/logger"
	"github.com/benvon/smart-todo-cli/internal/models"
	"github.com/benvon/smart-todo-cli/internal/store"
	"github.com/benvon/smart-todo-cli/internal/validation"
)

// State is a snapshot of the current session handed to subscribers.
type State struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
}

// Store holds the live session. At most one session exists per process; it
// is created by Login/Register/LoginWithToken, persisted through the
// injected key-value store, and destroyed by Logout or detected expiry.
type Store struct {
	client *api.Client
	kv     store.Store
	log    *zap.Logger

	mu    sync.Mutex
	user  *models.User
	token string
	next  int
	subs  map[int]func(State)
}

// New creates a session store and registers itself as the API client's
// unauthorized callback: any 401 response forces a logout.
func New(client *api.Client, kv store.Store, log *zap.Logger) *Store {
	s := &Store{
		client: client,
		kv:     kv,
		log:    log,
		subs:   make(map[int]func(State)),
	}
	client.SetUnauthorizedCallback(s.handleUnauthorized)
	return s
}

// Restore loads a persisted session at process start. An expired persisted
// token purges the persisted state instead.
func (s *Store) Restore() {
	token, err := s.kv.Get(store.KeyAuthToken)
	if err != nil {
		return
	}
	if IsTokenExpired(token) {
		s.log.Debug("persisted token expired, purging stored session",
			zap.String("token", logger.RedactToken(token)))
		s.clearPersisted()
		return
	}

	var user *models.User
	if raw, err := s.kv.Get(store.KeyAuthUser); err == nil {
		var u models.User
		if json.Unmarshal([]byte(raw), &u) == nil && u.ID != "" {
			user = &u
		}
	}
	if user == nil {
		user = UserFromToken(token)
	}
	if user == nil {
		s.log.Warn("persisted token carries no user identity, purging stored session")
		s.clearPersisted()
		return
	}
	s.setAuth(user, token)
}

// Login authenticates with email and password. The returned error carries
// a user-facing message extracted from the server's error payload.
func (s *Store) Login(ctx context.Context, email, password string) error {
	req := models.LoginRequest{Email: email, Password: password}
	if err := validation.Validate.Struct(req); err != nil {
		return errors.New(validation.Message(err))
	}
	var resp models.AuthResponse
	if apiErr := s.client.Post(ctx, "/auth/login", req, &resp); apiErr != nil {
		return errors.New(apiErr.Detail)
	}
	return s.acceptAuthResponse(&resp)
}

// Register creates a new account. Same contract as Login.
func (s *Store) Register(ctx context.Context, email, password string, name *string) error {
	req := models.RegisterRequest{Email: email, Password: password, Name: name}
	if err := validation.Validate.Struct(req); err != nil {
		return errors.New(validation.Message(err))
	}
	var resp models.AuthResponse
	if apiErr := s.client.Post(ctx, "/auth/register", req, &resp); apiErr != nil {
		return errors.New(apiErr.Detail)
	}
	return s.acceptAuthResponse(&resp)
}

// LoginWithToken accepts an externally obtained token (e.g. an OAuth
// callback). An already-expired token, or one from which no user id can be
// derived, is rejected as a logged no-op.
func (s *Store) LoginWithToken(token string, user *models.User) {
	if IsTokenExpired(token) {
		s.log.Error("cannot login with expired token",
			zap.String("token", logger.RedactToken(token)))
		return
	}
	if user == nil {
		user = UserFromToken(token)
	}
	if user == nil || user.ID == "" {
		s.log.Error("invalid token: missing user id")
		return
	}
	s.setAuth(user, token)
}

// Refresh exchanges the current token for a fresh one via POST
// /auth/refresh. Any failure logs the session out.
func (s *Store) Refresh(ctx context.Context) error {
	if s.Token() == "" {
		return errors.New("not logged in")
	}
	var resp models.AuthResponse
	if apiErr := s.client.Post(ctx, "/auth/refresh", nil, &resp); apiErr != nil {
		s.Logout()
		return errors.New(apiErr.Detail)
	}
	return s.acceptAuthResponse(&resp)
}

// Logout clears in-memory and persisted credential state unconditionally.
// Safe to call when already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	s.client.SetToken("")
	s.clearPersisted()
	s.notify()
}

// User returns the current user, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a user and token are both present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

// Subscribe registers a callback invoked on every session change, including
// forced logout after a 401. Returns an unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) acceptAuthResponse(resp *models.AuthResponse) error {
	if resp.Token == "" || resp.User.ID == "" {
		return errors.New("unexpected response from server")
	}
	user := resp.User
	s.setAuth(&user, resp.Token)
	return nil
}

func (s *Store) setAuth(user *models.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()

	s.client.SetToken(token)
	if err := s.kv.Set(store.KeyAuthToken, token); err != nil {
		s.log.Warn("failed to persist token", zap.Error(err))
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := s.kv.Set(store.KeyAuthUser, string(raw)); err != nil {
			s.log.Warn("failed to persist user profile", zap.Error(err))
		}
	}
	s.notify()
}

func (s *Store) clearPersisted() {
	if err := s.kv.Delete(store.KeyAuthToken); err != nil {
		s.log.Warn("failed to clear persisted token", zap.Error(err))
	}
	if err := s.kv.Delete(store.KeyAuthUser); err != nil {
		s.log.Warn("failed to clear persisted user profile", zap.Error(err))
	}
}

// handleUnauthorized runs synchronously from the API client whenever any
// request receives a 401. Dependent controllers observe the resulting
// no-session condition themselves.
func (s *Store) handleUnauthorized() {
	s.log.Info("received unauthorized response, logging out")
	s.Logout()
}

func (s *Store) notify() {
	s.mu.Lock()
	state := State{User: s.user, Token: s.token, IsAuthenticated: s.user != nil && s.token != ""}
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}
