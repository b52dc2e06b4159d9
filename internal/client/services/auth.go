// Package services contains application services for the Syllabify client.
// This file defines the authentication service: session restore on
// startup, login, logout and completion of the security question setup.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/syllabify/internal/client/api"
	"github.com/dmitrijs2005/syllabify/internal/client/models"
	"github.com/dmitrijs2005/syllabify/internal/logging"
)

// Phase is the coarse position of the session state machine.
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseAuthenticated Phase = "authenticated"
	PhaseAnonymous     Phase = "anonymous"
)

// State is an immutable snapshot of the session.
type State struct {
	Phase             Phase
	User              *models.User
	Token             string
	SecuritySetupDone bool
	IsLoading         bool
}

// TokenStore is the persistence the service needs for the session token.
// Get returns "" when nothing is stored.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// AuthService owns the session state of one running client.
//
// Contract:
//   - Restore: resolve a persisted token into a user, once per service.
//   - Login: authenticate and persist the new token.
//   - Logout: forget the token locally; no network call.
//   - CompleteSecuritySetup: submit security questions for the current token.
//
// State changes are published to subscribers as snapshots.
type AuthService struct {
	api   api.Client
	store TokenStore
	log   logging.Logger

	mu          sync.Mutex
	state       State
	generation  uint64
	seq         uint64
	subscribers map[int]func(State)
	nextSubID   int

	notifyMu  sync.Mutex
	delivered uint64

	restoreOnce sync.Once
	ready       chan struct{}
}

// NewAuthService returns a service in the loading phase. Call Restore to
// leave it.
func NewAuthService(client api.Client, store TokenStore, log logging.Logger) *AuthService {
	return &AuthService{
		api:   client,
		store: store,
		log:   log.With("component", "auth"),
		state: State{
			Phase:             PhaseLoading,
			SecuritySetupDone: true,
			IsLoading:         true,
		},
		subscribers: make(map[int]func(State)),
		ready:       make(chan struct{}),
	}
}

// State returns the current snapshot.
func (s *AuthService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Ready is closed once the restore sequence has finished.
func (s *AuthService) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe registers fn for every state change and returns a function
// that removes it. fn runs on the goroutine that caused the change. Calls
// are made one at a time and never go back in time: a snapshot older than
// one already delivered is dropped. fn may read State but must not change
// it.
func (s *AuthService) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Restore starts the startup sequence on first use and waits for it to
// finish or for ctx to end. Only the first call's ctx drives the sequence.
func (s *AuthService) Restore(ctx context.Context) State {
	s.restoreOnce.Do(func() {
		go func() {
			defer close(s.ready)
			s.restore(ctx)
		}()
	})

	select {
	case <-s.ready:
	case <-ctx.Done():
	}
	return s.State()
}

func (s *AuthService) restore(ctx context.Context) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	token, err := s.store.Get(ctx)
	if err != nil {
		s.log.Warn(ctx, "reading persisted token failed", "error", err)
	}

	if token == "" {
		s.log.Debug(ctx, "no persisted session")
		s.finishRestore(gen, func(st *State) {
			st.Phase = PhaseAnonymous
		})
		return
	}

	_ = s.update(func(st *State) error {
		if s.generation == gen {
			st.Token = token
		}
		return nil
	})

	user := s.api.Me(ctx, token)
	if user != nil {
		s.log.Info(ctx, "session restored", "username", user.Username)
		s.finishRestore(gen, func(st *State) {
			st.Phase = PhaseAuthenticated
			st.User = &models.User{Username: user.Username, SecuritySetupDone: user.SecuritySetupDone}
			st.SecuritySetupDone = user.SecuritySetupDone
		})
		return
	}

	if ctx.Err() != nil {
		// Interrupted, not rejected: keep the persisted token for next time.
		s.log.Debug(ctx, "session restore interrupted", "error", ctx.Err())
		s.finishRestore(gen, func(st *State) {
			st.Phase = PhaseAnonymous
			st.Token = ""
		})
		return
	}

	s.log.Info(ctx, "persisted session is no longer valid")
	s.finishRestore(gen, func(st *State) {
		if err := s.store.Clear(ctx); err != nil {
			s.log.Warn(ctx, "clearing stale token failed", "error", err)
		}
		st.Phase = PhaseAnonymous
		st.Token = ""
		st.User = nil
		st.SecuritySetupDone = true
	})
}

// finishRestore applies the restore outcome unless a login or logout has
// happened since restore began, and ends the loading phase either way.
func (s *AuthService) finishRestore(gen uint64, apply func(st *State)) {
	_ = s.update(func(st *State) error {
		if s.generation == gen {
			apply(st)
		}
		st.IsLoading = false
		return nil
	})
}

// Login authenticates against the API and persists the issued token. It
// reports whether the account has completed security setup. On failure the
// state is left untouched.
func (s *AuthService) Login(ctx context.Context, username, password string) (securitySetupDone bool, err error) {
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		var aerr *api.AuthError
		if errors.As(err, &aerr) {
			return false, err
		}
		return false, fmt.Errorf("login error: %w", err)
	}

	err = s.update(func(st *State) error {
		if err := s.store.Set(ctx, res.Token); err != nil {
			return fmt.Errorf("saving session error: %w", err)
		}
		s.generation++
		st.Phase = PhaseAuthenticated
		st.Token = res.Token
		st.User = res.User()
		st.SecuritySetupDone = res.SecuritySetupDone
		return nil
	})
	if err != nil {
		return false, err
	}

	s.log.Info(ctx, "logged in", "username", res.Username, "security_setup_done", res.SecuritySetupDone)
	return res.SecuritySetupDone, nil
}

// Logout drops the session locally. The in-memory state is reset even when
// the store cannot be cleared; that error is returned.
func (s *AuthService) Logout(ctx context.Context) error {
	var err error

	_ = s.update(func(st *State) error {
		err = s.store.Clear(ctx)
		s.generation++
		st.Phase = PhaseAnonymous
		st.Token = ""
		st.User = nil
		st.SecuritySetupDone = true
		return nil
	})

	if err != nil {
		s.log.Warn(ctx, "clearing persisted token failed", "error", err)
		return err
	}
	s.log.Info(ctx, "logged out")
	return nil
}

// CompleteSecuritySetup submits questions using the in-memory token, or
// the persisted one when memory holds none. Without any token it does
// nothing and reports submitted=false.
func (s *AuthService) CompleteSecuritySetup(ctx context.Context, questions []models.SecurityQuestion) (submitted bool, err error) {
	token := s.State().Token
	if token == "" {
		t, err := s.store.Get(ctx)
		if err != nil {
			return false, err
		}
		token = t
	}
	if token == "" {
		s.log.Debug(ctx, "security setup skipped: no session token")
		return false, nil
	}

	if err := s.api.SecuritySetup(ctx, token, questions); err != nil {
		return false, err
	}

	err = s.update(func(st *State) error {
		st.SecuritySetupDone = true
		if st.User != nil {
			u := *st.User
			u.SecuritySetupDone = true
			st.User = &u
		}
		return nil
	})
	return err == nil, err
}

// update mutates the state under the lock and notifies subscribers with
// the resulting snapshot. Store writes that must be atomic with a state
// change run inside fn. When fn fails it must leave st untouched; nothing
// is published then.
func (s *AuthService) update(fn func(st *State) error) error {
	s.mu.Lock()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	s.seq++
	seq := s.seq
	snap := s.snapshot()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.delivered {
		return nil
	}
	s.delivered = seq
	for _, sub := range subs {
		sub(snap)
	}
	return nil
}

// snapshot copies the state; callers must hold s.mu.
func (s *AuthService) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
