// Package services holds the client-side application logic of favisend: the
// account session store, the guest email-code flow, payment verification and
// the purchase/checkout pass-throughs.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/client/repositories/storage"
	"github.com/dmitrijs2005/favisend/internal/client/validation"
	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/dmitrijs2005/favisend/internal/logging"
	"github.com/dmitrijs2005/favisend/internal/tokenx"
)

// SessionSnapshot is a read-only copy of the session state.
type SessionSnapshot struct {
	User    *models.User
	Loading bool
	Err     error
}

// Authenticated reports whether a user is logged in.
func (s SessionSnapshot) Authenticated() bool { return s.User != nil }

// SessionStore owns the account session: the persisted authToken and the
// current user. It is the only writer of authToken.
//
// Login, Register and UpdateUser are mutually exclusive; a second call while
// one is running fails with common.ErrBusy. Logout is never blocked. It
// advances the session epoch, and an operation that settles under an older
// epoch discards its result (common.ErrSuperseded).
type SessionStore struct {
	client client.Client
	repo   storage.Repository
	log    logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	user      *models.User
	loading   bool
	lastErr   error
	busy      bool
	epoch     uint64
	listeners map[int]func(*models.User)
	nextID    int
}

func NewSessionStore(c client.Client, repo storage.Repository, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	return &SessionStore{
		client:    c,
		repo:      repo,
		log:       log.With("component", "session"),
		now:       time.Now,
		listeners: make(map[int]func(*models.User)),
	}
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{Loading: s.loading, Err: s.lastErr}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Subscribe registers fn to be called with the new user (nil when logged
// out) after every session change. The returned func unsubscribes.
func (s *SessionStore) Subscribe(fn func(*models.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// notifyLocked snapshots listeners and the user under s.mu; the returned
// func must be called after unlocking.
func (s *SessionStore) notifyLocked() func() {
	var u *models.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	fns := make([]func(*models.User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(u)
		}
	}
}

// CheckSession validates the persisted token against the identity endpoint.
// It never fails: any problem ends logged out with the token removed and the
// cause recorded in Snapshot().Err. Failures are not retried.
func (s *SessionStore) CheckSession(ctx context.Context) {
	s.mu.Lock()
	epoch := s.epoch
	s.loading = true
	s.mu.Unlock()

	token, err := s.repo.Get(ctx, common.StorageKeyAuthToken)
	if err != nil {
		s.endCheck(ctx, epoch, nil, fmt.Errorf("read token: %w", err))
		return
	}

	if token == "" {
		s.endCheck(ctx, epoch, nil, nil)
		return
	}
	if tokenx.IsExpired(token, s.now()) {
		s.log.Info(ctx, "persisted token expired, clearing")
		s.endCheck(ctx, epoch, nil, common.ErrTokenExpired)
		return
	}

	u, err := s.client.CurrentUser(client.WithBearer(ctx, token))
	if ctx.Err() != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.log.Warn(ctx, "session check failed", "error", err)
		s.endCheck(ctx, epoch, nil, err)
		return
	}
	s.endCheck(ctx, epoch, u, nil)
}

func (s *SessionStore) endCheck(ctx context.Context, epoch uint64, u *models.User, cause error) {
	s.mu.Lock()
	s.loading = false
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}

	if u == nil {
		if err := s.repo.Delete(ctx, common.StorageKeyAuthToken); err != nil {
			s.log.Error(ctx, "failed to clear token", "error", err)
		}
	}
	changed := s.user != nil || u != nil
	s.user = u
	s.lastErr = cause

	var notify func()
	if changed {
		notify = s.notifyLocked()
	}
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Login authenticates with an email (or username) and password.
// On failure the previous session is left as it was.
func (s *SessionStore) Login(ctx context.Context, identifier, password string) error {
	creds := models.Credentials{Email: strings.TrimSpace(identifier), Password: password}
	if err := validation.Struct(creds); err != nil {
		return err
	}

	return s.authenticate(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
		return s.client.Login(ctx, creds)
	})
}

// Register creates an account and logs into it. A taken username or email
// yields an error matching common.ErrAccountExists.
func (s *SessionStore) Register(ctx context.Context, reg models.Registration) error {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := validation.Struct(reg); err != nil {
		return err
	}

	return s.authenticate(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
		resp, err := s.client.Register(ctx, reg)
		if err != nil && isDuplicateAccount(err) {
			return nil, fmt.Errorf("%w: %w", common.ErrAccountExists, err)
		}
		return resp, err
	})
}

func isDuplicateAccount(err error) bool {
	if errors.Is(err, client.ErrConflict) {
		return true
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	for _, hint := range []string{"already", "exist", "déjà", "taken"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

func (s *SessionStore) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return 0, common.ErrBusy
	}
	s.busy = true
	s.loading = true
	return s.epoch, nil
}

func (s *SessionStore) end() {
	s.mu.Lock()
	s.busy = false
	s.loading = false
	s.mu.Unlock()
}

func (s *SessionStore) authenticate(ctx context.Context, call func(context.Context) (*models.AuthResponse, error)) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	resp, err := call(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Info(ctx, "discarding auth result after session change")
		return common.ErrSuperseded
	}

	if err == nil && (resp == nil || resp.Token == "" || resp.User == nil) {
		err = fmt.Errorf("auth response without token or user: %w", common.ErrInvalidToken)
	}
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	if err := s.repo.Set(ctx, common.StorageKeyAuthToken, resp.Token); err != nil {
		err = fmt.Errorf("persist token: %w", err)
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.user = resp.User
	s.lastErr = nil
	s.epoch++
	notify := s.notifyLocked()
	s.mu.Unlock()

	notify()
	s.log.Info(ctx, "logged in", "user_id", resp.User.ID)
	return nil
}

// Logout clears the persisted token and the user. It is local only and
// always clears the in-memory session; a storage failure is returned after.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.user = nil
	s.lastErr = nil
	err := s.repo.Delete(ctx, common.StorageKeyAuthToken)
	notify := s.notifyLocked()
	s.mu.Unlock()

	notify()
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// UpdateUser sends a partial profile update. The server's record replaces
// the in-memory user. An authentication failure ends the session.
func (s *SessionStore) UpdateUser(ctx context.Context, upd models.UserUpdate) error {
	if upd.Empty() {
		return fmt.Errorf("%w: nothing to update", common.ErrValidation)
	}
	if err := validation.Struct(upd); err != nil {
		return err
	}

	s.mu.Lock()
	loggedIn := s.user != nil
	s.mu.Unlock()
	if !loggedIn {
		return common.ErrNoCredentials
	}

	epoch, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	u, err := s.client.UpdateUser(ctx, upd)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return common.ErrSuperseded
	}

	if err != nil {
		s.lastErr = err
		if !errors.Is(err, client.ErrUnauthorized) {
			s.mu.Unlock()
			return err
		}
		s.epoch++
		s.user = nil
		if derr := s.repo.Delete(ctx, common.StorageKeyAuthToken); derr != nil {
			s.log.Error(ctx, "failed to clear token", "error", derr)
		}
		notify := s.notifyLocked()
		s.mu.Unlock()
		notify()
		return err
	}

	if u == nil {
		s.mu.Unlock()
		return fmt.Errorf("update returned no user")
	}
	s.user = u
	s.lastErr = nil
	notify := s.notifyLocked()
	s.mu.Unlock()

	notify()
	return nil
}
