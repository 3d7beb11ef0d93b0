package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/repositories/storage"
	"github.com/dmitrijs2005/favisend/internal/client/validation"
	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/dmitrijs2005/favisend/internal/logging"
)

// GuestStep is the position in the email-then-code flow.
type GuestStep int

const (
	StepEmailEntry GuestStep = iota
	StepCodeEntry
	StepAuthorized
)

func (s GuestStep) String() string {
	switch s {
	case StepEmailEntry:
		return "email"
	case StepCodeEntry:
		return "code"
	case StepAuthorized:
		return "authorized"
	default:
		return fmt.Sprintf("GuestStep(%d)", int(s))
	}
}

var (
	ErrWrongStep    = errors.New("action not available at this step")
	ErrCodeNotSent  = common.ErrCodeNotSent
	ErrCodeRejected = common.ErrCodeRejected
)

// GuestSnapshot is a read-only copy of the flow state.
type GuestSnapshot struct {
	Step     GuestStep
	Email    string
	Code     string
	Err      error
	InFlight bool
}

// GuestVerification drives guest access to the purchase list: an email
// address receives an 8-digit code which is exchanged for an access token.
// At most one request is in flight; a second submission returns
// common.ErrRequestInFlight without touching the network.
type GuestVerification struct {
	client client.Client
	store  storage.Store
	log    logging.Logger

	inFlight atomic.Bool

	mu          sync.Mutex
	step        GuestStep
	email       string
	code        string
	accessToken string
	lastErr     error
}

func NewGuestVerification(c client.Client, store storage.Store, log logging.Logger) *GuestVerification {
	if log == nil {
		log = logging.Nop()
	}
	return &GuestVerification{client: c, store: store, log: log.With("component", "guest")}
}

func (g *GuestVerification) Snapshot() GuestSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GuestSnapshot{
		Step:     g.step,
		Email:    g.email,
		Code:     g.code,
		Err:      g.lastErr,
		InFlight: g.inFlight.Load(),
	}
}

// AccessToken returns the token issued by a successful verification.
func (g *GuestVerification) AccessToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accessToken
}

// SetEmail edits the email while in StepEmailEntry.
func (g *GuestVerification) SetEmail(email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.step != StepEmailEntry {
		return ErrWrongStep
	}
	g.email = strings.TrimSpace(email)
	return nil
}

// SetCode stores the digits of raw, truncated to the code length, and
// returns what was stored.
func (g *GuestVerification) SetCode(raw string) string {
	code := validation.SanitizeCode(raw)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.code = code
	return code
}

// acquire takes the in-flight slot; the returned release must be deferred.
func (g *GuestVerification) acquire() (func(), error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, common.ErrRequestInFlight
	}
	return func() { g.inFlight.Store(false) }, nil
}

func (g *GuestVerification) setErr(err error) error {
	g.mu.Lock()
	g.lastErr = err
	g.mu.Unlock()
	return err
}

// SubmitEmail requests a code for the current email and moves to
// StepCodeEntry. On failure the step and the email are kept.
func (g *GuestVerification) SubmitEmail(ctx context.Context) error {
	release, err := g.acquire()
	if err != nil {
		return err
	}
	defer release()

	g.mu.Lock()
	step, email := g.step, g.email
	g.mu.Unlock()

	if step != StepEmailEntry {
		return ErrWrongStep
	}
	if err := validation.Email(email); err != nil {
		return g.setErr(err)
	}
	g.setErr(nil)

	if err := g.requestCode(ctx, email); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return g.setErr(err)
	}

	g.mu.Lock()
	g.step = StepCodeEntry
	g.code = ""
	g.lastErr = nil
	g.mu.Unlock()

	g.log.Info(ctx, "verification code requested", "email", email)
	return nil
}

// Resend asks for a new code without leaving StepCodeEntry.
func (g *GuestVerification) Resend(ctx context.Context) error {
	release, err := g.acquire()
	if err != nil {
		return err
	}
	defer release()

	g.mu.Lock()
	step, email := g.step, g.email
	g.mu.Unlock()

	if step != StepCodeEntry {
		return ErrWrongStep
	}
	if err := g.requestCode(ctx, email); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return g.setErr(err)
	}
	g.setErr(nil)
	return nil
}

func (g *GuestVerification) requestCode(ctx context.Context, email string) error {
	resp, err := g.client.RequestVerification(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCodeNotSent, err)
	}
	if !resp.Success {
		return ErrCodeNotSent
	}
	return nil
}

// GoBack returns to StepEmailEntry, clearing the code and the error. The
// email is kept for editing.
func (g *GuestVerification) GoBack() error {
	if g.inFlight.Load() {
		return common.ErrRequestInFlight
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.step != StepCodeEntry {
		return ErrWrongStep
	}
	g.step = StepEmailEntry
	g.code = ""
	g.lastErr = nil
	return nil
}

// SubmitCode redeems the current code. On success the access token and the
// email are persisted together and the flow is StepAuthorized. On failure
// the code is kept.
func (g *GuestVerification) SubmitCode(ctx context.Context) error {
	release, err := g.acquire()
	if err != nil {
		return err
	}
	defer release()

	g.mu.Lock()
	step, email, code := g.step, g.email, g.code
	g.mu.Unlock()

	if step != StepCodeEntry {
		return ErrWrongStep
	}
	if err := validation.Code(code); err != nil {
		return g.setErr(err)
	}
	g.setErr(nil)

	resp, err := g.client.VerifyCode(ctx, email, code)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return g.setErr(fmt.Errorf("%w: %w", ErrCodeRejected, err))
	}
	if !resp.Success || resp.AccessToken == "" {
		return g.setErr(ErrCodeRejected)
	}

	err = g.store.WithinTx(ctx, func(ctx context.Context, r storage.Repository) error {
		if err := r.Set(ctx, common.StorageKeyAccessToken, resp.AccessToken); err != nil {
			return err
		}
		return r.Set(ctx, common.StorageKeyUserEmail, email)
	})
	if err != nil {
		return g.setErr(fmt.Errorf("persist guest access: %w", err))
	}

	g.mu.Lock()
	g.accessToken = resp.AccessToken
	g.step = StepAuthorized
	g.lastErr = nil
	g.mu.Unlock()

	g.log.Info(ctx, "guest access granted", "email", email)
	return nil
}

// Reset returns the flow to an empty StepEmailEntry. Persisted guest
// credentials are not touched; see GuestSignOut.
func (g *GuestVerification) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.step = StepEmailEntry
	g.email = ""
	g.code = ""
	g.accessToken = ""
	g.lastErr = nil
}

// GuestSignOut removes the persisted guest access token and email.
func GuestSignOut(ctx context.Context, repo storage.Repository) error {
	if err := repo.Delete(ctx, common.StorageKeyAccessToken, common.StorageKeyUserEmail); err != nil {
		return fmt.Errorf("clear guest access: %w", err)
	}
	return nil
}
