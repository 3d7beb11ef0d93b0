package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/client/repositories/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client with per-method hooks. Calls are
// counted per method name.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	CurrentUserFn         func(ctx context.Context) (*models.User, error)
	LoginFn               func(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	RegisterFn            func(ctx context.Context, reg models.Registration) (*models.AuthResponse, error)
	UpdateUserFn          func(ctx context.Context, upd models.UserUpdate) (*models.User, error)
	RequestVerificationFn func(ctx context.Context, email string) (*models.VerificationResponse, error)
	VerifyCodeFn          func(ctx context.Context, email, code string) (*models.CodeVerificationResponse, error)
	PaymentStatusFn       func(ctx context.Context, paymentID string) (*models.PaymentStatusResponse, error)
	ListPurchasesFn       func(ctx context.Context, email string) ([]models.Purchase, error)
	StartCheckoutFn       func(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}

var _ client.Client = (*fakeClient)(nil)

var errNotStubbed = errors.New("not stubbed")

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) CurrentUser(ctx context.Context) (*models.User, error) {
	f.hit("CurrentUser")
	if f.CurrentUserFn == nil {
		return nil, errNotStubbed
	}
	return f.CurrentUserFn(ctx)
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	f.hit("Login")
	if f.LoginFn == nil {
		return nil, errNotStubbed
	}
	return f.LoginFn(ctx, creds)
}

func (f *fakeClient) Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error) {
	f.hit("Register")
	if f.RegisterFn == nil {
		return nil, errNotStubbed
	}
	return f.RegisterFn(ctx, reg)
}

func (f *fakeClient) UpdateUser(ctx context.Context, upd models.UserUpdate) (*models.User, error) {
	f.hit("UpdateUser")
	if f.UpdateUserFn == nil {
		return nil, errNotStubbed
	}
	return f.UpdateUserFn(ctx, upd)
}

func (f *fakeClient) RequestVerification(ctx context.Context, email string) (*models.VerificationResponse, error) {
	f.hit("RequestVerification")
	if f.RequestVerificationFn == nil {
		return nil, errNotStubbed
	}
	return f.RequestVerificationFn(ctx, email)
}

func (f *fakeClient) VerifyCode(ctx context.Context, email, code string) (*models.CodeVerificationResponse, error) {
	f.hit("VerifyCode")
	if f.VerifyCodeFn == nil {
		return nil, errNotStubbed
	}
	return f.VerifyCodeFn(ctx, email, code)
}

func (f *fakeClient) PaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatusResponse, error) {
	f.hit("PaymentStatus")
	if f.PaymentStatusFn == nil {
		return nil, errNotStubbed
	}
	return f.PaymentStatusFn(ctx, paymentID)
}

func (f *fakeClient) ListPurchases(ctx context.Context, email string) ([]models.Purchase, error) {
	f.hit("ListPurchases")
	if f.ListPurchasesFn == nil {
		return nil, errNotStubbed
	}
	return f.ListPurchasesFn(ctx, email)
}

func (f *fakeClient) StartCheckout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	f.hit("StartCheckout")
	if f.StartCheckoutFn == nil {
		return nil, errNotStubbed
	}
	return f.StartCheckoutFn(ctx, req)
}

// newStore returns a migrated in-memory store.
func newStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewSQLiteStore(db)
}

func get(t *testing.T, r storage.Repository, key string) string {
	t.Helper()
	v, err := r.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

// failingRepo fails every write and delete; reads return "".
type failingRepo struct{}

var errDiskFull = errors.New("disk full")

func (failingRepo) Get(context.Context, string) (string, error) { return "", nil }
func (failingRepo) Set(context.Context, string, string) error { return errDiskFull }
func (failingRepo) Delete(context.Context, ...string) error { return errDiskFull }
func (failingRepo) List(context.Context) (map[string]string, error) { return nil, errDiskFull }
func (failingRepo) Clear(context.Context) error { return errDiskFull }
