package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/config"
	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/client/repositories/storage"
	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/dmitrijs2005/favisend/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-process marketplace backend.
type fakeAPI struct {
	srv *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	payments []models.PaymentStatusResponse
	checkout *models.CheckoutRequest
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{hits: map[string]int{}}
	api.srv = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.srv.Close)
	return api
}

func (f *fakeAPI) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.hits[route]++
	n := f.hits[route]
	f.mu.Unlock()

	switch route {
	case "POST /api/auth/login":
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		reply(w, http.StatusOK, models.AuthResponse{
			Token: "tok-ada",
			User:  &models.User{ID: 1, DisplayName: "Ada", Email: "ada@example.com", Balance: 12.5},
		})

	case "POST /api/auth/register":
		w.WriteHeader(http.StatusConflict)

	case "GET /api/auth/user":
		if r.Header.Get("Authorization") != "Bearer tok-ada" {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		reply(w, http.StatusOK, models.User{ID: 1, DisplayName: "Ada", Email: "ada@example.com"})

	case "POST /api/auth/request-verification":
		reply(w, http.StatusOK, models.VerificationResponse{Success: true})

	case "POST /api/auth/verify-code":
		var req models.CodeVerificationRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.VerificationCode != "12345678" {
			reply(w, http.StatusBadRequest, map[string]string{"message": "Invalid verification code"})
			return
		}
		reply(w, http.StatusOK, models.CodeVerificationResponse{Success: true, AccessToken: "guest-tok"})

	case "GET /api/purchase/verify/pay_1":
		f.mu.Lock()
		resp := f.payments[min(n, len(f.payments))-1]
		f.mu.Unlock()
		reply(w, http.StatusOK, resp)

	case "POST /api/purchase/list":
		if r.Header.Get("Authorization") != "Bearer guest-tok" {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		reply(w, http.StatusOK, []models.Purchase{{
			ID:          7,
			DownloadURL: f.srv.URL + "/files/guide.pdf",
			File:        models.FileSummary{ID: 42, Title: "Guide", FileName: "guide.pdf", FileType: "application/pdf"},
		}})

	case "POST /api/purchase/init":
		var req models.CheckoutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.checkout = &req
		f.mu.Unlock()
		reply(w, http.StatusOK, models.CheckoutResponse{CheckoutURL: "https://pay.example/c/1", OrderID: "ord-1"})

	case "GET /files/guide.pdf":
		_, _ = io.WriteString(w, "%PDF-1.4")

	default:
		http.NotFound(w, r)
	}
}

// newTestApp wires an App against api with an in-memory store; lines are
// the scripted user input.
func newTestApp(t *testing.T, api *fakeAPI, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()

	origTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = origTerm })

	ctx := context.Background()
	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := storage.NewSQLiteStore(db)

	hc, err := client.NewHTTPClient(api.srv.URL, client.WithTokenSource(client.StoredToken(store)))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PollInterval = time.Millisecond
	cfg.DownloadDir = t.TempDir()

	a := newApp(cfg, logging.Nop(), hc, store)
	t.Cleanup(a.Close)

	out := &bytes.Buffer{}
	a.out = out
	a.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	return a, out
}

func stored(t *testing.T, a *App, key string) string {
	t.Helper()
	v, err := a.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func TestApp_LoginWhoAmILogout(t *testing.T) {
	api := newFakeAPI(t)
	a, out := newTestApp(t, api, "ada@example.com", "secret")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	require.Contains(t, out.String(), "Logged in as Ada")
	require.Equal(t, "tok-ada", stored(t, a, common.StorageKeyAuthToken))
	require.True(t, a.isLoggedIn())
	require.Equal(t, "Ada", a.getStatus())

	out.Reset()
	require.NoError(t, a.WhoAmI(ctx))
	require.Contains(t, out.String(), "Logged in as Ada <ada@example.com>, balance 12.50")

	require.NoError(t, a.Logout(ctx))
	require.False(t, a.isLoggedIn())
	require.Empty(t, stored(t, a, common.StorageKeyAuthToken))
	require.Equal(t, "anonymous", a.getStatus())
}

func TestApp_LoginFailureShowsServerMessage(t *testing.T) {
	api := newFakeAPI(t)
	a, _ := newTestApp(t, api, "ada@example.com", "wrong")

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.Equal(t, "Invalid credentials", common.UserMessage(err))
	require.False(t, a.isLoggedIn())
}

func TestApp_RegisterDuplicateWithoutServerMessage(t *testing.T) {
	api := newFakeAPI(t)
	a, _ := newTestApp(t, api, "ada", "ada@example.com", "secret1")

	err := a.Register(context.Background())
	require.ErrorIs(t, err, common.ErrAccountExists)
	require.Equal(t, "this username or email may already be in use", common.UserMessage(err))
	require.False(t, a.isLoggedIn())
}

func TestApp_GuestFlow(t *testing.T) {
	api := newFakeAPI(t)
	a, out := newTestApp(t, api,
		"bob@example.com",
		"1234",
		"87654321",
		"resend",
		"1234-5678",
	)
	ctx := context.Background()

	require.NoError(t, a.Guest(ctx))

	text := out.String()
	require.Contains(t, text, "A verification code was sent to bob@example.com")
	require.Contains(t, text, "Must be exactly 8 characters")
	require.Contains(t, text, "Invalid verification code")
	require.Contains(t, text, "A new code was sent to bob@example.com")
	require.Contains(t, text, "Email verified")

	require.Equal(t, 2, api.count("POST /api/auth/request-verification"))
	require.Equal(t, 2, api.count("POST /api/auth/verify-code"))
	require.Equal(t, "guest-tok", stored(t, a, common.StorageKeyAccessToken))
	require.Equal(t, "bob@example.com", stored(t, a, common.StorageKeyUserEmail))
	require.Equal(t, "guest bob@example.com", a.getStatus())

	out.Reset()
	require.NoError(t, a.Guest(ctx))
	require.Contains(t, out.String(), "already verified for bob@example.com")

	require.NoError(t, a.GuestLogout(ctx))
	require.Empty(t, stored(t, a, common.StorageKeyAccessToken))
	require.Empty(t, stored(t, a, common.StorageKeyUserEmail))
}

func TestApp_GuestInvalidEmailMakesNoRequest(t *testing.T) {
	api := newFakeAPI(t)
	a, out := newTestApp(t, api, "not-an-email", "")

	require.NoError(t, a.Guest(context.Background()))
	require.Contains(t, out.String(), "Must be a valid email address")
	require.Zero(t, api.count("POST /api/auth/request-verification"))
}

func TestApp_GuestBackThenCancel(t *testing.T) {
	api := newFakeAPI(t)
	a, out := newTestApp(t, api, "bob@example.com", "back", "")

	require.NoError(t, a.Guest(context.Background()))
	require.Contains(t, out.String(), "was bob@example.com")
	require.Equal(t, 1, api.count("POST /api/auth/request-verification"))
	require.Zero(t, api.count("POST /api/auth/verify-code"))
	require.Empty(t, stored(t, a, common.StorageKeyAccessToken))
}

func TestApp_GuestEndOfInputCancels(t *testing.T) {
	api := newFakeAPI(t)
	a, _ := newTestApp(t, api)
	a.reader = bufio.NewReader(strings.NewReader(""))

	require.NoError(t, a.Guest(context.Background()))
}

func TestApp_VerifyPendingThenCheckAgainThenDownload(t *testing.T) {
	api := newFakeAPI(t)
	api.payments = []models.PaymentStatusResponse{
		{Status: "pending"},
		{Status: "pending"},
		{Status: "pending"},
		{Status: "success", DownloadURL: api.srv.URL + "/files/guide.pdf", FileName: "guide.pdf", BuyerEmail: "bob@example.com"},
	}
	a, out := newTestApp(t, api)
	ctx := context.Background()

	require.NoError(t, a.Verify(ctx, "https://favisend.app/payment/verify?paymentId=pay_1"))
	require.Equal(t, 3, api.count("GET /api/purchase/verify/pay_1"))
	require.Contains(t, out.String(), "still being processed")

	err := a.Download(ctx, "")
	require.Error(t, err)

	out.Reset()
	require.NoError(t, a.Check(ctx))
	require.Equal(t, 4, api.count("GET /api/purchase/verify/pay_1"))
	require.Contains(t, out.String(), "Payment confirmed.")
	require.Contains(t, out.String(), "File: guide.pdf")

	require.NoError(t, a.Download(ctx, ""))
	b, err := os.ReadFile(filepath.Join(a.config.DownloadDir, "guide.pdf"))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(b))
}

func TestApp_VerifyStopsEarlyOnFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.payments = []models.PaymentStatusResponse{{Status: "failed", Message: "Insufficient funds"}}
	a, out := newTestApp(t, api)

	require.NoError(t, a.Verify(context.Background(), "pay_1"))
	require.Equal(t, 1, api.count("GET /api/purchase/verify/pay_1"))
	require.Contains(t, out.String(), "Payment failed: Insufficient funds")
}

func TestApp_VerifyWithoutPaymentID(t *testing.T) {
	api := newFakeAPI(t)
	a, out := newTestApp(t, api)

	require.NoError(t, a.Verify(context.Background(), "https://favisend.app/payment/verify?status=ok"))
	require.Contains(t, out.String(), "Invalid payment link")
	require.Zero(t, api.count("GET /api/purchase/verify/pay_1"))

	require.ErrorIs(t, a.Check(context.Background()), errNoPayment)
}

func TestApp_PurchasesAndDownloadByNumber(t *testing.T) {
	api := newFakeAPI(t)
	a, out := newTestApp(t, api)
	ctx := context.Background()

	err := a.Purchases(ctx)
	require.ErrorIs(t, err, common.ErrNoCredentials)

	require.NoError(t, a.store.Set(ctx, common.StorageKeyAccessToken, "guest-tok"))
	require.NoError(t, a.store.Set(ctx, common.StorageKeyUserEmail, "bob@example.com"))

	require.NoError(t, a.Purchases(ctx))
	require.Contains(t, out.String(), "Purchases (guest):")
	require.Contains(t, out.String(), "1. Guide [document]")

	require.Error(t, a.Download(ctx, "2"))
	require.Error(t, a.Download(ctx, "x"))

	require.NoError(t, a.Download(ctx, "1"))
	_, err = os.Stat(filepath.Join(a.config.DownloadDir, "guide.pdf"))
	require.NoError(t, err)
}

func TestApp_GuestCheckout(t *testing.T) {
	api := newFakeAPI(t)
	a, out := newTestApp(t, api,
		"Awa",
		"Diallo",
		"70123456",
		"Dakar",
		"",
		"5",
	)

	require.NoError(t, a.Checkout(context.Background(), "42"))
	require.Contains(t, out.String(), "Complete the payment at: https://pay.example/c/1")

	require.NotNil(t, api.checkout)
	require.Equal(t, "42", api.checkout.FileID)
	require.Equal(t, "Sénégal", api.checkout.Country)
	require.True(t, api.checkout.IsGuestPurchase)
	require.Nil(t, api.checkout.UserID)
}

func TestApp_CheckoutValidationMakesNoRequest(t *testing.T) {
	api := newFakeAPI(t)
	a, _ := newTestApp(t, api, "A", "Diallo", "70123456", "Dakar", "", "Atlantis")

	err := a.Checkout(context.Background(), "42")
	require.ErrorIs(t, err, common.ErrValidation)
	require.Zero(t, api.count("POST /api/purchase/init"))
}

func TestApp_OpenRoutesLinks(t *testing.T) {
	api := newFakeAPI(t)
	api.payments = []models.PaymentStatusResponse{{Status: "failed"}}
	a, out := newTestApp(t, api)
	ctx := context.Background()

	require.NoError(t, a.Open(ctx, "https://favisend.app/payment/verify?paymentId=pay_1"))
	require.Equal(t, 1, api.count("GET /api/purchase/verify/pay_1"))

	out.Reset()
	require.NoError(t, a.Open(ctx, "https://favisend.app/?upload=true"))
	require.Contains(t, out.String(), "not supported")

	out.Reset()
	require.NoError(t, a.Open(ctx, "https://favisend.app/"))
	require.Contains(t, out.String(), "Invalid payment link")
	require.Equal(t, 1, api.count("GET /api/purchase/verify/pay_1"))
	require.ErrorIs(t, a.Check(ctx), errNoPayment)
}

func TestApp_ProfileRequiresLogin(t *testing.T) {
	api := newFakeAPI(t)
	a, _ := newTestApp(t, api)

	require.ErrorIs(t, a.Profile(context.Background()), common.ErrNoCredentials)
}
