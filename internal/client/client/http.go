package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/dmitrijs2005/favisend/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName     = "github.com/dmitrijs2005/favisend/internal/client/client"
	maxErrorBody   = 64 << 10
	defaultTimeout = 30 * time.Second
)

// HTTPClient talks JSON to the marketplace REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
	log     logging.Logger
	tracer  trace.Tracer
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTimeout bounds every request, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(h *HTTPClient) { h.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute http(s)", baseURL)
	}

	h := &HTTPClient{
		baseURL: u,
		http:    http.DefaultClient,
		timeout: defaultTimeout,
		log:     logging.Nop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

func (h *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := h.do(ctx, http.MethodGet, "/api/auth/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (h *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := h.do(ctx, http.MethodPost, "/api/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := h.do(ctx, http.MethodPost, "/api/auth/register", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) UpdateUser(ctx context.Context, upd models.UserUpdate) (*models.User, error) {
	var u models.User
	if err := h.do(ctx, http.MethodPut, "/api/auth/user", upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (h *HTTPClient) RequestVerification(ctx context.Context, email string) (*models.VerificationResponse, error) {
	var resp models.VerificationResponse
	req := models.VerificationRequest{Email: email}
	if err := h.do(ctx, http.MethodPost, "/api/auth/request-verification", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) VerifyCode(ctx context.Context, email, code string) (*models.CodeVerificationResponse, error) {
	var resp models.CodeVerificationResponse
	req := models.CodeVerificationRequest{Email: email, VerificationCode: code}
	if err := h.do(ctx, http.MethodPost, "/api/auth/verify-code", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) PaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatusResponse, error) {
	var resp models.PaymentStatusResponse
	path := "/api/purchase/verify/" + url.PathEscape(paymentID)
	if err := h.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) ListPurchases(ctx context.Context, email string) ([]models.Purchase, error) {
	var resp []models.Purchase
	req := models.PurchaseListRequest{Email: email}
	if err := h.do(ctx, http.MethodPost, "/api/purchase/list", req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (h *HTTPClient) StartCheckout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	var resp models.CheckoutResponse
	if err := h.do(ctx, http.MethodPost, "/api/purchase/init", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) bearer(ctx context.Context) string {
	if token, ok := BearerFromContext(ctx); ok {
		return token
	}
	if h.tokens == nil {
		return ""
	}
	token, err := h.tokens.Token(ctx)
	if err != nil {
		h.log.Warn(ctx, "token source failed, sending request without credentials", "error", err)
		return ""
	}
	return token
}

func (h *HTTPClient) do(ctx context.Context, method, path string, in, out any) (err error) {
	ctx, span := h.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, h.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token := h.bearer(ctx); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
		attribute.String("favisend.request_id", requestID),
	)

	start := time.Now()
	resp, err := h.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		h.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%s %s failed: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	h.log.Debug(ctx, "request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(method, path, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s failed: %w: %w", method, path, ErrUnavailable, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// newAPIError extracts "message" (or "error") from a JSON body; anything
// else yields the generic status text.
func newAPIError(method, path string, status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = genericMessage(status)
	}
	return &APIError{Method: method, Path: path, Status: status, Message: msg}
}

func genericMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "you are not authorized to do this"
	case status >= 500:
		return "the server is unavailable, try again later"
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return "something went wrong"
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer)
}
