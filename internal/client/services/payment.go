package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/logging"
	"github.com/sethvargo/go-retry"
)

// PaymentStatus is what the payment screen shows.
type PaymentStatus int

const (
	PaymentLoading PaymentStatus = iota
	PaymentInvalidLink
	PaymentPending
	PaymentSuccess
	PaymentFailed
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentLoading:
		return "loading"
	case PaymentInvalidLink:
		return "invalid-link"
	case PaymentPending:
		return "pending"
	case PaymentSuccess:
		return "success"
	case PaymentFailed:
		return "failed"
	default:
		return fmt.Sprintf("PaymentStatus(%d)", int(s))
	}
}

const (
	DefaultPollAttempts = 3
	DefaultPollInterval = 2 * time.Second
)

// PaymentAttempt is the result of polling one payment. DownloadURL is set
// if and only if Status is PaymentSuccess.
type PaymentAttempt struct {
	PaymentID    string
	Status       PaymentStatus
	BuyerEmail   string
	DownloadURL  string
	FileName     string
	FileID       string
	Message      string
	AttemptCount int
	Err          error
}

// NextState classifies one poll of the status endpoint. A transport or
// server error is treated the same as "pending". A success without a
// download link is also pending, since the link is what the buyer needs.
// Anything other than success or pending is a failure.
func NextState(prev PaymentAttempt, resp *models.PaymentStatusResponse, err error) PaymentAttempt {
	next := PaymentAttempt{
		PaymentID:    prev.PaymentID,
		Status:       PaymentPending,
		AttemptCount: prev.AttemptCount + 1,
	}

	if err != nil {
		next.Err = err
		return next
	}
	if resp == nil {
		return next
	}

	next.BuyerEmail = resp.BuyerEmail
	next.FileID = resp.FileID
	next.Message = resp.Message

	switch resp.Settlement() {
	case models.SettlementSuccess:
		if strings.TrimSpace(resp.DownloadURL) == "" {
			return next
		}
		next.Status = PaymentSuccess
		next.DownloadURL = resp.DownloadURL
		next.FileName = resp.FileName
	case models.SettlementPending:
	default:
		next.Status = PaymentFailed
	}
	return next
}

var errStillPending = errors.New("payment still pending")

// PaymentVerifier polls the payment status endpoint.
type PaymentVerifier struct {
	client   client.Client
	attempts int
	interval time.Duration
	log      logging.Logger
}

// NewPaymentVerifier builds a verifier that makes up to attempts automatic
// polls spaced by interval. Non-positive values select the defaults.
func NewPaymentVerifier(c client.Client, attempts int, interval time.Duration, log logging.Logger) *PaymentVerifier {
	if attempts < 1 {
		attempts = DefaultPollAttempts
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &PaymentVerifier{client: c, attempts: attempts, interval: interval, log: log.With("component", "payment")}
}

// Verify derives the state of paymentID from scratch. Polls never overlap;
// polling stops on success or failure, or after the configured number of
// attempts, whichever comes first. observe (optional) receives a Loading
// state before each poll and the final state. If ctx is cancelled the
// result is discarded: observe is not called and ctx.Err() is returned.
func (v *PaymentVerifier) Verify(ctx context.Context, paymentID string, observe func(PaymentAttempt)) (PaymentAttempt, error) {
	if observe == nil {
		observe = func(PaymentAttempt) {}
	}

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		st := PaymentAttempt{Status: PaymentInvalidLink}
		observe(st)
		return st, nil
	}

	cur := PaymentAttempt{PaymentID: paymentID, Status: PaymentLoading}
	backoff := retry.WithMaxRetries(uint64(v.attempts-1), retry.NewConstant(v.interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		observe(PaymentAttempt{PaymentID: paymentID, Status: PaymentLoading, AttemptCount: cur.AttemptCount})

		next, err := v.poll(ctx, cur)
		if err != nil {
			return err
		}
		cur = next
		if cur.Status == PaymentPending {
			return retry.RetryableError(errStillPending)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStillPending) {
		return cur, err
	}

	v.log.Info(ctx, "payment verified", "payment_id", paymentID, "status", cur.Status.String(), "attempts", cur.AttemptCount)
	observe(cur)
	return cur, nil
}

// CheckAgain issues exactly one poll and re-evaluates prev. There is no
// limit on how many times it may be called.
func (v *PaymentVerifier) CheckAgain(ctx context.Context, prev PaymentAttempt, observe func(PaymentAttempt)) (PaymentAttempt, error) {
	if observe == nil {
		observe = func(PaymentAttempt) {}
	}
	if strings.TrimSpace(prev.PaymentID) == "" {
		st := PaymentAttempt{Status: PaymentInvalidLink}
		observe(st)
		return st, nil
	}

	observe(PaymentAttempt{PaymentID: prev.PaymentID, Status: PaymentLoading, AttemptCount: prev.AttemptCount})

	next, err := v.poll(ctx, prev)
	if err != nil {
		return prev, err
	}
	observe(next)
	return next, nil
}

// poll returns an error only when ctx was cancelled.
func (v *PaymentVerifier) poll(ctx context.Context, cur PaymentAttempt) (PaymentAttempt, error) {
	resp, err := v.client.PaymentStatus(ctx, cur.PaymentID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cur, ctxErr
	}
	if err != nil {
		v.log.Debug(ctx, "payment status poll failed", "payment_id", cur.PaymentID, "error", err)
	}
	return NextState(cur, resp, err), nil
}
