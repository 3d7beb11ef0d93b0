package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/favisend/internal/client/services"
)

var errNoPayment = errors.New("no payment to check, use verify <paymentId> first")

// Verify checks a payment given its id or the return link the payment page
// redirected to. A few automatic checks are made while the payment is
// pending.
func (a *App) Verify(ctx context.Context, arg string) error {
	link, err := services.ParseReturnLink(arg)
	if err != nil {
		return err
	}

	res, err := a.verifier.Verify(ctx, link.PaymentID, a.showProgress)
	if err != nil {
		return err
	}
	a.setPayment(res)
	a.showPayment(res)
	return nil
}

// Check re-polls the last verified payment once. It may be repeated as
// often as the user likes.
func (a *App) Check(ctx context.Context) error {
	prev := a.payment()
	if prev.PaymentID == "" {
		return errNoPayment
	}

	res, err := a.verifier.CheckAgain(ctx, prev, a.showProgress)
	if err != nil {
		return err
	}
	a.setPayment(res)
	a.showPayment(res)
	return nil
}

// Download saves a file. Without an argument it downloads the file of the
// last successful payment; "download n" downloads item n of the last
// purchases listing.
func (a *App) Download(ctx context.Context, arg string) error {
	url, name, err := a.downloadTarget(arg)
	if err != nil {
		return err
	}

	a.printf("Downloading %s ...", url)
	path, err := a.downloader.Download(ctx, url, name)
	if err != nil {
		return err
	}
	a.printf("Saved to %s", path)
	return nil
}

func (a *App) downloadTarget(arg string) (url, name string, err error) {
	if arg == "" {
		p := a.payment()
		if p.Status != services.PaymentSuccess {
			return "", "", errors.New("no download available, verify a successful payment first")
		}
		return p.DownloadURL, p.FileName, nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return "", "", errors.New("usage: download [n], where n is a number from the purchases list")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if n > len(a.listed) {
		return "", "", errors.New("no such purchase, run 'purchases' first")
	}
	p := a.listed[n-1]
	if p.DownloadURL == "" {
		return "", "", errors.New("this purchase has no download link")
	}
	return p.DownloadURL, p.File.FileName, nil
}

// Open follows a link from the payment flow: a payment return link is
// verified, a file link starts a checkout.
func (a *App) Open(ctx context.Context, raw string) error {
	link, err := services.ParseReturnLink(raw)
	if err != nil {
		return err
	}

	switch {
	case link.PaymentID != "":
		return a.Verify(ctx, link.PaymentID)
	case link.OpenUpload:
		a.printf("Uploading files is not supported in this client.")
		return nil
	case link.FileID != "":
		return a.Checkout(ctx, link.FileID)
	}

	a.setPayment(services.PaymentAttempt{Status: services.PaymentInvalidLink})
	a.showPayment(a.payment())
	return nil
}

func (a *App) payment() services.PaymentAttempt {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastPayment
}

func (a *App) setPayment(p services.PaymentAttempt) {
	a.mu.Lock()
	a.lastPayment = p
	a.mu.Unlock()
}

func (a *App) showProgress(p services.PaymentAttempt) {
	if p.Status == services.PaymentLoading {
		a.printf("Checking payment status (attempt %d) ...", p.AttemptCount+1)
	}
}

func (a *App) showPayment(p services.PaymentAttempt) {
	switch p.Status {
	case services.PaymentInvalidLink:
		a.printf("Invalid payment link: no payment id.")
	case services.PaymentPending:
		a.printf("Your payment is still being processed. Type 'check' to check again.")
	case services.PaymentSuccess:
		a.printf("Payment confirmed.")
		if p.BuyerEmail != "" {
			a.printf("A receipt was sent to %s.", p.BuyerEmail)
		}
		if p.FileName != "" {
			a.printf("File: %s", p.FileName)
		}
		a.printf("Type 'download' to save it.")
	case services.PaymentFailed:
		if p.Message != "" {
			a.printf("Payment failed: %s", p.Message)
		} else {
			a.printf("Payment failed.")
		}
	}
}
