package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/client/validation"
	"github.com/dmitrijs2005/favisend/internal/logging"
)

// CheckoutService starts a mobile-money payment for a file.
type CheckoutService struct {
	client  client.Client
	session *SessionStore
	log     logging.Logger
}

func NewCheckoutService(c client.Client, session *SessionStore, log logging.Logger) *CheckoutService {
	if log == nil {
		log = logging.Nop()
	}
	return &CheckoutService{client: c, session: session, log: log.With("component", "checkout")}
}

// Start validates the billing form and asks the server for a checkout URL.
// Without a logged-in user the purchase is a guest purchase.
func (c *CheckoutService) Start(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	req.FileID = strings.TrimSpace(req.FileID)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Country = strings.TrimSpace(req.Country)
	req.City = strings.TrimSpace(req.City)
	req.Email = strings.TrimSpace(req.Email)

	req.UserID = nil
	req.IsGuestPurchase = true
	if c.session != nil {
		if u := c.session.Snapshot().User; u != nil {
			id := u.ID
			req.UserID = &id
			req.IsGuestPurchase = false
		}
	}

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	resp, err := c.client.StartCheckout(ctx, req)
	if err != nil {
		return nil, err
	}

	c.log.Info(ctx, "checkout started", "file_id", req.FileID, "order_id", resp.OrderID, "guest", req.IsGuestPurchase)
	return resp, nil
}
