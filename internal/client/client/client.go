package client

import (
	"context"

	"github.com/dmitrijs2005/favisend/internal/client/models"
)

// Client is the marketplace API as seen by the client services.
type Client interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error)
	UpdateUser(ctx context.Context, upd models.UserUpdate) (*models.User, error)

	RequestVerification(ctx context.Context, email string) (*models.VerificationResponse, error)
	VerifyCode(ctx context.Context, email, code string) (*models.CodeVerificationResponse, error)

	PaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatusResponse, error)
	ListPurchases(ctx context.Context, email string) ([]models.Purchase, error)
	StartCheckout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}
