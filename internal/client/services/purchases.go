package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/favisend/internal/client/client"
	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/client/repositories/storage"
	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/dmitrijs2005/favisend/internal/logging"
)

// PurchaseSource tells which credential listed the purchases.
type PurchaseSource string

const (
	SourceGuest   PurchaseSource = "guest"
	SourceAccount PurchaseSource = "account"
)

// PurchaseService lists a buyer's purchases with either credential: the
// guest access token from email verification, or the account session.
type PurchaseService struct {
	client  client.Client
	repo    storage.Repository
	session *SessionStore
	log     logging.Logger
}

func NewPurchaseService(c client.Client, repo storage.Repository, session *SessionStore, log logging.Logger) *PurchaseService {
	if log == nil {
		log = logging.Nop()
	}
	return &PurchaseService{client: c, repo: repo, session: session, log: log.With("component", "purchases")}
}

// List prefers the guest credential. A rejected guest token is removed from
// storage; the account token is left to the session store.
func (p *PurchaseService) List(ctx context.Context) ([]models.Purchase, PurchaseSource, error) {
	accessToken, err := p.repo.Get(ctx, common.StorageKeyAccessToken)
	if err != nil {
		return nil, "", fmt.Errorf("read guest token: %w", err)
	}
	email, err := p.repo.Get(ctx, common.StorageKeyUserEmail)
	if err != nil {
		return nil, "", fmt.Errorf("read guest email: %w", err)
	}

	if accessToken != "" && email != "" {
		list, err := p.client.ListPurchases(client.WithBearer(ctx, accessToken), email)
		if errors.Is(err, client.ErrUnauthorized) {
			p.log.Info(ctx, "guest token rejected, clearing")
			if derr := GuestSignOut(ctx, p.repo); derr != nil {
				p.log.Error(ctx, "failed to clear guest access", "error", derr)
			}
		}
		if err != nil {
			return nil, SourceGuest, err
		}
		return list, SourceGuest, nil
	}

	if p.session != nil {
		if u := p.session.Snapshot().User; u != nil && u.Email != "" {
			list, err := p.client.ListPurchases(ctx, u.Email)
			if err != nil {
				return nil, SourceAccount, err
			}
			return list, SourceAccount, nil
		}
	}

	return nil, "", common.ErrNoCredentials
}
