package client

import (
	"context"

	"github.com/dmitrijs2005/favisend/internal/client/repositories/storage"
	"github.com/dmitrijs2005/favisend/internal/common"
)

// TokenSource yields the bearer token for a request. An empty token means the
// request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StoredToken reads the account token from storage on every call, so a
// login or logout is picked up by the next request.
func StoredToken(repo storage.Repository) TokenSource {
	return TokenSourceFunc(func(ctx context.Context) (string, error) {
		return repo.Get(ctx, common.StorageKeyAuthToken)
	})
}

type bearerKey struct{}

// WithBearer makes requests issued with ctx use token instead of the
// client's TokenSource. It is how guest calls send their access token.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerFromContext returns the token set by WithBearer.
func BearerFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerKey{}).(string)
	return token, ok
}
