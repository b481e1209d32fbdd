package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/and161185/neuralpress/internal/model"
)

type ctxKey string

const credentialKey ctxKey = "np.credential"

// WithCredential stores the authenticated credential in context.
func WithCredential(ctx context.Context, c *model.Credential) context.Context {
	return context.WithValue(ctx, credentialKey, c)
}

// CredentialFromCtx fetches the authenticated credential from context.
func CredentialFromCtx(ctx context.Context) (*model.Credential, bool) {
	c, ok := ctx.Value(credentialKey).(*model.Credential)
	return c, ok && c != nil
}

var errNoBearer = errors.New("no bearer token")

// bearerToken extracts the key from an "Authorization: Bearer <key>" header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	for _, v := range r.Header.Values("Authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errNoBearer
}
