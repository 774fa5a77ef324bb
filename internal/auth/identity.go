package auth

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type tokenCtxKey struct{}

var _ Checker = (*LoginChecker)(nil)

// Checker validates a login token.
type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

// IdentityChecker reports whether an authenticated, non-anonymous identity
// is available. Remote sync is only attempted when it is.
type IdentityChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenCtxKey{}).(string)
	return token
}

var _ IdentityChecker = (*ContextIdentity)(nil)

// ContextIdentity takes the login token from the context (put there by the
// auth middleware) and validates it. A missing token means anonymous.
type ContextIdentity struct {
	checker Checker
}

func NewContextIdentity(checker Checker) *ContextIdentity {
	return &ContextIdentity{
		checker: checker,
	}
}

func (ci *ContextIdentity) IsAuthenticated(ctx context.Context) bool {
	token := TokenFromContext(ctx)
	if token == "" {
		return false
	}

	isLogged, err := ci.checker.IsLogged(ctx, token)
	if err != nil {
		log.Debugf("identity check failed, treating as anonymous: %s", err)
		return false
	}
	return isLogged
}

// StaticIdentity is a fixed answer, used by the CLI and tests.
type StaticIdentity bool

func (s StaticIdentity) IsAuthenticated(context.Context) bool {
	return bool(s)
}
