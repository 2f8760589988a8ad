package chi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
	logpkg "github.com/kailas-cloud/pilotprefs/internal/logger"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware returns a middleware that validates gateway Bearer tokens.
// If apiKeys is empty, the check is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, StatusUnauthenticated, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, StatusUnauthenticated,
					"authorization header must use Bearer scheme")
				return
			}

			if _, ok := validKeys[auth[len(bearerPrefix):]]; !ok {
				writeError(w, http.StatusUnauthorized, StatusUnauthenticated, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type callerKey struct{}

// ContextWithCaller stores the authenticated caller in the context.
func ContextWithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller placed by CallerMiddleware.
// The zero Caller (unauthenticated) is returned when none is present.
func CallerFromContext(ctx context.Context) domain.Caller {
	c, _ := ctx.Value(callerKey{}).(domain.Caller)
	return c
}

// CallerResolver extracts the verified caller identity from a request.
// A request without credentials yields the zero Caller and no error.
type CallerResolver interface {
	ResolveCaller(r *http.Request) (domain.Caller, error)
}

// TokenVerifier verifies an ID token and returns the uid it was issued to.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (string, error)
}

// IDTokenResolver takes the caller from "Authorization: Bearer <ID token>",
// as sent by Firebase callable clients.
type IDTokenResolver struct {
	verifier TokenVerifier
}

// NewIDTokenResolver creates a resolver backed by verifier.
func NewIDTokenResolver(verifier TokenVerifier) *IDTokenResolver {
	return &IDTokenResolver{verifier: verifier}
}

// ResolveCaller implements CallerResolver.
func (res *IDTokenResolver) ResolveCaller(r *http.Request) (domain.Caller, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return domain.Caller{}, nil
	}
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return domain.Caller{}, errors.New("authorization header must use Bearer scheme")
	}
	uid, err := res.verifier.VerifyIDToken(r.Context(), token)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("verify id token: %w", err)
	}
	return domain.Caller{UID: uid}, nil
}

// TrustedHeaderResolver takes the caller from a header set by an authenticating gateway.
// Pair it with BearerAuthMiddleware so only the gateway can reach the handler.
type TrustedHeaderResolver struct {
	header string
}

// NewTrustedHeaderResolver creates a resolver reading header.
func NewTrustedHeaderResolver(header string) *TrustedHeaderResolver {
	return &TrustedHeaderResolver{header: header}
}

// ResolveCaller implements CallerResolver.
func (res *TrustedHeaderResolver) ResolveCaller(r *http.Request) (domain.Caller, error) {
	return domain.Caller{UID: strings.TrimSpace(r.Header.Get(res.header))}, nil
}

// CallerMiddleware places the resolved caller in the request context.
// It never rejects: an absent or unverifiable identity leaves the caller
// unauthenticated and the service refuses the call.
func CallerMiddleware(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolver.ResolveCaller(r)
			if err != nil {
				logpkg.FromContext(r.Context()).Warn("caller not verified", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !caller.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}
			ctx := ContextWithCaller(r.Context(), caller)
			ctx = logpkg.With(ctx, zap.String("caller_id", caller.UID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
