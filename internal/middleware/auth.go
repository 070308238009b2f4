package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkordes/bookmarks/internal/domain"
)

// UserResolver turns an authenticated username into a user record.
type UserResolver interface {
	Resolve(ctx context.Context, username string) (domain.User, error)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the user stored by RequireUser.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

// NewRequireUser returns a middleware that admits only requests carrying a
// username in header, which a trusted authenticating proxy sets. Requests
// without one are redirected to loginURL with the original request URI in
// ?next=. The resolved user is stored in the request context.
func NewRequireUser(resolver UserResolver, header, loginURL string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r.Context(), r.Header.Get(header))
			if errors.Is(err, domain.ErrUnauthenticated) {
				http.Redirect(w, r, LoginRedirectURL(loginURL, r.URL.RequestURI()), http.StatusFound)
				return
			}
			if err != nil {
				log.ErrorContext(r.Context(), "resolve user", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// LoginRedirectURL appends next as the ?next= parameter of loginURL.
func LoginRedirectURL(loginURL, next string) string {
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + url.QueryEscape(next)
}
