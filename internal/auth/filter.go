package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/techshop/storefront/internal/platform/httpx"
)

// Filter outcomes reported to an OutcomeRecorder.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeAnonymous     = "anonymous"
	OutcomeDenied        = "denied"
)

const bearerPrefix = "Bearer "

// AccessPolicy decides whether a path needs a resolved identity.
type AccessPolicy interface {
	RequiresIdentity(path string) bool
}

// IdentityLookup resolves a token subject to a stored identity.
type IdentityLookup interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
}

// OutcomeRecorder counts filter decisions.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

// Filter resolves the caller of every request from its bearer token and
// enforces the access policy before any handler runs.
type Filter struct {
	codec    *TokenCodec
	lookup   IdentityLookup
	policy   AccessPolicy
	logger   *slog.Logger
	recorder OutcomeRecorder
}

// FilterOption customises a Filter.
type FilterOption func(*Filter)

// WithOutcomeRecorder reports each decision to rec.
func WithOutcomeRecorder(rec OutcomeRecorder) FilterOption {
	return func(f *Filter) { f.recorder = rec }
}

// NewFilter constructs the request identity filter.
func NewFilter(codec *TokenCodec, lookup IdentityLookup, policy AccessPolicy, logger *slog.Logger, opts ...FilterOption) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Filter{codec: codec, lookup: lookup, policy: policy, logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Middleware returns the chi compatible middleware.
func (f *Filter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := f.resolve(r)
		if caller == nil {
			if f.policy.RequiresIdentity(RoutingPath(r)) {
				f.record(OutcomeDenied)
				httpx.RespondForbidden(w, r)
				return
			}
			f.record(OutcomeAnonymous)
			next.ServeHTTP(w, r)
			return
		}
		f.record(OutcomeAuthenticated)
		next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), caller)))
	})
}

// resolve returns nil for every anonymous request: no header, a header that
// is not a bearer token, a token that fails to parse or has expired, or a
// subject that no longer exists.
func (f *Filter) resolve(r *http.Request) *Caller {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil
	}
	claims, err := f.codec.Parse(token)
	if err != nil {
		return nil
	}
	if f.codec.IsExpired(claims) {
		return nil
	}
	ident, err := f.lookup.FindByEmail(r.Context(), claims.Subject)
	if err != nil {
		if !errors.Is(err, ErrIdentityNotFound) {
			f.logger.Warn("identity lookup failed", slog.Any("error", err))
		}
		return nil
	}
	return &Caller{Identity: ident, ExpiresAt: claims.ExpiresAt}
}

func (f *Filter) record(outcome string) {
	if f.recorder != nil {
		f.recorder.RecordAuthOutcome(outcome)
	}
}

// RoutingPath returns the path chi dispatches on: the escaped form when the
// request carries one, the decoded path otherwise.
func RoutingPath(r *http.Request) string {
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
