package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Header names trusted when OIDC verification is disabled.
const (
	HeaderActor      = "X-Actor-ID"
	HeaderRole       = "X-Actor-Role"
	HeaderDepartment = "X-Actor-Department"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("action not permitted for role")
)

// Verifier verifies raw ID tokens. It is satisfied by *oidc.IDTokenVerifier.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Authenticator resolves the actor for each request.
type Authenticator struct {
	cfg      Config
	verifier Verifier
	logger   *slog.Logger
}

// New creates an Authenticator. When cfg is enabled it performs OIDC
// discovery against the issuer.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Authenticator, error) {
	a := &Authenticator{cfg: *cfg, logger: logger.With("system", "auth")}
	if !cfg.Enabled() {
		a.logger.Warn("oidc disabled, trusting actor headers")
		return a, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	a.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return a, nil
}

// NewWithVerifier creates an Authenticator around an existing verifier.
func NewWithVerifier(cfg *Config, verifier Verifier, logger *slog.Logger) *Authenticator {
	return &Authenticator{cfg: *cfg, verifier: verifier, logger: logger.With("system", "auth")}
}

// Middleware attaches the request's actor to its context. Requests without
// credentials pass through anonymously; invalid tokens are rejected.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok, err := a.resolve(r)
		if err != nil {
			a.logger.Warn("token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, ErrUnauthenticated)
			return
		}
		if ok {
			r = r.WithContext(WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) resolve(r *http.Request) (Actor, bool, error) {
	if a.verifier == nil {
		name := strings.TrimSpace(r.Header.Get(HeaderActor))
		if name == "" || name == SystemName {
			return Actor{}, false, nil
		}
		return Actor{
			Name:       name,
			Role:       Highest(r.Header.Get(HeaderRole)),
			Department: strings.TrimSpace(r.Header.Get(HeaderDepartment)),
		}, true, nil
	}

	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return Actor{}, false, nil
	}

	token, err := a.verifier.Verify(r.Context(), strings.TrimSpace(raw))
	if err != nil {
		return Actor{}, false, err
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return Actor{}, false, fmt.Errorf("decode claims: %w", err)
	}

	name := stringClaim(claims, a.cfg.NameClaim)
	if name == "" {
		name = token.Subject
	}

	return Actor{
		Name:       name,
		Role:       Highest(listClaim(claims, a.cfg.RoleClaim)...),
		Department: stringClaim(claims, a.cfg.DepartmentClaim),
	}, true, nil
}

// Require returns middleware that rejects requests whose actor may not perform action.
func Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrUnauthenticated)
				return
			}
			if !actor.Can(action) {
				writeError(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

func listClaim(claims map[string]any, key string) []string {
	switch v := claims[key].(type) {
	case string:
		return strings.Fields(strings.ReplaceAll(v, ",", " "))
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, err.Error())
}
