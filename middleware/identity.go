package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/khushi6simplex/js2analytics-sub000/engine"
	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Identity headers set by the upstream auth proxy.
const (
	RoleHeader   = "X-User-Role"
	FilterHeader = "X-Jurisdiction-Filter"
)

// Identity is the acting user's role and jurisdiction constraints, parsed
// once per request.
type Identity struct {
	Role        string              `json:"role"`
	Constraints []models.Constraint `json:"constraints"`
}

// IdentityMiddleware turns the identity headers into an Identity on the
// request context. The filter header may hold an expression such as
// district='Pune' or a JSON object; anything unparseable leaves the
// constraints empty.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			Role:        strings.ToLower(strings.TrimSpace(r.Header.Get(RoleHeader))),
			Constraints: parseFilterHeader(r.Header.Get(FilterHeader)),
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func parseFilterHeader(raw string) []models.Constraint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			log.Printf("IdentityMiddleware: ignoring malformed filter: %v", err)
			return nil
		}
		return engine.ParseConstraints(decoded)
	}
	return engine.ParseConstraints(raw)
}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity on ctx. Requests that never passed
// through IdentityMiddleware get the zero Identity.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
