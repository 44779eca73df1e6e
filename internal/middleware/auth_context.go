package middleware

import (
	"context"
	"net/http"
	"strings"

	"medtrack/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// debugUserHeader inyecta identidad en modo dev (sin verifier).
const debugUserHeader = "X-Debug-User-ID"

// AuthContext resuelve la identidad del request y la deja en el
// contexto. Nunca corta: sin claims el request sigue igual y cada
// handler decide si exige auth (401). Con verifier nil corre en modo
// dev y acepta el header X-Debug-User-ID.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolveClaims(r, verifier); ok {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(debugUserHeader))
		if uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{UserID: uid}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		// Token inválido o expirado: igual que sin token.
		return auth.Claims{}, false
	}
	return claims, true
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

// bearerToken extrae la credencial de "Authorization: Bearer <token>".
// El esquema se compara case-insensitive; cualquier otro esquema
// (o un header malformado) devuelve vacío.
func bearerToken(header string) string {
	const prefix = "bearer "

	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
