package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite un token firmado para las claims dadas.
type TokenIssuer interface {
	Issue(ctx context.Context, claims Claims) (string, error)
}
