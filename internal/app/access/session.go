// Pacote access concentra a sessão administrativa: emissão no login, transporte via context e checagem em cada chamada.
package access

import (
	"context"
	"time"
)

const RoleAdmin = "admin"

// Session é carregada no context da requisição; não existe estado global de autenticação.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
