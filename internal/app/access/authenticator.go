package access

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/antifraude"
)

const tokenIssuer = "painel-eleicoes"

var (
	ErrUserNotFound    = errors.New("nenhuma conta com este email")
	ErrWrongCredential = errors.New("senha incorreta")
	ErrInvalidInput    = errors.New("email ou senha em formato invalido")
	ErrRateLimited     = errors.New("muitas tentativas, tente novamente mais tarde")
	ErrNetworkFailure  = errors.New("falha de comunicacao com o provedor de autenticacao")
)

// Account é um administrador conhecido; a senha fica somente como hash bcrypt.
type Account struct {
	Email        string
	PasswordHash string
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator faz o papel do provedor de identidade: login, logout e leitura da sessão corrente.
type Authenticator struct {
	accounts   map[string]string
	secret     []byte
	ttl        time.Duration
	antifraude domain.Antifraude
	sessions   domain.SessionStore
	clock      domain.Clock
}

func NewAuthenticator(
	accounts []Account,
	secret []byte,
	ttl time.Duration,
	antifraudeSvc domain.Antifraude,
	sessions domain.SessionStore,
	clock domain.Clock,
) *Authenticator {
	byEmail := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		byEmail[normalizeEmail(acc.Email)] = acc.PasswordHash
	}
	if antifraudeSvc == nil {
		antifraudeSvc = antifraude.NewNoop()
	}
	return &Authenticator{
		accounts:   byEmail,
		secret:     secret,
		ttl:        ttl,
		antifraude: antifraudeSvc,
		sessions:   sessions,
		clock:      clock,
	}
}

// SignIn valida credenciais e devolve a sessão junto com o token assinado.
func (a *Authenticator) SignIn(ctx context.Context, attempt domain.LoginAttempt, password string) (Session, string, error) {
	attempt.Email = normalizeEmail(attempt.Email)
	if _, err := mail.ParseAddress(attempt.Email); err != nil || password == "" {
		return Session{}, "", ErrInvalidInput
	}

	if err := a.antifraude.Verificar(ctx, attempt); err != nil {
		if errors.Is(err, antifraude.ErrRateLimitExceeded) {
			return Session{}, "", ErrRateLimited
		}
		return Session{}, "", fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}

	hash, ok := a.accounts[attempt.Email]
	if !ok {
		return Session{}, "", a.fail(ctx, attempt, ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Session{}, "", a.fail(ctx, attempt, ErrWrongCredential)
	}

	if err := a.antifraude.Limpar(ctx, attempt); err != nil {
		return Session{}, "", fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}

	now := a.clock.Agora()
	s := Session{
		ID:        uuid.NewString(),
		Email:     attempt.Email,
		Role:      RoleAdmin,
		ExpiresAt: now.Add(a.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role: s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Email,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return Session{}, "", fmt.Errorf("acesso: assinar token: %w", err)
	}

	return s, signed, nil
}

// Resolve reconstrói a sessão a partir do token; revogação é responsabilidade do Gate.
func (a *Authenticator) Resolve(_ context.Context, raw string) (Session, error) {
	if raw == "" {
		return Session{}, domain.ErrAuthentication
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock.Agora),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	return Session{
		ID:        claims.ID,
		Email:     claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revoga a sessão até o fim da validade do token.
func (a *Authenticator) SignOut(ctx context.Context, s Session) error {
	if a.sessions == nil || s.ID == "" {
		return nil
	}
	ttl := s.ExpiresAt.Sub(a.clock.Agora())
	if ttl <= 0 {
		return nil
	}
	if err := a.sessions.Revogar(ctx, s.ID, ttl); err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	return nil
}

func (a *Authenticator) fail(ctx context.Context, attempt domain.LoginAttempt, cause error) error {
	if err := a.antifraude.RegistrarFalha(ctx, attempt); err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	return cause
}

// HashPassword gera o hash bcrypt usado na configuração das contas.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
