// Pacote httpapi expõe os handlers REST do painel e traduz requisições HTTP para o serviço de eleições.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/painel-eleicoes/internal/app/access"
	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/health"
)

// Authenticator é o provedor de identidade visto pela borda HTTP.
type Authenticator interface {
	SignIn(ctx context.Context, attempt domain.LoginAttempt, password string) (access.Session, string, error)
	SignOut(ctx context.Context, s access.Session) error
	Resolve(ctx context.Context, token string) (access.Session, error)
}

// Gate confirma a sessão nas rotas que não passam pelo serviço de eleições.
type Gate interface {
	Require(ctx context.Context) (access.Session, error)
}

type Options struct {
	LoginURL     string
	CookieName   string
	CookieSecure bool
	// AsyncVotes indica que o voto foi apenas enfileirado (202 em vez de 201).
	AsyncVotes  bool
	RecentLimit int
	Ready       http.Handler
}

// API empacota handlers HTTP ligados ao serviço, à autenticação e ao logger.
type API struct {
	service domain.ElectionService
	auth    Authenticator
	gate    Gate
	logger  *slog.Logger
	opts    Options
}

func New(service domain.ElectionService, auth Authenticator, gate Gate, logger *slog.Logger, opts Options) *API {
	if opts.LoginURL == "" {
		opts.LoginURL = "/admin/login"
	}
	if opts.CookieName == "" {
		opts.CookieName = "admin_session"
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 10
	}
	if opts.Ready == nil {
		opts.Ready = health.LiveHandler()
	}
	return &API{service: service, auth: auth, gate: gate, logger: logger, opts: opts}
}

// Routes monta o roteador completo, incluindo health e métricas.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.LiveHandler())
	r.Method(http.MethodGet, "/readyz", a.opts.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(a.withSession)

		r.Post("/auth/login", a.login)
		r.Post("/auth/logout", a.logout)
		r.Get("/auth/session", a.currentSession)

		r.Get("/voting/data", a.votingData)
		r.Get("/dashboard", a.dashboard)
		r.Get("/dashboard/stream", a.dashboardStream)
		r.Get("/votes/recent", a.recentVotes)

		r.Route("/elections", func(r chi.Router) {
			r.Get("/", a.listElections)
			r.Post("/", a.createElection)
			r.Get("/active", a.listActive)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getElection)
				r.Patch("/", a.updateElection)
				r.Delete("/", a.deleteElection)
				r.Get("/votes", a.listVotes)
				r.Post("/votes", a.castVote)
			})
		})
	})

	return r
}

// Server aplica os timeouts padrão; WriteTimeout fica zerado por causa do stream do painel.
func (a *API) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
