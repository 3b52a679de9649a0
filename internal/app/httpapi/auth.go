package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/app/access"
	"github.com/marcelojr/painel-eleicoes/internal/domain"
	"github.com/marcelojr/painel-eleicoes/internal/platform/metrics"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Session access.Session `json:"session"`
	Token   string         `json:"token"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveLogin("invalid_input")
		responderMensagem(w, http.StatusBadRequest, access.ErrInvalidInput.Error())
		return
	}

	attempt := domain.LoginAttempt{Email: req.Email, RemoteIP: clientIP(r)}
	s, token, err := a.auth.SignIn(r.Context(), attempt, req.Password)
	if err != nil {
		status, result := loginStatus(err)
		metrics.ObserveLogin(result)
		if status == http.StatusInternalServerError {
			a.logger.Error("falha no login", "err", err)
			responderMensagem(w, status, "erro interno")
			return
		}
		a.logger.Warn("login recusado", "email", attempt.Email, "ip", attempt.RemoteIP, "motivo", result)
		responderMensagem(w, status, err.Error())
		return
	}

	metrics.ObserveLogin("success")
	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	responderJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "login realizado",
		Data:    loginResponse{Session: s, Token: token},
	})
}

func loginStatus(err error) (int, string) {
	switch {
	case errors.Is(err, access.ErrUserNotFound), errors.Is(err, access.ErrWrongCredential):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, access.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, access.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	s, err := a.gate.Require(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	if err := a.auth.SignOut(r.Context(), s); err != nil {
		a.responderErro(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	responderMensagem(w, http.StatusOK, "sessao encerrada")
}

func (a *API) currentSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.gate.Require(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, s)
}
