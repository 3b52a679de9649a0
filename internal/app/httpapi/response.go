package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderDados(w http.ResponseWriter, status int, data any) {
	responderJSON(w, status, envelope{Success: true, Data: data})
}

func responderMensagem(w http.ResponseWriter, status int, msg string) {
	responderJSON(w, status, envelope{Success: status < http.StatusBadRequest, Message: msg})
}

// responderErro converte a taxonomia do domínio em status HTTP.
// Sessão ausente vira redirect quando o cliente é um navegador.
func (a *API) responderErro(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)

	if status == http.StatusUnauthorized && wantsHTML(r) {
		http.Redirect(w, r, a.opts.LoginURL, http.StatusFound)
		return
	}

	body := envelope{Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("falha ao atender requisicao", "path", r.URL.Path, "err", err)
		body.Message = "erro interno"
	}

	responderJSON(w, status, body)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
