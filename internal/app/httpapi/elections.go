package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

// electionRequest aceita totalVoters como número ou string numérica, como chega dos formulários.
type electionRequest struct {
	domain.ElectionInput
	TotalVoters json.Number `json:"totalVoters"`
}

type patchRequest struct {
	domain.ElectionPatch
	TotalVoters *json.Number `json:"totalVoters,omitempty"`
}

type voteRequest struct {
	CandidateID domain.CandidateID `json:"candidateId"`
}

type voteResponse struct {
	ID domain.VoteID `json:"id"`
}

func (a *API) listElections(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListElections(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, nonNil(list))
}

func (a *API) listActive(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListActive(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, nonNil(list))
}

func (a *API) createElection(w http.ResponseWriter, r *http.Request) {
	var req electionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.responderErro(w, r, payloadInvalido(err))
		return
	}

	in := req.ElectionInput
	if req.TotalVoters != "" {
		n, err := parseVoters(req.TotalVoters)
		if err != nil {
			a.responderErro(w, r, err)
			return
		}
		in.TotalVoters = n
	}

	e, err := a.service.CreateElection(r.Context(), in)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusCreated, e)
}

func (a *API) getElection(w http.ResponseWriter, r *http.Request) {
	e, err := a.service.GetElection(r.Context(), electionID(r))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, e)
}

func (a *API) updateElection(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.responderErro(w, r, payloadInvalido(err))
		return
	}

	patch := req.ElectionPatch
	if req.TotalVoters != nil {
		n, err := parseVoters(*req.TotalVoters)
		if err != nil {
			a.responderErro(w, r, err)
			return
		}
		patch.TotalVoters = &n
	}

	e, err := a.service.UpdateElection(r.Context(), electionID(r), patch)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, e)
}

func (a *API) deleteElection(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteElection(r.Context(), electionID(r)); err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderMensagem(w, http.StatusOK, "eleicao removida")
}

func (a *API) listVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := a.service.VotesByElection(r.Context(), electionID(r))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, nonNil(votes))
}

func (a *API) castVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.responderErro(w, r, payloadInvalido(err))
		return
	}
	if req.CandidateID <= 0 {
		verr := &domain.ValidationError{}
		verr.Add("candidateId", "obrigatorio")
		a.responderErro(w, r, verr)
		return
	}

	id, err := a.service.CastVote(r.Context(), electionID(r), req.CandidateID)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}

	status := http.StatusCreated
	if a.opts.AsyncVotes {
		status = http.StatusAccepted
	}
	responderDados(w, status, voteResponse{ID: id})
}

func (a *API) recentVotes(w http.ResponseWriter, r *http.Request) {
	limit := a.opts.RecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			verr := &domain.ValidationError{}
			verr.Add("limit", "deve ser um inteiro positivo")
			a.responderErro(w, r, verr)
			return
		}
		limit = n
	}

	votes, err := a.service.RecentVotes(r.Context(), limit)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, nonNil(votes))
}

func electionID(r *http.Request) domain.ElectionID {
	return domain.ElectionID(strings.TrimSpace(chi.URLParam(r, "id")))
}

func parseVoters(raw json.Number) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		verr := &domain.ValidationError{}
		verr.Add("totalVoters", "deve ser um inteiro positivo")
		return 0, verr
	}
	return n, nil
}

func payloadInvalido(err error) error {
	verr := &domain.ValidationError{}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		verr.Add(typeErr.Field, "tipo invalido")
	} else {
		verr.Add("body", "json invalido")
	}
	return verr
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
