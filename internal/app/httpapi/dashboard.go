package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Dashboard(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, snap)
}

// votingData é o snapshot somente leitura do painel no formato {success, data}.
func (a *API) votingData(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Dashboard(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderDados(w, http.StatusOK, snap.Stats)
}

// dashboardStream envia o painel como server-sent events a cada alteração.
func (a *API) dashboardStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.responderErro(w, r, errors.New("streaming nao suportado"))
		return
	}

	started := false
	err := a.service.WatchDashboard(r.Context(), func(snap domain.DashboardSnapshot) error {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}

		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case !started:
		a.responderErro(w, r, err)
	default:
		a.logger.Warn("stream do painel encerrado", "err", err)
	}
}
