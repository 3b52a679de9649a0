// Pacote metrics registra os coletores Prometheus expostos em /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicoes_vote_requests_total",
		Help: "Total de votos recebidos por resultado",
	}, []string{"status"})

	voteProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eleicoes_vote_processed_total",
		Help: "Total de votos gravados pelo worker",
	})

	voteRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicoes_vote_retries_total",
		Help: "Tentativas extras ou reenfileiramentos de votos",
	}, []string{"kind"})

	voteProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eleicoes_vote_processing_duration_seconds",
		Help:    "Tempo para gravar um voto no worker",
		Buckets: prometheus.DefBuckets,
	})

	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicoes_login_attempts_total",
		Help: "Tentativas de login por resultado",
	}, []string{"result"})

	dashboardComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eleicoes_dashboard_compute_duration_seconds",
		Help:    "Tempo para montar o painel a partir das coleções",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func IncVoteProcessed() {
	voteProcessedTotal.Inc()
}

func IncVoteRetry(kind string) {
	voteRetriesTotal.WithLabelValues(kind).Inc()
}

func ObserveProcessingDuration(seconds float64) {
	voteProcessingDuration.Observe(seconds)
}

func ObserveLogin(result string) {
	loginAttemptsTotal.WithLabelValues(result).Inc()
}

func ObserveDashboardDuration(seconds float64) {
	dashboardComputeDuration.Observe(seconds)
}
