// Package metrics exposes agent activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "autocompounder"

// Metrics groups the collectors registered for one process.
type Metrics struct {
	Registry *prometheus.Registry

	Executions  *prometheus.CounterVec
	PollErrors  *prometheus.CounterVec
	Submissions *prometheus.CounterVec
	Pending     *prometheus.GaugeVec
	Observed    *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_executions_total",
			Help:      "Number of agent executions.",
		}, []string{"agent"}),
		PollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_poll_errors_total",
			Help:      "Number of polls that ended without a result.",
		}, []string{"agent"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_submissions_total",
			Help:      "Compounding transactions by outcome.",
		}, []string{"agent", "status"}),
		Pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agent_pending",
			Help:      "Last recorded pending quantity.",
		}, []string{"agent"}),
		Observed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agent_observed_value",
			Help:      "Values derived during the last poll.",
		}, []string{"agent", "field"}),
	}
	m.Registry.MustRegister(m.Executions, m.PollErrors, m.Submissions, m.Pending, m.Observed)
	return m
}

// Serve exposes the registry on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Errorf("Metrics server stopped: %v", err)
	}
}
