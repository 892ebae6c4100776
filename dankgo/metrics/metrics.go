package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dankgo_messages_processed_total",
		Help: "Inbound chat messages run through the scoring state machine.",
	})

	CalloutsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dankgo_callouts_scored_total",
		Help: "Messages that scored a dank time window.",
	})

	TimersFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dankgo_timers_fired_total",
		Help: "Dank time notification timers that fired.",
	})

	TransportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dankgo_transport_errors_total",
		Help: "Failed sends/deletes against the chat platform.",
	})

	ChatsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dankgo_chats_tracked",
		Help: "Chats currently held in the registry.",
	})
)

// Serve exposes /metrics on the given port. Runs until the process exits;
// callers start it on its own goroutine.
func Serve(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("Metrics endpoint listening", slog.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Metrics endpoint failed", slog.Any("error", err))
	}
}
