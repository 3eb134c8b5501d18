package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements the Collector interface using Prometheus metrics.
type PrometheusCollector struct {
	// Connection metrics
	connectionsTotal   prometheus.Counter
	connectionsActive  prometheus.Gauge
	tlsConnectionTotal prometheus.Counter

	// Authentication metrics
	authAttemptsTotal *prometheus.CounterVec

	// Command metrics
	commandsTotal       *prometheus.CounterVec
	responseErrorsTotal *prometheus.CounterVec
	bytesReadTotal      prometheus.Counter
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imap_client_connections_total",
			Help: "Total number of IMAP connections opened.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "imap_client_connections_active",
			Help: "Number of currently open IMAP connections.",
		}),
		tlsConnectionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imap_client_tls_connections_total",
			Help: "Total number of TLS connections established.",
		}),

		authAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imap_client_auth_attempts_total",
			Help: "Total number of authentication attempts.",
		}, []string{"mechanism", "result"}),

		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imap_client_commands_total",
			Help: "Total number of tagged IMAP commands sent.",
		}, []string{"command"}),
		responseErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imap_client_response_errors_total",
			Help: "Total number of failed responses by error kind.",
		}, []string{"kind"}),
		bytesReadTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "imap_client_read_bytes_total",
			Help: "Total number of bytes read from the server.",
		}),
	}

	// Register all metrics
	reg.MustRegister(
		c.connectionsTotal,
		c.connectionsActive,
		c.tlsConnectionTotal,
		c.authAttemptsTotal,
		c.commandsTotal,
		c.responseErrorsTotal,
		c.bytesReadTotal,
	)

	return c
}

// ConnectionOpened increments the connection counter and active gauge.
func (c *PrometheusCollector) ConnectionOpened() {
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

// ConnectionClosed decrements the active connections gauge.
func (c *PrometheusCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

// TLSConnectionEstablished increments the TLS connection counter.
func (c *PrometheusCollector) TLSConnectionEstablished() {
	c.tlsConnectionTotal.Inc()
}

// AuthAttempt increments the authentication attempts counter.
func (c *PrometheusCollector) AuthAttempt(mechanism string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttemptsTotal.WithLabelValues(mechanism, result).Inc()
}

// CommandSent increments the command counter.
func (c *PrometheusCollector) CommandSent(command string) {
	c.commandsTotal.WithLabelValues(command).Inc()
}

// ResponseError increments the response error counter.
func (c *PrometheusCollector) ResponseError(kind string) {
	c.responseErrorsTotal.WithLabelValues(kind).Inc()
}

// BytesRead adds n to the bytes read counter.
func (c *PrometheusCollector) BytesRead(n int) {
	c.bytesReadTotal.Add(float64(n))
}

// PrometheusServer serves a Prometheus registry over HTTP.
type PrometheusServer struct {
	srv *http.Server
}

// NewPrometheusServer returns a server exposing gatherer at path on addr.
func NewPrometheusServer(addr, path string, gatherer prometheus.Gatherer) *PrometheusServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &PrometheusServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves until ctx is canceled.
func (s *PrometheusServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *PrometheusServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
