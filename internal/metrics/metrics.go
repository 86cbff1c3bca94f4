// Package metrics exports controller activity as Prometheus metrics. It is
// fed from the event bus, so the controller has no metrics dependency.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chaz8081/bleled/internal/events"
)

// Collector holds the bleled metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	commands            *prometheus.CounterVec
	ledOn               prometheus.Gauge
	connected           prometheus.Gauge
	connections         prometheus.Counter
	statusNotifications prometheus.Counter
	advertisingRestarts *prometheus.CounterVec

	unsubscribe []func()
}

// New creates a collector registered on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bleled_commands_total",
			Help: "Non-empty characteristic writes by command. Unrecognized payloads count as \"unknown\".",
		}, []string{"command"}),
		ledOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bleled_led_on",
			Help: "1 if the LED is on.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bleled_connected",
			Help: "1 while a central is connected.",
		}),
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bleled_connections_total",
			Help: "Central connections accepted.",
		}),
		statusNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bleled_status_notifications_total",
			Help: "STATUS replies written and notified.",
		}),
		advertisingRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bleled_advertising_restarts_total",
			Help: "Advertising restarts after a disconnect, by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		c.commands,
		c.ledOn,
		c.connected,
		c.connections,
		c.statusNotifications,
		c.advertisingRestarts,
	)
	return c
}

// Subscribe starts consuming events from bus.
func (c *Collector) Subscribe(bus *events.Bus) {
	c.unsubscribe = append(c.unsubscribe,
		bus.Subscribe(func(e events.CommandReceivedEvent) {
			label := e.Command
			if !e.Recognized {
				label = "unknown"
			}
			c.commands.WithLabelValues(label).Inc()
		}),
		bus.Subscribe(func(e events.LEDChangedEvent) {
			c.ledOn.Set(boolValue(e.On))
		}),
		bus.Subscribe(func(e events.StatusNotifiedEvent) {
			c.statusNotifications.Inc()
		}),
		bus.Subscribe(func(e events.ConnectionChangedEvent) {
			c.connected.Set(boolValue(e.Connected))
			if e.Connected {
				c.connections.Inc()
			}
		}),
		bus.Subscribe(func(e events.AdvertisingRestartedEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			c.advertisingRestarts.WithLabelValues(result).Inc()
		}),
	)
}

// Close unsubscribes from the event bus.
func (c *Collector) Close() {
	for _, unsub := range c.unsubscribe {
		unsub()
	}
	c.unsubscribe = nil
}

// Handler returns the /metrics HTTP handler for this collector.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("[metrics] serving", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics: serve %s: %w", addr, err)
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
