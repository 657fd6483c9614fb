// Package metrics expone los colectores Prometheus de la sincronización y las escrituras.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventario"

var (
	// SnapshotsApplied snapshots aplicados al conjunto local de productos.
	SnapshotsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "snapshots_applied_total",
		Help:      "Snapshots que reemplazaron el conjunto local de productos.",
	})

	// SnapshotsDiscarded notificaciones de suscripciones ya cerradas.
	SnapshotsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "notifications_discarded_total",
		Help:      "Notificaciones descartadas por pertenecer a una suscripción cerrada.",
	})

	// SubscriptionErrors fallas reportadas por la suscripción en vivo.
	SubscriptionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "subscription_errors_total",
		Help:      "Errores reportados por la suscripción de productos.",
	})

	// ProductSetSize tamaño del conjunto local tras el último evento.
	ProductSetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "product_set_size",
		Help:      "Productos en el conjunto local.",
	})

	// Writes escrituras contra el store por operación y resultado.
	Writes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "writes_total",
		Help:      "Escrituras create/update/delete por resultado.",
	}, []string{"op", "result"})

	// WriteDuration latencia de las escrituras.
	WriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "write_duration_seconds",
		Help:      "Latencia de las escrituras contra el store.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	// LoopEvents eventos procesados por el loop del controlador.
	LoopEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "controller",
		Name:      "events_total",
		Help:      "Eventos procesados por el loop, por tipo.",
	}, []string{"kind"})
)

// Handler endpoint /metrics del registro por defecto.
func Handler() http.Handler {
	return promhttp.Handler()
}
