package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del dominio (claves y admisión). Viven en un paquete aparte para que
// jwt, rate y middlewares las usen sin ciclos de import.

var (
	KeyRotationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keyward_key_rotations_total",
		Help: "Rotaciones de clave de firma por resultado",
	}, []string{"result"}) // result: ok|invalid_size|generation_failed|store_error

	KeyRotationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "keyward_key_rotation_duration_seconds",
		Help:    "Duración de generate+activate (incluye generación RSA)",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	RateLimitRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keyward_rate_limit_rejections_total",
		Help: "Requests rechazadas por el rate limiter",
	})

	AdminGateDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keyward_admin_gate_denials_total",
		Help: "Requests rechazadas por el admin gate",
	}, []string{"reason"}) // reason: missing|invalid
)

// ObserveRotation registra una rotación con su resultado.
func ObserveRotation(result string, d time.Duration) {
	KeyRotationsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		KeyRotationDuration.Observe(d.Seconds())
	}
}

// RegisterDomain registra las métricas del dominio en el registry indicado (o el default si nil).
func RegisterDomain(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		KeyRotationsTotal,
		KeyRotationDuration,
		RateLimitRejections,
		AdminGateDenials,
	} {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
