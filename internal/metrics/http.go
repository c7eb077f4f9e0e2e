package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpOnce sync.Once
	httpErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec
)

// Config agrupa dependencias necesarias para exponer /metrics.
type Config struct {
	Registry prometheus.Registerer
	// Pool es opcional: si el store expone estadísticas de pool se publican como gauges.
	Pool PoolStatProvider
}

// Register inicializa las métricas HTTP y de dominio y devuelve el handler de /metrics.
func Register(cfg Config) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	httpOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, httpInflight} {
			if err := registerCollector(registry, c); err != nil {
				httpErr = err
				return
			}
		}
	})
	if httpErr != nil {
		return nil, httpErr
	}
	if err := RegisterDomain(registry); err != nil {
		return nil, err
	}
	if cfg.Pool != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.Pool)); err != nil {
			return nil, err
		}
	}

	if g, ok := registry.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// HTTPStart marca un request en vuelo y devuelve la función que lo cierra.
// Si las métricas HTTP no fueron registradas no hace nada.
func HTTPStart(method, path string) func(status int, routePattern string) {
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return func(int, string) {}
	}
	method = strings.ToUpper(method)
	pathLabel := NormalizePath(path)
	httpInflight.WithLabelValues(method, pathLabel).Inc()
	start := time.Now()

	return func(status int, routePattern string) {
		httpInflight.WithLabelValues(method, pathLabel).Dec()
		label := pathLabel
		if routePattern != "" {
			label = routePattern
		}
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestDuration.WithLabelValues(method, label).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, label, strconv.Itoa(status)).Inc()
	}
}

// ─── Pool collector ───

// PoolStat son las estadísticas mínimas de un pool de conexiones.
type PoolStat struct {
	Acquired int32
	Idle     int32
	Total    int32
}

// PoolStatProvider lo implementan las conexiones de store con pool (pg).
type PoolStatProvider interface {
	PoolStat() (PoolStat, bool)
}

type dbPoolCollector struct {
	provider PoolStatProvider

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(p PoolStatProvider) *dbPoolCollector {
	return &dbPoolCollector{
		provider:     p,
		acquiredDesc: prometheus.NewDesc("db_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("db_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("db_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	st, ok := c.provider.PoolStat()
	if !ok {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(st.Acquired))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(st.Idle))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(st.Total))
}

// ─── Normalización de paths ───

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath reemplaza segmentos dinámicos (uuid, hex, números) por ":param"
// para acotar la cardinalidad del label "path".
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" || clean == "/" {
		return "/"
	}

	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
