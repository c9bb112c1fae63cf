package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	profileFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "famelist_profile_fetches_total",
		Help: "Profile list fetches by result.",
	}, []string{"result"})

	viewIncrements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "famelist_view_increments_total",
		Help: "View increment attempts by result (sent, deduplicated, failed).",
	}, []string{"result"})

	likeToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "famelist_like_toggles_total",
		Help: "Like toggles by direction and result.",
	}, []string{"direction", "result"})

	adminMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "famelist_admin_mutations_total",
		Help: "Admin create/update/delete calls by result.",
	}, []string{"op", "result"})

	requestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Tracks the latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	})
)

// Registry 是本进程使用的独立注册表
var Registry = newRegistry()

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		profileFetches,
		viewIncrements,
		likeToggles,
		adminMutations,
		requestDuration,
	)
	return registry
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveFetch(err error) {
	profileFetches.WithLabelValues(result(err)).Inc()
}

// ObserveView 的result取值: sent / deduplicated / failed
func ObserveView(res string) {
	viewIncrements.WithLabelValues(res).Inc()
}

func ObserveLike(liked bool, err error) {
	direction := "unlike"
	if liked {
		direction = "like"
	}
	likeToggles.WithLabelValues(direction, result(err)).Inc()
}

func ObserveAdmin(op string, err error) {
	adminMutations.WithLabelValues(op, result(err)).Inc()
}

func ObserveRequestDuration(seconds float64) {
	requestDuration.Observe(seconds)
}

// Handler 返回挂载到gin上的 /metrics 处理器
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware 记录每个请求的耗时
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ObserveRequestDuration(time.Since(start).Seconds())
	}
}
