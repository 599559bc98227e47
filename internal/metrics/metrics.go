package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics holds the service collectors. It satisfies service.Observer.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	GRPCRequestsTotal   *prometheus.CounterVec
	CheckoutsTotal      *prometheus.CounterVec
	CartMutationsTotal  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		GRPCRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grpc_requests_total",
				Help: "Total gRPC requests",
			},
			[]string{"method", "code"},
		),
		CheckoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_checkouts_total",
				Help: "Checkout attempts by result",
			},
			[]string{"result"},
		),
		CartMutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_cart_mutations_total",
				Help: "Cart mutations by operation and whether they applied",
			},
			[]string{"op", "applied"},
		),
	}
	reg.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.GRPCRequestsTotal, m.CheckoutsTotal, m.CartMutationsTotal)
	return m
}

func (m *Metrics) CartMutation(op string, applied bool) {
	m.CartMutationsTotal.WithLabelValues(op, strconv.FormatBool(applied)).Inc()
}

func (m *Metrics) CheckoutResult(result string) {
	m.CheckoutsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}

func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		m.GRPCRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}
