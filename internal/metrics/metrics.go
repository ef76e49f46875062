package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BookingsTotal считает подтвержденные бронирования
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kassa_bookings_total",
		Help: "Number of confirmed bookings",
	}, []string{"mode"})

	// CancellationsTotal считает отмененные строки бронирований
	CancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kassa_cancellations_total",
		Help: "Number of cancelled booking rows",
	})

	// PromotionsTotal считает повышения из листа ожидания
	PromotionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kassa_waitlist_promotions_total",
		Help: "Number of waitlist promotions after cancellations",
	})

	// RefundedTotal суммирует выплаченные возвраты
	RefundedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kassa_refunded_amount_total",
		Help: "Total amount refunded to customers",
	})

	// RevenueGauge текущая выручка по событию
	RevenueGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kassa_event_revenue",
		Help: "Current revenue per event",
	}, []string{"event_id"})

	// WaitlistDepth глубина листа ожидания по событию
	WaitlistDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kassa_waitlist_depth",
		Help: "Number of groups waiting per event",
	}, []string{"event_id"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kassa_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// SetEventGauges обновляет показатели события после каждой операции
func SetEventGauges(eventID int64, revenue float64, waitlistDepth int) {
	id := strconv.FormatInt(eventID, 10)
	RevenueGauge.WithLabelValues(id).Set(revenue)
	WaitlistDepth.WithLabelValues(id).Set(float64(waitlistDepth))
}

// DropEventGauges убирает показатели удаленного события
func DropEventGauges(eventID int64) {
	id := strconv.FormatInt(eventID, 10)
	RevenueGauge.DeleteLabelValues(id)
	WaitlistDepth.DeleteLabelValues(id)
}

// Middleware записывает длительность HTTP запросов
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler отдает метрики в формате Prometheus
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
