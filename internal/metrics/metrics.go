package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标结果标签
const (
	ResultAllowed  = "allowed"
	ResultDenied   = "denied"
	ResultValid    = "valid"
	ResultRejected = "rejected"
	ResultError    = "error"
)

const unmatchedPath = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prepwise_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prepwise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	permissionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prepwise_permission_checks_total",
			Help: "Permission checks by result",
		},
		[]string{"result"},
	)

	couponValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prepwise_coupon_validations_total",
			Help: "Coupon validations by result",
		},
		[]string{"result"},
	)

	couponRedemptionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prepwise_coupon_redemptions_total",
			Help: "Total number of recorded coupon redemptions",
		},
	)

	couponsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prepwise_coupons_expired_total",
			Help: "Coupons deactivated by the expiry sweep",
		},
	)
)

// GinMiddleware 记录请求数与耗时，path 取路由模板避免标签爆炸
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 Prometheus 抓取端点
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordPermissionCheck 记录一次权限判定
func RecordPermissionCheck(allowed bool) {
	if allowed {
		permissionChecksTotal.WithLabelValues(ResultAllowed).Inc()
		return
	}
	permissionChecksTotal.WithLabelValues(ResultDenied).Inc()
}

// RecordCouponValidation 记录一次优惠券校验
func RecordCouponValidation(result string) {
	couponValidationsTotal.WithLabelValues(result).Inc()
}

// RecordCouponRedemption 记录一次成功核销
func RecordCouponRedemption() {
	couponRedemptionsTotal.Inc()
}

// RecordCouponsExpired 记录过期停用数量
func RecordCouponsExpired(count int64) {
	if count <= 0 {
		return
	}
	couponsExpiredTotal.Add(float64(count))
}
